package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/agbru/tabulate/internal/fetch"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/record"
)

// mockFetcher simulates various upstream behaviors for deadlock testing.
type mockFetcher struct {
	behavior string // "instant", "slow", "error", "block"
	delay    time.Duration
}

func (m *mockFetcher) Fetch(ctx context.Context, req fetch.Request) ([]record.APIRecord, error) {
	switch m.behavior {
	case "slow":
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	case "error":
		return nil, fmt.Errorf("simulated error")
	case "block":
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return echoFetcher(nil)(ctx, req)
}

// slowReporter reads updates slowly, so senders would block on an
// unbuffered channel.
type slowReporter struct{}

func (slowReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan FetchProgress, _ io.Writer) {
	defer wg.Done()
	for range progressChan {
		time.Sleep(time.Millisecond)
	}
}

func manyCounties(n int) record.PartitionsMap {
	parts := make(record.GeographyPartitions, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, []record.DetailedGeo{geo("county", fmt.Sprintf("36%03d", i))})
	}
	return record.PartitionsMap{"county": parts}
}

// TestOrchestrationNoDeadlock verifies that Query completes for every
// fetcher behavior, including errors and a slow progress consumer.
func TestOrchestrationNoDeadlock(t *testing.T) {
	repo := loadRepo(t)
	vars := variables(t, repo, "POP", "EMP")

	testCases := []struct {
		name     string
		fetcher  fetch.Fetcher
		reporter ProgressReporter
	}{
		{name: "instant", fetcher: &mockFetcher{behavior: "instant"}, reporter: NullProgressReporter{}},
		{name: "slow", fetcher: &mockFetcher{behavior: "slow", delay: time.Millisecond}, reporter: NullProgressReporter{}},
		{name: "error", fetcher: &mockFetcher{behavior: "error"}, reporter: NullProgressReporter{}},
		{name: "slow_reporter", fetcher: &mockFetcher{behavior: "instant"}, reporter: slowReporter{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			svc := NewService(repo, tc.fetcher, WithProgress(tc.reporter, io.Discard), WithConcurrency(4))
			done := make(chan struct{})
			go func() {
				defer close(done)
				_, _ = svc.Query(ctx, TabularParams{Geographies: manyCounties(50), Variables: vars, Vintage: metadata.CurrentVintage})
			}()

			select {
			case <-done:
				// Success - no deadlock
			case <-time.After(10 * time.Second):
				t.Fatal("DEADLOCK: Query did not complete within timeout")
			}
		})
	}
}

// TestOrchestrationNoDeadlock_ContextCancellation verifies that cancelling
// the context while fetches are blocked unblocks Query.
func TestOrchestrationNoDeadlock_ContextCancellation(t *testing.T) {
	repo := loadRepo(t)
	ctx, cancel := context.WithCancel(context.Background())

	vars := variables(t, repo, "POP")
	svc := NewService(repo, &mockFetcher{behavior: "block"})
	done := make(chan error, 1)
	go func() {
		_, err := svc.Query(ctx, TabularParams{
			Geographies: manyCounties(5),
			Variables:   vars,
			Vintage:     metadata.CurrentVintage,
		})
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected an error after cancellation")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("DEADLOCK after context cancellation")
	}
}

// TestQueryExpiredContext verifies that no fetch starts once the context
// is done, even with fetchers that ignore it.
func TestQueryExpiredContext(t *testing.T) {
	repo := loadRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(repo, &mockFetcher{behavior: "instant"})
	_, err := svc.Query(ctx, TabularParams{
		Geographies: manyCounties(3),
		Variables:   variables(t, repo, "POP"),
		Vintage:     metadata.CurrentVintage,
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Query() error = %v, want context.Canceled", err)
	}
}
