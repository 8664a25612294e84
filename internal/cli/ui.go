package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/tabulate/internal/format"
	"github.com/agbru/tabulate/internal/orchestration"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the spinner.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 30
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This allows for the decoupling of the `DisplayProgress` function from a
// specific spinner implementation, facilitating easier testing and maintenance.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements the
// `Spinner` interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

// UpdateSuffix sets the text that is displayed after the spinner. The
// spinner library reads Suffix from its own goroutine, so the write holds
// its lock.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(out io.Writer) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, spinner.WithWriter(out))
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with a progress bar and an ETA while
// fetch tasks complete. It returns, and calls wg.Done, once progressChan is
// closed.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.FetchProgress, out io.Writer) {
	defer wg.Done()

	s := newSpinner(out)
	s.UpdateSuffix(" Fetching...")
	s.Start()
	defer s.Stop()

	var agg *orchestration.ProgressAggregator
	for update := range progressChan {
		if agg == nil || agg.Total() != update.Total {
			agg = orchestration.NewProgressAggregator(update.Total)
			if agg == nil {
				continue
			}
		}
		s.UpdateSuffix(" " + FormatProgress(agg.Update(update)))
	}
}

// FormatProgress renders a progress line such as
// "[████░░░░]  50.0% ETA: 3s (2/4 tasks)".
func FormatProgress(p orchestration.AggregatedProgress) string {
	return fmt.Sprintf("%s (%d/%d tasks)",
		format.FormatProgressBarWithETA(p.Fraction, p.ETA, ProgressBarWidth), p.Done, p.Total)
}
