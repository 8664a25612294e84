package orchestration

import (
	"context"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/tabulate/internal/fetch"
	"github.com/agbru/tabulate/internal/logging"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/metrics"
	"github.com/agbru/tabulate/internal/partition"
	"github.com/agbru/tabulate/internal/record"
)

// Metadata is the part of the metadata repository the orchestrator reads.
type Metadata interface {
	partition.VintageSource
	GeoType(id string) (metadata.GeoType, error)
}

// Service runs fetch batches.
type Service struct {
	repo        Metadata
	fetcher     fetch.Fetcher
	reporter    ProgressReporter
	out         io.Writer
	metrics     *metrics.Collectors
	logger      logging.Logger
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithProgress sends fetch progress to reporter, which writes to out.
func WithProgress(reporter ProgressReporter, out io.Writer) Option {
	return func(s *Service) {
		s.reporter = reporter
		s.out = out
	}
}

// WithMetrics records fetch task counts.
func WithMetrics(m *metrics.Collectors) Option { return func(s *Service) { s.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option { return func(s *Service) { s.logger = l } }

// WithConcurrency bounds the number of fetches in flight. Zero or less
// leaves it unbounded.
func WithConcurrency(n int) Option { return func(s *Service) { s.concurrency = n } }

// NewService creates a Service dispatching fetches to fetcher, usually a
// *fetch.Registry.
func NewService(repo Metadata, fetcher fetch.Fetcher, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		fetcher:  fetcher,
		reporter: NullProgressReporter{},
		out:      io.Discard,
		metrics:  metrics.Nop(),
		logger:   logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type task struct {
	geoType int
	req     fetch.Request
}

// Query fetches every data partition of the variables for every geography
// partition of every geo type, concurrently. Partitions whose sources map
// state ids are fetched one geography at a time. The first error cancels
// the batch and is returned.
//
// The result holds, per geo type id, one merged record per requested
// geography in request order.
func (s *Service) Query(ctx context.Context, p TabularParams) (map[string][]record.APIRecord, error) {
	ctx, span := metrics.StartSpan(ctx, "orchestration.Query",
		attribute.Int("geo_types", len(p.Geographies)),
		attribute.Int("variables", len(p.Variables)),
		attribute.String("vintage", p.Vintage))
	var err error
	defer func() { metrics.EndSpan(span, err) }()

	geoTypeIDs := make([]string, 0, len(p.Geographies))
	for id := range p.Geographies {
		geoTypeIDs = append(geoTypeIDs, id)
	}
	sort.Strings(geoTypeIDs)

	var tasks []task
	tasks, err = s.plan(geoTypeIDs, p)
	if err != nil {
		return nil, err
	}

	var results [][]record.APIRecord
	results, err = s.run(ctx, tasks)
	if err != nil {
		return nil, err
	}

	fetched := make([][]record.APIRecord, len(geoTypeIDs))
	for i, t := range tasks {
		fetched[t.geoType] = append(fetched[t.geoType], results[i]...)
	}
	out := make(map[string][]record.APIRecord, len(geoTypeIDs))
	for i, id := range geoTypeIDs {
		out[id] = groupByGeography(id, p.Geographies[id].Flatten(), fetched[i])
	}
	return out, nil
}

// plan lists the fetch tasks of a batch: geography partitions in order,
// and within each, data partitions in first-seen order.
func (s *Service) plan(geoTypeIDs []string, p TabularParams) ([]task, error) {
	var tasks []task
	for i, id := range geoTypeIDs {
		gt, err := s.repo.GeoType(id)
		if err != nil {
			return nil, err
		}
		set, err := partition.ByEndpoint(s.repo, id, p.Vintage, p.Variables)
		if err != nil {
			return nil, err
		}
		for _, geos := range p.Geographies[id] {
			for _, dp := range set.Partitions() {
				if dp.MapsState() {
					for _, g := range geos {
						tasks = append(tasks, task{geoType: i, req: fetch.Request{
							Partition: dp, GeoType: gt, Geographies: []record.DetailedGeo{g}, IndustryIDs: p.IndustryIDs,
						}})
					}
					continue
				}
				tasks = append(tasks, task{geoType: i, req: fetch.Request{
					Partition: dp, GeoType: gt, Geographies: geos, IndustryIDs: p.IndustryIDs,
				}})
			}
		}
	}
	return tasks, nil
}

func (s *Service) run(ctx context.Context, tasks []task) ([][]record.APIRecord, error) {
	start := time.Now()
	s.metrics.FetchTasks(len(tasks))

	results := make([][]record.APIRecord, len(tasks))
	progressChan := make(chan FetchProgress, len(tasks))

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go s.reporter.DisplayProgress(&displayWg, progressChan, s.out)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, t := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs, err := s.fetcher.Fetch(gctx, t.req)
			if err != nil {
				return err
			}
			results[i] = recs
			progressChan <- FetchProgress{Done: int(done.Add(1)), Total: len(tasks)}
			return nil
		})
	}

	err := g.Wait()
	close(progressChan)
	displayWg.Wait()

	if err != nil {
		s.logger.Error("fetch batch failed", err, logging.Int("tasks", len(tasks)), logging.Int("completed", int(done.Load())))
		return nil, err
	}
	s.logger.Debug("fetch batch complete", logging.Int("tasks", len(tasks)), logging.Duration("duration", time.Since(start)))
	return results, nil
}
