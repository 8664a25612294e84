package tabulate

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/agbru/tabulate/internal/logging"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/metrics"
	"github.com/agbru/tabulate/internal/orchestration"
	"github.com/agbru/tabulate/internal/record"
)

// Tabulation modes, used as metric labels and request routes.
const (
	ModeTabulate   = "tabulate"
	ModeSummary    = "summary"
	ModeCompare    = "compare"
	ModeRank       = "rank"
	ModeTimeSeries = "timeseries"
)

// DefaultGeographyLimit is the number of geographies fetched per request
// when no limit is configured.
const DefaultGeographyLimit = 500

// Querier fetches and merges raw records, usually an
// *orchestration.Service.
type Querier interface {
	Query(ctx context.Context, p orchestration.TabularParams) (map[string][]record.APIRecord, error)
}

// Metadata is the part of the metadata repository the engine reads.
type Metadata interface {
	VintageForVariable(variableID, geoTypeID, vintageID string) (metadata.Vintage, error)
	FindVintageForVariable(variableID, geoTypeID, vintageID string) (metadata.Vintage, bool, error)
	VintagesForVariable(variableID string) ([]metadata.Vintage, error)
}

// Service computes estimates for the supported request patterns.
type Service struct {
	repo           Metadata
	querier        Querier
	metrics        *metrics.Collectors
	logger         logging.Logger
	geographyLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records tabulation counts and durations.
func WithMetrics(m *metrics.Collectors) Option { return func(s *Service) { s.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option { return func(s *Service) { s.logger = l } }

// WithGeographyLimit sets the per-request geography limit used when a
// ranking request does not carry one.
func WithGeographyLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.geographyLimit = n
		}
	}
}

// NewService creates a Service.
func NewService(repo Metadata, querier Querier, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		querier:        querier,
		metrics:        metrics.Nop(),
		logger:         logging.NopLogger{},
		geographyLimit: DefaultGeographyLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// observe wraps one top-level call with a span, a metric and a log line.
func (s *Service) observe(ctx context.Context, mode string, fn func(ctx context.Context) error) error {
	ctx, span := metrics.StartSpan(ctx, "tabulate."+mode, attribute.String("mode", mode))
	start := time.Now()
	err := fn(ctx)
	metrics.EndSpan(span, err)

	d := time.Since(start)
	s.metrics.TabulationDone(mode, d, err)
	if err != nil {
		s.logger.Error("tabulation failed", err, logging.String("mode", mode), logging.Duration("duration", d))
		return err
	}
	s.logger.Debug("tabulation complete", logging.String("mode", mode), logging.Duration("duration", d))
	return nil
}

func sortedGeoTypes(m record.PartitionsMap) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// withVintage keeps the geo types of m for which the variable has the
// vintage.
func (s *Service) withVintage(variableID, vintageID string, m record.PartitionsMap) (record.PartitionsMap, error) {
	out := make(record.PartitionsMap, len(m))
	for _, id := range sortedGeoTypes(m) {
		_, ok, err := s.repo.FindVintageForVariable(variableID, id, vintageID)
		if err != nil {
			return nil, err
		}
		if ok {
			out[id] = m[id]
		}
	}
	return out, nil
}
