package tabulate

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/orchestration"
	"github.com/agbru/tabulate/internal/record"
)

// rankingStride is the offset between the peer slices of a ranking whose
// peer list exceeds the per-request limit. Peers between the end of one
// slice and the start of the next are not ranked.
const rankingStride = 1100

// ComparisonParams selects a region and the parent geographies it is
// compared with.
type ComparisonParams struct {
	Variable    metadata.DataVariable
	Geographies record.PartitionsMap
	Parents     record.PartitionsMap
	IndustryIDs []string
	Vintage     string
}

// ComparisonResult pairs the summary of a region with the tabulation of
// its parents.
type ComparisonResult struct {
	Base    SummaryResult `json:"base"`
	Parents TabularResult `json:"parents"`
}

// Compare summarizes the region and tabulates the parent geo types that
// have the requested vintage of the variable. Both run concurrently.
func (s *Service) Compare(ctx context.Context, p ComparisonParams) (ComparisonResult, error) {
	var out ComparisonResult
	err := s.observe(ctx, ModeCompare, func(ctx context.Context) error {
		parents, err := s.withVintage(p.Variable.ID, p.Vintage, p.Parents)
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			out.Base, err = s.summarize(gctx, orchestration.TabularParams{
				Geographies: p.Geographies,
				IndustryIDs: p.IndustryIDs,
				Variables:   []metadata.DataVariable{p.Variable},
				Vintage:     p.Vintage,
			})
			return err
		})
		g.Go(func() error {
			var err error
			out.Parents, err = s.tabulate(gctx, orchestration.TabularParams{
				Geographies: parents,
				IndustryIDs: p.IndustryIDs,
				Variables:   []metadata.DataVariable{p.Variable},
				Vintage:     p.Vintage,
			})
			return err
		})
		return g.Wait()
	})
	return out, err
}

// Order is the sort direction of a ranking.
type Order string

// Ranking orders.
const (
	Ascending  Order = "ASCENDING"
	Descending Order = "DESCENDING"
)

// RankingParams selects the peers a geography is ranked against.
type RankingParams struct {
	Variable    metadata.DataVariable
	Geographies record.PartitionsMap
	IndustryIDs []string
	Selected    record.DetailedGeo
	// ResultCount caps the number of peers returned. Zero or less returns
	// every ranked peer.
	ResultCount int
	ResultOrder Order
	Vintage     string
	// GeographyLimit overrides the service's per-request limit.
	GeographyLimit int
}

// RankingResult holds the selected geography and its ranked peers.
type RankingResult struct {
	Selected []record.GeoRecord `json:"selected"`
	Peers    []record.GeoRecord `json:"peers"`
}

// Rank tabulates the peers of the selected geography and orders them by
// their cluster estimate. Peers with an unavailable cluster estimate are
// left out.
func (s *Service) Rank(ctx context.Context, p RankingParams) (RankingResult, error) {
	var out RankingResult
	err := s.observe(ctx, ModeRank, func(ctx context.Context) error {
		var err error
		out, err = s.rank(ctx, p)
		return err
	})
	return out, err
}

func (s *Service) rank(ctx context.Context, p RankingParams) (RankingResult, error) {
	geoTypeID := p.Selected.GeoType
	peersMap, err := s.withVintage(p.Variable.ID, p.Vintage, p.Geographies)
	if err != nil {
		return RankingResult{}, err
	}
	if _, ok := peersMap[geoTypeID]; !ok {
		return RankingResult{Selected: []record.GeoRecord{}, Peers: []record.GeoRecord{}}, nil
	}

	limit := p.GeographyLimit
	if limit <= 0 {
		limit = s.geographyLimit
	}

	batches := []record.PartitionsMap{peersMap}
	if first := peersMap[geoTypeID]; len(first) > 0 && len(first[0]) > limit {
		peers := first[0]
		batches = batches[:0]
		for r := 0; r < len(peers); r += rankingStride {
			end := min(r+limit, len(peers))
			batches = append(batches, record.PartitionsMap{geoTypeID: {peers[r:end]}})
		}
	}

	results := make([]TabularResult, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range batches {
		g.Go(func() error {
			res, err := s.tabulate(gctx, orchestration.TabularParams{
				Geographies: b,
				IndustryIDs: p.IndustryIDs,
				Variables:   []metadata.DataVariable{p.Variable},
				Vintage:     p.Vintage,
			})
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return RankingResult{}, err
	}

	out := RankingResult{Selected: []record.GeoRecord{}, Peers: []record.GeoRecord{}}
	for _, res := range results {
		for _, gr := range res[geoTypeID] {
			if gr.ID == p.Selected.ID {
				out.Selected = append(out.Selected, gr)
				continue
			}
			if _, ok := clusterStat(gr, p.Variable.ID); ok {
				out.Peers = append(out.Peers, gr)
			}
		}
	}

	sort.SliceStable(out.Peers, func(i, j int) bool {
		a, _ := clusterStat(out.Peers[i], p.Variable.ID)
		b, _ := clusterStat(out.Peers[j], p.Variable.ID)
		if p.ResultOrder == Ascending {
			return a < b
		}
		return a > b
	})
	if p.ResultCount > 0 && len(out.Peers) > p.ResultCount {
		out.Peers = out.Peers[:p.ResultCount]
	}
	return out, nil
}

func clusterStat(gr record.GeoRecord, variableID string) (float64, bool) {
	rec, ok := gr.Data.Cluster(variableID)
	if !ok {
		return 0, false
	}
	return FindStat(rec)
}

// TimeSeriesParams selects a variable over the geographies of a single geo
// type.
type TimeSeriesParams struct {
	Variable    metadata.DataVariable
	Geographies record.PartitionsMap
	IndustryIDs []string
}

// TimeSeriesRecord is the summary of one vintage. Name lists the years the
// vintage spans, joined by ";".
type TimeSeriesRecord struct {
	Vintage string        `json:"vintage"`
	Name    string        `json:"name"`
	Data    SummaryResult `json:"data"`
}

// TimeSeriesResult is ordered by record name.
type TimeSeriesResult []TimeSeriesRecord

// TimeSeries summarizes the region once per vintage the variable defines
// for the geo type, concurrently.
func (s *Service) TimeSeries(ctx context.Context, p TimeSeriesParams) (TimeSeriesResult, error) {
	var out TimeSeriesResult
	err := s.observe(ctx, ModeTimeSeries, func(ctx context.Context) error {
		var err error
		out, err = s.timeSeries(ctx, p)
		return err
	})
	return out, err
}

func (s *Service) timeSeries(ctx context.Context, p TimeSeriesParams) (TimeSeriesResult, error) {
	geoTypeIDs := sortedGeoTypes(p.Geographies)
	if len(geoTypeIDs) != 1 {
		return nil, apperrors.ValidationError{Field: "geographies", Message: "a time series takes exactly one geo type"}
	}
	geoTypeID := geoTypeIDs[0]

	all, err := s.repo.VintagesForVariable(p.Variable.ID)
	if err != nil {
		return nil, err
	}
	var vintages []metadata.Vintage
	for _, v := range all {
		if v.GeoTypeID == geoTypeID {
			vintages = append(vintages, v)
		}
	}

	out := make(TimeSeriesResult, len(vintages))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range vintages {
		g.Go(func() error {
			data, err := s.summarize(gctx, orchestration.TabularParams{
				Geographies: p.Geographies,
				IndustryIDs: p.IndustryIDs,
				Variables:   []metadata.DataVariable{p.Variable},
				Vintage:     v.VintageID,
			})
			if err != nil {
				return err
			}
			out[i] = TimeSeriesRecord{Vintage: v.VintageID, Name: strings.Join(v.Years, ";"), Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
