package tabulate

import (
	"context"

	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/namber"
	"github.com/agbru/tabulate/internal/orchestration"
	"github.com/agbru/tabulate/internal/record"
)

// MsgMixedProcessors marks summaries over geo types whose vintages combine
// operands differently.
const MsgMixedProcessors = "Mixed processors across geography types"

// TabularResult maps a geo type id to one computed record per requested
// geography, in request order.
type TabularResult map[string][]record.GeoRecord

// SummaryResult holds the estimates of a whole region.
type SummaryResult = record.ClusteredVariableMap

// Tabulate computes every variable for every geography. Values are scaled
// and rounded with each vintage's display properties.
func (s *Service) Tabulate(ctx context.Context, p orchestration.TabularParams) (TabularResult, error) {
	var out TabularResult
	err := s.observe(ctx, ModeTabulate, func(ctx context.Context) error {
		var err error
		out, err = s.tabulate(ctx, p)
		return err
	})
	return out, err
}

func (s *Service) tabulate(ctx context.Context, p orchestration.TabularParams) (TabularResult, error) {
	records, err := s.querier.Query(ctx, p)
	if err != nil {
		return nil, err
	}

	out := make(TabularResult, len(p.Geographies))
	for _, geoTypeID := range sortedGeoTypes(p.Geographies) {
		vintages := make([]metadata.Vintage, len(p.Variables))
		for i, dv := range p.Variables {
			v, err := s.repo.VintageForVariable(dv.ID, geoTypeID, p.Vintage)
			if err != nil {
				return nil, err
			}
			vintages[i] = v
		}

		recs := records[geoTypeID]
		geoRecords := make([]record.GeoRecord, 0, len(recs))
		for _, rec := range recs {
			gr := record.NewGeoRecord(geoTypeID, rec)
			single := []record.APIRecord{rec}
			for i, v := range vintages {
				if err := ComputeInto(gr.Data, p.Variables[i].ID, v, single, p.IndustryIDs, v.DisplayProperties); err != nil {
					return nil, err
				}
			}
			geoRecords = append(geoRecords, gr)
		}
		out[geoTypeID] = geoRecords
	}
	return out, nil
}

// Summarize pools the records of every geography of every geo type into
// one estimate per variable and industry. Each geo type contributes values
// through its own vintage; a margin of error is reported only when it
// applies to every geo type. Values are scaled and rounded with the data
// variable's display properties.
func (s *Service) Summarize(ctx context.Context, p orchestration.TabularParams) (SummaryResult, error) {
	var out SummaryResult
	err := s.observe(ctx, ModeSummary, func(ctx context.Context) error {
		var err error
		out, err = s.summarize(ctx, p)
		return err
	})
	return out, err
}

func (s *Service) summarize(ctx context.Context, p orchestration.TabularParams) (SummaryResult, error) {
	records, err := s.querier.Query(ctx, p)
	if err != nil {
		return nil, err
	}

	geoTypeIDs := sortedGeoTypes(p.Geographies)
	out := make(SummaryResult, len(p.Variables))
	for _, dv := range p.Variables {
		if len(geoTypeIDs) == 0 {
			continue
		}
		vintages := make([]metadata.Vintage, len(geoTypeIDs))
		mixed := false
		withMOE := true
		for i, id := range geoTypeIDs {
			v, err := s.repo.VintageForVariable(dv.ID, id, p.Vintage)
			if err != nil {
				return nil, err
			}
			vintages[i] = v
			withMOE = withMOE && MOEApplicable(v)
			mixed = mixed || v.Processor != vintages[0].Processor
		}
		first := vintages[0]

		if mixed {
			storeUnavailable(out, dv.ID, first, p.IndustryIDs, withMOE, namber.NA(MsgMixedProcessors))
			continue
		}

		f := Formula{Processor: first.Processor, TermProcessor: first.Operand1.Processor, WithMOE: withMOE}
		collect := func(ids []string) Values {
			var vals Values
			for i, id := range geoTypeIDs {
				vals = vals.Append(Collect(records[id], vintages[i], ids, withMOE))
			}
			return vals
		}
		if err := computeAll(out, dv.ID, first.IndustryLikeID, collect, f, p.IndustryIDs, dv.DisplayProperties); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func storeUnavailable(out record.ClusteredVariableMap, variableID string, v metadata.Vintage, industryIDs []string, withMOE bool, na namber.Namber) {
	var moe *namber.Namber
	if withMOE {
		moe = &na
	}
	for _, id := range record.IndustriesOrDefault(industryIDs) {
		out.SetComputed(v.IndustryLikeID(id), variableID, na, moe)
	}
	out.SetComputed(record.ClusterIndustryID, variableID, na, moe)
}
