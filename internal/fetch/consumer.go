package fetch

import (
	"context"
	"strings"

	"github.com/agbru/tabulate/internal/client"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/metrics"
	"github.com/agbru/tabulate/internal/namber"
	"github.com/agbru/tabulate/internal/record"
)

// ConsumerURLPlaceholder is replaced by the consumer data base URL in
// program endpoints.
const ConsumerURLPlaceholder = "${consumerDataAPIUrl}"

// Consumer fetches partitions from the consumer-data feature service.
type Consumer struct {
	querier     FeatureQuerier
	baseURL     string
	inClauseMax int
}

// NewConsumer creates a Consumer fetcher for the service at baseURL.
func NewConsumer(querier FeatureQuerier, baseURL string) *Consumer {
	return &Consumer{querier: querier, baseURL: strings.TrimRight(baseURL, "/"), inClauseMax: client.DefaultInClauseSize}
}

// Fetch implements Fetcher.
func (c *Consumer) Fetch(ctx context.Context, req Request) ([]record.APIRecord, error) {
	ctx, span := metrics.StartSpan(ctx, "fetch.Consumer.Fetch")
	var err error
	defer func() { metrics.EndSpan(span, err) }()

	gt := req.GeoType
	p := req.Partition

	ids := make([]string, 0, len(req.Geographies))
	for _, geo := range req.Geographies {
		ids = append(ids, geo.Attr(gt.GeoIDField))
	}
	where := client.InClause(gt.ConsumerDataIDField, ids, c.inClauseMax)
	if p.ParamInd != "" {
		where += " AND " + client.InClause(p.ParamInd, req.IndustryIDs, c.inClauseMax)
	}

	// Flags and margins of error come back only when asked for.
	names := make([]string, 0, len(p.VariableParts))
	for _, vp := range p.VariableParts {
		names = append(names, vp.Stat.Name)
		if vp.Flag != nil {
			names = append(names, vp.Flag.Name)
		}
		if vp.MOE != nil {
			names = append(names, vp.MOE.Name)
		}
	}
	outFields := []string{gt.ConsumerDataIDField, strings.Join(names, ",")}
	if p.ParamInd != "" {
		outFields = append(outFields, p.ParamInd)
	}

	layerURL := strings.ReplaceAll(p.APIURL, ConsumerURLPlaceholder, c.baseURL)
	var features []client.Feature
	features, err = c.querier.Query(ctx, layerURL, client.FeatureQuery{
		Where:     where,
		OutFields: outFields,
		OrderBy:   []string{gt.ConsumerDataIDField},
	})
	if err != nil {
		return nil, err
	}

	out := make([]record.APIRecord, 0, len(req.Geographies))
	for _, geo := range req.Geographies {
		rec := record.NewAPIRecord(gt.ID, geo)
		for _, industryID := range industries(p, req.IndustryIDs) {
			feature, ok := findFeature(features, gt.ConsumerDataIDField, p.ParamInd, geo.ID, industryID)
			if !ok {
				storeUnavailable(rec, industryID, p.VariableParts)
				continue
			}
			for _, vp := range p.VariableParts {
				stat, moe := consumerValues(feature, vp)
				store(rec, industryID, vp, stat, moe)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// findFeature returns the first feature of a geography. When the partition
// has an industry field, the feature's industry must equal industryID.
func findFeature(features []client.Feature, idField, industryField, geoID, industryID string) (client.Feature, bool) {
	for _, f := range features {
		if id, ok := f.Attr(idField); !ok || id != geoID {
			continue
		}
		if industryField != "" {
			if ind, ok := f.Attr(industryField); !ok || ind != industryID {
				continue
			}
		}
		return f, true
	}
	return client.Feature{}, false
}

// consumerValues reads the stat and margin of error of one source. Features
// are keyed by column name; a non-null flag suppresses the value.
func consumerValues(f client.Feature, vp metadata.VarParts) (namber.Namber, namber.Namber) {
	if vp.Flag != nil {
		if flag, ok := f.Attr(vp.Flag.Name); ok {
			return suppressed(flag), namber.NA("")
		}
	}
	moe := namber.NA("")
	if vp.MOE != nil {
		if v, ok := f.Attr(vp.MOE.Name); ok && namber.IsNumberLike(v) {
			moe = namber.Parse(v)
		}
	}
	stat, ok := f.Attr(vp.Stat.Name)
	if !ok || !namber.IsNumberLike(stat) {
		return namber.NA(""), namber.NA("")
	}
	return namber.Parse(stat), moe
}
