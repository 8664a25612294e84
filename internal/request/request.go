// Package request reads tabulation request documents and turns them into
// the parameters of the tabulation modes.
package request

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/orchestration"
	"github.com/agbru/tabulate/internal/partition"
	"github.com/agbru/tabulate/internal/record"
	"github.com/agbru/tabulate/internal/tabulate"
)

// Modes understood by Execute.
const (
	ModeTabulate   = tabulate.ModeTabulate
	ModeSummary    = tabulate.ModeSummary
	ModeCompare    = tabulate.ModeCompare
	ModeRank       = tabulate.ModeRank
	ModeTimeSeries = tabulate.ModeTimeSeries
)

// Document is the on-disk and on-the-wire form of a request. Geographies
// and Parents are keyed by geo type id.
type Document struct {
	Variables   []string                         `yaml:"variables" json:"variables"`
	Industries  []string                         `yaml:"industries,omitempty" json:"industries,omitempty"`
	Vintage     string                           `yaml:"vintage,omitempty" json:"vintage,omitempty"`
	Geographies map[string][]record.DetailedGeo `yaml:"geographies" json:"geographies"`
	Parents     map[string][]record.DetailedGeo `yaml:"parents,omitempty" json:"parents,omitempty"`
	Selected    *record.DetailedGeo              `yaml:"selected,omitempty" json:"selected,omitempty"`
	ResultCount int                              `yaml:"resultCount,omitempty" json:"resultCount,omitempty"`
	ResultOrder string                           `yaml:"resultOrder,omitempty" json:"resultOrder,omitempty"`
}

// Load reads a document from path. YAML is a superset of JSON, so both
// formats are accepted.
func Load(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, apperrors.NewConfigError("cannot open request %s: %v", path, err)
	}
	defer f.Close()
	doc, err := Decode(f)
	if err != nil {
		return Document{}, apperrors.WrapError(err, "request %s", path)
	}
	return doc, nil
}

// Decode parses a YAML or JSON document.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, apperrors.ValidationError{Field: "request", Message: "document is empty"}
		}
		return Document{}, apperrors.ValidationError{Field: "request", Message: err.Error()}
	}
	return doc, nil
}

// Catalog is the part of the metadata repository a document is resolved
// against.
type Catalog interface {
	GeoType(id string) (metadata.GeoType, error)
	DataVariables(ids []string) ([]metadata.DataVariable, error)
}

// Resolved is a document whose ids have been looked up and whose
// geographies have been partitioned.
type Resolved struct {
	Variables   []metadata.DataVariable
	IndustryIDs []string
	Vintage     string
	Geographies record.PartitionsMap
	Parents     record.PartitionsMap
	Selected    record.DetailedGeo
	ResultCount int
	ResultOrder tabulate.Order
}

// Resolve validates doc for mode and resolves it against the catalog.
// geographyLimit bounds the size of each geography partition.
func Resolve(doc Document, mode string, cat Catalog, geographyLimit int) (Resolved, error) {
	if err := doc.validate(mode); err != nil {
		return Resolved{}, err
	}

	vars, err := cat.DataVariables(doc.Variables)
	if err != nil {
		return Resolved{}, err
	}
	geos, err := partitionAll(doc.Geographies, cat, geographyLimit)
	if err != nil {
		return Resolved{}, err
	}
	parents, err := partitionAll(doc.Parents, cat, geographyLimit)
	if err != nil {
		return Resolved{}, err
	}

	out := Resolved{
		Variables:   vars,
		IndustryIDs: doc.Industries,
		Vintage:     doc.Vintage,
		Geographies: geos,
		Parents:     parents,
		ResultCount: doc.ResultCount,
		ResultOrder: tabulate.Order(strings.ToUpper(doc.ResultOrder)),
	}
	if out.Vintage == "" {
		out.Vintage = metadata.CurrentVintage
	}
	if out.ResultOrder == "" {
		out.ResultOrder = tabulate.Descending
	}
	if doc.Selected != nil {
		out.Selected = *doc.Selected
		if out.Selected.GeoType == "" {
			out.Selected.GeoType = soleGeoType(doc.Geographies)
		}
		if out.Selected.GeoType == "" {
			return Resolved{}, apperrors.ValidationError{Field: "selected.geoType", Message: "required when several geo types are requested"}
		}
	}
	return out, nil
}

func (d Document) validate(mode string) error {
	switch mode {
	case ModeTabulate, ModeSummary, ModeCompare, ModeRank, ModeTimeSeries:
	default:
		return apperrors.ValidationError{Field: "mode", Message: "unknown mode " + mode}
	}
	if len(d.Variables) == 0 {
		return apperrors.ValidationError{Field: "variables", Message: "at least one variable is required"}
	}
	if len(d.Geographies) == 0 {
		return apperrors.ValidationError{Field: "geographies", Message: "at least one geography is required"}
	}
	single := mode == ModeCompare || mode == ModeRank || mode == ModeTimeSeries
	if single && len(d.Variables) != 1 {
		return apperrors.ValidationError{Field: "variables", Message: mode + " takes exactly one variable"}
	}
	if mode == ModeRank && (d.Selected == nil || d.Selected.ID == "") {
		return apperrors.ValidationError{Field: "selected", Message: "rank needs a selected geography"}
	}
	switch tabulate.Order(strings.ToUpper(d.ResultOrder)) {
	case "", tabulate.Ascending, tabulate.Descending:
	default:
		return apperrors.ValidationError{Field: "resultOrder", Message: "must be ascending or descending"}
	}
	return nil
}

func soleGeoType(m map[string][]record.DetailedGeo) string {
	if len(m) != 1 {
		return ""
	}
	for id := range m {
		return id
	}
	return ""
}

func partitionAll(m map[string][]record.DetailedGeo, cat Catalog, limit int) (record.PartitionsMap, error) {
	if len(m) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(record.PartitionsMap, len(m))
	for _, id := range ids {
		gt, err := cat.GeoType(id)
		if err != nil {
			return nil, err
		}
		geos := make([]record.DetailedGeo, len(m[id]))
		for i, g := range m[id] {
			g.GeoType = id
			geos[i] = g
		}
		out[id] = partition.Geographies(gt, geos, limit)
	}
	return out, nil
}

// Tabulator runs the tabulation modes.
type Tabulator interface {
	Tabulate(ctx context.Context, p orchestration.TabularParams) (tabulate.TabularResult, error)
	Summarize(ctx context.Context, p orchestration.TabularParams) (tabulate.SummaryResult, error)
	Compare(ctx context.Context, p tabulate.ComparisonParams) (tabulate.ComparisonResult, error)
	Rank(ctx context.Context, p tabulate.RankingParams) (tabulate.RankingResult, error)
	TimeSeries(ctx context.Context, p tabulate.TimeSeriesParams) (tabulate.TimeSeriesResult, error)
}

// Execute runs mode with the resolved request.
func Execute(ctx context.Context, t Tabulator, mode string, r Resolved) (any, error) {
	switch mode {
	case ModeTabulate:
		return t.Tabulate(ctx, r.tabular())
	case ModeSummary:
		return t.Summarize(ctx, r.tabular())
	case ModeCompare:
		return t.Compare(ctx, tabulate.ComparisonParams{
			Variable:    r.Variables[0],
			Geographies: r.Geographies,
			Parents:     r.Parents,
			IndustryIDs: r.IndustryIDs,
			Vintage:     r.Vintage,
		})
	case ModeRank:
		return t.Rank(ctx, tabulate.RankingParams{
			Variable:    r.Variables[0],
			Geographies: r.Geographies,
			IndustryIDs: r.IndustryIDs,
			Selected:    r.Selected,
			ResultCount: r.ResultCount,
			ResultOrder: r.ResultOrder,
			Vintage:     r.Vintage,
		})
	case ModeTimeSeries:
		return t.TimeSeries(ctx, tabulate.TimeSeriesParams{
			Variable:    r.Variables[0],
			Geographies: r.Geographies,
			IndustryIDs: r.IndustryIDs,
		})
	}
	return nil, apperrors.ValidationError{Field: "mode", Message: "unknown mode " + mode}
}

func (r Resolved) tabular() orchestration.TabularParams {
	return orchestration.TabularParams{
		Geographies: r.Geographies,
		IndustryIDs: r.IndustryIDs,
		Variables:   r.Variables,
		Vintage:     r.Vintage,
	}
}
