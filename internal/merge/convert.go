package merge

import (
	"slices"
	"strconv"
	"strings"

	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/partition"
	"github.com/agbru/tabulate/internal/record"
)

// Columns the data API uses for group breakdowns and the place query.
const (
	RaceGroupColumn         = "RACE_GROUP"
	SexColumn               = "SEX"
	VetGroupColumn          = "VET_GROUP"
	StateColumn             = "state"
	CountySubdivisionColumn = "county subdivision"
	PlaceColumn             = "place"
)

// ConvertParams describes one merged response to convert.
type ConvertParams struct {
	Partition *partition.Partition
	Merged    record.Table
	// IncludeGeoIDs lists the state + county subdivision ids kept when
	// IncludePlaces is set.
	IncludeGeoIDs []string
	IncludePlaces bool
}

// ToRows converts a merged response into rows keyed by source alias.
//
// For partitions split by race, sex or veteran group, each row belongs to
// the source whose group matches the row; rows matching no group are
// dropped. Otherwise every column is stored under the alias of each source
// reading it, or under its own name for id columns.
func ToRows(p ConvertParams) []record.Row {
	if p.Partition.HasGroups() {
		return groupRows(p.Partition, p.Merged)
	}
	rows := aliasRows(p.Partition.VariableParts, p.Merged)
	if !p.IncludePlaces {
		return rows
	}

	out := make([]record.Row, 0, len(rows))
	for _, row := range rows {
		state, _ := row.Value(StateColumn)
		mcd, _ := row.Value(CountySubdivisionColumn)
		if slices.Contains(p.IncludeGeoIDs, state+mcd) {
			row[PlaceColumn] = row[CountySubdivisionColumn]
			out = append(out, row)
		}
	}
	return out
}

// aliases returns every alias reading column, or the column name itself
// when no source reads it.
func aliases(parts []metadata.VarParts, column string) []string {
	var out []string
	for _, vp := range parts {
		if vp.Stat.Name == column {
			out = append(out, vp.Stat.Alias)
		}
		if vp.MOE != nil && vp.MOE.Name == column {
			out = append(out, vp.MOE.Alias)
		}
		if vp.Flag != nil && vp.Flag.Name == column {
			out = append(out, vp.Flag.Alias)
		}
	}
	if len(out) == 0 {
		out = append(out, column)
	}
	return out
}

func aliasRows(parts []metadata.VarParts, t record.Table) []record.Row {
	columnAliases := make([][]string, len(t.Header))
	for i, c := range t.Header {
		columnAliases[i] = aliases(parts, c)
	}

	out := make([]record.Row, 0, len(t.Rows))
	for _, values := range t.Rows {
		row := make(record.Row, len(t.Header))
		for i := range t.Header {
			for _, alias := range columnAliases[i] {
				row[alias] = cell(values, i)
			}
		}
		out = append(out, row)
	}
	return out
}

func groupRows(p *partition.Partition, t record.Table) []record.Row {
	out := make([]record.Row, 0, len(t.Rows))
	for _, values := range t.Rows {
		idx := groupIndex(p, t, values)
		if idx < 0 || idx >= len(p.VariableParts) {
			continue
		}
		vp := p.VariableParts[idx]

		row := make(record.Row, len(t.Header))
		for i, c := range t.Header {
			switch {
			case c == vp.Stat.Name:
				row[vp.Stat.Alias] = cell(values, i)
			case vp.Flag != nil && c == vp.Flag.Name:
				row[vp.Flag.Alias] = cell(values, i)
			default:
				row[c] = cell(values, i)
			}
		}
		out = append(out, row)
	}
	return out
}

// groupIndex returns the position of the source whose group matches the
// row, or -1. Race groups compare as integers; a sex or veteran group
// matches when the row value occurs after its first character, as in
// "SEX=1".
func groupIndex(p *partition.Partition, t record.Table, values []*string) int {
	index := -1
	switch {
	case p.RaceGroups != nil:
		v, ok := columnValue(t, values, RaceGroupColumn)
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if !ok || err != nil {
			return -1
		}
		for i, g := range p.RaceGroups {
			if g == n {
				index = i
			}
		}
	case p.SexGroups != nil:
		index = stringGroupIndex(t, values, SexColumn, p.SexGroups)
	case p.VetGroups != nil:
		index = stringGroupIndex(t, values, VetGroupColumn, p.VetGroups)
	}
	return index
}

func stringGroupIndex(t record.Table, values []*string, column string, groups []string) int {
	v, ok := columnValue(t, values, column)
	if !ok {
		return -1
	}
	index := -1
	for i, g := range groups {
		if strings.Index(g, v) > 0 {
			index = i
		}
	}
	return index
}

func columnValue(t record.Table, values []*string, column string) (string, bool) {
	i := t.Index(column)
	if i < 0 {
		return "", false
	}
	v := cell(values, i)
	if v == nil {
		return "", false
	}
	return *v, true
}
