package cli

import (
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/agbru/tabulate/internal/format"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/namber"
	"github.com/agbru/tabulate/internal/record"
	"github.com/agbru/tabulate/internal/tabulate"
	"github.com/agbru/tabulate/internal/ui"
)

// Industry column labels.
const (
	LabelNoIndustry = "-"
	LabelCluster    = "All industries"
)

var estimateHeaders = []string{"Variable", "Industry", "Estimate", "MOE"}

// newTable returns a table styled with the current table theme. Columns
// from numericFrom on are right-aligned.
func newTable(headers []string, numericFrom int) *table.Table {
	th := ui.GetCurrentTableTheme()
	header := lipgloss.NewStyle().Bold(true).Foreground(th.Header).Padding(0, 1)
	cell := lipgloss.NewStyle().Foreground(th.Text).Padding(0, 1)
	number := cell.Align(lipgloss.Right)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col >= numericFrom:
				return number
			default:
				return cell
			}
		})
}

// estimateRows flattens the estimates of data into rows of variable,
// industry, estimate and margin of error. Variables follow vars; each
// variable lists its industries in key order, then the cluster.
func estimateRows(data record.ClusteredVariableMap, vars []metadata.DataVariable) [][]string {
	var rows [][]string
	for _, v := range vars {
		res, ok := data[v.ID]
		if !ok {
			continue
		}
		ids := make([]string, 0, len(res.Industries))
		for id := range res.Industries {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			rec := res.Industries[id]
			rows = append(rows, estimateRow(v, industryLabel(id), rec))
		}
		if res.Cluster != nil && len(ids) > 1 {
			rows = append(rows, estimateRow(v, LabelCluster, *res.Cluster))
		}
	}
	return rows
}

func estimateRow(v metadata.DataVariable, industry string, rec record.DataRecord) []string {
	return []string{v.Name, industry, format.Value(rec.Stat, v.DisplayProperties), moeText(rec.MOE, v.DisplayProperties)}
}

func moeText(moe *namber.Namber, props metadata.DisplayProperties) string {
	if moe == nil {
		return ""
	}
	if _, ok := moe.Value(); !ok {
		return format.Value(*moe, props)
	}
	return "±" + format.Value(*moe, props)
}

func industryLabel(id string) string {
	switch id {
	case record.NoIndustryID:
		return LabelNoIndustry
	case record.ClusterIndustryID:
		return LabelCluster
	default:
		return id
	}
}

// RenderTabular renders one row per geography, variable and industry.
func RenderTabular(res tabulate.TabularResult, vars []metadata.DataVariable) string {
	t := newTable(append([]string{"Geography", "Type"}, estimateHeaders...), 4)
	geoTypes := make([]string, 0, len(res))
	for id := range res {
		geoTypes = append(geoTypes, id)
	}
	sort.Strings(geoTypes)
	for _, gt := range geoTypes {
		for _, gr := range res[gt] {
			for _, row := range estimateRows(gr.Data, vars) {
				t.Row(append([]string{gr.Name, gt}, row...)...)
			}
		}
	}
	return t.String()
}

// RenderSummary renders the estimates of a whole region.
func RenderSummary(res tabulate.SummaryResult, vars []metadata.DataVariable) string {
	t := newTable(estimateHeaders, 2)
	t.Rows(estimateRows(res, vars)...)
	return t.String()
}

// RenderComparison renders the region summary followed by its parents.
func RenderComparison(res tabulate.ComparisonResult, v metadata.DataVariable) string {
	vars := []metadata.DataVariable{v}
	t := newTable(append([]string{"Geography", "Type"}, estimateHeaders...), 4)
	for _, row := range estimateRows(res.Base, vars) {
		t.Row(append([]string{"Selected region", ""}, row...)...)
	}
	parentTypes := make([]string, 0, len(res.Parents))
	for id := range res.Parents {
		parentTypes = append(parentTypes, id)
	}
	sort.Strings(parentTypes)
	for _, gt := range parentTypes {
		for _, gr := range res.Parents[gt] {
			for _, row := range estimateRows(gr.Data, vars) {
				t.Row(append([]string{gr.Name, gt}, row...)...)
			}
		}
	}
	return t.String()
}

// RenderRanking renders the selected geography and its ranked peers by
// their cluster estimate.
func RenderRanking(res tabulate.RankingResult, v metadata.DataVariable) string {
	t := newTable([]string{"Rank", "Geography", "Estimate", "MOE"}, 2)
	for _, gr := range res.Selected {
		t.Row(append([]string{"*", gr.Name}, clusterCells(gr, v)...)...)
	}
	for i, gr := range res.Peers {
		t.Row(append([]string{strconv.Itoa(i + 1), gr.Name}, clusterCells(gr, v)...)...)
	}
	return t.String()
}

func clusterCells(gr record.GeoRecord, v metadata.DataVariable) []string {
	rec, ok := gr.Data.Cluster(v.ID)
	if !ok {
		return []string{namber.NAString, ""}
	}
	return []string{format.Value(rec.Stat, v.DisplayProperties), moeText(rec.MOE, v.DisplayProperties)}
}

// RenderTimeSeries renders one block of rows per vintage.
func RenderTimeSeries(res tabulate.TimeSeriesResult, v metadata.DataVariable) string {
	t := newTable(append([]string{"Years"}, estimateHeaders...), 3)
	for _, r := range res {
		for _, row := range estimateRows(r.Data, []metadata.DataVariable{v}) {
			t.Row(append([]string{r.Name}, row...)...)
		}
	}
	return t.String()
}
