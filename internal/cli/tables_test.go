package cli

import (
	"strings"
	"testing"

	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/namber"
	"github.com/agbru/tabulate/internal/record"
	"github.com/agbru/tabulate/internal/tabulate"
	"github.com/agbru/tabulate/internal/ui"
)

var employees = metadata.DataVariable{ID: "EMP", Name: "Employees",
	DisplayProperties: metadata.DisplayProperties{ScaleFactor: 1, FormatNumber: true}}

func geoRecord(id, name string, stat namber.Namber) record.GeoRecord {
	gr := record.GeoRecord{ID: id, Name: name, GeoType: "county", Data: make(record.ClusteredVariableMap)}
	gr.Data.SetComputed("23", "EMP", stat, nil)
	gr.Data.SetComputed("31-33", "EMP", namber.NA("Suppressed (D)"), nil)
	gr.Data.SetComputed(record.ClusterIndustryID, "EMP", stat, nil)
	return gr
}

func TestRenderTabular(t *testing.T) {
	ui.InitTheme(true)
	res := tabulate.TabularResult{"county": {geoRecord("36061", "New York County", namber.New(1500))}}

	got := RenderTabular(res, []metadata.DataVariable{employees})
	for _, want := range []string{"Geography", "New York County", "31-33", "Suppressed (D)", LabelCluster, "1,500"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "23") > strings.Index(got, LabelCluster) {
		t.Error("industries should be listed before the cluster")
	}
}

func TestRenderRanking(t *testing.T) {
	ui.InitTheme(true)
	res := tabulate.RankingResult{
		Selected: []record.GeoRecord{geoRecord("s", "Selected County", namber.New(10))},
		Peers:    []record.GeoRecord{geoRecord("a", "First Peer", namber.New(30)), geoRecord("b", "Second Peer", namber.New(20))},
	}

	got := RenderRanking(res, employees)
	lines := strings.Split(got, "\n")
	find := func(s string) int {
		for i, l := range lines {
			if strings.Contains(l, s) {
				return i
			}
		}
		return -1
	}
	if find("Selected County") > find("First Peer") || find("First Peer") > find("Second Peer") {
		t.Errorf("unexpected row order:\n%s", got)
	}
	if !strings.Contains(lines[find("Second Peer")], "2") {
		t.Errorf("second peer should be ranked 2:\n%s", got)
	}
}

func TestRenderTimeSeries(t *testing.T) {
	ui.InitTheme(true)
	data := func(v float64) tabulate.SummaryResult {
		out := make(tabulate.SummaryResult)
		out.SetComputed("23", "EMP", namber.New(v), nil)
		return out
	}
	res := tabulate.TimeSeriesResult{
		{Vintage: "previous", Name: "2014", Data: data(900)},
		{Vintage: "current", Name: "2019", Data: data(1200)},
	}
	got := RenderTimeSeries(res, employees)
	if strings.Index(got, "2014") > strings.Index(got, "2019") {
		t.Errorf("vintages out of order:\n%s", got)
	}
	if !strings.Contains(got, "1,200") {
		t.Errorf("missing estimate:\n%s", got)
	}
}

func TestIndustryLabel(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		record.NoIndustryID:      LabelNoIndustry,
		record.ClusterIndustryID: LabelCluster,
		"44-45":                  "44-45",
	}
	for in, want := range tests {
		if got := industryLabel(in); got != want {
			t.Errorf("industryLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMOEText(t *testing.T) {
	t.Parallel()
	props := metadata.DisplayProperties{Round: 1}
	moe := namber.New(2.25)
	na := namber.NA("*****")
	if got := moeText(&moe, props); got != "±2.3" {
		t.Errorf("moeText(2.25) = %q, want ±2.3", got)
	}
	if got := moeText(&na, props); got != "*****" {
		t.Errorf("moeText(NA) = %q, want *****", got)
	}
	if got := moeText(nil, props); got != "" {
		t.Errorf("moeText(nil) = %q, want empty", got)
	}
}
