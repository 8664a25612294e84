package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/partition"
)

func TestNationGeoID(t *testing.T) {
	t.Parallel()
	nation := metadata.GeoType{ID: "nation"}
	tests := []struct {
		name string
		gt   metadata.GeoType
		url  string
		want string
	}{
		{"acs keeps tiger id", nation, "https://api.census.gov/data/2019/acs/acs5", "1"},
		{"other programs use 00", nation, "https://api.census.gov/data/2019/pep/population", "00"},
		{"international trade has no id", nation, "https://api.census.gov/data/timeseries/intltrade/exports", ""},
		{"nonemployer uses 1", nation, "https://api.census.gov/data/2018/nonemp", "1"},
		{"economic census uses 1", nation, "https://api.census.gov/data/2017/ecnbasic", "1"},
		{"other geo types keep tiger id", metadata.GeoType{ID: "county"}, "https://api.census.gov/data/2018/nonemp", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, nationGeoID(tt.gt, tt.url, "1"))
		})
	}
}

func TestSelectColumnsOrder(t *testing.T) {
	t.Parallel()
	parts := []metadata.VarParts{
		{Stat: metadata.VarInfo{Name: "A"}, MOE: &metadata.VarInfo{Name: "AM"}, Flag: &metadata.VarInfo{Name: "A_F"}},
		{Stat: metadata.VarInfo{Name: "B"}, Flag: &metadata.VarInfo{Name: ""}},
		{Stat: metadata.VarInfo{Name: "A"}},
	}
	assert.Equal(t, []string{"A", "B", "A", "A_F", "AM"}, selectColumns(parts))
	assert.Equal(t, [][]string{{"A", "B"}, {"C"}}, chunkColumns([]string{"A", "B", "C"}, 2))
}

func TestFilterParams(t *testing.T) {
	t.Parallel()
	p := &partition.Partition{
		ParamInd:   "NAICS2017",
		RaceGroups: []int{1, 2},
		SexGroups:  []string{"SEX=1"},
		VetGroups:  []string{"VET_GROUP=2", "VET_GROUP=3"},
	}
	assert.Equal(t, "&NAICS2017=23&RACE_GROUP=1&RACE_GROUP=2&SEX=1&VET_GROUP=2&VET_GROUP=3", filterParams(p, []string{"23"}))
	assert.Empty(t, filterParams(&partition.Partition{}, []string{"23"}))
}

func TestDelayMessage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Experiencing delay while fetching data for Counties", delayMessage(metadata.GeoType{DataAPIIDField: "County"}, []string{"1", "2"}))
	assert.Equal(t, "Experiencing delay while fetching data for states", delayMessage(metadata.GeoType{DataAPIIDField: "state"}, []string{"1", "2"}))
	assert.Equal(t, "Experiencing delay while fetching data for state", delayMessage(metadata.GeoType{DataAPIIDField: "state"}, []string{"1"}))
}
