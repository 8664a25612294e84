package orchestration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/tabulate/internal/namber"
	"github.com/agbru/tabulate/internal/record"
)

func apiRecord(id string, values map[string]map[string]float64) record.APIRecord {
	rec := record.NewAPIRecord("county", geo("county", id))
	for alias, byIndustry := range values {
		for industry, v := range byIndustry {
			rec.Data.Set(industry, alias, namber.New(v))
		}
	}
	return rec
}

func TestMergeRecords(t *testing.T) {
	t.Parallel()

	first := apiRecord("36061", map[string]map[string]float64{
		"A": {record.NoIndustryID: 1, "sector23": 2},
	})
	second := apiRecord("36061", map[string]map[string]float64{
		"A": {record.NoIndustryID: 99, "sector31-33": 3},
		"B": {record.NoIndustryID: 4},
	})

	merged := MergeRecords([]record.APIRecord{first, second})

	assert.Equal(t, "36061", merged.ID)
	assert.Equal(t, 1.0, merged.Data.Get("A", record.NoIndustryID).Float(), "first record wins on leaves")
	assert.Equal(t, 2.0, merged.Data.Get("A", "sector23").Float())
	assert.Equal(t, 3.0, merged.Data.Get("A", "sector31-33").Float())
	assert.Equal(t, 4.0, merged.Data.Get("B", record.NoIndustryID).Float())

	// Inputs are untouched.
	assert.Len(t, first.Data, 1)
	assert.Len(t, first.Data["A"], 2)
	assert.Len(t, second.Data["A"], 2)
}

func TestMergeRecordsEmpty(t *testing.T) {
	t.Parallel()
	merged := MergeRecords(nil)
	require.NotNil(t, merged.Data)
	assert.Empty(t, merged.Data)
}

func TestGroupByGeography(t *testing.T) {
	t.Parallel()
	geos := []record.DetailedGeo{geo("county", "b"), geo("county", "a"), geo("county", "c")}
	fetched := []record.APIRecord{
		apiRecord("a", map[string]map[string]float64{"X": {record.NoIndustryID: 1}}),
		apiRecord("b", map[string]map[string]float64{"X": {record.NoIndustryID: 2}}),
		apiRecord("a", map[string]map[string]float64{"Y": {record.NoIndustryID: 3}}),
		apiRecord("z", map[string]map[string]float64{"X": {record.NoIndustryID: 4}}),
	}

	out := groupByGeography("county", geos, fetched)
	require.Len(t, out, 3)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
	assert.Len(t, out[1].Data, 2)
	assert.Equal(t, "c", out[2].ID)
	assert.Equal(t, "Geo c", out[2].Name)
	assert.Empty(t, out[2].Data)
}
