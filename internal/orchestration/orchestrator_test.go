package orchestration

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/tabulate/internal/fetch"
	"github.com/agbru/tabulate/internal/fetch/mocks"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/namber"
	"github.com/agbru/tabulate/internal/record"
)

const (
	popAlias = "POP_B01001_001E_1_1"
	empAlias = "EMP_EMP_1_1"
)

// fetchFunc adapts a function to fetch.Fetcher.
type fetchFunc func(ctx context.Context, req fetch.Request) ([]record.APIRecord, error)

func (f fetchFunc) Fetch(ctx context.Context, req fetch.Request) ([]record.APIRecord, error) {
	return f(ctx, req)
}

// echoFetcher returns one record per requested geography holding the value
// 1 for every stat of the partition.
func echoFetcher(skip map[string]bool) fetchFunc {
	return func(_ context.Context, req fetch.Request) ([]record.APIRecord, error) {
		var out []record.APIRecord
		for _, g := range req.Geographies {
			if skip[g.ID] {
				continue
			}
			rec := record.NewAPIRecord(req.GeoType.ID, g)
			for _, vp := range req.Partition.VariableParts {
				rec.Data.Set(record.NoIndustryID, vp.Stat.Alias, namber.New(1))
			}
			out = append(out, rec)
		}
		return out, nil
	}
}

func loadRepo(t *testing.T) *metadata.Repository {
	t.Helper()
	repo, err := metadata.LoadFile("../metadata/testdata/catalog.yaml")
	require.NoError(t, err)
	return repo
}

func variables(t *testing.T, repo *metadata.Repository, ids ...string) []metadata.DataVariable {
	t.Helper()
	vars, err := repo.DataVariables(ids)
	require.NoError(t, err)
	return vars
}

func geo(geoType, id string) record.DetailedGeo {
	return record.DetailedGeo{ID: id, Name: "Geo " + id, GeoType: geoType}
}

// stateMappingRepo marks every source as identifying states by postal code.
type stateMappingRepo struct {
	*metadata.Repository
}

func (r stateMappingRepo) VintageForVariable(variableID, geoTypeID, vintageID string) (metadata.Vintage, error) {
	v, err := r.Repository.VintageForVariable(variableID, geoTypeID, vintageID)
	if err != nil {
		return v, err
	}
	sources := make([]metadata.APIVariable, len(v.Operand1.Sources))
	copy(sources, v.Operand1.Sources)
	for i := range sources {
		sources[i].MapStateID = true
	}
	v.Operand1.Sources = sources
	return v, nil
}

func TestQueryMergesPartitionsPerGeography(t *testing.T) {
	t.Parallel()
	repo := loadRepo(t)

	var mu sync.Mutex
	calls := 0
	inner := echoFetcher(map[string]bool{"36047": true})
	fetcher := fetchFunc(func(ctx context.Context, req fetch.Request) ([]record.APIRecord, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return inner(ctx, req)
	})

	svc := NewService(repo, fetcher)
	out, err := svc.Query(context.Background(), TabularParams{
		Geographies: record.PartitionsMap{
			"county": {
				{geo("county", "36061"), geo("county", "36047")},
				{geo("county", "06037")},
			},
		},
		Variables: variables(t, repo, "POP", "EMP"),
		Vintage:   metadata.CurrentVintage,
	})
	require.NoError(t, err)

	// Two geography partitions times two endpoints.
	assert.Equal(t, 4, calls)

	recs := out["county"]
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"36061", "36047", "06037"}, []string{recs[0].ID, recs[1].ID, recs[2].ID})

	assert.Equal(t, 1.0, recs[0].Data.Get(popAlias, record.NoIndustryID).Float())
	assert.Equal(t, 1.0, recs[0].Data.Get(empAlias, record.NoIndustryID).Float())
	assert.Equal(t, "county", recs[1].GeoType)
	assert.Empty(t, recs[1].Data)
	assert.Len(t, recs[2].Data, 2)
}

func TestQueryFetchesStateMappedPartitionsPerGeography(t *testing.T) {
	t.Parallel()
	repo := stateMappingRepo{loadRepo(t)}

	var mu sync.Mutex
	var sizes []int
	inner := echoFetcher(nil)
	fetcher := fetchFunc(func(ctx context.Context, req fetch.Request) ([]record.APIRecord, error) {
		mu.Lock()
		sizes = append(sizes, len(req.Geographies))
		mu.Unlock()
		return inner(ctx, req)
	})

	out, err := NewService(repo, fetcher).Query(context.Background(), TabularParams{
		Geographies: record.PartitionsMap{
			"state": {{geo("state", "06"), geo("state", "36"), geo("state", "48")}},
		},
		Variables: variables(t, repo.Repository, "POP"),
		Vintage:   metadata.CurrentVintage,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, sizes)
	require.Len(t, out["state"], 3)
	assert.Equal(t, "48", out["state"][2].ID)
}

func TestQueryGroupsEachGeoType(t *testing.T) {
	t.Parallel()
	repo := loadRepo(t)
	ctrl := gomock.NewController(t)
	m := mocks.NewMockFetcher(ctrl)
	m.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(echoFetcher(nil)).Times(2)

	out, err := NewService(repo, m).Query(context.Background(), TabularParams{
		Geographies: record.PartitionsMap{
			"county": {{geo("county", "36061")}},
			"state":  {{geo("state", "36")}},
		},
		Variables: variables(t, repo, "POP"),
		Vintage:   metadata.CurrentVintage,
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "36", out["state"][0].ID)
	assert.Equal(t, "state", out["state"][0].GeoType)
	assert.Equal(t, "36061", out["county"][0].ID)
}

func TestQueryUnavailableVintageFetchesNothing(t *testing.T) {
	t.Parallel()
	repo := loadRepo(t)
	ctrl := gomock.NewController(t)
	m := mocks.NewMockFetcher(ctrl)

	// EMP has no state vintage, so the geo type contributes no partitions.
	out, err := NewService(repo, m).Query(context.Background(), TabularParams{
		Geographies: record.PartitionsMap{"state": {{geo("state", "36")}}},
		Variables:   variables(t, repo, "EMP"),
		Vintage:     metadata.CurrentVintage,
	})
	require.NoError(t, err)
	require.Len(t, out["state"], 1)
	assert.Empty(t, out["state"][0].Data)
}

func TestQueryPropagatesFetchErrors(t *testing.T) {
	t.Parallel()
	repo := loadRepo(t)
	boom := errors.New("upstream down")
	fetcher := fetchFunc(func(context.Context, fetch.Request) ([]record.APIRecord, error) {
		return nil, boom
	})

	_, err := NewService(repo, fetcher, WithConcurrency(1)).Query(context.Background(), TabularParams{
		Geographies: record.PartitionsMap{"county": {{geo("county", "36061")}}},
		Variables:   variables(t, repo, "POP", "EMP"),
		Vintage:     metadata.CurrentVintage,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestQueryUnknownGeoType(t *testing.T) {
	t.Parallel()
	repo := loadRepo(t)
	_, err := NewService(repo, echoFetcher(nil)).Query(context.Background(), TabularParams{
		Geographies: record.PartitionsMap{"tract": {{geo("tract", "1")}}},
		Variables:   variables(t, repo, "POP"),
		Vintage:     metadata.CurrentVintage,
	})
	require.Error(t, err)
}

func TestQueryReportsProgress(t *testing.T) {
	t.Parallel()
	repo := loadRepo(t)

	var updates []FetchProgress
	reporter := ProgressReporterFunc(func(wg *sync.WaitGroup, ch <-chan FetchProgress, _ io.Writer) {
		defer wg.Done()
		for u := range ch {
			updates = append(updates, u)
		}
	})

	_, err := NewService(repo, echoFetcher(nil), WithProgress(reporter, io.Discard)).Query(context.Background(), TabularParams{
		Geographies: record.PartitionsMap{"county": {{geo("county", "36061")}, {geo("county", "36047")}}},
		Variables:   variables(t, repo, "POP", "EMP"),
		Vintage:     metadata.CurrentVintage,
	})
	require.NoError(t, err)

	// Query waits for the reporter before returning.
	require.Len(t, updates, 4)
	done := make([]int, 0, len(updates))
	for _, u := range updates {
		assert.Equal(t, 4, u.Total)
		done = append(done, u.Done)
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, done)
}
