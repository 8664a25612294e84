package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/tabulate/internal/errors"
)

func TestFeatureQueryPages(t *testing.T) {
	t.Parallel()
	var (
		mu      sync.Mutex
		offsets []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/layer/0/query", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "(ID IN ('1','2'))", q.Get("where"))
		assert.Equal(t, "ID,X1001_A", q.Get("outFields"))
		assert.Equal(t, "ID", q.Get("orderByFields"))
		assert.Equal(t, "2", q.Get("resultRecordCount"))
		assert.Equal(t, "json", q.Get("f"))

		mu.Lock()
		offsets = append(offsets, q.Get("resultOffset"))
		mu.Unlock()

		if q.Get("resultOffset") == "0" {
			_, _ = io.WriteString(w, `{"features":[{"attributes":{"ID":"1","X1001_A":10.5}},{"attributes":{"ID":"2","X1001_A":null}}],"exceededTransferLimit":true}`)
			return
		}
		_, _ = io.WriteString(w, `{"features":[{"attributes":{"ID":"3","X1001_A":7}}]}`)
	}))
	defer srv.Close()

	c := NewFeatureQueryClient(2)
	features, err := c.Query(context.Background(), srv.URL+"/layer/0", FeatureQuery{
		Where:     InClause("ID", []string{"1", "2"}, 0),
		OutFields: []string{"ID", "X1001_A", ""},
		OrderBy:   []string{"ID"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2"}, offsets)
	require.Len(t, features, 3)

	v, ok := features[0].Attr("X1001_A")
	assert.True(t, ok)
	assert.Equal(t, "10.5", v)
	_, ok = features[1].Attr("X1001_A")
	assert.False(t, ok, "null attributes are absent")
	v, _ = features[2].Attr("X1001_A")
	assert.Equal(t, "7", v)
}

func TestFeatureQueryErrors(t *testing.T) {
	t.Parallel()

	t.Run("error payload", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"error":{"code":400,"message":"Invalid query"}}`)
		}))
		defer srv.Close()

		_, err := NewFeatureQueryClient(0).Query(context.Background(), srv.URL, FeatureQuery{})
		var te apperrors.TransportError
		require.True(t, errors.As(err, &te), "error = %v", err)
		assert.Contains(t, err.Error(), "Invalid query")
	})

	t.Run("status", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewFeatureQueryClient(0).Query(context.Background(), srv.URL, FeatureQuery{})
		var te apperrors.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, http.StatusBadGateway, te.Status)
	})
}

func TestQueryValuesDefaults(t *testing.T) {
	t.Parallel()
	v := queryValues(FeatureQuery{Where: "  "}, 0, DefaultPageSize)
	assert.Equal(t, SQLNoOp, v.Get("where"))
	assert.Equal(t, "*", v.Get("outFields"))
	assert.Empty(t, v.Get("orderByFields"))
	assert.Equal(t, "1000", v.Get("resultRecordCount"))
}

func TestInClause(t *testing.T) {
	t.Parallel()
	assert.Equal(t, SQLNoOp, InClause("ID", nil, 500))

	values := make([]string, 5)
	for i := range values {
		values[i] = fmt.Sprint(i)
	}
	got := InClause("ID", values, 2)
	assert.Equal(t, "(ID IN ('0','1') OR ID IN ('2','3') OR ID IN ('4'))", got)
	assert.Equal(t, 3, strings.Count(got, " IN ("))
}
