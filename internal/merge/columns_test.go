package merge

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agbru/tabulate/internal/record"
)

func table(header []string, rows ...[]string) record.Table {
	t := record.Table{Header: header}
	for _, r := range rows {
		cells := make([]*string, len(r))
		for i, v := range r {
			if v != "<nil>" {
				cells[i] = record.Str(v)
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func plain(t record.Table) [][]string {
	out := [][]string{t.Header}
	for _, r := range t.Rows {
		row := make([]string, len(r))
		for i, v := range r {
			if v == nil {
				row[i] = "<nil>"
			} else {
				row[i] = *v
			}
		}
		out = append(out, row)
	}
	return out
}

func TestMergeColumnPartitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		results []record.Table
		data    []string
		want    record.Table
	}{
		{
			name: "joins column partitions on id columns",
			results: []record.Table{
				table([]string{"A", "state", "county"}, []string{"1", "36", "001"}, []string{"2", "36", "003"}),
				table([]string{"B", "state", "county"}, []string{"3", "36", "003"}, []string{"4", "36", "001"}),
			},
			data: []string{"A", "B"},
			want: table([]string{"A", "B", "state", "county"},
				[]string{"1", "4", "36", "001"},
				[]string{"2", "3", "36", "003"}),
		},
		{
			name: "pads missing keys with nil cells",
			results: []record.Table{
				table([]string{"A", "X", "state"}, []string{"1", "9", "36"}),
				table([]string{"B", "state"}, []string{"2", "06"}),
			},
			data: []string{"A", "X", "B"},
			want: table([]string{"A", "X", "B", "state"},
				[]string{"1", "9", "<nil>", "36"},
				[]string{"<nil>", "<nil>", "2", "06"}),
		},
		{
			name: "empty result contributes no columns",
			results: []record.Table{
				{},
				table([]string{"A", "us"}, []string{"5", "1"}),
			},
			data: []string{"A"},
			want: table([]string{"A", "us"}, []string{"5", "1"}),
		},
		{
			name:    "no results",
			results: nil,
			data:    []string{"A"},
			want:    record.Table{Header: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MergeColumnPartitions(tt.results, tt.data)
			if !reflect.DeepEqual(plain(got), plain(tt.want)) {
				t.Errorf("MergeColumnPartitions() =\n%v\nwant\n%v", plain(got), plain(tt.want))
			}
		})
	}
}

// keyedTable builds a table with data columns A, B, C and a unique id
// column per row.
func keyedTable(values []string) record.Table {
	t := record.Table{Header: []string{"A", "B", "C", "GEO_ID"}}
	for i, v := range values {
		t.Rows = append(t.Rows, []*string{
			record.Str(v), record.Str(v + "b"), record.Str(v + "c"), record.Str(fmt.Sprintf("g%d", i)),
		})
	}
	return t
}

func project(t record.Table, columns ...string) record.Table {
	out := record.Table{Header: columns}
	for _, r := range t.Rows {
		row := make([]*string, len(columns))
		for i, c := range columns {
			row[i] = r[t.Index(c)]
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// TestMergeSelf_PropertyBased verifies that merging a single table, a table
// with itself, or the column partitions of a table returns the table
// unchanged.
func TestMergeSelf_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	data := []string{"A", "B", "C"}

	properties.Property("self merge is the identity", prop.ForAll(
		func(values []string) bool {
			full := keyedTable(values)
			got := MergeColumnPartitions([]record.Table{full}, data)
			return reflect.DeepEqual(plain(got), plain(full))
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("merging a table with itself keeps it", prop.ForAll(
		func(values []string) bool {
			full := keyedTable(values)
			got := MergeColumnPartitions([]record.Table{full, full}, data)
			if len(got.Rows) != len(full.Rows) {
				return false
			}
			if !reflect.DeepEqual(got.Header, full.Header) {
				return false
			}
			return reflect.DeepEqual(plain(got), plain(full))
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("column partitions merge back", prop.ForAll(
		func(values []string) bool {
			full := keyedTable(values)
			parts := []record.Table{
				project(full, "A", "B", "GEO_ID"),
				project(full, "C", "GEO_ID"),
			}
			got := MergeColumnPartitions(parts, data)
			return reflect.DeepEqual(plain(got), plain(full))
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("disjoint keys keep every row", prop.ForAll(
		func(n, m int) bool {
			left := record.Table{Header: []string{"A", "id"}}
			for i := 0; i < n; i++ {
				left.Rows = append(left.Rows, []*string{record.Str("l"), record.Str(fmt.Sprintf("l%d", i))})
			}
			right := record.Table{Header: []string{"B", "id"}}
			for i := 0; i < m; i++ {
				right.Rows = append(right.Rows, []*string{record.Str("r"), record.Str(fmt.Sprintf("r%d", i))})
			}
			got := MergeColumnPartitions([]record.Table{left, right}, []string{"A", "B"})
			if len(got.Rows) != n+m {
				return false
			}
			for i, row := range got.Rows {
				if i < n && (row[0] == nil || row[1] != nil) {
					return false
				}
				if i >= n && (row[0] != nil || row[1] == nil) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 20),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
