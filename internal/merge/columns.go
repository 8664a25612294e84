package merge

import (
	"strings"

	"github.com/agbru/tabulate/internal/record"
)

// parsedTable is a response split into its data and id parts.
type parsedTable struct {
	dataColumns []string
	idColumns   []string
	keys        []string
	rows        map[string]rowParts
}

type rowParts struct {
	data []*string
	ids  []*string
}

// MergeColumnPartitions joins tables holding disjoint data columns of the
// same rows. Columns listed in dataColumns are data; every other column is
// an id column and takes part in the row key.
//
// The merged header lists the distinct data columns, then the distinct id
// columns, in first-seen order. Rows follow the first-seen order of their
// keys. A table without a row for a key contributes nil cells. A data
// column present in several tables takes its value from the first table
// holding the row, so merging a table with itself returns it unchanged.
func MergeColumnPartitions(results []record.Table, dataColumns []string) record.Table {
	isData := make(map[string]struct{}, len(dataColumns))
	for _, c := range dataColumns {
		isData[c] = struct{}{}
	}

	parsed := make([]parsedTable, len(results))
	for i, t := range results {
		parsed[i] = split(t, isData)
	}

	var (
		keyOrder []string
		keyIDs   = make(map[string][]*string)
		dataCols []string
		idCols   []string
	)
	for _, p := range parsed {
		for _, key := range p.keys {
			if _, seen := keyIDs[key]; !seen {
				keyOrder = append(keyOrder, key)
			}
			keyIDs[key] = p.rows[key].ids
		}
		dataCols = insertUnique(dataCols, p.dataColumns...)
		idCols = insertUnique(idCols, p.idColumns...)
	}

	header := make([]string, 0, len(dataCols)+len(idCols))
	header = append(header, dataCols...)
	header = append(header, idCols...)

	position := make(map[string]int, len(dataCols))
	for i, c := range dataCols {
		position[c] = i
	}

	rows := make([][]*string, 0, len(keyOrder))
	for _, key := range keyOrder {
		values := make([]*string, len(dataCols), len(header))
		filled := make([]bool, len(dataCols))
		for _, p := range parsed {
			parts, ok := p.rows[key]
			if !ok {
				continue
			}
			for i, c := range p.dataColumns {
				if j := position[c]; !filled[j] {
					values[j] = parts.data[i]
					filled[j] = true
				}
			}
		}
		values = append(values, keyIDs[key]...)
		rows = append(rows, values)
	}
	return record.Table{Header: header, Rows: rows}
}

func split(t record.Table, isData map[string]struct{}) parsedTable {
	p := parsedTable{rows: make(map[string]rowParts, len(t.Rows))}
	if t.Empty() {
		return p
	}

	var dataIdx, idIdx []int
	for i, c := range t.Header {
		if _, ok := isData[c]; ok {
			dataIdx = append(dataIdx, i)
			p.dataColumns = append(p.dataColumns, c)
		} else {
			idIdx = append(idIdx, i)
			p.idColumns = append(p.idColumns, c)
		}
	}

	for _, row := range t.Rows {
		parts := rowParts{data: pick(row, dataIdx), ids: pick(row, idIdx)}
		key := joinKey(parts.ids)
		if _, ok := p.rows[key]; !ok {
			p.keys = append(p.keys, key)
		}
		p.rows[key] = parts
	}
	return p
}

func pick(row []*string, idx []int) []*string {
	out := make([]*string, len(idx))
	for i, j := range idx {
		out[i] = cell(row, j)
	}
	return out
}

func cell(row []*string, i int) *string {
	if i < len(row) {
		return row[i]
	}
	return nil
}

func joinKey(ids []*string) string {
	parts := make([]string, len(ids))
	for i, v := range ids {
		if v != nil {
			parts[i] = *v
		}
	}
	return strings.Join(parts, "/")
}

func insertUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}
