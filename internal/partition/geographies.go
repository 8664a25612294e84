package partition

import (
	"strings"

	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/record"
)

// Geographies groups geographies sharing the values of the geo type's
// TigerPartitionFields, then splits each group into slices of at most
// limit geographies. Groups keep first-seen order. A limit of zero or less
// disables splitting.
func Geographies(geoType metadata.GeoType, geos []record.DetailedGeo, limit int) record.GeographyPartitions {
	if len(geos) == 0 {
		return record.GeographyPartitions{}
	}

	var (
		order  []string
		groups = make(map[string][]record.DetailedGeo)
	)
	for _, g := range geos {
		values := make([]string, len(geoType.TigerPartitionFields))
		for i, f := range geoType.TigerPartitionFields {
			values[i] = g.Attr(f)
		}
		key := strings.Join(values, "-")
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], g)
	}

	out := make(record.GeographyPartitions, 0, len(order))
	for _, key := range order {
		out = append(out, Chunk(groups[key], limit)...)
	}
	return out
}

// Chunk splits geos into consecutive slices of at most size elements.
func Chunk(geos []record.DetailedGeo, size int) [][]record.DetailedGeo {
	if size <= 0 || len(geos) <= size {
		return [][]record.DetailedGeo{geos}
	}
	out := make([][]record.DetailedGeo, 0, (len(geos)+size-1)/size)
	for start := 0; start < len(geos); start += size {
		end := min(start+size, len(geos))
		out = append(out, geos[start:end])
	}
	return out
}
