package orchestration

import "github.com/agbru/tabulate/internal/record"

// MergeRecords folds records of one geography into a new record. The first
// record supplies the identity; aliases and industries missing from the
// accumulated record are added, and for values present on both sides the
// earlier record wins. Inputs are not modified.
func MergeRecords(records []record.APIRecord) record.APIRecord {
	if len(records) == 0 {
		return record.APIRecord{Data: make(record.VariableMap)}
	}
	out := records[0]
	out.Data = mergeVariables(make(record.VariableMap), records[0].Data)
	for _, r := range records[1:] {
		out.Data = mergeVariables(out.Data, r.Data)
	}
	return out
}

func mergeVariables(into, from record.VariableMap) record.VariableMap {
	for alias, industries := range from {
		existing, ok := into[alias]
		if !ok {
			existing = make(record.IndustryMap, len(industries))
			into[alias] = existing
		}
		for id, v := range industries {
			if _, ok := existing[id]; !ok {
				existing[id] = v
			}
		}
	}
	return into
}

// groupByGeography returns one merged record per input geography, in input
// order. Geographies without any fetched record get an empty record.
func groupByGeography(geoTypeID string, geos []record.DetailedGeo, fetched []record.APIRecord) []record.APIRecord {
	byID := make(map[string][]record.APIRecord, len(geos))
	for _, r := range fetched {
		byID[r.ID] = append(byID[r.ID], r)
	}
	out := make([]record.APIRecord, 0, len(geos))
	for _, g := range geos {
		matches := byID[g.ID]
		if len(matches) == 0 {
			out = append(out, record.NewAPIRecord(geoTypeID, g))
			continue
		}
		out = append(out, MergeRecords(matches))
	}
	return out
}
