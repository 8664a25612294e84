package tabulate

import (
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/namber"
	"github.com/agbru/tabulate/internal/record"
)

// DataRecordFor looks up the estimate of a vintage's variable for an
// industry, or for the cluster when industryID is record.ClusterIndustryID.
func DataRecordFor(data record.ClusteredVariableMap, v metadata.Vintage, industryID string) (record.DataRecord, bool) {
	if industryID == record.ClusterIndustryID {
		return data.Cluster(v.VariableID)
	}
	return data.Industry(v.VariableID, v.IndustryLikeID(industryID))
}

// FindStat returns the stat of rec when it is available.
func FindStat(rec record.DataRecord) (float64, bool) {
	return rec.Stat.Value()
}

// FindMOE returns the margin of error of rec when it has one and it is
// available.
func FindMOE(rec record.DataRecord) (float64, bool) {
	if rec.MOE == nil {
		return 0, false
	}
	return rec.MOE.Value()
}

// StatOf returns the stat of a geography's estimate, unavailable when the
// estimate is missing.
func StatOf(gr record.GeoRecord, v metadata.Vintage, industryID string) namber.Namber {
	rec, ok := DataRecordFor(gr.Data, v, industryID)
	if !ok {
		return namber.Parse(namber.NAString)
	}
	return rec.Stat
}
