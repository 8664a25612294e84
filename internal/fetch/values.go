package fetch

import (
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/namber"
	"github.com/agbru/tabulate/internal/record"
)

func suppressed(flag string) namber.Namber {
	return namber.NA("Suppressed (" + flag + ")")
}

// store writes a stat and, when the source has a margin of error, its MOE.
func store(rec record.APIRecord, industryID string, vp metadata.VarParts, stat, moe namber.Namber) {
	var m *record.Aliased
	if vp.MOE != nil {
		m = &record.Aliased{Alias: vp.MOE.Alias, Value: moe}
	}
	record.SetAPIData(industryID, rec.Data, record.Aliased{Alias: vp.Stat.Alias, Value: stat}, m)
}

// storeUnavailable marks every variable unavailable for one industry.
func storeUnavailable(rec record.APIRecord, industryID string, parts []metadata.VarParts) {
	for _, vp := range parts {
		store(rec, industryID, vp, namber.NA(""), namber.NA(""))
	}
}
