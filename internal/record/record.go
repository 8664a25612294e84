package record

import (
	"strings"

	"github.com/agbru/tabulate/internal/namber"
)

// Industry keys used inside variable maps.
const (
	// NoIndustryID keys values of variables that have no industry dimension.
	NoIndustryID = "_NO_INDUSTRY_"
	// ClusterIndustryID keys the value aggregated across all requested industries.
	ClusterIndustryID = "_INDUSTRY_CLUSTER_"
)

// DetailedGeo is one requested geography. Attributes carries the FIPS and
// partition fields the upstream queries are built from.
type DetailedGeo struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	GeoType    string            `json:"geoType,omitempty" yaml:"geoType,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Attr returns an attribute value, or "" when absent.
func (g DetailedGeo) Attr(name string) string {
	if g.Attributes == nil {
		return ""
	}
	return g.Attributes[name]
}

// WithAttr returns a copy of g with one attribute set. The receiver's map is
// not modified.
func (g DetailedGeo) WithAttr(name, value string) DetailedGeo {
	attrs := make(map[string]string, len(g.Attributes)+1)
	for k, v := range g.Attributes {
		attrs[k] = v
	}
	attrs[name] = value
	g.Attributes = attrs
	return g
}

// GeographyPartitions groups the geographies of one geo type into
// request-sized slices.
type GeographyPartitions [][]DetailedGeo

// Flatten returns every geography in partition order.
func (p GeographyPartitions) Flatten() []DetailedGeo {
	var out []DetailedGeo
	for _, part := range p {
		out = append(out, part...)
	}
	return out
}

// PartitionsMap maps a geo type id to its geography partitions.
type PartitionsMap map[string]GeographyPartitions

// IndustryMap maps an industry-like id to a value.
type IndustryMap map[string]namber.Namber

// VariableMap maps a source alias to its per-industry values.
type VariableMap map[string]IndustryMap

// Get returns the value stored for alias and industry, or an unavailable
// value when nothing was stored.
func (m VariableMap) Get(alias, industryLikeID string) namber.Namber {
	if byIndustry, ok := m[alias]; ok {
		if v, ok := byIndustry[industryLikeID]; ok {
			return v
		}
	}
	return namber.Parse(namber.NAString)
}

// Set stores a value under alias and industry.
func (m VariableMap) Set(industryID, alias string, v namber.Namber) {
	byIndustry, ok := m[alias]
	if !ok {
		byIndustry = make(IndustryMap)
		m[alias] = byIndustry
	}
	byIndustry[industryID] = v
}

// Aliased is a value to store under a source alias.
type Aliased struct {
	Alias string
	Value namber.Namber
}

// SetAPIData stores a stat and, when given, its margin of error.
func SetAPIData(industryID string, data VariableMap, stat Aliased, moe *Aliased) {
	data.Set(industryID, stat.Alias, stat.Value)
	if moe != nil {
		data.Set(industryID, moe.Alias, moe.Value)
	}
}

// APIRecord holds the raw values fetched for one geography.
type APIRecord struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	GeoType string      `json:"geoType"`
	Data    VariableMap `json:"data"`
}

// NewAPIRecord returns an empty record for geo.
func NewAPIRecord(geoTypeID string, geo DetailedGeo) APIRecord {
	return APIRecord{ID: geo.ID, Name: geo.Name, GeoType: geoTypeID, Data: make(VariableMap)}
}

// DataRecord is one computed estimate. MOE is nil when a margin of error
// does not apply to the variable.
type DataRecord struct {
	Stat namber.Namber  `json:"stat"`
	MOE  *namber.Namber `json:"moe,omitempty"`
}

// VariableResult holds the per-industry estimates of one variable and the
// estimate over the whole industry cluster.
type VariableResult struct {
	Industries map[string]DataRecord `json:"industries"`
	Cluster    *DataRecord           `json:"cluster,omitempty"`
}

// ClusteredVariableMap maps a data variable id to its results.
type ClusteredVariableMap map[string]*VariableResult

// SetComputed stores an estimate under an industry-like id, or as the
// cluster estimate when id is ClusterIndustryID.
func (m ClusteredVariableMap) SetComputed(id, variableID string, stat namber.Namber, moe *namber.Namber) {
	res, ok := m[variableID]
	if !ok {
		res = &VariableResult{Industries: make(map[string]DataRecord)}
		m[variableID] = res
	}
	rec := DataRecord{Stat: stat, MOE: moe}
	if id == ClusterIndustryID {
		res.Cluster = &rec
		return
	}
	res.Industries[id] = rec
}

// Cluster returns the cluster estimate of a variable.
func (m ClusteredVariableMap) Cluster(variableID string) (DataRecord, bool) {
	res, ok := m[variableID]
	if !ok || res.Cluster == nil {
		return DataRecord{}, false
	}
	return *res.Cluster, true
}

// Industry returns the estimate of a variable for one industry-like id.
func (m ClusteredVariableMap) Industry(variableID, industryLikeID string) (DataRecord, bool) {
	res, ok := m[variableID]
	if !ok {
		return DataRecord{}, false
	}
	rec, ok := res.Industries[industryLikeID]
	return rec, ok
}

// GeoRecord holds the computed estimates for one geography.
type GeoRecord struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	GeoType string               `json:"geoType"`
	Data    ClusteredVariableMap `json:"data"`
}

// NewGeoRecord returns an empty GeoRecord for the geography of rec.
func NewGeoRecord(geoTypeID string, rec APIRecord) GeoRecord {
	return GeoRecord{ID: rec.ID, Name: rec.Name, GeoType: geoTypeID, Data: make(ClusteredVariableMap)}
}

// IndustriesOrDefault returns ids, or the no-industry id alone when no
// industry was requested.
func IndustriesOrDefault(ids []string) []string {
	if len(ids) == 0 {
		return []string{NoIndustryID}
	}
	return ids
}

// IndustryLikeID returns the key under which upstream values for an
// industry are bucketed.
func IndustryLikeID(industryID string) string {
	if industryID == "" || industryID == NoIndustryID {
		return NoIndustryID
	}
	return "sector" + industryID
}

// TranslateToAnnotation maps the numeric annotation codes of the data API
// to their symbols. Other values are returned unchanged.
func TranslateToAnnotation(moe string) string {
	if !namber.IsNumberLike(moe) {
		return moe
	}
	v, _ := namber.Parse(moe).Value()
	switch v {
	case -999999999:
		return "N"
	case -888888888:
		return "X"
	case -666666666:
		return "-"
	case -555555555:
		return "*****"
	case -333333333:
		return "***"
	case -222222222:
		return "**"
	default:
		return moe
	}
}

// ScaleAndRound multiplies by scale and rounds to the given decimals.
// Unavailable values are returned as they are, keeping their message.
func ScaleAndRound(v namber.Namber, scale float64, decimals int) namber.Namber {
	if v.IsNA() {
		return v
	}
	return namber.Round(namber.Mul(v, namber.New(scale)), decimals)
}

// CreateOutFields splits comma separated field lists, trims them and drops
// duplicates while keeping first-seen order.
func CreateOutFields(args ...string) []string {
	var fields []string
	for _, arg := range args {
		for _, f := range strings.Split(arg, ",") {
			fields = append(fields, strings.TrimSpace(f))
		}
	}
	return Distinct(fields)
}

// Distinct returns values without duplicates in first-seen order.
func Distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
