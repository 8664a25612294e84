package partition

import (
	"strconv"

	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/metadata"
)

// VintageSource is the part of the metadata repository the partitioner
// reads.
type VintageSource interface {
	IsVintageAvailable(variableID, geoTypeID, vintageID string) bool
	VintageForVariable(variableID, geoTypeID, vintageID string) (metadata.Vintage, error)
}

// Partition is the set of columns fetched from one endpoint in one call.
// The per-source slices (VariableParts, MapTigerIDs, MapStateIDs) are
// parallel. The group slices are nil unless a source in the partition is
// restricted to a race, sex or veteran group.
type Partition struct {
	APIURL        string
	DataSource    metadata.Source
	GeoFormat     string
	VariableParts []metadata.VarParts
	MapTigerIDs   []bool
	MapStateIDs   []bool
	// ParamInd is the industry column of the endpoint, empty when the
	// endpoint has no industry dimension.
	ParamInd   string
	RaceGroups []int
	SexGroups  []string
	VetGroups  []string
}

// HasGroups reports whether rows of the partition are split by race, sex or
// veteran group.
func (p *Partition) HasGroups() bool {
	return p.RaceGroups != nil || p.SexGroups != nil || p.VetGroups != nil
}

// MapsState reports whether the first source of the partition identifies
// states by postal code.
func (p *Partition) MapsState() bool {
	return len(p.MapStateIDs) > 0 && p.MapStateIDs[0]
}

func (p *Partition) insert(src metadata.APIVariable) error {
	p.MapTigerIDs = append(p.MapTigerIDs, src.MapTigerID)
	p.MapStateIDs = append(p.MapStateIDs, src.MapStateID)
	p.VariableParts = append(p.VariableParts, src.VarParts)

	if src.RaceGroup != "" {
		g, err := strconv.Atoi(src.RaceGroup)
		if err != nil {
			return apperrors.ValidationError{Field: "RACE_GROUP", Message: "not an integer: " + src.RaceGroup}
		}
		p.RaceGroups = append(p.RaceGroups, g)
	}
	if src.SexGroup != "" {
		p.SexGroups = append(p.SexGroups, src.SexGroup)
	}
	if src.VetGroup != "" {
		p.VetGroups = append(p.VetGroups, src.VetGroup)
	}
	return nil
}

// Set holds partitions keyed by endpoint, in first-seen order.
type Set struct {
	keys  []string
	parts map[string]*Partition
}

// Keys returns the partition keys in first-seen order.
func (s *Set) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Get returns the partition stored under key.
func (s *Set) Get(key string) (*Partition, bool) {
	p, ok := s.parts[key]
	return p, ok
}

// Len returns the number of partitions.
func (s *Set) Len() int { return len(s.keys) }

// Partitions returns the partitions in first-seen order.
func (s *Set) Partitions() []*Partition {
	out := make([]*Partition, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.parts[k])
	}
	return out
}

// Key returns the partition key of a source. Group markers are static so
// that every group of an endpoint lands in the same partition, while URL
// parameters and the sector field take part by value.
func Key(src metadata.APIVariable) string {
	key := src.APIURL
	if src.RaceGroup != "" {
		key += "raceGroup"
	}
	if src.SexGroup != "" {
		key += "sexGroup"
	}
	if src.VetGroup != "" {
		key += "vetGroup"
	}
	return key + src.URLParameters + src.SectorField
}

// ByEndpoint folds the sources of both operands of every variable into
// per-endpoint partitions. The result is empty when the vintage is not
// available for one of the variables.
func ByEndpoint(repo VintageSource, geoTypeID, vintageID string, variables []metadata.DataVariable) (*Set, error) {
	set := &Set{parts: make(map[string]*Partition)}

	for _, dv := range variables {
		if !repo.IsVintageAvailable(dv.ID, geoTypeID, vintageID) {
			return set, nil
		}
	}

	for _, dv := range variables {
		v, err := repo.VintageForVariable(dv.ID, geoTypeID, vintageID)
		if err != nil {
			return nil, err
		}
		for _, src := range v.AllSources() {
			key := Key(src)
			p, ok := set.parts[key]
			if !ok {
				p = &Partition{
					APIURL:     src.APIURL + src.URLParameters,
					DataSource: src.Source,
					ParamInd:   src.SectorField,
				}
				if src.Source == metadata.SourceCensusDataAPI {
					p.GeoFormat = src.GeoFormat
				}
				set.parts[key] = p
				set.keys = append(set.keys, key)
			}
			if err := p.insert(src); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
