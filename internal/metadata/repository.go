package metadata

import (
	"fmt"
	"strings"
	"sync"

	apperrors "github.com/agbru/tabulate/internal/errors"
)

// Repository is the read-only metadata store consulted by every component.
// Only user-uploaded variables can be added after construction; all methods
// are safe for concurrent use.
type Repository struct {
	mu sync.RWMutex

	geoTypes     map[string]GeoType
	geoTypeOrder []string
	programs     map[string]Program
	variables    map[string]DataVariable
	vintages     map[string][]VintageSpec
	placeMapping map[string]PlaceMappingEntry
	states       []USState
	client       DataAPIClientSettings
}

// NewRepository indexes a catalog. States default to the built-in list.
func NewRepository(c Catalog) (*Repository, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	r := &Repository{
		geoTypes:     make(map[string]GeoType, len(c.GeoTypes)),
		programs:     make(map[string]Program, len(c.Programs)),
		variables:    make(map[string]DataVariable, len(c.DataVariables)),
		vintages:     make(map[string][]VintageSpec),
		placeMapping: c.PlaceMapping,
		states:       c.USStates,
		client:       c.DataAPIClient,
	}
	for _, g := range c.GeoTypes {
		r.geoTypes[g.ID] = g
		r.geoTypeOrder = append(r.geoTypeOrder, g.ID)
	}
	for _, p := range c.Programs {
		r.programs[p.ID] = p
	}
	for _, v := range c.DataVariables {
		r.variables[v.ID] = v
	}
	for _, v := range c.Vintages {
		r.vintages[v.VariableID] = append(r.vintages[v.VariableID], v)
	}
	if r.placeMapping == nil {
		r.placeMapping = make(map[string]PlaceMappingEntry)
	}
	if len(r.states) == 0 {
		r.states = usStates
	}
	return r, nil
}

// GeoType returns a geo type by id.
func (r *Repository) GeoType(id string) (GeoType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.geoTypes[id]
	if !ok {
		return GeoType{}, apperrors.NewNotFoundError("Geo Type", id)
	}
	return g, nil
}

// GeoTypes returns all geo types in catalog order.
func (r *Repository) GeoTypes() []GeoType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]GeoType, 0, len(r.geoTypeOrder))
	for _, id := range r.geoTypeOrder {
		out = append(out, r.geoTypes[id])
	}
	return out
}

// Program returns a program by id.
func (r *Repository) Program(id string) (Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.programs[id]
	if !ok {
		return Program{}, apperrors.NewNotFoundError("Program", id)
	}
	return p, nil
}

// DataVariable returns a data variable by id.
func (r *Repository) DataVariable(id string) (DataVariable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dataVariable(id)
}

func (r *Repository) dataVariable(id string) (DataVariable, error) {
	if id == "" {
		return DataVariable{}, apperrors.ValidationError{Field: "ID", Message: "ID cannot be an empty string"}
	}
	v, ok := r.variables[id]
	if !ok {
		return DataVariable{}, apperrors.NewNotFoundError("Data Variable", id)
	}
	return v, nil
}

// DataVariables resolves a list of ids in order.
func (r *Repository) DataVariables(ids []string) ([]DataVariable, error) {
	out := make([]DataVariable, 0, len(ids))
	for _, id := range ids {
		v, err := r.DataVariable(id)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// VintagesForVariable returns every resolved vintage of a variable in
// catalog order.
func (r *Repository) VintagesForVariable(variableID string) ([]Vintage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dv, err := r.dataVariable(variableID)
	if err != nil {
		return nil, err
	}
	if dv.UserDefined() {
		return []Vintage{userVintage(dv)}, nil
	}

	specs := r.vintages[variableID]
	out := make([]Vintage, 0, len(specs))
	for _, spec := range specs {
		v, err := r.resolve(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FindVintageForVariable returns the vintage of a variable for a geo type,
// reporting false when it is not defined.
func (r *Repository) FindVintageForVariable(variableID, geoTypeID, vintageID string) (Vintage, bool, error) {
	vintages, err := r.VintagesForVariable(variableID)
	if err != nil {
		return Vintage{}, false, err
	}
	for _, v := range vintages {
		if v.GeoTypeID == geoTypeID && v.VintageID == vintageID {
			return v, true, nil
		}
	}
	return Vintage{}, false, nil
}

// VintageForVariable is FindVintageForVariable with a NotFoundError for a
// missing vintage.
func (r *Repository) VintageForVariable(variableID, geoTypeID, vintageID string) (Vintage, error) {
	v, ok, err := r.FindVintageForVariable(variableID, geoTypeID, vintageID)
	if err != nil {
		return Vintage{}, err
	}
	if !ok {
		return Vintage{}, apperrors.NotFoundError{
			Kind:    "Vintage",
			ID:      vintageID,
			Message: fmt.Sprintf("Cannot find vintage %s on variable %s with geoType %s", vintageID, variableID, geoTypeID),
		}
	}
	return v, nil
}

// IsVintageAvailable reports whether the variable defines the vintage for
// the geo type. Unknown variables are reported as unavailable.
func (r *Repository) IsVintageAvailable(variableID, geoTypeID, vintageID string) bool {
	_, ok, err := r.FindVintageForVariable(variableID, geoTypeID, vintageID)
	return err == nil && ok
}

// IsVariableAvailableForGeoTypes reports whether the current vintage is
// defined for every geo type.
func (r *Repository) IsVariableAvailableForGeoTypes(variableID string, geoTypeIDs []string) bool {
	for _, g := range geoTypeIDs {
		if !r.IsVintageAvailable(variableID, g, CurrentVintage) {
			return false
		}
	}
	return true
}

// CanTimeCompare reports whether a single geo type has any vintage other
// than the current one. Time series never span several geo types.
func (r *Repository) CanTimeCompare(variableID string, geoTypeIDs []string) bool {
	if len(geoTypeIDs) != 1 {
		return false
	}
	vintages, err := r.VintagesForVariable(variableID)
	if err != nil {
		return false
	}
	for _, v := range vintages {
		if v.GeoTypeID == geoTypeIDs[0] && v.VintageID != CurrentVintage {
			return true
		}
	}
	return false
}

// CanGeoCompare reports whether another comparable geo type has the current
// vintage of the variable. Variables flagged without a geo chart never
// compare.
func (r *Repository) CanGeoCompare(variableID, geoTypeID string) (bool, error) {
	dv, err := r.DataVariable(variableID)
	if err != nil {
		return false, err
	}
	if !dv.ShowGeoChart {
		return false, nil
	}
	gt, err := r.GeoType(geoTypeID)
	if err != nil {
		return false, err
	}
	vintages, err := r.VintagesForVariable(variableID)
	if err != nil {
		return false, err
	}
	for _, v := range vintages {
		if v.GeoTypeID == gt.ID || v.VintageID != CurrentVintage {
			continue
		}
		for _, c := range gt.CompareToTypes {
			if c == v.GeoTypeID {
				return true, nil
			}
		}
	}
	return false, nil
}

// PlaceMapping returns the mapping entry for a place id.
func (r *Repository) PlaceMapping(geoID string) (PlaceMappingEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.placeMapping[geoID]
	return e, ok
}

// StateFIPSCode converts a postal code to a FIPS code.
func (r *Repository) StateFIPSCode(postal string) (string, error) {
	for _, s := range r.states {
		if s.Abbreviation == postal {
			return s.FIPS, nil
		}
	}
	return "", apperrors.NotFoundError{Kind: "Postal Code", ID: postal, Message: fmt.Sprintf("Postal Code %s not found in metadata", postal)}
}

// StatePostalCode converts a FIPS code to a postal code.
func (r *Repository) StatePostalCode(fips string) (string, error) {
	s, err := r.stateByFIPS(fips)
	if err != nil {
		return "", err
	}
	return s.Abbreviation, nil
}

// StateName returns the title-cased name of the state with the FIPS code.
func (r *Repository) StateName(fips string) (string, error) {
	s, err := r.stateByFIPS(fips)
	if err != nil {
		return "", err
	}
	words := strings.Fields(strings.ToLower(s.Name))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " "), nil
}

func (r *Repository) stateByFIPS(fips string) (USState, error) {
	for _, s := range r.states {
		if s.FIPS == fips {
			return s, nil
		}
	}
	return USState{}, apperrors.NotFoundError{Kind: "FIPS Code", ID: fips, Message: fmt.Sprintf("FIPS Code %s not found in metadata", fips)}
}

// GeoTypeReplacements returns the geo type renames for an endpoint path.
func (r *Repository) GeoTypeReplacements(path string) map[string]string {
	return r.client.GeoTypeReplacementsForPath[path]
}
