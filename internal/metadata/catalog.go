package metadata

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/tabulate/internal/errors"
)

// Catalog is the on-disk form of the metadata.
type Catalog struct {
	GeoTypes      []GeoType                    `yaml:"geoTypes"`
	Programs      []Program                    `yaml:"programs"`
	DataVariables []DataVariable               `yaml:"dataVariables"`
	Vintages      []VintageSpec                `yaml:"dataVariableGeoTypeVintages"`
	PlaceMapping  map[string]PlaceMappingEntry `yaml:"placeMapping"`
	USStates      []USState                    `yaml:"usStates"`
	DataAPIClient DataAPIClientSettings        `yaml:"dataApiClient"`
}

// LoadFile reads a YAML catalog from path and builds a Repository.
func LoadFile(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewConfigError("cannot open metadata catalog %s: %v", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a YAML catalog and builds a Repository.
func Load(r io.Reader) (*Repository, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, apperrors.WrapError(err, "decoding metadata catalog")
	}
	return NewRepository(c)
}

// validate checks references between catalog sections.
func (c Catalog) validate() error {
	geoTypes := make(map[string]struct{}, len(c.GeoTypes))
	for _, g := range c.GeoTypes {
		if g.ID == "" {
			return apperrors.ValidationError{Field: "geoTypes", Message: "ID cannot be an empty string"}
		}
		geoTypes[g.ID] = struct{}{}
	}
	programs := make(map[string]struct{}, len(c.Programs))
	for _, p := range c.Programs {
		if p.ID == "" {
			return apperrors.ValidationError{Field: "programs", Message: "ID cannot be an empty string"}
		}
		programs[p.ID] = struct{}{}
	}
	variables := make(map[string]struct{}, len(c.DataVariables))
	for _, v := range c.DataVariables {
		if v.ID == "" {
			return apperrors.ValidationError{Field: "dataVariables", Message: "ID cannot be an empty string"}
		}
		variables[v.ID] = struct{}{}
	}

	for _, v := range c.Vintages {
		if _, ok := variables[v.VariableID]; !ok {
			return apperrors.ValidationError{Field: "dataVariableGeoTypeVintages", Message: "unknown variable " + v.VariableID}
		}
		if _, ok := geoTypes[v.GeoTypeID]; !ok {
			return apperrors.ValidationError{Field: "dataVariableGeoTypeVintages", Message: "unknown geo type " + v.GeoTypeID}
		}
		refs := v.Operand1.Sources
		if v.Operand2 != nil {
			refs = append(append([]SourceRef(nil), refs...), v.Operand2.Sources...)
		}
		for _, ref := range refs {
			if _, ok := programs[ref.ProgramID]; !ok {
				return apperrors.ValidationError{Field: "dataVariableGeoTypeVintages", Message: "unknown program " + ref.ProgramID}
			}
		}
	}
	return nil
}
