package metadata

import (
	apperrors "github.com/agbru/tabulate/internal/errors"
)

// UploadedVariable is a column of a user upload offered as a data variable.
type UploadedVariable struct {
	ID    string
	Name  string
	Round int
}

// RegisterUserVariables adds one data variable per uploaded column. The
// variables only have a current vintage, for the geo type of the upload.
func (r *Repository) RegisterUserVariables(info UploadInfo, vars []UploadedVariable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.geoTypes[info.GeoType]; !ok {
		return apperrors.NewNotFoundError("Geo Type", info.GeoType)
	}
	for _, uv := range vars {
		if uv.ID == "" {
			return apperrors.ValidationError{Field: "upload", Message: "variable ID cannot be an empty string"}
		}
		upload := info
		r.variables[uv.ID] = DataVariable{
			DisplayProperties: DisplayProperties{Round: 0, ScaleFactor: 1, FormatNumber: true},
			ID:                uv.ID,
			Name:              uv.ID,
			Upload:            &upload,
		}
	}
	return nil
}

// userVintage builds the only vintage of an uploaded variable.
func userVintage(dv DataVariable) Vintage {
	source := APIVariable{
		Source: SourceUserUpload,
		VarParts: VarParts{
			Stat: VarInfo{Name: dv.Name, Alias: "1_" + dv.Name + "_1"},
		},
	}
	return Vintage{
		DisplayProperties: DisplayProperties{Round: 0, ScaleFactor: 1, FormatNumber: true},
		VariableID:        dv.ID,
		GeoTypeID:         dv.Upload.GeoType,
		VintageID:         CurrentVintage,
		Processor:         ProcessorIdentity,
		Operand1:          Operand{Sources: []APIVariable{source}, Processor: OperandIdentity},
		Years:             []string{},
		Datasets:          []string{},
	}
}
