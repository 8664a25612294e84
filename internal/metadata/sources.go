package metadata

import (
	"fmt"

	apperrors "github.com/agbru/tabulate/internal/errors"
)

// resolve expands a catalog vintage into its program-backed sources. The
// caller holds r.mu.
func (r *Repository) resolve(spec VintageSpec) (Vintage, error) {
	v := Vintage{
		DisplayProperties: spec.DisplayProperties,
		VariableID:        spec.VariableID,
		GeoTypeID:         spec.GeoTypeID,
		VintageID:         spec.VintageID,
		Processor:         spec.Processor,
	}

	sources, err := r.operandSources(spec.VariableID, spec.Operand1.Sources, &v, 1)
	if err != nil {
		return Vintage{}, err
	}
	v.Operand1 = Operand{Sources: sources, Processor: spec.Operand1.OperandProcessor}

	if spec.Operand2 != nil {
		sources, err := r.operandSources(spec.VariableID, spec.Operand2.Sources, &v, 2)
		if err != nil {
			return Vintage{}, err
		}
		v.Operand2 = &Operand{Sources: sources, Processor: spec.Operand2.OperandProcessor}
	}
	return v, nil
}

// operandSources resolves the sources of one operand, accumulating the
// years and datasets they span into v.
func (r *Repository) operandSources(variableID string, refs []SourceRef, v *Vintage, operand int) ([]APIVariable, error) {
	out := make([]APIVariable, 0, len(refs))
	for i, ref := range refs {
		p, ok := r.programs[ref.ProgramID]
		if !ok {
			return nil, apperrors.NewNotFoundError("Program", ref.ProgramID)
		}
		v.Years = appendMissing(v.Years, p.Year)
		v.Datasets = appendMissing(v.Datasets, p.Dataset)

		src := APIVariable{
			ProgramName: p.Name,
			Program:     p.Program,
			Year:        p.Year,
			Dataset:     p.Dataset,
			APIURL:      p.APIURL,
			MapTigerID:  p.MapTigerID,
			MapStateID:  p.MapStateID,
			VarParts: VarParts{
				Stat: VarInfo{Name: ref.Variable, Alias: fmt.Sprintf("%s_%s_%d_%d", variableID, ref.Variable, operand, i+1)},
			},
			URLParameters: ref.URLParameters,
			SectorField:   ref.SectorField,
			RaceGroup:     ref.RaceGroup,
			SexGroup:      ref.Sex,
			VetGroup:      ref.VetGroup,
		}

		if p.FlagStrategy != "" {
			flag, err := flagVariable(p.FlagStrategy, variableID, ref.Variable, operand, i+1)
			if err != nil {
				return nil, err
			}
			src.VarParts.Flag = &flag
			src.FlagStrategy = p.FlagStrategy
		}

		if p.ReliabilityStrategy != "" {
			moe, err := moeVariable(p.ReliabilityStrategy, variableID, ref.Variable, operand, i+1)
			if err != nil {
				return nil, err
			}
			src.VarParts.MOE = &moe
			src.ReliabilityStrategy = p.ReliabilityStrategy
		}

		switch p.Source {
		case SourceCensusDataAPI:
			src.Source = SourceCensusDataAPI
			src.GeoFormat = p.GeoFormat
		case SourceConsumerData:
			src.Source = SourceConsumerData
		default:
			return nil, apperrors.Fail("program %s has unsupported source %q", p.ID, p.Source)
		}
		out = append(out, src)
	}
	return out, nil
}

func flagVariable(strategy FlagStrategy, variableID, variable string, operand, index int) (VarInfo, error) {
	switch strategy {
	case FlagPrefixS:
		return VarInfo{
			Name:  "s" + variable,
			Alias: fmt.Sprintf("%s_s%s_S_%d_%d", variableID, variable, operand, index),
		}, nil
	case FlagUnderscoreF:
		return VarInfo{
			Name:  variable + "_F",
			Alias: fmt.Sprintf("%s_%s_F_%d_%d", variableID, variable, operand, index),
		}, nil
	default:
		return VarInfo{}, apperrors.Fail("unsupported flag strategy %q", strategy)
	}
}

func moeVariable(strategy ReliabilityStrategy, variableID, variable string, operand, index int) (VarInfo, error) {
	switch strategy {
	case ReliabilityACSMOE:
		name := "M"
		if len(variable) > 0 {
			name = variable[:len(variable)-1] + "M"
		}
		return VarInfo{
			Name:  name,
			Alias: fmt.Sprintf("%s_%s_%d_%d", variableID, name, operand, index),
		}, nil
	default:
		return VarInfo{}, apperrors.Fail("unsupported reliability strategy %q", strategy)
	}
}

func appendMissing(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
