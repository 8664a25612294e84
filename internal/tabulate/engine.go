package tabulate

import (
	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/namber"
	"github.com/agbru/tabulate/internal/record"
)

// Values are the operand values collected from a set of records. Op1Terms
// holds, per record, the operand-1 values that record contributed.
type Values struct {
	Op1      []namber.Namber
	Op1MOE   []namber.Namber
	Op1Terms [][]namber.Namber
	Op2      []namber.Namber
	Op2MOE   []namber.Namber
}

// Append returns the concatenation of v and o.
func (v Values) Append(o Values) Values {
	return Values{
		Op1:      append(append([]namber.Namber(nil), v.Op1...), o.Op1...),
		Op1MOE:   append(append([]namber.Namber(nil), v.Op1MOE...), o.Op1MOE...),
		Op1Terms: append(append([][]namber.Namber(nil), v.Op1Terms...), o.Op1Terms...),
		Op2:      append(append([]namber.Namber(nil), v.Op2...), o.Op2...),
		Op2MOE:   append(append([]namber.Namber(nil), v.Op2MOE...), o.Op2MOE...),
	}
}

// MOEApplicable reports whether a margin of error can be computed for a
// vintage: every operand needs as many MOE columns as stat columns. An
// operand without sources does not block it.
func MOEApplicable(v metadata.Vintage) bool {
	return operandHasMOE(v.Operand1.Sources, false) && operandHasMOE(v.Operand2Sources(), true)
}

func operandHasMOE(sources []metadata.APIVariable, emptyOK bool) bool {
	if len(sources) == 0 {
		return emptyOK
	}
	moes := 0
	for _, s := range sources {
		if s.VarParts.MOE != nil {
			moes++
		}
	}
	return moes > 0 && moes == len(sources)
}

// Collect gathers operand values of a vintage from records for the given
// industries. Sources without a sector field read NoIndustryID once, however
// many industries are requested. No industries means NoIndustryID.
func Collect(records []record.APIRecord, v metadata.Vintage, industryIDs []string, withMOE bool) Values {
	industryIDs = record.IndustriesOrDefault(industryIDs)
	var out Values
	for _, rec := range records {
		stats, moes := collectOperand(rec, v.Operand1.Sources, industryIDs, withMOE)
		out.Op1 = append(out.Op1, stats...)
		out.Op1MOE = append(out.Op1MOE, moes...)
		out.Op1Terms = append(out.Op1Terms, append([]namber.Namber(nil), stats...))
		if v.Operand2 != nil {
			stats, moes := collectOperand(rec, v.Operand2.Sources, industryIDs, withMOE)
			out.Op2 = append(out.Op2, stats...)
			out.Op2MOE = append(out.Op2MOE, moes...)
		}
	}
	return out
}

func collectOperand(rec record.APIRecord, sources []metadata.APIVariable, industryIDs []string, withMOE bool) (stats, moes []namber.Namber) {
	for _, src := range sources {
		ids := make([]string, 0, len(industryIDs))
		for _, id := range industryIDs {
			if src.SectorField == "" {
				id = record.NoIndustryID
			}
			ids = append(ids, id)
		}
		for _, id := range record.Distinct(ids) {
			stats = append(stats, rec.Data.Get(src.VarParts.Stat.Alias, id))
			if !withMOE {
				continue
			}
			if src.VarParts.MOE == nil {
				moes = append(moes, namber.Parse(namber.NAString))
				continue
			}
			moes = append(moes, rec.Data.Get(src.VarParts.MOE.Alias, id))
		}
	}
	return stats, moes
}

// Formula selects how operands are combined.
type Formula struct {
	Processor metadata.Processor
	// TermProcessor is operand 1's own processor. It decides how a
	// record's operand-1 values reduce to the term that drives the
	// denominator fix-up of PERCENT and RATIO.
	TermProcessor metadata.OperandProcessor
	WithMOE       bool
}

// FormulaFor returns the formula of a vintage.
func FormulaFor(v metadata.Vintage) Formula {
	return Formula{Processor: v.Processor, TermProcessor: v.Operand1.Processor, WithMOE: MOEApplicable(v)}
}

// suppressedMOECodes are the MOE annotations that make a single identity
// estimate unusable.
var suppressedMOECodes = map[string]bool{"**": true, "***": true, "": true}

// Compute combines collected values into a stat and, when applicable, a
// margin of error.
func Compute(vals Values, f Formula) (record.DataRecord, error) {
	op2 := vals.Op2
	if f.Processor == metadata.ProcessorPercent || f.Processor == metadata.ProcessorRatio {
		op2 = fixDenominators(vals.Op1Terms, f.TermProcessor, vals.Op2)
	}

	var stat namber.Namber
	switch f.Processor {
	case metadata.ProcessorIdentity:
		stat = identityStat(vals, f.WithMOE)
	case metadata.ProcessorSum:
		stat = namber.Sum(append(append([]namber.Namber(nil), vals.Op1...), vals.Op2...)...)
	case metadata.ProcessorPercent, metadata.ProcessorRatio:
		stat = quotientStat(f.Processor, vals.Op1, op2)
	default:
		return record.DataRecord{}, apperrors.Fail("Unknown processor %s", f.Processor)
	}

	out := record.DataRecord{Stat: stat}
	if !f.WithMOE {
		return out, nil
	}
	var moe namber.Namber
	switch f.Processor {
	case metadata.ProcessorIdentity:
		moe = SumMOE(vals.Op1, vals.Op1MOE)
	case metadata.ProcessorSum:
		moe = SumMOE(
			append(append([]namber.Namber(nil), vals.Op1...), vals.Op2...),
			append(append([]namber.Namber(nil), vals.Op1MOE...), vals.Op2MOE...))
	case metadata.ProcessorPercent:
		moe = PercentMOE(vals.Op1, vals.Op1MOE, op2, vals.Op2MOE)
	case metadata.ProcessorRatio:
		moe = RatioMOE(vals.Op1, vals.Op1MOE, op2, vals.Op2MOE)
	}
	out.MOE = &moe
	return out, nil
}

func identityStat(vals Values, withMOE bool) namber.Namber {
	if withMOE && len(vals.Op1) == 1 && len(vals.Op1MOE) == 1 {
		if m := vals.Op1MOE[0]; m.IsNA() && suppressedMOECodes[m.Message()] {
			return namber.Parse(namber.NAString)
		}
	}
	// A lone value keeps its own message, such as a suppression code.
	if len(vals.Op1) == 1 {
		return vals.Op1[0]
	}
	return namber.Sum(vals.Op1...)
}

func quotientStat(p metadata.Processor, op1, op2 []namber.Namber) namber.Namber {
	num := namber.Sum(op1...)
	den := namber.Sum(op2...)
	if v, ok := num.Value(); ok && v == 0 {
		return namber.Zero
	}
	if v, ok := den.Value(); ok && v == 0 {
		return namber.Parse(namber.NAString)
	}
	if p == metadata.ProcessorPercent {
		return namber.Div(namber.Mul(num, namber.New(100)), den)
	}
	return namber.Div(num, den)
}

// fixDenominators returns a copy of op2 in which the entry of every record
// whose operand-1 term is zero or unavailable is replaced by that term, so
// a record that contributes nothing to the numerator contributes nothing to
// the denominator either.
func fixDenominators(terms [][]namber.Namber, p metadata.OperandProcessor, op2 []namber.Namber) []namber.Namber {
	out := append([]namber.Namber(nil), op2...)
	for i, t := range terms {
		if len(t) == 0 || i >= len(out) {
			continue
		}
		term := t[0]
		if len(t) > 1 && p == metadata.OperandSum {
			term = namber.Sum(t...)
		}
		if v, ok := term.Value(); !ok || v == 0 {
			out[i] = term
		}
	}
	return out
}

// scaled applies scale and rounding to a computed record.
func scaled(rec record.DataRecord, d metadata.DisplayProperties) (namber.Namber, *namber.Namber) {
	stat := record.ScaleAndRound(rec.Stat, d.ScaleFactor, d.Round)
	if rec.MOE == nil {
		return stat, nil
	}
	moe := record.ScaleAndRound(*rec.MOE, d.ScaleFactor, d.Round)
	return stat, &moe
}

// ComputeInto computes the per-industry estimates and the cluster estimate
// of a variable from records and stores them, scaled and rounded, in out.
// Per-industry results are keyed by the vintage's industry-like id.
func ComputeInto(out record.ClusteredVariableMap, variableID string, v metadata.Vintage, records []record.APIRecord, industryIDs []string, display metadata.DisplayProperties) error {
	f := FormulaFor(v)
	collect := func(ids []string) Values { return Collect(records, v, ids, f.WithMOE) }
	return computeAll(out, variableID, v.IndustryLikeID, collect, f, industryIDs, display)
}

// computeAll runs the formula once per industry and once over all of them.
func computeAll(out record.ClusteredVariableMap, variableID string, likeID func(string) string, collect func([]string) Values, f Formula, industryIDs []string, display metadata.DisplayProperties) error {
	industryIDs = record.IndustriesOrDefault(industryIDs)
	for _, id := range industryIDs {
		rec, err := Compute(collect([]string{id}), f)
		if err != nil {
			return err
		}
		stat, moe := scaled(rec, display)
		out.SetComputed(likeID(id), variableID, stat, moe)
	}
	rec, err := Compute(collect(industryIDs), f)
	if err != nil {
		return err
	}
	stat, moe := scaled(rec, display)
	out.SetComputed(record.ClusterIndustryID, variableID, stat, moe)
	return nil
}
