package tabulate

import (
	"math"

	"github.com/agbru/tabulate/internal/namber"
)

// MsgNoValidValues is the message of a summed MOE with nothing to sum.
const MsgNoValidValues = "No valid values present in estimates and estimatesMOE"

var hundred = namber.New(100)

// SumMOE is the margin of error of a sum of estimates. A single pair is
// passed through. Otherwise unavailable entries count as zero, MOEs of
// non-zero estimates add in quadrature and only the largest MOE of a zero
// estimate is added.
func SumMOE(estimates, moes []namber.Namber) namber.Namber {
	if len(estimates) == 1 && len(moes) == 1 {
		return moes[0]
	}
	if allNA(estimates) && allNA(moes) {
		return namber.Parse(MsgNoValidValues)
	}

	var sumSquares, maxZero float64
	for i, m := range moes {
		moe := orZero(m)
		if i < len(estimates) && orZero(estimates[i]) == 0 {
			maxZero = math.Max(maxZero, moe)
			continue
		}
		sumSquares += moe * moe
	}
	return namber.New(math.Sqrt(sumSquares + maxZero*maxZero))
}

// PercentMOE is the margin of error of 100 * Σnum / Σden. When the primary
// radicand is not positive the subtraction is flipped to an addition.
func PercentMOE(num, numMOE, den, denMOE []namber.Namber) namber.Namber {
	sumNum := namber.Sum(num...)
	sumDen := namber.Sum(den...)
	moeNum := SumMOE(num, numMOE)
	moeDen := SumMOE(den, denMOE)

	if namber.Equal(sumNum, sumDen) {
		return namber.Mul(namber.Div(moeNum, sumDen), hundred)
	}

	lhs := namber.Square(moeNum)
	rhs := namber.Mul(namber.Square(namber.Div(sumNum, sumDen)), namber.Square(moeDen))
	radicand := namber.Sub(lhs, rhs)
	if v, ok := radicand.Value(); ok && v <= 0 {
		radicand = namber.Add(lhs, rhs)
	}
	return namber.Mul(namber.Div(namber.Sqrt(radicand), sumDen), hundred)
}

// RatioMOE is the margin of error of Σnum / Σden.
func RatioMOE(num, numMOE, den, denMOE []namber.Namber) namber.Namber {
	sumNum := namber.Sum(num...)
	sumDen := namber.Sum(den...)
	moeNum := SumMOE(num, numMOE)
	moeDen := SumMOE(den, denMOE)

	radicand := namber.Add(
		namber.Square(moeNum),
		namber.Mul(namber.Square(namber.Div(sumNum, sumDen)), namber.Square(moeDen)))
	return namber.Div(namber.Sqrt(radicand), sumDen)
}

func allNA(values []namber.Namber) bool {
	for _, v := range values {
		if v.Valid() {
			return false
		}
	}
	return true
}

func orZero(n namber.Namber) float64 {
	if v, ok := n.Value(); ok {
		return v
	}
	return 0
}
