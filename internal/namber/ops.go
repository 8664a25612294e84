package namber

import (
	"math"
	"strconv"
)

// check inspects a valid operand and returns a non-empty message when the
// operation must not proceed.
type check func(v float64) string

func nonZero(v float64) string {
	if v == 0 {
		return MsgDivideByZero
	}
	return ""
}

func nonNegative(v float64) string {
	if v < 0 {
		return MsgNegativeSqrt
	}
	return ""
}

// validate folds the provenance of every unavailable operand and the
// messages of fired checks. checks[i] applies to args[i] and may be nil.
func validate(args []Namber, checks []check) (errs []string, message string, failed bool) {
	seen := make(map[string]struct{})
	add := func(e string) {
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		errs = append(errs, e)
	}

	for _, a := range args {
		if a.na {
			failed = true
			for _, e := range a.errors {
				add(e)
			}
		}
	}
	for i, a := range args {
		if a.na || i >= len(checks) || checks[i] == nil {
			continue
		}
		if msg := checks[i](a.value); msg != "" {
			if message == "" {
				message = msg
			}
			failed = true
			add(msg)
		}
	}
	if failed && message == "" {
		message = MsgInputNA
	}
	return errs, message, failed
}

func unary(a Namber, fn func(float64) float64, c check) Namber {
	if errs, msg, failed := validate([]Namber{a}, []check{c}); failed {
		return WithErrors(errs, msg)
	}
	return New(fn(a.value))
}

func binary(a, b Namber, fn func(float64, float64) float64, right check) Namber {
	if errs, msg, failed := validate([]Namber{a, b}, []check{nil, right}); failed {
		return WithErrors(errs, msg)
	}
	return New(fn(a.value, b.value))
}

// Add returns a + b.
func Add(a, b Namber) Namber {
	return binary(a, b, func(l, r float64) float64 { return l + r }, nil)
}

// Sub returns a - b.
func Sub(a, b Namber) Namber {
	return binary(a, b, func(l, r float64) float64 { return l - r }, nil)
}

// Mul returns a * b.
func Mul(a, b Namber) Namber {
	return binary(a, b, func(l, r float64) float64 { return l * r }, nil)
}

// Div returns a / b; a zero divisor yields "Cannot divide by zero".
func Div(a, b Namber) Namber {
	return binary(a, b, func(l, r float64) float64 { return l / r }, nonZero)
}

// Pow returns a raised to exp.
func Pow(a, exp Namber) Namber {
	return binary(a, exp, math.Pow, nil)
}

// Min returns the smaller of a and b.
func Min(a, b Namber) Namber {
	return binary(a, b, math.Min, nil)
}

// Max returns the larger of a and b.
func Max(a, b Namber) Namber {
	return binary(a, b, math.Max, nil)
}

// Sqrt returns the square root; negative input yields an unavailable value.
func Sqrt(a Namber) Namber {
	return unary(a, math.Sqrt, nonNegative)
}

// Round rounds to the given number of decimals. Halves round toward
// positive infinity.
func Round(a Namber, decimals int) Namber {
	return unary(a, func(v float64) float64 { return roundTo(v, decimals) }, nil)
}

// Equal reports whether a and b hold the same number. Unavailable values
// are never equal, not even to themselves.
func Equal(a, b Namber) bool {
	if a.na || b.na {
		return false
	}
	return a.value == b.value
}

// Sum adds all values starting from Zero.
func Sum(values ...Namber) Namber {
	total := Zero
	for _, v := range values {
		total = Add(total, v)
	}
	return total
}

// Square returns a * a.
func Square(a Namber) Namber { return Mul(a, a) }

// roundTo shifts the decimal point through the textual exponent so that
// values such as 1.005 round on their decimal representation rather than
// their binary approximation.
func roundTo(v float64, decimals int) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	shifted := shift(v, decimals)
	rounded := math.Floor(shifted + 0.5)
	return shift(rounded, -decimals)
}

func shift(v float64, places int) float64 {
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mantissa, exp := s, 0
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == 'e' {
			mantissa = s[:i]
			exp, _ = strconv.Atoi(s[i+1:])
			break
		}
	}
	out, err := strconv.ParseFloat(mantissa+"e"+strconv.Itoa(exp+places), 64)
	if err != nil {
		return v * math.Pow10(places)
	}
	return out
}
