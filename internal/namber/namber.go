package namber

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
)

// NAString is the literal that marks an unavailable value in upstream data
// and in rendered output.
const NAString = "n/a"

// Messages attached to unavailable results.
const (
	MsgInputNA        = "An input value is already n/a"
	MsgDivideByZero   = "Cannot divide by zero"
	MsgNegativeSqrt   = "Cannot take the sqrt() of a negative number"
	MsgNaNArgument    = "Number argument was NaN"
	MsgUndefinedInput = "undefined value passed to Namber constructor"
)

var numberLike = regexp.MustCompile(`^((-(([1-9][0-9]*[0-9]?(\.\d+)?)|(0(\.\d+))|(\.\d+)))|(([1-9][0-9]*[0-9]?(\.\d+)?)|(0(\.\d+)?)|(\.\d+)))$`)

// Namber is a number that may be unavailable. An unavailable Namber keeps
// the errors that led to it and a short human-readable message.
//
// The zero value is the valid number 0.
type Namber struct {
	value   float64
	na      bool
	errors  []string
	message string
}

// Zero is the valid value 0, the seed for sums.
var Zero = New(0)

// New returns a valid Namber, or an unavailable one when v is NaN.
func New(v float64) Namber {
	if math.IsNaN(v) {
		return WithErrors([]string{MsgNaNArgument}, "")
	}
	return Namber{value: v}
}

// Parse converts upstream text. Strict decimal numbers become valid values,
// "n/a" becomes unavailable with no message, and any other text becomes
// unavailable with that text as its message.
func Parse(s string) Namber {
	if IsNumberLike(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return New(v)
		}
	}
	if s == NAString {
		return NA("")
	}
	return NA(s)
}

// FromPtr parses s, treating nil as an undefined input.
func FromPtr(s *string) Namber {
	if s == nil {
		return Undefined()
	}
	return Parse(*s)
}

// NA returns an unavailable Namber with no errors.
func NA(message string) Namber {
	return Namber{na: true, errors: []string{}, message: message}
}

// Undefined is the unavailable value produced for a missing input.
func Undefined() Namber {
	return WithErrors([]string{MsgUndefinedInput}, "")
}

// WithErrors returns an unavailable Namber carrying errors and message.
func WithErrors(errors []string, message string) Namber {
	errs := make([]string, len(errors))
	copy(errs, errors)
	return Namber{na: true, errors: errs, message: message}
}

// IsNumberLike reports whether s is a plain decimal number. Exponent
// notation, leading zeros and a leading plus sign are rejected.
func IsNumberLike(s string) bool {
	return numberLike.MatchString(s)
}

// Valid reports whether n holds a number.
func (n Namber) Valid() bool { return !n.na }

// IsNA reports whether n is unavailable.
func (n Namber) IsNA() bool { return n.na }

// Value returns the number and whether it is valid.
func (n Namber) Value() (float64, bool) { return n.value, !n.na }

// Float returns the number, or 0 when unavailable.
func (n Namber) Float() float64 {
	if n.na {
		return 0
	}
	return n.value
}

// Errors returns a copy of the provenance errors of an unavailable value.
func (n Namber) Errors() []string {
	if !n.na {
		return nil
	}
	out := make([]string, len(n.errors))
	copy(out, n.errors)
	return out
}

// Message returns the user-facing reason of an unavailable value.
func (n Namber) Message() string { return n.message }

// String renders valid values in shortest form and unavailable ones as "n/a".
func (n Namber) String() string {
	if n.na {
		return NAString
	}
	return strconv.FormatFloat(n.value, 'f', -1, 64)
}

type naJSON struct {
	Value   string   `json:"value"`
	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}

// MarshalJSON encodes valid values as numbers and unavailable ones as an
// object with the "n/a" marker.
func (n Namber) MarshalJSON() ([]byte, error) {
	if !n.na {
		return json.Marshal(n.value)
	}
	errs := n.errors
	if errs == nil {
		errs = []string{}
	}
	return json.Marshal(naJSON{Value: NAString, Errors: errs, Message: n.message})
}

// UnmarshalJSON accepts either form produced by MarshalJSON.
func (n *Namber) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*n = New(v)
		return nil
	}
	var obj naJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*n = WithErrors(obj.Errors, obj.Message)
	return nil
}
