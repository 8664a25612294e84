package format

import (
	"strconv"
	"strings"

	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/namber"
)

// Value renders a Namber with the display properties of a variable:
// rounding, optional thousands separators and the unit prefix and suffix.
// Unavailable values render as their message, or "n/a" without one.
func Value(n namber.Namber, props metadata.DisplayProperties) string {
	v, ok := n.Value()
	if !ok {
		if msg := n.Message(); msg != "" {
			return msg
		}
		return namber.NAString
	}
	return props.UOMPrefix + Number(v, props.Round, props.FormatNumber) + props.UOMSuffix
}

// Number rounds v to decimals places and optionally groups the integer
// digits by thousands.
func Number(v float64, decimals int, thousands bool) string {
	rounded, _ := namber.Round(namber.New(v), decimals).Value()
	s := strconv.FormatFloat(rounded, 'f', max(decimals, 0), 64)
	if !thousands {
		return s
	}

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteString("." + frac)
	}
	return sign + b.String()
}
