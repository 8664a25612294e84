package format

import (
	"testing"

	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/namber"
)

func TestNumber(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		v         float64
		decimals  int
		thousands bool
		want      string
	}{
		{"integer", 1234567, 0, true, "1,234,567"},
		{"no grouping", 1234567, 0, false, "1234567"},
		{"decimals", 1234.5678, 2, true, "1,234.57"},
		{"half rounds up", 2.5, 0, true, "3"},
		{"negative", -1234.5, 1, true, "-1,234.5"},
		{"small", 12, 1, true, "12.0"},
		{"three digits", 999, 0, true, "999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Number(tt.v, tt.decimals, tt.thousands); got != tt.want {
				t.Errorf("Number(%v, %d, %v) = %q, want %q", tt.v, tt.decimals, tt.thousands, got, tt.want)
			}
		})
	}
}

func TestValue(t *testing.T) {
	t.Parallel()
	money := metadata.DisplayProperties{Round: 2, ScaleFactor: 1, UOMPrefix: "$", FormatNumber: true}
	pct := metadata.DisplayProperties{Round: 1, ScaleFactor: 1, UOMSuffix: "%", FormatNumber: true}

	tests := []struct {
		name  string
		n     namber.Namber
		props metadata.DisplayProperties
		want  string
	}{
		{"prefix", namber.New(12345.678), money, "$12,345.68"},
		{"suffix", namber.New(75), pct, "75.0%"},
		{"unavailable", namber.NA(""), money, "n/a"},
		{"suppressed", namber.NA("Suppressed (D)"), money, "Suppressed (D)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Value(tt.n, tt.props); got != tt.want {
				t.Errorf("Value() = %q, want %q", got, tt.want)
			}
		})
	}
}
