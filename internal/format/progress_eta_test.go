package format

import (
	"strings"
	"testing"
	"time"
)

func TestNewProgressWithETA(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(3)

	if p.total != 3 {
		t.Errorf("total = %d, want 3", p.total)
	}
	if p.progressRate != 0 {
		t.Errorf("initial progressRate = %f, want 0", p.progressRate)
	}
	if p.startTime.IsZero() {
		t.Error("startTime should not be zero")
	}
}

func TestUpdateWithETA(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(4)

	fraction, eta := p.UpdateWithETA(1)
	if fraction != 0.25 {
		t.Errorf("fraction = %f, want 0.25", fraction)
	}
	if eta < 0 {
		t.Errorf("ETA should not be negative, got %v", eta)
	}

	fraction, _ = p.UpdateWithETA(3)
	if fraction != 0.75 {
		t.Errorf("fraction = %f, want 0.75", fraction)
	}
}

func TestGetETA(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(2)

	if eta := p.GetETA(); eta != 0 {
		t.Errorf("initial ETA = %v, want 0", eta)
	}

	p.Update(1)
	p.progressRate = 0.1

	// 50% remaining at 10%/s.
	eta := p.GetETA()
	expected := 5 * time.Second
	if eta < expected-time.Second || eta > expected+time.Second {
		t.Errorf("ETA = %v, want approximately %v", eta, expected)
	}

	p.Update(2)
	if eta := p.GetETA(); eta != 0 {
		t.Errorf("ETA after completion = %v, want 0", eta)
	}
}

func TestFormatETA(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		eta      time.Duration
		expected string
	}{
		{"Zero duration", 0, "calculating..."},
		{"Negative duration", -time.Second, "calculating..."},
		{"Less than a second", 500 * time.Millisecond, "< 1s"},
		{"One second", time.Second, "1s"},
		{"Multiple seconds", 45 * time.Second, "45s"},
		{"One minute", time.Minute, "1m"},
		{"Minutes and seconds", 2*time.Minute + 30*time.Second, "2m30s"},
		{"One hour", time.Hour, "1h"},
		{"Hours and minutes", time.Hour + 15*time.Minute, "1h15m"},
		{"Hours only (no minutes)", 2 * time.Hour, "2h"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatETA(tc.eta); got != tc.expected {
				t.Errorf("FormatETA(%v) = %q, want %q", tc.eta, got, tc.expected)
			}
		})
	}
}

func TestFormatProgressBarWithETA(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		fraction float64
		eta      time.Duration
		width    int
	}{
		{"Zero progress", 0, time.Minute, 10},
		{"Half way", 0.5, 30 * time.Second, 20},
		{"Complete", 1.0, 0, 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := FormatProgressBarWithETA(tc.fraction, tc.eta, tc.width)
			for _, want := range []string{"ETA:", "%", "[", "]"} {
				if !strings.Contains(result, want) {
					t.Errorf("FormatProgressBarWithETA() = %q, missing %q", result, want)
				}
			}
		})
	}
}

func TestProgressWithETAEdgeCases(t *testing.T) {
	t.Parallel()
	t.Run("Done exceeds total", func(t *testing.T) {
		t.Parallel()
		p := NewProgressWithETA(1)
		p.Update(5)
		if got := p.Fraction(); got != 1 {
			t.Errorf("fraction = %f, want 1", got)
		}
	})

	t.Run("Negative done", func(t *testing.T) {
		t.Parallel()
		p := NewProgressWithETA(1)
		p.Update(-3)
		if got := p.Fraction(); got != 0 {
			t.Errorf("fraction = %f, want 0", got)
		}
	})

	t.Run("No tasks", func(t *testing.T) {
		t.Parallel()
		p := NewProgressWithETA(0)
		p.Update(1)
		if got := p.Fraction(); got != 0 {
			t.Errorf("fraction = %f, want 0", got)
		}
	})
}

func TestETACapping(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(1000)
	p.Update(1)
	p.progressRate = 0.0000001

	if eta := p.GetETA(); eta > maxETA {
		t.Errorf("ETA = %v, should be capped at %v", eta, maxETA)
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		fraction float64
		length   int
		expected string
	}{
		{0.0, 10, "░░░░░░░░░░"},
		{0.5, 10, "█████░░░░░"},
		{1.0, 10, "██████████"},
		{1.2, 10, "██████████"},
		{-0.1, 10, "░░░░░░░░░░"},
	}

	for _, tt := range tests {
		if got := ProgressBar(tt.fraction, tt.length); got != tt.expected {
			t.Errorf("ProgressBar(%f, %d) = %s; want %s", tt.fraction, tt.length, got, tt.expected)
		}
	}
}

func TestElapsed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{500 * time.Microsecond, "0ms"},
		{250 * time.Millisecond, "250ms"},
		{2340 * time.Millisecond, "2.3s"},
		{95*time.Second + 600*time.Millisecond, "1m36s"},
	}

	for _, tt := range tests {
		if got := Elapsed(tt.d); got != tt.expected {
			t.Errorf("Elapsed(%v) = %s; want %s", tt.d, got, tt.expected)
		}
	}
}
