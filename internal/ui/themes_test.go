package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestSetTheme(t *testing.T) {
	orig := GetCurrentTheme()
	defer SetCurrentTheme(orig)

	tests := []struct {
		name string
		want string
	}{
		{"dark", "dark"},
		{"light", "light"},
		{"none", "none"},
		{"unknown", "dark"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetTheme(tt.name)
			if got := GetCurrentTheme().Name; got != tt.want {
				t.Errorf("theme = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInitThemeNoColor(t *testing.T) {
	orig := GetCurrentTheme()
	defer SetCurrentTheme(orig)

	InitTheme(true)
	if ColorRed() != "" || ColorReset() != "" {
		t.Error("colors should be empty with the no-color theme")
	}
	if _, ok := GetCurrentTableTheme().Header.(lipgloss.NoColor); !ok {
		t.Error("table theme should not carry colors with the no-color theme")
	}

	t.Setenv("NO_COLOR", "1")
	InitTheme(false)
	if GetCurrentTheme().Name != "none" {
		t.Errorf("NO_COLOR should disable colors, got theme %q", GetCurrentTheme().Name)
	}
}

func TestTableThemeFollowsTheme(t *testing.T) {
	orig := GetCurrentTheme()
	defer SetCurrentTheme(orig)

	SetCurrentTheme(LightTheme)
	if GetCurrentTableTheme() != LightTableTheme {
		t.Error("light theme should select the light table theme")
	}
	SetCurrentTheme(DarkTheme)
	if GetCurrentTableTheme() != DarkTableTheme {
		t.Error("dark theme should select the dark table theme")
	}
	if ColorGreen() != DarkTheme.Success {
		t.Errorf("ColorGreen() = %q, want %q", ColorGreen(), DarkTheme.Success)
	}
}
