package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the ANSI escape codes of one color scheme. Every field is
// empty in NoColorTheme.
type Theme struct {
	Name      string
	Primary   string // headings, geography names
	Secondary string
	Success   string // estimates and completion lines
	Warning   string // NA cells, timeouts
	Error     string
	Info      string // variable names
	Bold      string
	Underline string
	Reset     string
}

// TableTheme colors the lipgloss result tables.
type TableTheme struct {
	Header      lipgloss.TerminalColor
	Border      lipgloss.TerminalColor
	Text        lipgloss.TerminalColor
	Unavailable lipgloss.TerminalColor
	Accent      lipgloss.TerminalColor
}

const (
	bold      = "\033[1m"
	underline = "\033[4m"
	reset     = "\033[0m"
)

func ansi256(code string) string { return "\033[38;5;" + code + "m" }

var (
	DarkTheme = Theme{
		Name: "dark", Primary: ansi256("39"), Secondary: ansi256("245"),
		Success: ansi256("82"), Warning: ansi256("220"), Error: ansi256("196"), Info: ansi256("141"),
		Bold: bold, Underline: underline, Reset: reset,
	}
	LightTheme = Theme{
		Name: "light", Primary: ansi256("27"), Secondary: ansi256("240"),
		Success: ansi256("28"), Warning: ansi256("130"), Error: ansi256("124"), Info: ansi256("54"),
		Bold: bold, Underline: underline, Reset: reset,
	}
	NoColorTheme = Theme{Name: "none"}

	DarkTableTheme = TableTheme{
		Header: lipgloss.Color("39"), Border: lipgloss.Color("245"), Text: lipgloss.Color("252"),
		Unavailable: lipgloss.Color("220"), Accent: lipgloss.Color("82"),
	}
	LightTableTheme = TableTheme{
		Header: lipgloss.Color("27"), Border: lipgloss.Color("240"), Text: lipgloss.Color("235"),
		Unavailable: lipgloss.Color("130"), Accent: lipgloss.Color("28"),
	}
	NoColorTableTheme = TableTheme{
		Header: lipgloss.NoColor{}, Border: lipgloss.NoColor{}, Text: lipgloss.NoColor{},
		Unavailable: lipgloss.NoColor{}, Accent: lipgloss.NoColor{},
	}
)

var (
	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		NoColorTheme.Name: NoColorTheme,
	}
	tableThemes = map[string]TableTheme{
		DarkTheme.Name:    DarkTableTheme,
		LightTheme.Name:   LightTableTheme,
		NoColorTheme.Name: NoColorTableTheme,
	}

	mu           sync.RWMutex
	currentTheme = DarkTheme
)

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	mu.RLock()
	defer mu.RUnlock()
	return currentTheme
}

// GetCurrentTableTheme returns the table colors paired with the active
// theme.
func GetCurrentTableTheme() TableTheme {
	mu.RLock()
	defer mu.RUnlock()
	if tt, ok := tableThemes[currentTheme.Name]; ok {
		return tt
	}
	return DarkTableTheme
}

// SetCurrentTheme installs t as the active theme. Tests use it to restore
// state.
func SetCurrentTheme(t Theme) {
	mu.Lock()
	defer mu.Unlock()
	currentTheme = t
}

// SetTheme activates the theme called name ("dark", "light" or "none").
// Unknown names fall back to dark.
func SetTheme(name string) {
	t, ok := themes[name]
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
}

// InitTheme picks the theme for a run. Colors are off when noColor is set
// or when NO_COLOR is present in the environment, whatever its value.
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(DarkTheme)
}
