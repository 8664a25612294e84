package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()
	modes := []string{"tabulate", "summary", "rank"}

	tests := []struct {
		shell string
		want  []string
	}{
		{"bash", []string{"complete -F _tabulate_completions tabulate", `modes="tabulate summary rank"`, "--metadata", "compgen -f"}},
		{"zsh", []string{"#compdef tabulate", "modes=(tabulate summary rank)", "'--mode[Tabulation mode]:mode:($modes)'"}},
		{"fish", []string{"complete -c tabulate -l mode -d 'Tabulation mode' -xa 'tabulate summary rank'", "-l metadata -d 'Metadata catalog' -rF"}},
		{"powershell", []string{"Register-ArgumentCompleter -CommandName 'tabulate'", "'tabulate', 'summary', 'rank'"}},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell, modes); err != nil {
				t.Fatalf("GenerateCompletion(%s) error = %v", tt.shell, err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("%s script missing %q", tt.shell, w)
				}
			}
		})
	}
}

func TestGenerateCompletionUnknownShell(t *testing.T) {
	t.Parallel()
	if err := GenerateCompletion(&bytes.Buffer{}, "tcsh", nil); err == nil {
		t.Error("expected an error for an unsupported shell")
	}
}

func TestFlagRegistryUnique(t *testing.T) {
	t.Parallel()
	seen := map[string]bool{}
	for _, f := range flagRegistry {
		for _, n := range flagNames(f) {
			if seen[n] {
				t.Errorf("duplicate flag %s", n)
			}
			seen[n] = true
		}
	}
}
