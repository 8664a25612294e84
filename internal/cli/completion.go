package cli

import (
	"fmt"
	"io"
	"strings"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// All shell completion functions generate from this registry, so adding
// a new flag only requires appending to flagRegistry.
type FlagCompletion struct {
	Long      string   // long flag name without "--" (e.g., "metadata")
	Short     string   // short flag without "-" (e.g., "r")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/no suggestions)
	ValueName string   // label for the value in zsh (e.g., "file", "duration")
	IsFile    bool     // true if the flag takes a file path
	IsMode    bool     // true if values come from the mode list
}

// flagRegistry is the central list of all CLI flags for completion generation.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Long: "metadata", Help: "Metadata catalog", IsFile: true, ValueName: "file"},
	{Long: "request", Short: "r", Help: "Request document", IsFile: true, ValueName: "file"},
	{Long: "upload", Help: "CSV upload", IsFile: true, ValueName: "file"},
	{Long: "upload-geo-type", Help: "Geo type of the uploaded rows", ValueName: "geotype"},
	{Long: "mode", Help: "Tabulation mode", IsMode: true, ValueName: "mode"},
	{Long: "data-api-host", Help: "Data API host override", ValueName: "host"},
	{Long: "api-key", Help: "Data API key", ValueName: "key"},
	{Long: "proxy-url", Help: "Proxy for long data API URLs", ValueName: "url"},
	{Long: "consumer-data-url", Help: "Consumer data base URL", ValueName: "url"},
	{Long: "url-length-limit", Help: "Longest GET URL", ValueName: "chars"},
	{Long: "geography-limit", Help: "Geographies per request", Values: []string{"100", "500", "1000"}, ValueName: "count"},
	{Long: "column-limit", Help: "Columns per data API request", Values: []string{"25", "50"}, ValueName: "count"},
	{Long: "page-size", Help: "Features per page", Values: []string{"500", "1000", "2000"}, ValueName: "count"},
	{Long: "concurrency", Help: "Concurrent fetch tasks", ValueName: "count"},
	{Long: "upstream-rps", Help: "Upstream requests per second", ValueName: "rps"},
	{Long: "timeout", Help: "Maximum execution time", Values: []string{"30s", "1m", "2m", "5m"}, ValueName: "duration"},
	{Long: "addr", Help: "Listen address", ValueName: "address"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level"},
	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts"},
	{Long: "json", Help: "Print results as JSON"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "output", Short: "o", Help: "Output file path", IsFile: true, ValueName: "file"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish", "powershell"}, ValueName: "shell"},
}

// GenerateCompletion generates a shell completion script for the specified
// shell. modes feeds the values of -mode.
func GenerateCompletion(out io.Writer, shell string, modes []string) error {
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(modes)
	case "zsh":
		script = zshCompletion(modes)
	case "fish":
		script = fishCompletion(modes)
	case "powershell", "ps":
		script = powerShellCompletion(modes)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion %s generation failed: %w", shell, err)
	}
	return nil
}

// flagNames returns the dash-prefixed spellings of f, long form first.
func flagNames(f FlagCompletion) []string {
	var names []string
	if f.Long != "" {
		names = append(names, "-"+f.Long, "--"+f.Long)
	}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

func bashCompletion(modes []string) string {
	var opts []string
	var cases strings.Builder
	var filePatterns []string
	for _, f := range flagRegistry {
		names := flagNames(f)
		opts = append(opts, names...)
		switch {
		case f.IsFile:
			filePatterns = append(filePatterns, names...)
		case f.IsMode:
			fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -W \"${modes}\" -- \"${cur}\") )\n            return 0\n            ;;\n",
				strings.Join(names, "|"))
		case len(f.Values) > 0:
			fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n            return 0\n            ;;\n",
				strings.Join(names, "|"), strings.Join(f.Values, " "))
		}
	}
	if len(filePatterns) > 0 {
		fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n            return 0\n            ;;\n",
			strings.Join(filePatterns, "|"))
	}

	return fmt.Sprintf(`# Bash completion script for tabulate
# Add this to your ~/.bashrc or ~/.bash_completion

_tabulate_completions() {
    local cur prev opts modes
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="%s"
    modes="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _tabulate_completions tabulate
`, strings.Join(opts, " "), strings.Join(modes, " "), cases.String())
}

func zshCompletion(modes []string) string {
	args := make([]string, 0, len(flagRegistry))
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}
	return fmt.Sprintf(`#compdef tabulate

# Zsh completion script for tabulate
# Add this to your ~/.zshrc or place in $fpath

_tabulate() {
    local -a modes
    modes=(%s)

    _arguments -s \
%s
}

_tabulate "$@"
`, strings.Join(modes, " "), strings.Join(args, " \\\n"))
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsMode:
		valueSuffix = fmt.Sprintf(":%s:($modes)", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, valueSuffix)
}

func fishCompletion(modes []string) string {
	lines := []string{
		"# Fish completion script for tabulate",
		"# Add this to ~/.config/fish/completions/tabulate.fish",
		"",
		"# Disable file completion by default",
		"complete -c tabulate -f",
		"",
	}
	for _, f := range flagRegistry {
		lines = append(lines, fishCompleteLine(f, modes))
	}
	return strings.Join(lines, "\n") + "\n"
}

// fishCompleteLine formats a single FlagCompletion as a fish complete command.
func fishCompleteLine(f FlagCompletion, modes []string) string {
	parts := []string{"complete -c tabulate"}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	parts = append(parts, "-l "+f.Long, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case f.IsMode:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(modes, " ")))
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}

func powerShellCompletion(modes []string) string {
	var options, switches []string
	for _, f := range flagRegistry {
		for _, name := range flagNames(f) {
			options = append(options, fmt.Sprintf("        @{Name = '%s'; Description = '%s' }", name, f.Help))
		}
		values := f.Values
		if f.IsMode {
			values = modes
		}
		if len(values) == 0 || f.IsFile {
			continue
		}
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = "'" + v + "'"
		}
		switches = append(switches, fmt.Sprintf(`        '--%s' {
            @(%s) | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }`, f.Long, strings.Join(quoted, ", ")))
	}

	return fmt.Sprintf(`# PowerShell completion script for tabulate
# Add this to your $PROFILE

Register-ArgumentCompleter -CommandName 'tabulate' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
%s
    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    switch ($prevElement) {
%s
    }

    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`, strings.Join(options, "\n"), strings.Join(switches, "\n"))
}
