// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayResult], [DisplayProgress].
//
//   - Render* and Format* functions return a string without performing I/O.
//     Examples: [RenderSummary], [FormatProgress].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agbru/tabulate/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the JSON result (empty for no file output).
	OutputFile string
	// Quiet mode suppresses everything but the result.
	Quiet bool
	// JSON prints the result as JSON instead of tables.
	JSON bool
}

// WriteResultToFile writes result as indented JSON to the configured file,
// creating its directory when needed.
func WriteResultToFile(result any, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	return DisplayJSON(file, result)
}

// DisplayJSON writes result as indented JSON.
func DisplayJSON(out io.Writer, result any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// DisplayResult displays a result with the given output configuration:
// JSON or tables on out, plus the optional file copy.
func DisplayResult(out io.Writer, result any, presenter CLIResultPresenter, config OutputConfig) error {
	var err error
	if config.JSON {
		err = DisplayJSON(out, result)
	} else {
		err = presenter.Present(out, result)
	}
	if err != nil {
		return err
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(result, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}
