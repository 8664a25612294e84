package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/agbru/tabulate/internal/config"
	"github.com/agbru/tabulate/internal/record"
	"github.com/agbru/tabulate/internal/ui"
)

// PrintExecutionConfig displays the run configuration: mode, vintage,
// requested variables and the number of geographies per geo type.
func PrintExecutionConfig(cfg config.AppConfig, vintage string, variableIDs []string, geos record.PartitionsMap, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Mode %s%s%s for vintage %s%s%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), cfg.Mode, ui.ColorReset(),
		ui.ColorCyan(), vintage, ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Variables: %s%s%s.\n", ui.ColorCyan(), strings.Join(variableIDs, ", "), ui.ColorReset())
	fmt.Fprintf(out, "Geographies: %s.\n", geographySummary(geos))
	fmt.Fprintf(out, "Limits: %s%d%s geographies and %s%d%s columns per request, %s%d%s concurrent fetches.\n",
		ui.ColorCyan(), cfg.GeographyLimit, ui.ColorReset(),
		ui.ColorCyan(), cfg.ColumnLimit, ui.ColorReset(),
		ui.ColorCyan(), cfg.Concurrency, ui.ColorReset())
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

func geographySummary(geos record.PartitionsMap) string {
	if len(geos) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(geos))
	for _, id := range sortedKeys(geos) {
		parts = append(parts, fmt.Sprintf("%d %s", len(geos[id].Flatten()), id))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m record.PartitionsMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
