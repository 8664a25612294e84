package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/agbru/tabulate/internal/format"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/orchestration"
	"github.com/agbru/tabulate/internal/tabulate"
	"github.com/agbru/tabulate/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter for CLI output.
// It wraps the DisplayProgress function to provide a spinner and progress bar
// display while fetch tasks run.
type CLIProgressReporter struct{}

// Verify that CLIProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for running fetches.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.FetchProgress, out io.Writer) {
	DisplayProgress(wg, progressChan, out)
}

// CLIResultPresenter renders tabulation results as tables.
type CLIResultPresenter struct {
	// Variables gives the order and display properties of the rows.
	Variables []metadata.DataVariable
}

// Present writes the table matching the type of result. Unknown result
// types are reported as an error.
func (p CLIResultPresenter) Present(out io.Writer, result any) error {
	var rendered string
	switch r := result.(type) {
	case tabulate.TabularResult:
		rendered = RenderTabular(r, p.Variables)
	case tabulate.SummaryResult:
		rendered = RenderSummary(r, p.Variables)
	case tabulate.ComparisonResult:
		rendered = RenderComparison(r, p.first())
	case tabulate.RankingResult:
		rendered = RenderRanking(r, p.first())
	case tabulate.TimeSeriesResult:
		rendered = RenderTimeSeries(r, p.first())
	default:
		return fmt.Errorf("no table layout for %T", result)
	}
	_, err := fmt.Fprintln(out, rendered)
	return err
}

func (p CLIResultPresenter) first() metadata.DataVariable {
	if len(p.Variables) == 0 {
		return metadata.DataVariable{}
	}
	return p.Variables[0]
}

// DisplayCompletion prints the closing line of a run.
func DisplayCompletion(out io.Writer, mode string, d time.Duration) {
	fmt.Fprintf(out, "\n%s✓ %s completed in %s%s%s\n",
		ui.ColorGreen(), mode, ui.ColorYellow(), format.Elapsed(d), ui.ColorReset())
}
