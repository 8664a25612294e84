package orchestration

import (
	"io"
	"sync"

	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/record"
)

// TabularParams selects what to fetch: data variables for a vintage and a
// set of industries, over geographies grouped by geo type id.
type TabularParams struct {
	Geographies record.PartitionsMap
	IndustryIDs []string
	Variables   []metadata.DataVariable
	Vintage     string
}

// FetchProgress reports how many fetch tasks of a batch have completed.
type FetchProgress struct {
	Done  int
	Total int
}

// ProgressReporter defines the interface for displaying fetch progress.
// This interface decouples the orchestration layer from the presentation
// layer.
type ProgressReporter interface {
	// DisplayProgress consumes updates until progressChan is closed, then
	// calls wg.Done. It is run in its own goroutine.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan FetchProgress, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan FetchProgress, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan FetchProgress, out io.Writer) {
	f(wg, progressChan, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the progress channel without displaying anything.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan FetchProgress, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}
