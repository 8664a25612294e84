package orchestration

import (
	"time"

	"github.com/agbru/tabulate/internal/format"
)

// ProgressAggregator turns fetch progress updates into a completed
// fraction and an ETA. Both the CLI spinner and the server logs use it.
type ProgressAggregator struct {
	state *format.ProgressWithETA
	total int
}

// NewProgressAggregator creates an aggregator for total fetch tasks.
// Returns nil if total <= 0.
func NewProgressAggregator(total int) *ProgressAggregator {
	if total <= 0 {
		return nil
	}
	return &ProgressAggregator{state: format.NewProgressWithETA(total), total: total}
}

// AggregatedProgress holds the result of processing a single update.
type AggregatedProgress struct {
	Done     int
	Total    int
	Fraction float64
	ETA      time.Duration
}

// Update processes a single progress update.
func (a *ProgressAggregator) Update(update FetchProgress) AggregatedProgress {
	fraction, eta := a.state.UpdateWithETA(update.Done)
	return AggregatedProgress{Done: update.Done, Total: a.total, Fraction: fraction, ETA: eta}
}

// Fraction returns the current completed fraction without updating.
func (a *ProgressAggregator) Fraction() float64 {
	return a.state.Fraction()
}

// GetETA returns the current ETA estimate without updating.
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.GetETA()
}

// Total returns the number of tasks being tracked.
func (a *ProgressAggregator) Total() int {
	return a.total
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan FetchProgress) {
	for range progressChan {
	}
}
