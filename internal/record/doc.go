// Package record defines the data model shared by fetchers, the
// orchestrator and the estimation engine: requested geographies, raw
// per-geography values keyed by source alias and industry, and computed
// estimates keyed by data variable and industry.
package record
