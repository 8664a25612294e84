// Package tabulate computes estimates and their margins of error from the
// raw records the orchestrator fetches.
//
// The engine (engine.go, moe.go) is pure: it collects operand values from
// records, combines them with the variable's processor, propagates margins
// of error and applies scale and rounding. The Service wraps it in the
// request patterns callers use: per-geography tabulation, regional
// summaries, comparison against parent geographies, peer ranking and time
// series across vintages.
package tabulate
