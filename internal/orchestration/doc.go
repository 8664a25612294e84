// Package orchestration fans fetches out over geo types, geography
// partitions and data partitions, joins them, and merges the records of
// each geography into one. It reports fetch progress through the
// ProgressReporter interface so that presentation stays outside the
// package.
package orchestration
