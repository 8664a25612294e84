// Package partition splits a tabulation request into upstream calls.
//
// ByEndpoint folds the sources of the requested data variables into one
// Partition per endpoint, so that every column served by the same URL is
// fetched together. Geographies groups the requested geographies of a geo
// type by their parent FIPS fields and splits the groups to the
// per-request geography limit.
package partition
