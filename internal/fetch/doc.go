// Package fetch turns data partitions into per-geography API records.
//
// Each upstream provider has its own Fetcher: Census for the statistical
// data API, Consumer for the consumer-data feature service and Upload for
// user-uploaded tables. A Registry dispatches partitions to the fetcher of
// their source. Every fetcher returns exactly one record per requested
// geography; values missing upstream are stored as unavailable Nambers.
package fetch
