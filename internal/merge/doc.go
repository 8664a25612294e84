// Package merge reassembles the column-partitioned responses of the data
// API into one table and converts its rows into alias-keyed records.
//
// A request selecting more columns than the endpoint accepts is split into
// several calls. Each response repeats the geography id columns, which
// MergeColumnPartitions uses as the join key. Converter then renames the
// upstream columns to the aliases of the sources that asked for them.
package merge
