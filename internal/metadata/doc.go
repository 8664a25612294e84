// Package metadata is the read-only catalog of geo types, programs, data
// variables and their geo-type vintages.
//
// A Repository is built once from a YAML catalog (see LoadFile) and injected
// into every component that needs metadata. Vintages are resolved on demand:
// each source reference is expanded with its program's endpoint, flag and
// margin of error columns, and an alias of the form
// <variable>_<column>_<operand>_<index> under which fetched values are stored.
//
// Variables created from user uploads are the only runtime additions.
package metadata
