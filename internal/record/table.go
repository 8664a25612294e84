package record

// Table is a tabular upstream response: a header row and data rows whose
// cells may be null.
type Table struct {
	Header []string
	Rows   [][]*string
}

// Empty reports whether the table has no columns.
func (t Table) Empty() bool { return len(t.Header) == 0 }

// Index returns the position of a column, or -1.
func (t Table) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// Str returns a pointer to s for building table cells.
func Str(s string) *string { return &s }

// Row is one table row keyed by column name or alias.
type Row map[string]*string

// Value returns the cell text and whether it is present and non-null.
func (r Row) Value(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Has reports whether the key exists, null or not.
func (r Row) Has(key string) bool {
	_, ok := r[key]
	return ok
}
