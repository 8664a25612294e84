package fetch

import (
	"context"
	"encoding/csv"
	"io"
	"sync"

	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/namber"
	"github.com/agbru/tabulate/internal/record"
)

// UploadData is a user-uploaded table. The first column of every row holds
// the geography id.
type UploadData struct {
	Header []string
	Rows   [][]string
}

// Columns returns the data columns offered as variables.
func (u UploadData) Columns() []string {
	if len(u.Header) < 2 {
		return nil
	}
	return u.Header[1:]
}

func (u UploadData) row(geoID string) ([]string, bool) {
	for _, r := range u.Rows {
		if len(r) > 0 && r[0] == geoID {
			return r, true
		}
	}
	return nil, false
}

func (u UploadData) cell(row []string, column string) string {
	for i, h := range u.Header {
		if h == column && i < len(row) {
			return row[i]
		}
	}
	return ""
}

// UploadStore holds the uploaded table the Upload fetcher reads.
type UploadStore interface {
	Current() (UploadData, bool)
}

// MemoryUploads is an in-memory UploadStore.
type MemoryUploads struct {
	mu   sync.RWMutex
	data *UploadData
}

// Set replaces the current upload.
func (m *MemoryUploads) Set(data UploadData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = &data
}

// Current implements UploadStore.
func (m *MemoryUploads) Current() (UploadData, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return UploadData{}, false
	}
	return *m.data, true
}

// LoadCSV reads an upload from CSV with a header row.
func LoadCSV(r io.Reader) (UploadData, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true
	records, err := rd.ReadAll()
	if err != nil {
		return UploadData{}, apperrors.WrapError(err, "reading uploaded csv")
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return UploadData{}, apperrors.ValidationError{Field: "upload", Message: "expected a header with an id column and at least one data column"}
	}
	return UploadData{Header: records[0], Rows: records[1:]}, nil
}

// RegisterUpload stores data as the current upload and registers one data
// variable per data column.
func RegisterUpload(repo *metadata.Repository, store *MemoryUploads, info metadata.UploadInfo, data UploadData) error {
	cols := data.Columns()
	vars := make([]metadata.UploadedVariable, 0, len(cols))
	for _, c := range cols {
		vars = append(vars, metadata.UploadedVariable{ID: c, Name: c})
	}
	if err := repo.RegisterUserVariables(info, vars); err != nil {
		return err
	}
	store.Set(data)
	return nil
}

// Upload serves partitions of user-uploaded variables. Uploads carry no
// industry dimension and no margins of error.
type Upload struct {
	store UploadStore
}

// NewUpload creates an Upload fetcher.
func NewUpload(store UploadStore) *Upload {
	return &Upload{store: store}
}

// Fetch implements Fetcher.
func (u *Upload) Fetch(_ context.Context, req Request) ([]record.APIRecord, error) {
	data, _ := u.store.Current()
	out := make([]record.APIRecord, 0, len(req.Geographies))
	for _, geo := range req.Geographies {
		rec := record.NewAPIRecord(req.GeoType.ID, geo)
		row, found := data.row(geo.ID)
		for _, vp := range req.Partition.VariableParts {
			value := namber.NA("")
			if found {
				if v := data.cell(row, vp.Stat.Name); namber.IsNumberLike(v) {
					value = namber.Parse(v)
				}
			}
			record.SetAPIData(record.NoIndustryID, rec.Data, record.Aliased{Alias: vp.Stat.Alias, Value: value}, nil)
		}
		out = append(out, rec)
	}
	return out, nil
}
