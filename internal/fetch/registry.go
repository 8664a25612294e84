package fetch

import (
	"context"
	"sync"

	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/record"
)

// Registry maps a source tag to its fetcher.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[metadata.Source]Fetcher
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[metadata.Source]Fetcher)}
}

// Register binds a fetcher to a source tag, replacing any previous one.
func (r *Registry) Register(source metadata.Source, f Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[source] = f
}

// Lookup returns the fetcher of a source tag.
func (r *Registry) Lookup(source metadata.Source) (Fetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fetchers[source]
	if !ok {
		return nil, apperrors.Fail("Missing program source code path for %q", source)
	}
	return f, nil
}

// Fetch dispatches req to the fetcher of its partition's source.
func (r *Registry) Fetch(ctx context.Context, req Request) ([]record.APIRecord, error) {
	f, err := r.Lookup(req.Partition.DataSource)
	if err != nil {
		return nil, err
	}
	return f.Fetch(ctx, req)
}
