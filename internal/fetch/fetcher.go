//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks

package fetch

import (
	"context"

	"github.com/agbru/tabulate/internal/client"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/partition"
	"github.com/agbru/tabulate/internal/record"
)

// Request is one fetch: a data partition for a slice of geographies of one
// geo type.
type Request struct {
	Partition   *partition.Partition
	GeoType     metadata.GeoType
	Geographies []record.DetailedGeo
	IndustryIDs []string
}

// Fetcher retrieves the values of a partition for the requested
// geographies.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]record.APIRecord, error)
}

// DataAPI is the transport used by the Census fetcher.
type DataAPI interface {
	Fetch(ctx context.Context, q client.DataQuery) (record.Table, error)
}

// FeatureQuerier is the transport used by the Consumer fetcher.
type FeatureQuerier interface {
	Query(ctx context.Context, layerURL string, q client.FeatureQuery) ([]client.Feature, error)
}

// industries returns the industry ids values are stored under: the
// requested ones for partitions with an industry column, otherwise the
// no-industry id.
func industries(p *partition.Partition, requested []string) []string {
	if p.ParamInd != "" {
		return requested
	}
	return []string{record.NoIndustryID}
}
