package meter

import (
	"context"
	"time"

	"github.com/Carey99/rentledger/id"
)

type Store interface {
	IngestBatch(ctx context.Context, readings []*UtilityReading) error
	// AggregateMonth sums units per utility type for one calendar month.
	AggregateMonth(ctx context.Context, tenancyID id.TenancyID, month, year int) (map[string]int64, error)
	Query(ctx context.Context, tenancyID id.TenancyID, opts QueryOpts) ([]*UtilityReading, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}

type QueryOpts struct {
	UtilityType string
	Start       time.Time
	End         time.Time
	Limit       int
	Offset      int
}
