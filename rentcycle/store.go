package rentcycle

import (
	"context"
	"time"

	"github.com/Carey99/rentledger/id"
)

// Store caches resolved cycles for display reads. The cache is never
// authoritative: every ledger write for a tenancy invalidates its entry.
type Store interface {
	GetCached(ctx context.Context, tenancyID id.TenancyID) (*RentCycle, error)
	SetCached(ctx context.Context, tenancyID id.TenancyID, cycle *RentCycle, ttl time.Duration) error
	Invalidate(ctx context.Context, tenancyID id.TenancyID) error
}
