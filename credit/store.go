package credit

import (
	"context"

	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/types"
)

type Store interface {
	Create(ctx context.Context, c *AdvanceCredit) error
	List(ctx context.Context, tenancyID id.TenancyID) ([]*AdvanceCredit, error)
	// Balance returns the total advance credit recorded for a tenancy.
	Balance(ctx context.Context, tenancyID id.TenancyID) (types.Money, error)
}
