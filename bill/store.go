package bill

import (
	"context"

	"github.com/Carey99/rentledger/id"
)

type Store interface {
	// Create inserts a bill. It fails if a bill already exists for the
	// same (tenancy, for_year, for_month).
	Create(ctx context.Context, b *Bill) error
	Get(ctx context.Context, billID id.BillID) (*Bill, error)
	GetByPeriod(ctx context.Context, tenancyID id.TenancyID, month, year int) (*Bill, error)
	// ListOutstanding returns unsettled bills for a tenancy ordered
	// oldest (for_year, for_month) first.
	ListOutstanding(ctx context.Context, tenancyID id.TenancyID) ([]*Bill, error)
	List(ctx context.Context, tenancyID id.TenancyID, opts ListOpts) ([]*Bill, error)
	// UpdateCAS persists amount_paid and status only when the stored
	// version still matches b.Version; on success it increments the
	// version. A version mismatch is reported as a conflict.
	UpdateCAS(ctx context.Context, b *Bill) error
}

type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
