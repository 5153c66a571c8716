package tenancy

import (
	"context"

	"github.com/Carey99/rentledger/id"
)

type Store interface {
	Create(ctx context.Context, t *Tenancy) error
	Get(ctx context.Context, tenancyID id.TenancyID) (*Tenancy, error)
	List(ctx context.Context, landlordID string, opts ListOpts) ([]*Tenancy, error)
	Update(ctx context.Context, t *Tenancy) error
	End(ctx context.Context, tenancyID id.TenancyID) error
}

type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
