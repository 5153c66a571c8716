package payment

import (
	"context"

	"github.com/Carey99/rentledger/id"
)

type Store interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, paymentID id.PaymentID) (*Payment, error)
	// GetBySourceTransaction looks up a payment by its external source
	// transaction reference (callback idempotency).
	GetBySourceTransaction(ctx context.Context, sourceTxnID string) (*Payment, error)
	List(ctx context.Context, tenancyID id.TenancyID, opts ListOpts) ([]*Payment, error)
	// Latest returns the most recent payment for a tenancy by ReceivedAt.
	Latest(ctx context.Context, tenancyID id.TenancyID) (*Payment, error)
}

type ListOpts struct {
	Method Method
	Limit  int
	Offset int
}
