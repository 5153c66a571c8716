package statement

import (
	"context"

	"github.com/Carey99/rentledger/id"
)

type Store interface {
	// Create inserts an import with all its transactions (write-once).
	Create(ctx context.Context, imp *Import) error
	Get(ctx context.Context, importID id.ImportID) (*Import, error)
	List(ctx context.Context, landlordID string, opts ListOpts) ([]*Import, error)
	// MarkPromoted records the payment produced by confirming a
	// transaction. It fails if the transaction was already promoted.
	MarkPromoted(ctx context.Context, importID id.ImportID, txnID id.TransactionID, paymentID id.PaymentID) error
}

type ListOpts struct {
	Limit  int
	Offset int
}
