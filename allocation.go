package rentledger

import (
	"context"
	"errors"
	"time"

	"github.com/Carey99/rentledger/bill"
	"github.com/Carey99/rentledger/credit"
	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/payment"
	"github.com/Carey99/rentledger/types"
)

// ApplyPaymentInput describes one money-in event to allocate.
type ApplyPaymentInput struct {
	TenancyID           id.TenancyID
	Amount              types.Money
	Method              payment.Method
	ReceivedAt          time.Time
	SourceTransactionID string
	Metadata            map[string]string
}

// ApplyPayment applies a payment to a tenancy's outstanding bills,
// oldest (forYear, forMonth) first. Whatever remains after every
// outstanding bill is settled becomes advance credit: whole months at
// the tenancy's base rent, then days from the remainder.
//
// The returned Payment is immutable; its allocations plus the advance
// amount always sum to the paid amount. The whole sequence for one
// tenancy runs in a per-tenancy critical section, and bill writes go
// through versioned compare-and-swap with a bounded retry — losing the
// race past the retry budget surfaces ErrConcurrentModification.
//
// Payments carrying a SourceTransactionID are idempotent: a replay
// returns the originally recorded Payment without moving money again.
func (e *Engine) ApplyPayment(ctx context.Context, in ApplyPaymentInput) (*payment.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	// Fast path: a replayed source transaction returns the recorded
	// payment without taking the tenancy lock.
	if in.SourceTransactionID != "" {
		if existing, err := e.store.GetPaymentBySourceTransaction(ctx, in.SourceTransactionID); err == nil {
			return existing, nil
		}
	}

	t, err := e.store.GetTenancy(ctx, in.TenancyID)
	if err != nil {
		return nil, err
	}

	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	mu := e.tenancyLock(in.TenancyID)
	mu.Lock()
	defer mu.Unlock()

	// Concurrent deliveries of one callback can both miss the unlocked
	// lookup; re-check under the lock before touching any bill.
	if in.SourceTransactionID != "" {
		if existing, err := e.store.GetPaymentBySourceTransaction(ctx, in.SourceTransactionID); err == nil {
			return existing, nil
		}
	}

	remaining := in.Amount
	allocations := make([]payment.Allocation, 0, 4)

	outstanding, err := e.store.ListOutstandingBills(ctx, in.TenancyID)
	if err != nil {
		return nil, err
	}

	for _, b := range outstanding {
		if !remaining.IsPositive() {
			break
		}
		applied, err := e.settleBill(ctx, b, remaining)
		if err != nil {
			return nil, err
		}
		if applied.IsPositive() {
			allocations = append(allocations, payment.Allocation{BillID: b.ID, Amount: applied})
			remaining = remaining.Subtract(applied)
		}
	}

	p := &payment.Payment{
		Entity:              types.NewEntity(),
		ID:                  id.NewPaymentID(),
		TenancyID:           in.TenancyID,
		LandlordID:          t.LandlordID,
		Amount:              in.Amount,
		Method:              in.Method,
		SourceTransactionID: in.SourceTransactionID,
		Allocations:         allocations,
		AdvanceAmount:       types.Zero(in.Amount.Currency),
		ReceivedAt:          receivedAt,
		Metadata:            in.Metadata,
	}

	if remaining.IsPositive() {
		p.AdvanceAmount = remaining
	}

	// The payment row claims the source-transaction unique index before
	// any credit is recorded; a lost race here leaves nothing behind.
	if err := e.store.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	// Surplus past every outstanding bill is advance credit, not a
	// pre-billed future month.
	if remaining.IsPositive() {
		months, days := credit.Split(remaining, t.BaseRent)
		c := &credit.AdvanceCredit{
			Entity:    types.NewEntity(),
			ID:        id.NewCreditID(),
			TenancyID: in.TenancyID,
			PaymentID: p.ID,
			Amount:    remaining,
			Months:    months,
			Days:      days,
		}
		if err := e.store.CreateCredit(ctx, c); err != nil {
			return nil, err
		}
		e.plugins.EmitAdvanceCredited(ctx, c)
	}
	_ = e.store.InvalidateCycle(ctx, in.TenancyID) //nolint:errcheck // best-effort cache invalidation

	e.logger.Info("payment applied",
		"payment_id", p.ID.String(),
		"tenancy_id", in.TenancyID.String(),
		"amount", in.Amount.String(),
		"method", string(in.Method),
		"bills_settled", len(allocations),
		"advance", p.AdvanceAmount.String(),
	)

	e.plugins.EmitPaymentApplied(ctx, p)
	return p, nil
}

// settleBill applies up to available against one bill through the
// store's versioned CAS, re-reading and retrying a bounded number of
// times when another writer got there first.
func (e *Engine) settleBill(ctx context.Context, b *bill.Bill, available types.Money) (types.Money, error) {
	for attempt := 0; ; attempt++ {
		due := b.Remaining()
		applied := available.Min(due)
		if !applied.IsPositive() {
			return types.Zero(available.Currency), nil
		}

		b.AmountPaid = b.AmountPaid.Add(applied)
		if b.AmountPaid.Equal(b.TotalDue) {
			b.Status = bill.StatusCompleted
		} else {
			b.Status = bill.StatusPartial
		}

		err := e.store.UpdateBillCAS(ctx, b)
		if err == nil {
			return applied, nil
		}
		if !errors.Is(err, ErrConcurrentModification) || attempt >= e.allocationRetries {
			return types.Zero(available.Currency), err
		}

		e.plugins.EmitAllocationRetried(ctx, b.TenancyID.String(), attempt+1)
		e.logger.Warn("lost bill update race, retrying",
			"bill_id", b.ID.String(),
			"attempt", attempt+1,
		)

		fresh, getErr := e.store.GetBill(ctx, b.ID)
		if getErr != nil {
			return types.Zero(available.Currency), getErr
		}
		*b = *fresh
	}
}

// GetPayment retrieves a payment by ID.
func (e *Engine) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	return e.store.GetPayment(ctx, paymentID)
}

// ListPayments lists a tenancy's payments oldest first.
func (e *Engine) ListPayments(ctx context.Context, tenancyID id.TenancyID, opts payment.ListOpts) ([]*payment.Payment, error) {
	return e.store.ListPayments(ctx, tenancyID, opts)
}

// ListCredits lists a tenancy's advance credit records.
func (e *Engine) ListCredits(ctx context.Context, tenancyID id.TenancyID) ([]*credit.AdvanceCredit, error) {
	return e.store.ListCredits(ctx, tenancyID)
}
