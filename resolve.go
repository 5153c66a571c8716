package rentledger

import (
	"context"
	"errors"
	"time"

	"github.com/Carey99/rentledger/bill"
	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/rentcycle"
)

// ResolveStatus derives the current rent cycle for a tenancy: its
// display status, next due date, outstanding debt, and any advance
// credit expressed as months and days of base rent.
//
// Results are served from a short-TTL cache; a cache miss recomputes
// the cycle from stored bills, credits, and payments. Recomputation is
// pure, so an invalidated or expired entry always converges back to
// the same value.
func (e *Engine) ResolveStatus(ctx context.Context, tenancyID id.TenancyID) (*rentcycle.RentCycle, error) {
	if cached, err := e.store.GetCachedCycle(ctx, tenancyID); err == nil {
		return cached, nil
	}

	cycle, err := e.resolveCycle(ctx, tenancyID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := e.store.SetCachedCycle(ctx, tenancyID, cycle, e.cycleCacheTTL); err != nil {
		e.logger.Warn("failed to cache rent cycle",
			"tenancy_id", tenancyID.String(),
			"error", err,
		)
	}

	e.plugins.EmitCycleResolved(ctx, cycle)
	return cycle, nil
}

// ResolveStatusAt derives the rent cycle as of an arbitrary instant,
// bypassing the cache. Useful for backdated statements and tests.
func (e *Engine) ResolveStatusAt(ctx context.Context, tenancyID id.TenancyID, at time.Time) (*rentcycle.RentCycle, error) {
	return e.resolveCycle(ctx, tenancyID, at)
}

func (e *Engine) resolveCycle(ctx context.Context, tenancyID id.TenancyID, now time.Time) (*rentcycle.RentCycle, error) {
	t, err := e.store.GetTenancy(ctx, tenancyID)
	if err != nil {
		return nil, err
	}

	bills, err := e.store.ListBills(ctx, tenancyID, bill.ListOpts{})
	if err != nil {
		return nil, err
	}

	balance, err := e.store.CreditBalance(ctx, tenancyID, t.BaseRent.Currency)
	if err != nil {
		return nil, err
	}

	var lastPaymentAt *time.Time
	last, err := e.store.LatestPayment(ctx, tenancyID)
	switch {
	case err == nil:
		lastPaymentAt = &last.ReceivedAt
	case errors.Is(err, ErrPaymentNotFound):
		// No payments yet.
	default:
		return nil, err
	}

	return rentcycle.Resolve(rentcycle.Input{
		Tenancy:       t,
		Bills:         bills,
		CreditBalance: balance,
		LastPaymentAt: lastPaymentAt,
		Now:           now,
		GraceDays:     e.graceDays,
	}), nil
}
