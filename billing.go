package rentledger

import (
	"context"
	"sort"
	"time"

	"github.com/Carey99/rentledger/bill"
	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/types"
)

// UtilityUsage is the metered consumption for one billing month, keyed
// by utility type.
type UtilityUsage map[string]int64

// CreateBill creates the bill for one tenancy and calendar month:
// base rent plus unitsUsed × pricePerUnit for every utility in usage.
//
// Billing is idempotent per (tenancy, month, year): a second call fails
// with ErrDuplicateBill. A usage entry whose type is not on the
// tenancy's rate card fails with ErrInvalidUsage. Passing nil usage
// prices the month from recorded meter readings instead.
func (e *Engine) CreateBill(ctx context.Context, tenancyID id.TenancyID, month, year int, usage UtilityUsage) (*bill.Bill, error) {
	if month < 1 || month > 12 || year < 1 {
		return nil, ErrInvalidPeriod
	}

	t, err := e.store.GetTenancy(ctx, tenancyID)
	if err != nil {
		return nil, err
	}

	if usage == nil {
		aggregated, err := e.store.AggregateReadings(ctx, tenancyID, month, year)
		if err != nil {
			return nil, err
		}
		usage = aggregated
	}

	mu := e.tenancyLock(tenancyID)
	mu.Lock()
	defer mu.Unlock()

	b := &bill.Bill{
		Entity:     types.NewEntity(),
		ID:         id.NewBillID(),
		TenancyID:  tenancyID,
		LandlordID: t.LandlordID,
		ForMonth:   month,
		ForYear:    year,
		BaseRent:   t.BaseRent,
		TotalDue:   t.BaseRent,
		AmountPaid: types.Zero(t.BaseRent.Currency),
		Status:     bill.StatusPending,
		DueDate:    t.DueDateFor(month, year),
	}

	// Deterministic line order regardless of map iteration.
	utilities := make([]string, 0, len(usage))
	for utilityType := range usage {
		utilities = append(utilities, utilityType)
	}
	sort.Strings(utilities)

	for _, utilityType := range utilities {
		units := usage[utilityType]
		if units < 0 {
			return nil, ErrInvalidUsage
		}
		if units == 0 {
			continue
		}
		rate, ok := t.RateFor(utilityType)
		if !ok {
			return nil, ErrInvalidUsage
		}
		amount := rate.Multiply(units)
		b.Charges = append(b.Charges, bill.UtilityCharge{
			ID:           id.NewChargeID(),
			BillID:       b.ID,
			UtilityType:  utilityType,
			UnitsUsed:    units,
			PricePerUnit: rate,
			Amount:       amount,
		})
		b.TotalDue = b.TotalDue.Add(amount)
	}

	if !b.TotalDue.IsPositive() {
		return nil, ErrInvalidUsage
	}

	// The store enforces one bill per (tenancy, month, year) via
	// insert-if-absent, so a racing duplicate fails here rather than
	// at a pre-check.
	if err := e.store.CreateBill(ctx, b); err != nil {
		return nil, err
	}
	_ = e.store.InvalidateCycle(ctx, tenancyID) //nolint:errcheck // best-effort cache invalidation

	e.logger.Info("bill created",
		"bill_id", b.ID.String(),
		"tenancy_id", tenancyID.String(),
		"period", time.Month(month).String(),
		"year", year,
		"total_due", b.TotalDue.String(),
	)

	e.plugins.EmitBillCreated(ctx, b)
	return b, nil
}

// GetBill retrieves a bill by ID.
func (e *Engine) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	return e.store.GetBill(ctx, billID)
}

// GetBillByPeriod retrieves the bill covering one month of a tenancy.
func (e *Engine) GetBillByPeriod(ctx context.Context, tenancyID id.TenancyID, month, year int) (*bill.Bill, error) {
	return e.store.GetBillByPeriod(ctx, tenancyID, month, year)
}

// ListBills lists a tenancy's bills oldest first.
func (e *Engine) ListBills(ctx context.Context, tenancyID id.TenancyID, opts bill.ListOpts) ([]*bill.Bill, error) {
	return e.store.ListBills(ctx, tenancyID, opts)
}
