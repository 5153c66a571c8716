package rentledger_test

import (
	"context"
	"testing"
	"time"

	rentledger "github.com/Carey99/rentledger"
	"github.com/Carey99/rentledger/payment"
	"github.com/Carey99/rentledger/rentcycle"
	"github.com/Carey99/rentledger/types"
)

// Lease anchored on the 5th; March 2026 rent falls due on March 5th.
var leaseStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func TestResolveStatusActive(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, leaseStart)

	if _, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{}); err != nil {
		t.Fatal(err)
	}

	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cycle, err := eng.ResolveStatusAt(ctx, tn.ID, at)
	if err != nil {
		t.Fatal(err)
	}

	if cycle.RentStatus != rentcycle.StatusActive {
		t.Errorf("RentStatus = %s, want %s", cycle.RentStatus, rentcycle.StatusActive)
	}
	if cycle.DaysRemaining != 4 {
		t.Errorf("DaysRemaining = %d, want 4", cycle.DaysRemaining)
	}
	if !cycle.DebtAmount.IsZero() {
		t.Errorf("DebtAmount = %s, want zero", cycle.DebtAmount)
	}
}

func TestResolveStatusPaid(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, leaseStart)

	if _, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
		TenancyID: tn.ID,
		Amount:    types.KES(1500000),
		Method:    payment.MethodCash,
	}); err != nil {
		t.Fatal(err)
	}

	at := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	cycle, err := eng.ResolveStatusAt(ctx, tn.ID, at)
	if err != nil {
		t.Fatal(err)
	}
	if cycle.RentStatus != rentcycle.StatusPaid {
		t.Errorf("RentStatus = %s, want %s", cycle.RentStatus, rentcycle.StatusPaid)
	}
}

func TestResolveStatusPartial(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, leaseStart)

	if _, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
		TenancyID: tn.ID,
		Amount:    types.KES(1000000),
		Method:    payment.MethodCash,
	}); err != nil {
		t.Fatal(err)
	}

	at := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	cycle, err := eng.ResolveStatusAt(ctx, tn.ID, at)
	if err != nil {
		t.Fatal(err)
	}
	if cycle.RentStatus != rentcycle.StatusPartial {
		t.Errorf("RentStatus = %s, want %s", cycle.RentStatus, rentcycle.StatusPartial)
	}
	if want := types.KES(500000); !cycle.DebtAmount.Equal(want) {
		t.Errorf("DebtAmount = %s, want %s", cycle.DebtAmount, want)
	}
}

func TestResolveStatusGracePeriod(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(rentledger.WithGracePeriod(5))
	tn := newTestTenancy(t, eng, leaseStart)

	if _, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{}); err != nil {
		t.Fatal(err)
	}

	// Three days past the March 5th due date, inside the 5-day grace window.
	at := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	cycle, err := eng.ResolveStatusAt(ctx, tn.ID, at)
	if err != nil {
		t.Fatal(err)
	}
	if cycle.RentStatus != rentcycle.StatusGracePeriod {
		t.Errorf("RentStatus = %s, want %s", cycle.RentStatus, rentcycle.StatusGracePeriod)
	}
}

func TestResolveStatusOverdue(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(rentledger.WithGracePeriod(5))
	tn := newTestTenancy(t, eng, leaseStart)

	if _, err := eng.CreateBill(ctx, tn.ID, 2, 2026, rentledger.UtilityUsage{}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{}); err != nil {
		t.Fatal(err)
	}

	at := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	cycle, err := eng.ResolveStatusAt(ctx, tn.ID, at)
	if err != nil {
		t.Fatal(err)
	}
	if cycle.RentStatus != rentcycle.StatusOverdue {
		t.Errorf("RentStatus = %s, want %s", cycle.RentStatus, rentcycle.StatusOverdue)
	}
	if want := types.KES(3000000); !cycle.DebtAmount.Equal(want) {
		t.Errorf("DebtAmount = %s, want %s", cycle.DebtAmount, want)
	}
	if cycle.MonthsOwed != 2 {
		t.Errorf("MonthsOwed = %d, want 2", cycle.MonthsOwed)
	}
}

func TestResolveStatusPaidInAdvance(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, leaseStart)

	if _, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{}); err != nil {
		t.Fatal(err)
	}
	// Bill plus one full month of base rent on top.
	if _, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
		TenancyID: tn.ID,
		Amount:    types.KES(3000000),
		Method:    payment.MethodSTKPush,
	}); err != nil {
		t.Fatal(err)
	}

	at := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	cycle, err := eng.ResolveStatusAt(ctx, tn.ID, at)
	if err != nil {
		t.Fatal(err)
	}
	if cycle.RentStatus != rentcycle.StatusPaidInAdvance {
		t.Errorf("RentStatus = %s, want %s", cycle.RentStatus, rentcycle.StatusPaidInAdvance)
	}
	if cycle.AdvanceMonths != 1 {
		t.Errorf("AdvanceMonths = %d, want 1", cycle.AdvanceMonths)
	}
}

func TestResolveStatusCacheInvalidatedByPayment(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	// Lease far in the past so the bill is always overdue "now".
	tn := newTestTenancy(t, eng, time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC))

	if _, err := eng.CreateBill(ctx, tn.ID, 3, 2020, rentledger.UtilityUsage{}); err != nil {
		t.Fatal(err)
	}

	before, err := eng.ResolveStatus(ctx, tn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !before.DebtAmount.IsPositive() {
		t.Fatalf("DebtAmount = %s, want positive before payment", before.DebtAmount)
	}

	if _, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
		TenancyID: tn.ID,
		Amount:    types.KES(1500000),
		Method:    payment.MethodCash,
	}); err != nil {
		t.Fatal(err)
	}

	// The payment invalidates the cached cycle, so the next resolve
	// reflects the settled bill instead of serving the stale entry.
	after, err := eng.ResolveStatus(ctx, tn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !after.DebtAmount.IsZero() {
		t.Errorf("DebtAmount = %s, want zero after payment", after.DebtAmount)
	}
	if after.LastPaymentDate == nil {
		t.Error("LastPaymentDate = nil, want set after payment")
	}
}
