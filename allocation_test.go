package rentledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	rentledger "github.com/Carey99/rentledger"
	"github.com/Carey99/rentledger/bill"
	"github.com/Carey99/rentledger/payment"
	"github.com/Carey99/rentledger/types"
)

func TestApplyPaymentFullSettlement(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	b, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{"water": 10, "garbage": 5})
	if err != nil {
		t.Fatal(err)
	}

	p, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
		TenancyID: tn.ID,
		Amount:    types.KES(1545000),
		Method:    payment.MethodCash,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(p.Allocations) != 1 {
		t.Fatalf("len(Allocations) = %d, want 1", len(p.Allocations))
	}
	if !p.Allocations[0].Amount.Equal(types.KES(1545000)) {
		t.Errorf("allocation = %s, want %s", p.Allocations[0].Amount, types.KES(1545000))
	}
	if !p.AdvanceAmount.IsZero() {
		t.Errorf("AdvanceAmount = %s, want zero", p.AdvanceAmount)
	}

	settled, err := eng.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if settled.Status != bill.StatusCompleted {
		t.Errorf("bill status = %s, want %s", settled.Status, bill.StatusCompleted)
	}
	if !settled.AmountPaid.Equal(settled.TotalDue) {
		t.Errorf("AmountPaid = %s, want %s", settled.AmountPaid, settled.TotalDue)
	}
}

func TestApplyPaymentPartial(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	b, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{"water": 10, "garbage": 5})
	if err != nil {
		t.Fatal(err)
	}

	p, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
		TenancyID: tn.ID,
		Amount:    types.KES(1000000),
		Method:    payment.MethodCash,
	})
	if err != nil {
		t.Fatal(err)
	}

	if !p.Allocations[0].Amount.Equal(types.KES(1000000)) {
		t.Errorf("allocation = %s, want %s", p.Allocations[0].Amount, types.KES(1000000))
	}

	partial, err := eng.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if partial.Status != bill.StatusPartial {
		t.Errorf("bill status = %s, want %s", partial.Status, bill.StatusPartial)
	}
	if want := types.KES(545000); !partial.Remaining().Equal(want) {
		t.Errorf("Remaining = %s, want %s", partial.Remaining(), want)
	}
}

func TestApplyPaymentSurplusBecomesAdvance(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	if _, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{"water": 10, "garbage": 5}); err != nil {
		t.Fatal(err)
	}

	// Double the bill: 15,450.00 settles it, 15,450.00 remains.
	p, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
		TenancyID: tn.ID,
		Amount:    types.KES(3090000),
		Method:    payment.MethodSTKPush,
	})
	if err != nil {
		t.Fatal(err)
	}

	if want := types.KES(1545000); !p.AdvanceAmount.Equal(want) {
		t.Errorf("AdvanceAmount = %s, want %s", p.AdvanceAmount, want)
	}

	credits, err := eng.ListCredits(ctx, tn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(credits) != 1 {
		t.Fatalf("len(credits) = %d, want 1", len(credits))
	}
	// 15,450.00 surplus at 15,000.00 base rent: one whole month, and the
	// 450.00 remainder is under one day of rent (500.00).
	if credits[0].Months != 1 || credits[0].Days != 0 {
		t.Errorf("credit split = %d months %d days, want 1 month 0 days", credits[0].Months, credits[0].Days)
	}
	if credits[0].PaymentID.String() != p.ID.String() {
		t.Errorf("credit payment id = %s, want %s", credits[0].PaymentID, p.ID)
	}
}

func TestApplyPaymentOldestFirst(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	jan, err := eng.CreateBill(ctx, tn.ID, 1, 2026, rentledger.UtilityUsage{"water": 10, "garbage": 5})
	if err != nil {
		t.Fatal(err)
	}
	feb, err := eng.CreateBill(ctx, tn.ID, 2, 2026, rentledger.UtilityUsage{})
	if err != nil {
		t.Fatal(err)
	}

	// 20,000.00 settles January (15,450.00) and partially covers February.
	p, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
		TenancyID: tn.ID,
		Amount:    types.KES(2000000),
		Method:    payment.MethodCash,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(p.Allocations) != 2 {
		t.Fatalf("len(Allocations) = %d, want 2", len(p.Allocations))
	}
	if p.Allocations[0].BillID.String() != jan.ID.String() {
		t.Errorf("first allocation went to %s, want the January bill", p.Allocations[0].BillID)
	}
	if !p.Allocations[0].Amount.Equal(types.KES(1545000)) {
		t.Errorf("January allocation = %s, want %s", p.Allocations[0].Amount, types.KES(1545000))
	}
	if !p.Allocations[1].Amount.Equal(types.KES(455000)) {
		t.Errorf("February allocation = %s, want %s", p.Allocations[1].Amount, types.KES(455000))
	}

	janBill, _ := eng.GetBill(ctx, jan.ID)
	febBill, _ := eng.GetBill(ctx, feb.ID)
	if janBill.Status != bill.StatusCompleted {
		t.Errorf("January status = %s, want %s", janBill.Status, bill.StatusCompleted)
	}
	if febBill.Status != bill.StatusPartial {
		t.Errorf("February status = %s, want %s", febBill.Status, bill.StatusPartial)
	}
}

func TestApplyPaymentConservation(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	if _, err := eng.CreateBill(ctx, tn.ID, 1, 2026, rentledger.UtilityUsage{"water": 10, "garbage": 5}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateBill(ctx, tn.ID, 2, 2026, rentledger.UtilityUsage{}); err != nil {
		t.Fatal(err)
	}

	for _, amount := range []types.Money{
		types.KES(1),
		types.KES(1000000),
		types.KES(1545000),
		types.KES(3045000),
		types.KES(9999999),
	} {
		p, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
			TenancyID: tn.ID,
			Amount:    amount,
			Method:    payment.MethodCash,
		})
		if err != nil {
			t.Fatal(err)
		}
		if total := p.Allocated().Add(p.AdvanceAmount); !total.Equal(amount) {
			t.Errorf("allocated %s + advance %s = %s, want %s",
				p.Allocated(), p.AdvanceAmount, total, amount)
		}
	}
}

func TestApplyPaymentSourceTransactionIdempotent(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	if _, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{"water": 10, "garbage": 5}); err != nil {
		t.Fatal(err)
	}

	in := rentledger.ApplyPaymentInput{
		TenancyID:           tn.ID,
		Amount:              types.KES(1545000),
		Method:              payment.MethodSTKPush,
		SourceTransactionID: "SHM1234XYZ",
	}

	first, err := eng.ApplyPayment(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	replay, err := eng.ApplyPayment(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	if first.ID.String() != replay.ID.String() {
		t.Errorf("replay returned a new payment %s, want %s", replay.ID, first.ID)
	}

	payments, err := eng.ListPayments(ctx, tn.ID, payment.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 1 {
		t.Errorf("len(payments) = %d, want 1", len(payments))
	}
}

func TestApplyPaymentInvalidAmount(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	for _, amount := range []types.Money{types.Zero("kes"), types.KES(-500)} {
		_, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
			TenancyID: tn.ID,
			Amount:    amount,
			Method:    payment.MethodCash,
		})
		if !errors.Is(err, rentledger.ErrInvalidAmount) {
			t.Fatalf("ApplyPayment(%s) err = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestApplyPaymentNoOutstandingBills(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	// Everything becomes advance credit when nothing is owed.
	p, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
		TenancyID: tn.ID,
		Amount:    types.KES(1500000),
		Method:    payment.MethodCash,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Allocations) != 0 {
		t.Errorf("len(Allocations) = %d, want 0", len(p.Allocations))
	}
	if !p.AdvanceAmount.Equal(types.KES(1500000)) {
		t.Errorf("AdvanceAmount = %s, want %s", p.AdvanceAmount, types.KES(1500000))
	}
}
