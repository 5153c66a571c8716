package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carey99/rentledger"
	"github.com/Carey99/rentledger/bill"
	"github.com/Carey99/rentledger/credit"
	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/meter"
	"github.com/Carey99/rentledger/payment"
	"github.com/Carey99/rentledger/rentcycle"
	"github.com/Carey99/rentledger/statement"
	"github.com/Carey99/rentledger/types"
)

func newBill(tenancyID id.TenancyID, month, year int) *bill.Bill {
	return &bill.Bill{
		Entity:     types.NewEntity(),
		ID:         id.NewBillID(),
		TenancyID:  tenancyID,
		LandlordID: "landlord_1",
		ForMonth:   month,
		ForYear:    year,
		BaseRent:   types.KES(1500000),
		TotalDue:   types.KES(1500000),
		AmountPaid: types.Zero("kes"),
		Status:     bill.StatusPending,
	}
}

func TestCreateBillPeriodUnique(t *testing.T) {
	ctx := context.Background()
	s := New()
	tenancyID := id.NewTenancyID()

	if err := s.CreateBill(ctx, newBill(tenancyID, 3, 2026)); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateBill(ctx, newBill(tenancyID, 3, 2026)); !errors.Is(err, rentledger.ErrDuplicateBill) {
		t.Fatalf("err = %v, want ErrDuplicateBill", err)
	}
	// Same period, different tenancy is fine.
	if err := s.CreateBill(ctx, newBill(id.NewTenancyID(), 3, 2026)); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateBillCAS(t *testing.T) {
	ctx := context.Background()
	s := New()
	tenancyID := id.NewTenancyID()

	b := newBill(tenancyID, 3, 2026)
	if err := s.CreateBill(ctx, b); err != nil {
		t.Fatal(err)
	}

	// Two readers get the same version.
	first, _ := s.GetBill(ctx, b.ID)
	second, _ := s.GetBill(ctx, b.ID)

	first.AmountPaid = types.KES(1000000)
	first.Status = bill.StatusPartial
	if err := s.UpdateBillCAS(ctx, first); err != nil {
		t.Fatal(err)
	}
	if first.Version != 1 {
		t.Errorf("Version = %d, want 1 after successful CAS", first.Version)
	}

	// The stale writer loses.
	second.AmountPaid = types.KES(500000)
	if err := s.UpdateBillCAS(ctx, second); !errors.Is(err, rentledger.ErrConcurrentModification) {
		t.Fatalf("stale CAS err = %v, want ErrConcurrentModification", err)
	}

	// Re-read and retry succeeds.
	fresh, _ := s.GetBill(ctx, b.ID)
	fresh.AmountPaid = types.KES(1500000)
	fresh.Status = bill.StatusCompleted
	if err := s.UpdateBillCAS(ctx, fresh); err != nil {
		t.Fatal(err)
	}
}

func TestCreatePaymentSourceUnique(t *testing.T) {
	ctx := context.Background()
	s := New()
	tenancyID := id.NewTenancyID()

	p := &payment.Payment{
		Entity:              types.NewEntity(),
		ID:                  id.NewPaymentID(),
		TenancyID:           tenancyID,
		Amount:              types.KES(1500000),
		Method:              payment.MethodSTKPush,
		SourceTransactionID: "SHM100AAA",
		AdvanceAmount:       types.Zero("kes"),
		ReceivedAt:          time.Now().UTC(),
	}
	if err := s.CreatePayment(ctx, p); err != nil {
		t.Fatal(err)
	}

	dup := *p
	dup.ID = id.NewPaymentID()
	if err := s.CreatePayment(ctx, &dup); !errors.Is(err, rentledger.ErrDuplicatePayment) {
		t.Fatalf("err = %v, want ErrDuplicatePayment", err)
	}

	got, err := s.GetPaymentBySourceTransaction(ctx, "SHM100AAA")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != p.ID.String() {
		t.Errorf("lookup returned %s, want %s", got.ID, p.ID)
	}
}

func TestMarkTransactionPromotedOnce(t *testing.T) {
	ctx := context.Background()
	s := New()

	imp := &statement.Import{
		Entity:     types.NewEntity(),
		ID:         id.NewImportID(),
		LandlordID: "landlord_1",
		Transactions: []statement.Transaction{
			{ID: id.NewTransactionID(), Amount: types.KES(1500000), MatchStatus: statement.MatchStatusMatched},
		},
	}
	if err := s.CreateImport(ctx, imp); err != nil {
		t.Fatal(err)
	}

	txnID := imp.Transactions[0].ID
	paymentID := id.NewPaymentID()

	if err := s.MarkTransactionPromoted(ctx, imp.ID, txnID, paymentID); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkTransactionPromoted(ctx, imp.ID, txnID, id.NewPaymentID()); !errors.Is(err, rentledger.ErrAlreadyPromoted) {
		t.Fatalf("second promote err = %v, want ErrAlreadyPromoted", err)
	}
	if err := s.MarkTransactionPromoted(ctx, imp.ID, id.NewTransactionID(), paymentID); !errors.Is(err, rentledger.ErrTransactionNotFound) {
		t.Fatalf("unknown txn err = %v, want ErrTransactionNotFound", err)
	}

	got, err := s.GetImport(ctx, imp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Transactions[0].PromotedPaymentID.String() != paymentID.String() {
		t.Errorf("promoted payment = %s, want %s", got.Transactions[0].PromotedPaymentID, paymentID)
	}
}

func TestCreditBalanceCurrency(t *testing.T) {
	ctx := context.Background()
	s := New()
	tenancyID := id.NewTenancyID()

	// An empty balance is a zero in the tenancy's billing currency.
	empty, err := s.CreditBalance(ctx, tenancyID, "usd")
	if err != nil {
		t.Fatal(err)
	}
	if !empty.Equal(types.Zero("usd")) {
		t.Errorf("empty balance = %s %s, want USD zero", empty.Currency, empty)
	}

	if err := s.CreateCredit(ctx, &credit.AdvanceCredit{
		Entity:    types.NewEntity(),
		ID:        id.NewCreditID(),
		TenancyID: tenancyID,
		PaymentID: id.NewPaymentID(),
		Amount:    types.USD(4900),
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.CreditBalance(ctx, tenancyID, "usd")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(types.USD(4900)) {
		t.Errorf("balance = %s, want %s", got, types.USD(4900))
	}
}

func TestCycleCacheTTL(t *testing.T) {
	ctx := context.Background()
	s := New()
	tenancyID := id.NewTenancyID()

	cycle := &rentcycle.RentCycle{
		TenancyID:  tenancyID.String(),
		RentStatus: rentcycle.StatusPaid,
		ResolvedAt: time.Now().UTC(),
	}

	if _, err := s.GetCachedCycle(ctx, tenancyID); !errors.Is(err, rentledger.ErrCacheMiss) {
		t.Fatalf("cold cache err = %v, want ErrCacheMiss", err)
	}

	if err := s.SetCachedCycle(ctx, tenancyID, cycle, time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetCachedCycle(ctx, tenancyID)
	if err != nil {
		t.Fatal(err)
	}
	if got.RentStatus != rentcycle.StatusPaid {
		t.Errorf("RentStatus = %s, want %s", got.RentStatus, rentcycle.StatusPaid)
	}

	// An expired entry is a miss.
	if err := s.SetCachedCycle(ctx, tenancyID, cycle, -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetCachedCycle(ctx, tenancyID); !errors.Is(err, rentledger.ErrCacheMiss) {
		t.Fatalf("expired cache err = %v, want ErrCacheMiss", err)
	}

	// Invalidation drops the entry.
	if err := s.SetCachedCycle(ctx, tenancyID, cycle, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := s.InvalidateCycle(ctx, tenancyID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetCachedCycle(ctx, tenancyID); !errors.Is(err, rentledger.ErrCacheMiss) {
		t.Fatalf("invalidated cache err = %v, want ErrCacheMiss", err)
	}
}

func TestIngestReadingsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	tenancyID := id.NewTenancyID()

	readings := []*meter.UtilityReading{
		{ID: id.NewReadingID(), TenancyID: tenancyID, UtilityType: "water", Units: 6,
			Timestamp: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), IdempotencyKey: "r1"},
		{ID: id.NewReadingID(), TenancyID: tenancyID, UtilityType: "water", Units: 4,
			Timestamp: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), IdempotencyKey: "r2"},
	}
	if err := s.IngestReadings(ctx, readings); err != nil {
		t.Fatal(err)
	}
	// Redelivery of the same keys must not double-count.
	if err := s.IngestReadings(ctx, readings); err != nil {
		t.Fatal(err)
	}

	totals, err := s.AggregateReadings(ctx, tenancyID, 3, 2026)
	if err != nil {
		t.Fatal(err)
	}
	if totals["water"] != 10 {
		t.Errorf("water total = %d, want 10", totals["water"])
	}
}

func TestPurgeReadings(t *testing.T) {
	ctx := context.Background()
	s := New()
	tenancyID := id.NewTenancyID()

	readings := []*meter.UtilityReading{
		{ID: id.NewReadingID(), TenancyID: tenancyID, UtilityType: "water", Units: 1,
			Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: id.NewReadingID(), TenancyID: tenancyID, UtilityType: "water", Units: 2,
			Timestamp: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	if err := s.IngestReadings(ctx, readings); err != nil {
		t.Fatal(err)
	}

	purged, err := s.PurgeReadings(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
}
