package rentledger_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	rentledger "github.com/Carey99/rentledger"
	"github.com/Carey99/rentledger/bill"
	"github.com/Carey99/rentledger/payment"
	"github.com/Carey99/rentledger/store/memory"
	"github.com/Carey99/rentledger/types"
)

// Fifteen concurrent payments of 1,000.00 against a single 15,000.00
// bill must settle it exactly, with every shilling accounted for across
// allocations and advance credit.
func TestApplyPaymentConcurrent(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	b, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{})
	if err != nil {
		t.Fatal(err)
	}

	const workers = 15
	each := types.KES(100000)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
				TenancyID: tn.ID,
				Amount:    each,
				Method:    payment.MethodSTKPush,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	settled, err := eng.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if settled.Status != bill.StatusCompleted {
		t.Errorf("bill status = %s, want %s", settled.Status, bill.StatusCompleted)
	}
	if !settled.AmountPaid.Equal(settled.TotalDue) {
		t.Errorf("AmountPaid = %s, want exactly %s", settled.AmountPaid, settled.TotalDue)
	}

	// Conservation across the whole batch.
	payments, err := eng.ListPayments(ctx, tn.ID, payment.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	total := types.Zero("kes")
	for _, p := range payments {
		total = total.Add(p.Allocated()).Add(p.AdvanceAmount)
	}
	if want := each.Multiply(workers); !total.Equal(want) {
		t.Errorf("allocated + advance across payments = %s, want %s", total, want)
	}
}

// missingFirst forces the first n source-transaction lookups to miss,
// the way two deliveries of one callback can both read not-found before
// either records the payment.
type missingFirst struct {
	*memory.Store
	n atomic.Int32
}

func (s *missingFirst) GetPaymentBySourceTransaction(ctx context.Context, sourceTxnID string) (*payment.Payment, error) {
	if s.n.Add(-1) >= 0 {
		return nil, rentledger.ErrPaymentNotFound
	}
	return s.Store.GetPaymentBySourceTransaction(ctx, sourceTxnID)
}

// Two concurrent deliveries of the same callback must record exactly one
// payment and one advance credit, with the loser handed the original
// payment rather than an error.
func TestHandlePushPaymentConcurrentReplay(t *testing.T) {
	ctx := context.Background()
	st := &missingFirst{Store: memory.New()}
	st.n.Store(2)
	eng := rentledger.New(st)
	tn := newTestTenancy(t, eng, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	b, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{})
	if err != nil {
		t.Fatal(err)
	}

	cb := rentledger.PushCallback{
		TenancyID:           tn.ID,
		Amount:              types.KES(3000000), // overpays the bill by one base rent
		SourceTransactionID: "SHM900RRR",
		Timestamp:           time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}

	results := make(chan *payment.Payment, 2)
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := eng.HandlePushPayment(ctx, cb)
			results <- p
			errs <- err
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	var ids []string
	for p := range results {
		ids = append(ids, p.ID.String())
	}
	if ids[0] != ids[1] {
		t.Errorf("deliveries returned different payments: %s vs %s", ids[0], ids[1])
	}

	payments, err := eng.ListPayments(ctx, tn.ID, payment.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 1 {
		t.Fatalf("len(payments) = %d, want 1", len(payments))
	}

	// The surplus was credited exactly once.
	credits, err := eng.ListCredits(ctx, tn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(credits) != 1 {
		t.Fatalf("len(credits) = %d, want 1", len(credits))
	}
	if want := types.KES(1500000); !credits[0].Amount.Equal(want) {
		t.Errorf("credit amount = %s, want %s", credits[0].Amount, want)
	}

	settled, err := eng.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !settled.AmountPaid.Equal(settled.TotalDue) {
		t.Errorf("AmountPaid = %s, want exactly %s", settled.AmountPaid, settled.TotalDue)
	}
}
