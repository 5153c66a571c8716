package rentledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	rentledger "github.com/Carey99/rentledger"
	"github.com/Carey99/rentledger/bill"
	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/payment"
	"github.com/Carey99/rentledger/statement"
	"github.com/Carey99/rentledger/types"
)

// fixedParser ignores the document bytes and returns a canned statement.
func fixedParser(parsed *statement.Parsed, err error) statement.Parser {
	return statement.ParserFunc(func(_ context.Context, _ []byte, _ string) (*statement.Parsed, error) {
		if err != nil {
			return nil, err
		}
		return parsed, nil
	})
}

func testStatement() *statement.Parsed {
	return &statement.Parsed{
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Transactions: []statement.ParsedTransaction{
			{
				SourceTransactionID: "SHM100AAA",
				Amount:              types.KES(1500000),
				PayerName:           "John Mwangi",
				PayerPhone:          "0712345678", // local form of the roster's +254712345678
				Timestamp:           time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC),
			},
			{
				SourceTransactionID: "SHM200BBB",
				Amount:              types.KES(80000),
				PayerName:           "Xq Zvw",
				Timestamp:           time.Date(2026, 3, 6, 14, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestImportStatement(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(rentledger.WithParser(fixedParser(testStatement(), nil)))
	tn := newTestTenancy(t, eng, leaseStart)

	imp, err := eng.ImportStatement(ctx, tn.LandlordID, []byte("doc"), "")
	if err != nil {
		t.Fatal(err)
	}

	if imp.Summary.Total != 2 || imp.Summary.Matched != 1 || imp.Summary.NoMatch != 1 {
		t.Errorf("summary = %+v, want 1 matched and 1 no_match of 2", imp.Summary)
	}
	if imp.Summary.MatchRate != 0.5 {
		t.Errorf("MatchRate = %v, want 0.5", imp.Summary.MatchRate)
	}

	matched := imp.Transactions[0]
	if matched.MatchStatus != statement.MatchStatusMatched {
		t.Errorf("txn[0] status = %s, want %s", matched.MatchStatus, statement.MatchStatusMatched)
	}
	if matched.MatchedTenancyID.String() != tn.ID.String() {
		t.Errorf("txn[0] matched %s, want %s", matched.MatchedTenancyID, tn.ID)
	}
	if matched.Confidence != statement.ConfidenceHigh {
		t.Errorf("txn[0] confidence = %s, want %s", matched.Confidence, statement.ConfidenceHigh)
	}

	if imp.Transactions[1].MatchStatus != statement.MatchStatusNoMatch {
		t.Errorf("txn[1] status = %s, want %s", imp.Transactions[1].MatchStatus, statement.MatchStatusNoMatch)
	}

	// Matching must not move money.
	payments, err := eng.ListPayments(ctx, tn.ID, payment.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 0 {
		t.Errorf("len(payments) = %d, want 0 before confirmation", len(payments))
	}

	// Round trip through the store.
	stored, err := eng.GetImport(ctx, imp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Transactions) != 2 {
		t.Errorf("stored transactions = %d, want 2", len(stored.Transactions))
	}
}

func TestImportStatementNoParser(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, leaseStart)

	_, err := eng.ImportStatement(ctx, tn.LandlordID, []byte("doc"), "")
	if err == nil {
		t.Fatal("err = nil, want validation error")
	}
	if !rentledger.IsValidation(err) {
		t.Errorf("IsValidation(%v) = false, want true", err)
	}
}

func TestImportStatementWrongPassword(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(rentledger.WithParser(fixedParser(nil, rentledger.ErrWrongPassword)))
	tn := newTestTenancy(t, eng, leaseStart)

	_, err := eng.ImportStatement(ctx, tn.LandlordID, []byte("doc"), "bad")
	if !errors.Is(err, rentledger.ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}
	if !rentledger.IsParseFailure(err) {
		t.Errorf("IsParseFailure(%v) = false, want true", err)
	}
}

func TestConfirmTransaction(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(rentledger.WithParser(fixedParser(testStatement(), nil)))
	tn := newTestTenancy(t, eng, leaseStart)

	b, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{})
	if err != nil {
		t.Fatal(err)
	}

	imp, err := eng.ImportStatement(ctx, tn.LandlordID, []byte("doc"), "")
	if err != nil {
		t.Fatal(err)
	}
	txn := imp.Transactions[0]

	p, err := eng.ConfirmTransaction(ctx, imp.ID, txn.ID, id.Nil)
	if err != nil {
		t.Fatal(err)
	}

	if p.Method != payment.MethodStatementMatch {
		t.Errorf("method = %s, want %s", p.Method, payment.MethodStatementMatch)
	}
	if p.SourceTransactionID != "SHM100AAA" {
		t.Errorf("source txn = %s, want SHM100AAA", p.SourceTransactionID)
	}

	settled, err := eng.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if settled.Status != bill.StatusCompleted {
		t.Errorf("bill status = %s, want %s", settled.Status, bill.StatusCompleted)
	}

	// Promotion is once-only.
	if _, err := eng.ConfirmTransaction(ctx, imp.ID, txn.ID, id.Nil); !errors.Is(err, rentledger.ErrAlreadyPromoted) {
		t.Fatalf("second confirm err = %v, want ErrAlreadyPromoted", err)
	}
}

// Concurrent confirms of one transaction must promote it exactly once.
// The transaction deliberately carries no source ID, so only the
// once-only promotion guard stands between the confirms and a double
// allocation.
func TestConfirmTransactionConcurrent(t *testing.T) {
	ctx := context.Background()

	parsed := testStatement()
	parsed.Transactions = parsed.Transactions[:1]
	parsed.Transactions[0].SourceTransactionID = ""
	parsed.Transactions[0].Amount = types.KES(1500000)

	eng, _ := newTestEngine(rentledger.WithParser(fixedParser(parsed, nil)))
	tn := newTestTenancy(t, eng, leaseStart)

	b, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{})
	if err != nil {
		t.Fatal(err)
	}

	imp, err := eng.ImportStatement(ctx, tn.LandlordID, []byte("doc"), "")
	if err != nil {
		t.Fatal(err)
	}
	txn := imp.Transactions[0]

	const workers = 4
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.ConfirmTransaction(ctx, imp.ID, txn.ID, id.Nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var confirmed, rejected int
	for err := range errs {
		switch {
		case err == nil:
			confirmed++
		case errors.Is(err, rentledger.ErrAlreadyPromoted):
			rejected++
		default:
			t.Fatalf("unexpected confirm error: %v", err)
		}
	}
	if confirmed != 1 || rejected != workers-1 {
		t.Errorf("confirmed/rejected = %d/%d, want 1/%d", confirmed, rejected, workers-1)
	}

	payments, err := eng.ListPayments(ctx, tn.ID, payment.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 1 {
		t.Fatalf("len(payments) = %d, want 1", len(payments))
	}

	// The bill absorbed the money exactly once; nothing spilled into
	// advance credit.
	settled, err := eng.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !settled.AmountPaid.Equal(settled.TotalDue) {
		t.Errorf("AmountPaid = %s, want exactly %s", settled.AmountPaid, settled.TotalDue)
	}
	credits, err := eng.ListCredits(ctx, tn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(credits) != 0 {
		t.Errorf("len(credits) = %d, want 0", len(credits))
	}
}

func TestConfirmTransactionUnmatchedNeedsOverride(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(rentledger.WithParser(fixedParser(testStatement(), nil)))
	tn := newTestTenancy(t, eng, leaseStart)

	imp, err := eng.ImportStatement(ctx, tn.LandlordID, []byte("doc"), "")
	if err != nil {
		t.Fatal(err)
	}
	unmatched := imp.Transactions[1]

	if _, err := eng.ConfirmTransaction(ctx, imp.ID, unmatched.ID, id.Nil); !errors.Is(err, rentledger.ErrNotPromotable) {
		t.Fatalf("confirm without override err = %v, want ErrNotPromotable", err)
	}

	p, err := eng.ConfirmTransaction(ctx, imp.ID, unmatched.ID, tn.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.TenancyID.String() != tn.ID.String() {
		t.Errorf("payment tenancy = %s, want override %s", p.TenancyID, tn.ID)
	}
}

func TestConfirmTransactionNotFound(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(rentledger.WithParser(fixedParser(testStatement(), nil)))
	tn := newTestTenancy(t, eng, leaseStart)

	imp, err := eng.ImportStatement(ctx, tn.LandlordID, []byte("doc"), "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := eng.ConfirmTransaction(ctx, imp.ID, id.NewTransactionID(), id.Nil); !errors.Is(err, rentledger.ErrTransactionNotFound) {
		t.Fatalf("err = %v, want ErrTransactionNotFound", err)
	}
}

func TestHandlePushPayment(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine()
	tn := newTestTenancy(t, eng, leaseStart)

	if _, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{}); err != nil {
		t.Fatal(err)
	}

	cb := rentledger.PushCallback{
		TenancyID:           tn.ID,
		Amount:              types.KES(1500000),
		SourceTransactionID: "SHM300CCC",
		Timestamp:           time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}

	first, err := eng.HandlePushPayment(ctx, cb)
	if err != nil {
		t.Fatal(err)
	}
	if first.Method != payment.MethodSTKPush {
		t.Errorf("method = %s, want %s", first.Method, payment.MethodSTKPush)
	}

	// Providers redeliver callbacks; the replay must not double-apply.
	replay, err := eng.HandlePushPayment(ctx, cb)
	if err != nil {
		t.Fatal(err)
	}
	if replay.ID.String() != first.ID.String() {
		t.Errorf("replay payment = %s, want %s", replay.ID, first.ID)
	}

	payments, err := eng.ListPayments(ctx, tn.ID, payment.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 1 {
		t.Errorf("len(payments) = %d, want 1", len(payments))
	}
}
