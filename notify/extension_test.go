package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	rentledger "github.com/Carey99/rentledger"
	"github.com/Carey99/rentledger/notify"
	"github.com/Carey99/rentledger/payment"
	"github.com/Carey99/rentledger/store/memory"
	"github.com/Carey99/rentledger/tenancy"
	"github.com/Carey99/rentledger/types"
)

// recorder collects published notifications.
type recorder struct {
	mu   sync.Mutex
	sent []*notify.Notification
	err  error
}

func (r *recorder) Publish(_ context.Context, n *notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sent))
	for i, n := range r.sent {
		out[i] = n.Event
	}
	return out
}

func TestNotifyPublishesLedgerEvents(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}

	eng := rentledger.New(memory.New(),
		rentledger.WithPlugin(notify.New(rec)),
	)

	tn := &tenancy.Tenancy{
		LandlordID:  "landlord_1",
		TenantName:  "John Mwangi",
		TenantPhone: "+254712345678",
		UnitLabel:   "A-12",
		BaseRent:    types.KES(1500000),
		LeaseStart:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	if err := eng.CreateTenancy(ctx, tn); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateBill(ctx, tn.ID, 3, 2026, rentledger.UtilityUsage{}); err != nil {
		t.Fatal(err)
	}
	// Overpay so an advance credit event fires too.
	if _, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
		TenancyID: tn.ID,
		Amount:    types.KES(3000000),
		Method:    payment.MethodSTKPush,
	}); err != nil {
		t.Fatal(err)
	}

	want := []string{
		notify.EventTenancyCreated,
		notify.EventBillCreated,
		notify.EventAdvanceCredited,
		notify.EventPaymentApplied,
	}
	got := rec.events()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNotifyEventFilter(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}

	eng := rentledger.New(memory.New(),
		rentledger.WithPlugin(notify.New(rec,
			notify.WithEnabledEvents(notify.EventPaymentApplied),
		)),
	)

	tn := &tenancy.Tenancy{
		LandlordID: "landlord_1",
		TenantName: "John Mwangi",
		UnitLabel:  "A-12",
		BaseRent:   types.KES(1500000),
		LeaseStart: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	if err := eng.CreateTenancy(ctx, tn); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
		TenancyID: tn.ID,
		Amount:    types.KES(1500000),
		Method:    payment.MethodCash,
	}); err != nil {
		t.Fatal(err)
	}

	got := rec.events()
	if len(got) != 1 || got[0] != notify.EventPaymentApplied {
		t.Errorf("events = %v, want only %s", got, notify.EventPaymentApplied)
	}
}

func TestNotifyPublisherFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{err: errors.New("gateway down")}

	eng := rentledger.New(memory.New(),
		rentledger.WithPlugin(notify.New(rec)),
	)

	tn := &tenancy.Tenancy{
		LandlordID: "landlord_1",
		TenantName: "John Mwangi",
		UnitLabel:  "A-12",
		BaseRent:   types.KES(1500000),
		LeaseStart: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}

	// A failing publisher must never fail the ledger operation.
	if err := eng.CreateTenancy(ctx, tn); err != nil {
		t.Fatal(err)
	}
}
