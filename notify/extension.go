// Package notify bridges rentledger lifecycle events to a notification
// backend (SMS gateway, email sender, in-app feed).
//
// It defines a local Publisher interface so the package does not import
// any delivery SDK directly. Callers inject a PublisherFunc adapter that
// bridges to their gateway at wiring time. Delivery is fire-and-forget:
// a failing publisher is logged and never fails the operation that
// triggered it.
package notify

import (
	"context"
	"log/slog"

	"github.com/Carey99/rentledger/bill"
	"github.com/Carey99/rentledger/credit"
	"github.com/Carey99/rentledger/payment"
	"github.com/Carey99/rentledger/plugin"
	"github.com/Carey99/rentledger/statement"
	"github.com/Carey99/rentledger/tenancy"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Extension)(nil)
	_ plugin.OnTenancyCreated       = (*Extension)(nil)
	_ plugin.OnTenancyEnded         = (*Extension)(nil)
	_ plugin.OnBillCreated          = (*Extension)(nil)
	_ plugin.OnPaymentApplied       = (*Extension)(nil)
	_ plugin.OnAdvanceCredited      = (*Extension)(nil)
	_ plugin.OnStatementImported    = (*Extension)(nil)
	_ plugin.OnTransactionConfirmed = (*Extension)(nil)
)

// Publisher is the interface that notification backends must implement.
// It is defined locally so that the notify package does not depend on
// any concrete gateway — callers inject the delivery mechanism at
// wiring time.
type Publisher interface {
	Publish(ctx context.Context, n *Notification) error
}

// Notification is one outbound message about a ledger event.
type Notification struct {
	Event      string         `json:"event"`
	Severity   string         `json:"severity"`
	LandlordID string         `json:"landlord_id,omitempty"`
	TenancyID  string         `json:"tenancy_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// PublisherFunc is an adapter to use a plain function as a Publisher.
type PublisherFunc func(ctx context.Context, n *Notification) error

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, n *Notification) error {
	return f(ctx, n)
}

// Extension bridges rentledger lifecycle events to a notification backend.
type Extension struct {
	publisher Publisher
	enabled   map[string]bool // nil = all enabled
	logger    *slog.Logger
}

// New creates an Extension that sends notifications through the provided
// Publisher.
func New(p Publisher, opts ...Option) *Extension {
	e := &Extension{
		publisher: p,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "notify" }

// ──────────────────────────────────────────────────
// Tenancy lifecycle hooks
// ──────────────────────────────────────────────────

// OnTenancyCreated implements plugin.OnTenancyCreated.
func (e *Extension) OnTenancyCreated(ctx context.Context, v interface{}) error {
	t, ok := v.(*tenancy.Tenancy)
	if !ok {
		return nil
	}
	return e.publish(ctx, EventTenancyCreated, SeverityInfo, t.LandlordID, t.ID.String(),
		"tenant_name", t.TenantName,
		"unit", t.UnitLabel,
	)
}

// OnTenancyEnded implements plugin.OnTenancyEnded.
func (e *Extension) OnTenancyEnded(ctx context.Context, v interface{}) error {
	t, ok := v.(*tenancy.Tenancy)
	if !ok {
		return nil
	}
	return e.publish(ctx, EventTenancyEnded, SeverityInfo, t.LandlordID, t.ID.String(),
		"tenant_name", t.TenantName,
		"unit", t.UnitLabel,
	)
}

// ──────────────────────────────────────────────────
// Billing hooks
// ──────────────────────────────────────────────────

// OnBillCreated implements plugin.OnBillCreated.
func (e *Extension) OnBillCreated(ctx context.Context, v interface{}) error {
	b, ok := v.(*bill.Bill)
	if !ok {
		return nil
	}
	return e.publish(ctx, EventBillCreated, SeverityInfo, b.LandlordID, b.TenancyID.String(),
		"bill_id", b.ID.String(),
		"month", b.ForMonth,
		"year", b.ForYear,
		"total_due", b.TotalDue.String(),
	)
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentApplied implements plugin.OnPaymentApplied.
func (e *Extension) OnPaymentApplied(ctx context.Context, v interface{}) error {
	p, ok := v.(*payment.Payment)
	if !ok {
		return nil
	}
	return e.publish(ctx, EventPaymentApplied, SeverityInfo, p.LandlordID, p.TenancyID.String(),
		"payment_id", p.ID.String(),
		"amount", p.Amount.String(),
		"method", string(p.Method),
		"bills_settled", len(p.Allocations),
	)
}

// OnAdvanceCredited implements plugin.OnAdvanceCredited.
func (e *Extension) OnAdvanceCredited(ctx context.Context, v interface{}) error {
	c, ok := v.(*credit.AdvanceCredit)
	if !ok {
		return nil
	}
	return e.publish(ctx, EventAdvanceCredited, SeverityInfo, "", c.TenancyID.String(),
		"credit_id", c.ID.String(),
		"amount", c.Amount.String(),
		"months", c.Months,
		"days", c.Days,
	)
}

// ──────────────────────────────────────────────────
// Reconciliation hooks
// ──────────────────────────────────────────────────

// OnStatementImported implements plugin.OnStatementImported.
func (e *Extension) OnStatementImported(ctx context.Context, v interface{}) error {
	imp, ok := v.(*statement.Import)
	if !ok {
		return nil
	}
	return e.publish(ctx, EventStatementImported, SeverityInfo, imp.LandlordID, "",
		"import_id", imp.ID.String(),
		"transactions", imp.Summary.Total,
		"matched", imp.Summary.Matched,
		"ambiguous", imp.Summary.Ambiguous,
	)
}

// OnTransactionConfirmed implements plugin.OnTransactionConfirmed.
func (e *Extension) OnTransactionConfirmed(ctx context.Context, txnV interface{}, payV interface{}) error {
	txn, ok := txnV.(*statement.Transaction)
	if !ok {
		return nil
	}
	p, ok := payV.(*payment.Payment)
	if !ok {
		return nil
	}
	return e.publish(ctx, EventTransactionConfirmed, SeverityInfo, p.LandlordID, p.TenancyID.String(),
		"transaction_id", txn.ID.String(),
		"payment_id", p.ID.String(),
		"amount", p.Amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// publish builds and sends a notification if the event is enabled.
func (e *Extension) publish(
	ctx context.Context,
	event, severity, landlordID, tenancyID string,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[event] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			continue
		}
		meta[key] = kvPairs[i+1]
	}

	n := &Notification{
		Event:      event,
		Severity:   severity,
		LandlordID: landlordID,
		TenancyID:  tenancyID,
		Metadata:   meta,
	}

	if pubErr := e.publisher.Publish(ctx, n); pubErr != nil {
		e.logger.Warn("notify: failed to publish notification",
			"event", event,
			"tenancy_id", tenancyID,
			"error", pubErr,
		)
	}
	return nil
}
