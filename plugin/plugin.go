// Package plugin provides an extensible plugin system for rentledger.
// Plugins can hook into ledger lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Tenancy lifecycle hooks
// ──────────────────────────────────────────────────

// OnTenancyCreated is called when a new tenancy is created.
type OnTenancyCreated interface {
	Plugin
	OnTenancyCreated(ctx context.Context, t interface{}) error
}

// OnTenancyEnded is called when a tenancy ends.
type OnTenancyEnded interface {
	Plugin
	OnTenancyEnded(ctx context.Context, t interface{}) error
}

// ──────────────────────────────────────────────────
// Billing hooks
// ──────────────────────────────────────────────────

// OnBillCreated is called when a monthly bill is created.
type OnBillCreated interface {
	Plugin
	OnBillCreated(ctx context.Context, b interface{}) error
}

// ──────────────────────────────────────────────────
// Allocation hooks
// ──────────────────────────────────────────────────

// OnPaymentApplied is called after a payment has been allocated to bills.
type OnPaymentApplied interface {
	Plugin
	OnPaymentApplied(ctx context.Context, p interface{}) error
}

// OnAdvanceCredited is called when a payment surplus becomes advance credit.
type OnAdvanceCredited interface {
	Plugin
	OnAdvanceCredited(ctx context.Context, c interface{}) error
}

// OnAllocationRetried is called each time an allocation loses the
// per-tenancy race and is retried.
type OnAllocationRetried interface {
	Plugin
	OnAllocationRetried(ctx context.Context, tenancyID string, attempt int) error
}

// ──────────────────────────────────────────────────
// Status resolution hooks
// ──────────────────────────────────────────────────

// OnCycleResolved is called when a rent cycle is recomputed (cache miss).
type OnCycleResolved interface {
	Plugin
	OnCycleResolved(ctx context.Context, cycle interface{}) error
}

// ──────────────────────────────────────────────────
// Metering hooks
// ──────────────────────────────────────────────────

// OnReadingsFlushed is called when buffered meter readings are flushed
// to the store.
type OnReadingsFlushed interface {
	Plugin
	OnReadingsFlushed(ctx context.Context, count int, elapsed time.Duration) error
}

// ──────────────────────────────────────────────────
// Reconciliation hooks
// ──────────────────────────────────────────────────

// OnStatementImported is called when a statement import has been parsed,
// matched and stored.
type OnStatementImported interface {
	Plugin
	OnStatementImported(ctx context.Context, imp interface{}) error
}

// OnTransactionConfirmed is called when a matched transaction is
// promoted to a payment.
type OnTransactionConfirmed interface {
	Plugin
	OnTransactionConfirmed(ctx context.Context, txn interface{}, p interface{}) error
}
