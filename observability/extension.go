// Package observability provides a metrics extension for rentledger that
// records lifecycle event counts via a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/Carey99/rentledger/plugin"
	"github.com/Carey99/rentledger/statement"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnTenancyCreated       = (*MetricsExtension)(nil)
	_ plugin.OnTenancyEnded         = (*MetricsExtension)(nil)
	_ plugin.OnBillCreated          = (*MetricsExtension)(nil)
	_ plugin.OnPaymentApplied       = (*MetricsExtension)(nil)
	_ plugin.OnAdvanceCredited      = (*MetricsExtension)(nil)
	_ plugin.OnAllocationRetried    = (*MetricsExtension)(nil)
	_ plugin.OnCycleResolved        = (*MetricsExtension)(nil)
	_ plugin.OnReadingsFlushed      = (*MetricsExtension)(nil)
	_ plugin.OnStatementImported    = (*MetricsExtension)(nil)
	_ plugin.OnTransactionConfirmed = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a rentledger plugin to automatically track ledger metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Tenancy metrics
	TenancyCreated Counter
	TenancyEnded   Counter

	// Billing metrics
	BillCreated Counter
	BillTotal   Histogram

	// Allocation metrics
	PaymentApplied    Counter
	PaymentAmount     Histogram
	AdvanceCredited   Counter
	AllocationRetries Counter

	// Status resolution metrics
	CyclesResolved Counter

	// Metering metrics
	ReadingsFlushed  Counter
	ReadingBatchSize Histogram
	FlushLatency     Histogram

	// Reconciliation metrics
	StatementsImported    Counter
	TransactionsMatched   Counter
	TransactionsAmbiguous Counter
	TransactionsUnmatched Counter
	TransactionsConfirmed Counter

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Tenancy metrics
		TenancyCreated: factory.Counter("rentledger.tenancy.created"),
		TenancyEnded:   factory.Counter("rentledger.tenancy.ended"),

		// Billing metrics
		BillCreated: factory.Counter("rentledger.bill.created"),
		BillTotal:   factory.Histogram("rentledger.bill.total_amount"),

		// Allocation metrics
		PaymentApplied:    factory.Counter("rentledger.payment.applied"),
		PaymentAmount:     factory.Histogram("rentledger.payment.amount"),
		AdvanceCredited:   factory.Counter("rentledger.advance.credited"),
		AllocationRetries: factory.Counter("rentledger.allocation.retries"),

		// Status resolution metrics
		CyclesResolved: factory.Counter("rentledger.cycle.resolved"),

		// Metering metrics
		ReadingsFlushed:  factory.Counter("rentledger.readings.flushed"),
		ReadingBatchSize: factory.Histogram("rentledger.readings.batch.size"),
		FlushLatency:     factory.Histogram("rentledger.readings.flush.latency_ms"),

		// Reconciliation metrics
		StatementsImported:    factory.Counter("rentledger.statement.imported"),
		TransactionsMatched:   factory.Counter("rentledger.statement.matched"),
		TransactionsAmbiguous: factory.Counter("rentledger.statement.ambiguous"),
		TransactionsUnmatched: factory.Counter("rentledger.statement.unmatched"),
		TransactionsConfirmed: factory.Counter("rentledger.statement.confirmed"),

		// Error metrics
		StoreErrors:  factory.Counter("rentledger.store.errors"),
		PluginErrors: factory.Counter("rentledger.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Tenancy lifecycle hooks
// ──────────────────────────────────────────────────

// OnTenancyCreated implements plugin.OnTenancyCreated.
func (m *MetricsExtension) OnTenancyCreated(_ context.Context, _ interface{}) error {
	m.TenancyCreated.Inc()
	return nil
}

// OnTenancyEnded implements plugin.OnTenancyEnded.
func (m *MetricsExtension) OnTenancyEnded(_ context.Context, _ interface{}) error {
	m.TenancyEnded.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Billing hooks
// ──────────────────────────────────────────────────

// OnBillCreated implements plugin.OnBillCreated.
func (m *MetricsExtension) OnBillCreated(_ context.Context, _ interface{}) error {
	m.BillCreated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Allocation hooks
// ──────────────────────────────────────────────────

// OnPaymentApplied implements plugin.OnPaymentApplied.
func (m *MetricsExtension) OnPaymentApplied(_ context.Context, _ interface{}) error {
	m.PaymentApplied.Inc()
	return nil
}

// OnAdvanceCredited implements plugin.OnAdvanceCredited.
func (m *MetricsExtension) OnAdvanceCredited(_ context.Context, _ interface{}) error {
	m.AdvanceCredited.Inc()
	return nil
}

// OnAllocationRetried implements plugin.OnAllocationRetried.
func (m *MetricsExtension) OnAllocationRetried(_ context.Context, _ string, _ int) error {
	m.AllocationRetries.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Status resolution hooks
// ──────────────────────────────────────────────────

// OnCycleResolved implements plugin.OnCycleResolved.
func (m *MetricsExtension) OnCycleResolved(_ context.Context, _ interface{}) error {
	m.CyclesResolved.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Metering hooks
// ──────────────────────────────────────────────────

// OnReadingsFlushed implements plugin.OnReadingsFlushed.
func (m *MetricsExtension) OnReadingsFlushed(_ context.Context, count int, elapsed time.Duration) error {
	m.ReadingsFlushed.Add(float64(count))
	m.ReadingBatchSize.Observe(float64(count))
	m.FlushLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// ──────────────────────────────────────────────────
// Reconciliation hooks
// ──────────────────────────────────────────────────

// OnStatementImported implements plugin.OnStatementImported.
func (m *MetricsExtension) OnStatementImported(_ context.Context, v interface{}) error {
	m.StatementsImported.Inc()
	if imp, ok := v.(*statement.Import); ok {
		m.TransactionsMatched.Add(float64(imp.Summary.Matched))
		m.TransactionsAmbiguous.Add(float64(imp.Summary.Ambiguous))
		m.TransactionsUnmatched.Add(float64(imp.Summary.NoMatch))
	}
	return nil
}

// OnTransactionConfirmed implements plugin.OnTransactionConfirmed.
func (m *MetricsExtension) OnTransactionConfirmed(_ context.Context, _ interface{}, _ interface{}) error {
	m.TransactionsConfirmed.Inc()
	return nil
}
