package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onTenancyCreated       []OnTenancyCreated
	onTenancyEnded         []OnTenancyEnded
	onBillCreated          []OnBillCreated
	onPaymentApplied       []OnPaymentApplied
	onAdvanceCredited      []OnAdvanceCredited
	onAllocationRetried    []OnAllocationRetried
	onCycleResolved        []OnCycleResolved
	onReadingsFlushed      []OnReadingsFlushed
	onStatementImported    []OnStatementImported
	onTransactionConfirmed []OnTransactionConfirmed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnTenancyCreated); ok {
		r.onTenancyCreated = append(r.onTenancyCreated, v)
	}
	if v, ok := p.(OnTenancyEnded); ok {
		r.onTenancyEnded = append(r.onTenancyEnded, v)
	}
	if v, ok := p.(OnBillCreated); ok {
		r.onBillCreated = append(r.onBillCreated, v)
	}
	if v, ok := p.(OnPaymentApplied); ok {
		r.onPaymentApplied = append(r.onPaymentApplied, v)
	}
	if v, ok := p.(OnAdvanceCredited); ok {
		r.onAdvanceCredited = append(r.onAdvanceCredited, v)
	}
	if v, ok := p.(OnAllocationRetried); ok {
		r.onAllocationRetried = append(r.onAllocationRetried, v)
	}
	if v, ok := p.(OnCycleResolved); ok {
		r.onCycleResolved = append(r.onCycleResolved, v)
	}
	if v, ok := p.(OnReadingsFlushed); ok {
		r.onReadingsFlushed = append(r.onReadingsFlushed, v)
	}
	if v, ok := p.(OnStatementImported); ok {
		r.onStatementImported = append(r.onStatementImported, v)
	}
	if v, ok := p.(OnTransactionConfirmed); ok {
		r.onTransactionConfirmed = append(r.onTransactionConfirmed, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnTenancyCreated)(nil)).Elem(), "OnTenancyCreated")
	checkInterface(reflect.TypeOf((*OnTenancyEnded)(nil)).Elem(), "OnTenancyEnded")
	checkInterface(reflect.TypeOf((*OnBillCreated)(nil)).Elem(), "OnBillCreated")
	checkInterface(reflect.TypeOf((*OnPaymentApplied)(nil)).Elem(), "OnPaymentApplied")
	checkInterface(reflect.TypeOf((*OnAdvanceCredited)(nil)).Elem(), "OnAdvanceCredited")
	checkInterface(reflect.TypeOf((*OnCycleResolved)(nil)).Elem(), "OnCycleResolved")
	checkInterface(reflect.TypeOf((*OnReadingsFlushed)(nil)).Elem(), "OnReadingsFlushed")
	checkInterface(reflect.TypeOf((*OnStatementImported)(nil)).Elem(), "OnStatementImported")
	checkInterface(reflect.TypeOf((*OnTransactionConfirmed)(nil)).Elem(), "OnTransactionConfirmed")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTenancyCreated emits a tenancy created event.
func (r *Registry) EmitTenancyCreated(ctx context.Context, t interface{}) {
	r.mu.RLock()
	plugins := r.onTenancyCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTenancyCreated(ctx, t)
		}); err != nil {
			r.logger.Warn("plugin OnTenancyCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTenancyEnded emits a tenancy ended event.
func (r *Registry) EmitTenancyEnded(ctx context.Context, t interface{}) {
	r.mu.RLock()
	plugins := r.onTenancyEnded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTenancyEnded(ctx, t)
		}); err != nil {
			r.logger.Warn("plugin OnTenancyEnded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillCreated emits a bill created event.
func (r *Registry) EmitBillCreated(ctx context.Context, b interface{}) {
	r.mu.RLock()
	plugins := r.onBillCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillCreated(ctx, b)
		}); err != nil {
			r.logger.Warn("plugin OnBillCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentApplied emits a payment applied event.
func (r *Registry) EmitPaymentApplied(ctx context.Context, pay interface{}) {
	r.mu.RLock()
	plugins := r.onPaymentApplied
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentApplied(ctx, pay)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentApplied failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitAdvanceCredited emits an advance credited event.
func (r *Registry) EmitAdvanceCredited(ctx context.Context, c interface{}) {
	r.mu.RLock()
	plugins := r.onAdvanceCredited
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAdvanceCredited(ctx, c)
		}); err != nil {
			r.logger.Warn("plugin OnAdvanceCredited failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitAllocationRetried emits an allocation retried event.
func (r *Registry) EmitAllocationRetried(ctx context.Context, tenancyID string, attempt int) {
	r.mu.RLock()
	plugins := r.onAllocationRetried
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAllocationRetried(ctx, tenancyID, attempt)
		}); err != nil {
			r.logger.Warn("plugin OnAllocationRetried failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCycleResolved emits a cycle resolved event.
func (r *Registry) EmitCycleResolved(ctx context.Context, cycle interface{}) {
	r.mu.RLock()
	plugins := r.onCycleResolved
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCycleResolved(ctx, cycle)
		}); err != nil {
			r.logger.Warn("plugin OnCycleResolved failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitReadingsFlushed emits a readings flushed event.
func (r *Registry) EmitReadingsFlushed(ctx context.Context, count int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onReadingsFlushed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnReadingsFlushed(ctx, count, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnReadingsFlushed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitStatementImported emits a statement imported event.
func (r *Registry) EmitStatementImported(ctx context.Context, imp interface{}) {
	r.mu.RLock()
	plugins := r.onStatementImported
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnStatementImported(ctx, imp)
		}); err != nil {
			r.logger.Warn("plugin OnStatementImported failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTransactionConfirmed emits a transaction confirmed event.
func (r *Registry) EmitTransactionConfirmed(ctx context.Context, txn interface{}, pay interface{}) {
	r.mu.RLock()
	plugins := r.onTransactionConfirmed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransactionConfirmed(ctx, txn, pay)
		}); err != nil {
			r.logger.Warn("plugin OnTransactionConfirmed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins must never block the ledger pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
