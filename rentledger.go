package rentledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/meter"
	"github.com/Carey99/rentledger/plugin"
	"github.com/Carey99/rentledger/statement"
	"github.com/Carey99/rentledger/store"
	"github.com/Carey99/rentledger/tenancy"
	"github.com/Carey99/rentledger/types"
)

// Engine is the rent ledger and reconciliation engine.
type Engine struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	parser  statement.Parser

	// Per-tenancy critical sections. Settlements for the same tenancy
	// serialize here; different tenancies run in parallel. Confirms of
	// the same statement transaction serialize on their own key.
	locksMu      sync.Mutex
	tenancyLocks map[string]*sync.Mutex
	confirmLocks map[string]*sync.Mutex

	// Background workers
	readingBuffer chan *meter.UtilityReading
	stopChan      chan struct{}
	wg            sync.WaitGroup

	// Configuration
	readingBatchSize     int
	readingFlushInterval time.Duration
	cycleCacheTTL        time.Duration
	graceDays            int
	allocationRetries    int
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:                s,
		plugins:              plugin.NewRegistry(),
		logger:               slog.Default(),
		tenancyLocks:         make(map[string]*sync.Mutex),
		confirmLocks:         make(map[string]*sync.Mutex),
		readingBuffer:        make(chan *meter.UtilityReading, 10000),
		stopChan:             make(chan struct{}),
		readingBatchSize:     100,
		readingFlushInterval: 5 * time.Second,
		cycleCacheTTL:        30 * time.Second,
		graceDays:            5,
		allocationRetries:    3,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithParser sets the statement parser used by ImportStatement.
func WithParser(p statement.Parser) Option {
	return func(e *Engine) {
		e.parser = p
	}
}

// WithMeterConfig configures reading ingestion parameters.
func WithMeterConfig(batchSize int, flushInterval time.Duration) Option {
	return func(e *Engine) {
		e.readingBatchSize = batchSize
		e.readingFlushInterval = flushInterval
	}
}

// WithCycleCacheTTL sets the rent cycle cache TTL.
func WithCycleCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.cycleCacheTTL = ttl
	}
}

// WithGracePeriod sets the number of days after a due date before a
// tenancy is considered overdue.
func WithGracePeriod(days int) Option {
	return func(e *Engine) {
		e.graceDays = days
	}
}

// WithAllocationRetries bounds how many times an allocation retries
// after losing the per-tenancy race.
func WithAllocationRetries(n int) Option {
	return func(e *Engine) {
		e.allocationRetries = n
	}
}

// Start begins background workers.
func (e *Engine) Start(ctx context.Context) error {
	// Migrate database
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	// Initialize plugins
	e.plugins.EmitInit(ctx, e)

	// Start reading flush worker
	e.wg.Add(1)
	go e.readingFlushWorker(ctx)

	e.logger.Info("rentledger started",
		"batch_size", e.readingBatchSize,
		"flush_interval", e.readingFlushInterval,
		"cache_ttl", e.cycleCacheTTL,
		"grace_days", e.graceDays,
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	close(e.stopChan)
	e.wg.Wait()

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// tenancyLock returns the mutex serializing settlements for one tenancy.
func (e *Engine) tenancyLock(tenancyID id.TenancyID) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	key := tenancyID.String()
	mu, ok := e.tenancyLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		e.tenancyLocks[key] = mu
	}
	return mu
}

// confirmLock returns the mutex serializing promotion of one statement
// transaction.
func (e *Engine) confirmLock(txnID id.TransactionID) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	key := txnID.String()
	mu, ok := e.confirmLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		e.confirmLocks[key] = mu
	}
	return mu
}

// ──────────────────────────────────────────────────
// Tenancy Management
// ──────────────────────────────────────────────────

// CreateTenancy registers a tenant occupying a unit.
func (e *Engine) CreateTenancy(ctx context.Context, t *tenancy.Tenancy) error {
	if t.ID.IsNil() {
		t.ID = id.NewTenancyID()
	}
	t.Entity = types.NewEntity()
	if t.Status == "" {
		t.Status = tenancy.StatusActive
	}
	if t.LeaseStart.IsZero() {
		t.LeaseStart = time.Now().UTC()
	}
	if !t.BaseRent.IsPositive() {
		return ValidationError{Field: "base_rent", Message: "must be positive"}
	}

	if err := e.store.CreateTenancy(ctx, t); err != nil {
		return err
	}

	e.plugins.EmitTenancyCreated(ctx, t)
	return nil
}

// GetTenancy retrieves a tenancy by ID.
func (e *Engine) GetTenancy(ctx context.Context, tenancyID id.TenancyID) (*tenancy.Tenancy, error) {
	return e.store.GetTenancy(ctx, tenancyID)
}

// ListTenancies lists a landlord's tenancies.
func (e *Engine) ListTenancies(ctx context.Context, landlordID string, opts tenancy.ListOpts) ([]*tenancy.Tenancy, error) {
	return e.store.ListTenancies(ctx, landlordID, opts)
}

// EndTenancy marks a tenancy as ended. Its bills and payments remain.
func (e *Engine) EndTenancy(ctx context.Context, tenancyID id.TenancyID) error {
	t, err := e.store.GetTenancy(ctx, tenancyID)
	if err != nil {
		return err
	}
	if !t.IsActive() {
		return ErrTenancyEnded
	}

	if err := e.store.EndTenancy(ctx, tenancyID); err != nil {
		return err
	}
	_ = e.store.InvalidateCycle(ctx, tenancyID) //nolint:errcheck // best-effort cache invalidation

	e.plugins.EmitTenancyEnded(ctx, t)
	return nil
}

// ──────────────────────────────────────────────────
// Utility Metering
// ──────────────────────────────────────────────────

// RecordReading buffers a utility meter reading (non-blocking).
func (e *Engine) RecordReading(ctx context.Context, tenancyID id.TenancyID, utilityType string, units int64) error {
	if units <= 0 {
		return ErrInvalidReading
	}

	t, err := e.store.GetTenancy(ctx, tenancyID)
	if err != nil {
		return err
	}
	if _, ok := t.RateFor(utilityType); !ok {
		return ErrInvalidUsage
	}

	reading := &meter.UtilityReading{
		ID:          id.NewReadingID(),
		TenancyID:   tenancyID,
		LandlordID:  t.LandlordID,
		UtilityType: utilityType,
		Units:       units,
		Timestamp:   time.Now().UTC(),
	}

	select {
	case e.readingBuffer <- reading:
		return nil
	default:
		return ErrReadingBufferFull
	}
}

// readingFlushWorker flushes buffered readings to the store.
func (e *Engine) readingFlushWorker(ctx context.Context) {
	defer e.wg.Done()

	batch := make([]*meter.UtilityReading, 0, e.readingBatchSize)
	ticker := time.NewTicker(e.readingFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			// Final flush
			if len(batch) > 0 {
				e.flushReadingBatch(ctx, batch)
			}
			return

		case reading := <-e.readingBuffer:
			batch = append(batch, reading)
			if len(batch) >= e.readingBatchSize {
				e.flushReadingBatch(ctx, batch)
				batch = make([]*meter.UtilityReading, 0, e.readingBatchSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				e.flushReadingBatch(ctx, batch)
				batch = make([]*meter.UtilityReading, 0, e.readingBatchSize)
			}
		}
	}
}

func (e *Engine) flushReadingBatch(ctx context.Context, batch []*meter.UtilityReading) {
	start := time.Now()

	if err := e.store.IngestReadings(ctx, batch); err != nil {
		e.logger.Error("failed to flush reading batch",
			"error", err,
			"batch_size", len(batch),
		)
		return
	}

	elapsed := time.Since(start)
	e.plugins.EmitReadingsFlushed(ctx, len(batch), elapsed)

	e.logger.Debug("flushed reading batch",
		"batch_size", len(batch),
		"elapsed_ms", elapsed.Milliseconds(),
	)
}
