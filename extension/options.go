package extension

import (
	"time"

	rentledger "github.com/Carey99/rentledger"
	"github.com/Carey99/rentledger/plugin"
	"github.com/Carey99/rentledger/statement"
	"github.com/Carey99/rentledger/store"
)

// Option configures the RentLedger Forge extension.
type Option func(*Extension)

// WithStore sets the store for the rentledger engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a rentledger.Option through to the underlying engine.
func WithEngineOption(opt rentledger.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a rentledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, rentledger.WithPlugin(p))
	}
}

// WithParser sets the statement parser used for bank statement imports.
func WithParser(p statement.Parser) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, rentledger.WithParser(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes prevents HTTP route registration.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix for rentledger routes.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithMeterBatchSize sets the number of utility readings to buffer before flushing.
func WithMeterBatchSize(size int) Option {
	return func(e *Extension) { e.config.MeterBatchSize = size }
}

// WithMeterFlushInterval sets how frequently the reading buffer is flushed.
func WithMeterFlushInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.MeterFlushInterval = d }
}

// WithCycleCacheTTL sets the resolved rent-cycle cache duration.
func WithCycleCacheTTL(d time.Duration) Option {
	return func(e *Extension) { e.config.CycleCacheTTL = d }
}

// WithGracePeriod sets the number of days of grace after a bill's due date.
func WithGracePeriod(days int) Option {
	return func(e *Extension) { e.config.GracePeriodDays = days }
}

// WithAllocationRetries sets the maximum compare-and-swap retry count.
func WithAllocationRetries(n int) Option {
	return func(e *Extension) { e.config.AllocationRetries = n }
}
