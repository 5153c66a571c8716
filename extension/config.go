package extension

import "time"

// Config holds the RentLedger extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.rentledger" or "rentledger" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for rentledger routes (default: "/rentledger").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// MeterBatchSize is the number of utility readings to buffer before
	// flushing to the store (default: 100).
	MeterBatchSize int `json:"meter_batch_size" mapstructure:"meter_batch_size" yaml:"meter_batch_size"`

	// MeterFlushInterval is how frequently the reading buffer is flushed
	// even if the batch size has not been reached (default: 5s).
	MeterFlushInterval time.Duration `json:"meter_flush_interval" mapstructure:"meter_flush_interval" yaml:"meter_flush_interval"`

	// CycleCacheTTL controls how long resolved rent cycles are cached
	// before re-deriving against the store (default: 60s).
	CycleCacheTTL time.Duration `json:"cycle_cache_ttl" mapstructure:"cycle_cache_ttl" yaml:"cycle_cache_ttl"`

	// GracePeriodDays is the number of days after the due date before an
	// unpaid bill is considered overdue (default: 0).
	GracePeriodDays int `json:"grace_period_days" mapstructure:"grace_period_days" yaml:"grace_period_days"`

	// AllocationRetries is the maximum number of compare-and-swap retries
	// when a concurrent writer updates a bill mid-allocation (default: 3).
	AllocationRetries int `json:"allocation_retries" mapstructure:"allocation_retries" yaml:"allocation_retries"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MeterBatchSize:     100,
		MeterFlushInterval: 5 * time.Second,
		CycleCacheTTL:      60 * time.Second,
		AllocationRetries:  3,
	}
}
