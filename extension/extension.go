// Package extension provides the Forge extension adapter for RentLedger.
//
// It implements the forge.Extension interface to integrate RentLedger
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.rentledger" or
// "rentledger" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	rentledger "github.com/Carey99/rentledger"
	"github.com/Carey99/rentledger/store"
	"github.com/Carey99/rentledger/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "rentledger"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Rent ledger and reconciliation engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts RentLedger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *rentledger.Engine
	store      store.Store
	engineOpts []rentledger.Option
}

// New creates a new RentLedger Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying rentledger Engine.
// This is nil until Register is called.
func (e *Extension) Engine() *rentledger.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	// Build engine options from resolved config.
	opts := e.buildEngineOpts()

	eng := rentledger.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*rentledger.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("rentledger: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("rentledger: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs rentledger.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []rentledger.Option {
	opts := make([]rentledger.Option, 0, len(e.engineOpts)+4)

	// Apply config-derived options.
	if e.config.MeterBatchSize > 0 || e.config.MeterFlushInterval > 0 {
		batchSize := e.config.MeterBatchSize
		flushInterval := e.config.MeterFlushInterval
		defaults := DefaultConfig()
		if batchSize == 0 {
			batchSize = defaults.MeterBatchSize
		}
		if flushInterval == 0 {
			flushInterval = defaults.MeterFlushInterval
		}
		opts = append(opts, rentledger.WithMeterConfig(batchSize, flushInterval))
	}

	if e.config.CycleCacheTTL > 0 {
		opts = append(opts, rentledger.WithCycleCacheTTL(e.config.CycleCacheTTL))
	}
	if e.config.GracePeriodDays > 0 {
		opts = append(opts, rentledger.WithGracePeriod(e.config.GracePeriodDays))
	}
	if e.config.AllocationRetries > 0 {
		opts = append(opts, rentledger.WithAllocationRetries(e.config.AllocationRetries))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("rentledger: configuration is required but not found in config files; " +
				"ensure 'extensions.rentledger' or 'rentledger' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("rentledger: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("meter_batch_size", e.config.MeterBatchSize),
		forge.F("meter_flush_interval", e.config.MeterFlushInterval),
		forge.F("cycle_cache_ttl", e.config.CycleCacheTTL),
		forge.F("grace_period_days", e.config.GracePeriodDays),
		forge.F("allocation_retries", e.config.AllocationRetries),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.rentledger" first (namespaced pattern).
	if cm.IsSet("extensions.rentledger") {
		if err := cm.Bind("extensions.rentledger", &cfg); err == nil {
			e.Logger().Debug("rentledger: loaded config from file",
				forge.F("key", "extensions.rentledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("rentledger: failed to bind extensions.rentledger config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "rentledger" key.
	if cm.IsSet("rentledger") {
		if err := cm.Bind("rentledger", &cfg); err == nil {
			e.Logger().Debug("rentledger: loaded config from file",
				forge.F("key", "rentledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("rentledger: failed to bind rentledger config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.MeterBatchSize == 0 {
		cfg.MeterBatchSize = defaults.MeterBatchSize
	}
	if cfg.MeterFlushInterval == 0 {
		cfg.MeterFlushInterval = defaults.MeterFlushInterval
	}
	if cfg.CycleCacheTTL == 0 {
		cfg.CycleCacheTTL = defaults.CycleCacheTTL
	}
	if cfg.AllocationRetries == 0 {
		cfg.AllocationRetries = defaults.AllocationRetries
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.BasePath == "" && programmaticConfig.BasePath != "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.MeterBatchSize == 0 && programmaticConfig.MeterBatchSize != 0 {
		yamlConfig.MeterBatchSize = programmaticConfig.MeterBatchSize
	}
	if yamlConfig.MeterFlushInterval == 0 && programmaticConfig.MeterFlushInterval != 0 {
		yamlConfig.MeterFlushInterval = programmaticConfig.MeterFlushInterval
	}
	if yamlConfig.CycleCacheTTL == 0 && programmaticConfig.CycleCacheTTL != 0 {
		yamlConfig.CycleCacheTTL = programmaticConfig.CycleCacheTTL
	}
	if yamlConfig.GracePeriodDays == 0 && programmaticConfig.GracePeriodDays != 0 {
		yamlConfig.GracePeriodDays = programmaticConfig.GracePeriodDays
	}
	if yamlConfig.AllocationRetries == 0 && programmaticConfig.AllocationRetries != 0 {
		yamlConfig.AllocationRetries = programmaticConfig.AllocationRetries
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
