package notify

import "log/slog"

// Option configures an Extension.
type Option func(*Extension)

// WithLogger sets the logger for the extension.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extension) {
		e.logger = logger
	}
}

// WithEnabledEvents sets which events produce notifications.
// If not called, all events do.
func WithEnabledEvents(events ...string) Option {
	return func(e *Extension) {
		e.enabled = make(map[string]bool)
		for _, event := range events {
			e.enabled[event] = true
		}
	}
}

// WithDisabledEvents sets which events to skip.
func WithDisabledEvents(events ...string) Option {
	return func(e *Extension) {
		if e.enabled == nil {
			e.enabled = make(map[string]bool)
			for _, event := range allEvents() {
				e.enabled[event] = true
			}
		}
		for _, event := range events {
			delete(e.enabled, event)
		}
	}
}

// allEvents returns all known notification events.
func allEvents() []string {
	return []string{
		EventTenancyCreated,
		EventTenancyEnded,
		EventBillCreated,
		EventPaymentApplied,
		EventAdvanceCredited,
		EventStatementImported,
		EventTransactionConfirmed,
	}
}
