package notify

// Event constants for tenant/landlord notifications.
const (
	// Tenancy events
	EventTenancyCreated = "tenancy.created"
	EventTenancyEnded   = "tenancy.ended"

	// Billing events
	EventBillCreated = "bill.created"

	// Payment events
	EventPaymentApplied  = "payment.applied"
	EventAdvanceCredited = "advance.credited"

	// Reconciliation events
	EventStatementImported    = "statement.imported"
	EventTransactionConfirmed = "transaction.confirmed"
)

// Severity levels for notifications.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)
