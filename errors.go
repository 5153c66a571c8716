package rentledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("rentledger: not found")
	ErrAlreadyExists = errors.New("rentledger: already exists")
	ErrInvalidInput  = errors.New("rentledger: invalid input")
	ErrUnauthorized  = errors.New("rentledger: unauthorized")
	ErrForbidden     = errors.New("rentledger: forbidden")

	// Tenancy errors
	ErrTenancyNotFound = errors.New("rentledger: tenancy not found")
	ErrTenancyEnded    = errors.New("rentledger: tenancy has ended")
	ErrTenancyExists   = errors.New("rentledger: tenancy already exists for unit")
	ErrNoActiveTenancy = errors.New("rentledger: no active tenancy")

	// Billing errors
	ErrBillNotFound  = errors.New("rentledger: bill not found")
	ErrDuplicateBill = errors.New("rentledger: bill already exists for tenancy and period")
	ErrInvalidUsage  = errors.New("rentledger: invalid utility usage")
	ErrInvalidPeriod = errors.New("rentledger: invalid billing period")

	// Allocation errors
	ErrInvalidAmount          = errors.New("rentledger: payment amount must be positive")
	ErrPaymentNotFound        = errors.New("rentledger: payment not found")
	ErrDuplicatePayment       = errors.New("rentledger: payment already recorded for source transaction")
	ErrConcurrentModification = errors.New("rentledger: concurrent ledger modification")

	// Metering errors
	ErrReadingBufferFull = errors.New("rentledger: reading buffer full")
	ErrInvalidReading    = errors.New("rentledger: invalid meter reading")
	ErrReadingTooOld     = errors.New("rentledger: meter reading too old")

	// Statement errors
	ErrImportNotFound      = errors.New("rentledger: statement import not found")
	ErrTransactionNotFound = errors.New("rentledger: statement transaction not found")
	ErrWrongPassword       = errors.New("rentledger: statement password incorrect")
	ErrUnsupportedFormat   = errors.New("rentledger: unsupported statement format")
	ErrAlreadyPromoted     = errors.New("rentledger: transaction already promoted to payment")
	ErrNotPromotable       = errors.New("rentledger: transaction cannot be promoted")

	// Store errors
	ErrStoreNotReady     = errors.New("rentledger: store not ready")
	ErrStoreClosed       = errors.New("rentledger: store is closed")
	ErrTransactionFailed = errors.New("rentledger: transaction failed")
	ErrMigrationFailed   = errors.New("rentledger: migration failed")

	// Cache errors
	ErrCacheMiss       = errors.New("rentledger: cache miss")
	ErrCacheInvalidate = errors.New("rentledger: cache invalidation failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rentledger: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "rentledger: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("rentledger: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTenancyNotFound) ||
		errors.Is(err, ErrBillNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrImportNotFound) ||
		errors.Is(err, ErrTransactionNotFound)
}

// IsValidation returns true if the error is a caller input problem.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidUsage) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidReading) ||
		errors.As(err, &ve)
}

// IsParseFailure returns true if the error came from the statement parser
// boundary and the document itself is the problem.
func IsParseFailure(err error) bool {
	return errors.Is(err, ErrWrongPassword) ||
		errors.Is(err, ErrUnsupportedFormat)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification) ||
		errors.Is(err, ErrReadingBufferFull) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed) ||
		errors.Is(err, ErrCacheInvalidate)
}
