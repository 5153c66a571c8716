package store

import (
	"context"
	"time"

	"github.com/Carey99/rentledger/bill"
	"github.com/Carey99/rentledger/credit"
	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/meter"
	"github.com/Carey99/rentledger/payment"
	"github.com/Carey99/rentledger/rentcycle"
	"github.com/Carey99/rentledger/statement"
	"github.com/Carey99/rentledger/tenancy"
	"github.com/Carey99/rentledger/types"
)

// Store is the unified storage interface for all rentledger entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Tenancy methods
	CreateTenancy(ctx context.Context, t *tenancy.Tenancy) error
	GetTenancy(ctx context.Context, tenancyID id.TenancyID) (*tenancy.Tenancy, error)
	ListTenancies(ctx context.Context, landlordID string, opts tenancy.ListOpts) ([]*tenancy.Tenancy, error)
	UpdateTenancy(ctx context.Context, t *tenancy.Tenancy) error
	EndTenancy(ctx context.Context, tenancyID id.TenancyID) error

	// Bill methods
	CreateBill(ctx context.Context, b *bill.Bill) error
	GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error)
	GetBillByPeriod(ctx context.Context, tenancyID id.TenancyID, month, year int) (*bill.Bill, error)
	ListOutstandingBills(ctx context.Context, tenancyID id.TenancyID) ([]*bill.Bill, error)
	ListBills(ctx context.Context, tenancyID id.TenancyID, opts bill.ListOpts) ([]*bill.Bill, error)
	UpdateBillCAS(ctx context.Context, b *bill.Bill) error

	// Payment methods
	CreatePayment(ctx context.Context, p *payment.Payment) error
	GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error)
	GetPaymentBySourceTransaction(ctx context.Context, sourceTxnID string) (*payment.Payment, error)
	ListPayments(ctx context.Context, tenancyID id.TenancyID, opts payment.ListOpts) ([]*payment.Payment, error)
	LatestPayment(ctx context.Context, tenancyID id.TenancyID) (*payment.Payment, error)

	// Credit methods
	CreateCredit(ctx context.Context, c *credit.AdvanceCredit) error
	ListCredits(ctx context.Context, tenancyID id.TenancyID) ([]*credit.AdvanceCredit, error)
	// CreditBalance sums a tenancy's advance credits; currency names the
	// tenancy's billing currency so an empty balance is a zero in it.
	CreditBalance(ctx context.Context, tenancyID id.TenancyID, currency string) (types.Money, error)

	// Meter methods
	IngestReadings(ctx context.Context, readings []*meter.UtilityReading) error
	AggregateReadings(ctx context.Context, tenancyID id.TenancyID, month, year int) (map[string]int64, error)
	QueryReadings(ctx context.Context, tenancyID id.TenancyID, opts meter.QueryOpts) ([]*meter.UtilityReading, error)
	PurgeReadings(ctx context.Context, before time.Time) (int64, error)

	// Rent cycle cache methods
	GetCachedCycle(ctx context.Context, tenancyID id.TenancyID) (*rentcycle.RentCycle, error)
	SetCachedCycle(ctx context.Context, tenancyID id.TenancyID, cycle *rentcycle.RentCycle, ttl time.Duration) error
	InvalidateCycle(ctx context.Context, tenancyID id.TenancyID) error

	// Statement methods
	CreateImport(ctx context.Context, imp *statement.Import) error
	GetImport(ctx context.Context, importID id.ImportID) (*statement.Import, error)
	ListImports(ctx context.Context, landlordID string, opts statement.ListOpts) ([]*statement.Import, error)
	MarkTransactionPromoted(ctx context.Context, importID id.ImportID, txnID id.TransactionID, paymentID id.PaymentID) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
