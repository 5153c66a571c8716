// Package rentledger provides a composable rent ledger and reconciliation
// engine for Go applications.
//
// Rentledger is designed as a library, not a service. Import it directly
// into your Go application for maximum performance and flexibility. It
// provides:
//
//   - Idempotent monthly billing with metered utility charges
//   - Oldest-debt-first payment allocation with advance credit
//   - Derived rent status (paid, partial, grace period, overdue) with
//     short-TTL caching
//   - Fuzzy matching of bank/mobile-money statement transactions to tenants
//   - High-throughput meter reading ingestion with batched flushing
//   - Pluggable notification and audit hooks
//
// # Quick Start
//
// Create an engine instance with your preferred store:
//
//	import (
//	    "github.com/Carey99/rentledger"
//	    "github.com/Carey99/rentledger/store/postgres"
//	)
//
//	// Initialize store
//	store, err := postgres.New(databaseURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create engine
//	e := rentledger.New(store)
//
//	// Start the engine (begins background workers)
//	if err := e.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Stop()
//
// # Core Concepts
//
// Tenancies connect a tenant to a unit, its base rent, and its utility
// rate card:
//
//	t := &tenancy.Tenancy{
//	    TenantName:  "John Mwangi",
//	    TenantPhone: "0712345678",
//	    UnitLabel:   "A4",
//	    BaseRent:    rentledger.KES(15000_00),
//	    UtilityRates: map[string]rentledger.Money{
//	        "water":   rentledger.KES(20_00),
//	        "garbage": rentledger.KES(50_00),
//	    },
//	}
//	err := e.CreateTenancy(ctx, t)
//
// Bills price one calendar month: base rent plus metered utilities.
// Billing is idempotent per (tenancy, month, year):
//
//	b, err := e.CreateBill(ctx, t.ID, 3, 2026, rentledger.UtilityUsage{
//	    "water":   10,
//	    "garbage": 5,
//	})
//
// Payments settle outstanding bills oldest first; any surplus becomes
// advance credit:
//
//	p, err := e.ApplyPayment(ctx, rentledger.ApplyPaymentInput{
//	    TenancyID: t.ID,
//	    Amount:    rentledger.KES(15450_00),
//	    Method:    payment.MethodCash,
//	})
//
// Rent status is derived, never stored as truth:
//
//	cycle, err := e.ResolveStatus(ctx, t.ID)
//	if cycle.RentStatus == rentcycle.StatusOverdue {
//	    // chase the debt
//	}
//
// Statement imports match external transactions to tenants by phone,
// name, and amount; confirmed transactions become payments:
//
//	imp, err := e.ImportStatement(ctx, landlordID, pdfBytes, password)
//	for _, txn := range imp.Transactions {
//	    if txn.MatchStatus == statement.MatchStatusMatched {
//	        _, err := e.ConfirmTransaction(ctx, imp.ID, txn.ID, id.Nil)
//	    }
//	}
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid
// floating-point precision issues. The Money type represents amounts in
// the smallest currency unit (cents for KES and USD, whole shillings for
// UGX).
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	tncy_01h2xcejqtf2nbrexx3vqjhp41  // Tenancy ID
//	bill_01h2xcejqtf2nbrexx3vqjhp41  // Bill ID
//	pay_01h455vb4pex5vsknk084sn02q   // Payment ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package rentledger
