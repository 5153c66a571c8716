// Package memory provides an in-memory Store implementation, used in
// tests and as the default backend when no database is configured.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Carey99/rentledger"
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

type Store struct {
	mu sync.RWMutex

	// Tenancy storage
	tenancies map[string]*tenancy.Tenancy

	// Bill storage; periodIndex enforces one bill per (tenancy, year, month)
	bills       map[string]*bill.Bill
	periodIndex map[string]string // "tncy_x:2025:8" -> bill ID

	// Payment storage; sourceIndex backs callback idempotency
	payments    map[string]*payment.Payment
	sourceIndex map[string]string // source transaction ID -> payment ID

	// Advance credit storage
	credits []credit.AdvanceCredit

	// Meter readings
	readings []meter.UtilityReading

	// Rent cycle cache
	cycleCache  map[string]*rentcycle.RentCycle
	cacheExpiry map[string]time.Time

	// Statement imports
	imports map[string]*statement.Import
}

func New() *Store {
	return &Store{
		tenancies:   make(map[string]*tenancy.Tenancy),
		bills:       make(map[string]*bill.Bill),
		periodIndex: make(map[string]string),
		payments:    make(map[string]*payment.Payment),
		sourceIndex: make(map[string]string),
		credits:     make([]credit.AdvanceCredit, 0),
		readings:    make([]meter.UtilityReading, 0),
		cycleCache:  make(map[string]*rentcycle.RentCycle),
		cacheExpiry: make(map[string]time.Time),
		imports:     make(map[string]*statement.Import),
	}
}

// Tenancy Store implementation

func (s *Store) CreateTenancy(_ context.Context, t *tenancy.Tenancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenancies[t.ID.String()]; exists {
		return rentledger.ErrAlreadyExists
	}
	s.tenancies[t.ID.String()] = copyTenancy(t)
	return nil
}

func (s *Store) GetTenancy(_ context.Context, tenancyID id.TenancyID) (*tenancy.Tenancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.tenancies[tenancyID.String()]; ok {
		return copyTenancy(t), nil
	}
	return nil, rentledger.ErrTenancyNotFound
}

func (s *Store) ListTenancies(_ context.Context, landlordID string, opts tenancy.ListOpts) ([]*tenancy.Tenancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*tenancy.Tenancy, 0)
	for _, t := range s.tenancies {
		if t.LandlordID == landlordID {
			if opts.Status == "" || t.Status == opts.Status {
				result = append(result, copyTenancy(t))
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID.String() < result[j].ID.String() })
	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateTenancy(_ context.Context, t *tenancy.Tenancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenancies[t.ID.String()]; !exists {
		return rentledger.ErrTenancyNotFound
	}
	s.tenancies[t.ID.String()] = copyTenancy(t)
	return nil
}

func (s *Store) EndTenancy(_ context.Context, tenancyID id.TenancyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, exists := s.tenancies[tenancyID.String()]; exists {
		now := time.Now().UTC()
		t.Status = tenancy.StatusEnded
		t.EndedAt = &now
		return nil
	}
	return rentledger.ErrTenancyNotFound
}

// Bill Store implementation

func periodKey(tenancyID id.TenancyID, month, year int) string {
	return tenancyID.String() + ":" + strconv.Itoa(year) + ":" + strconv.Itoa(month)
}

func (s *Store) CreateBill(_ context.Context, b *bill.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := periodKey(b.TenancyID, b.ForMonth, b.ForYear)
	if _, exists := s.periodIndex[key]; exists {
		return rentledger.ErrDuplicateBill
	}
	s.bills[b.ID.String()] = copyBill(b)
	s.periodIndex[key] = b.ID.String()
	return nil
}

func (s *Store) GetBill(_ context.Context, billID id.BillID) (*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.bills[billID.String()]; ok {
		return copyBill(b), nil
	}
	return nil, rentledger.ErrBillNotFound
}

func (s *Store) GetBillByPeriod(_ context.Context, tenancyID id.TenancyID, month, year int) (*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if billID, ok := s.periodIndex[periodKey(tenancyID, month, year)]; ok {
		return copyBill(s.bills[billID]), nil
	}
	return nil, rentledger.ErrBillNotFound
}

func (s *Store) ListOutstandingBills(_ context.Context, tenancyID id.TenancyID) ([]*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*bill.Bill, 0)
	for _, b := range s.bills {
		if b.TenancyID.String() == tenancyID.String() &&
			(b.Status == bill.StatusPending || b.Status == bill.StatusPartial) {
			result = append(result, copyBill(b))
		}
	}
	// Oldest (forYear, forMonth) first: the allocation tie-break rule.
	sort.Slice(result, func(i, j int) bool { return result[i].Period() < result[j].Period() })
	return result, nil
}

func (s *Store) ListBills(_ context.Context, tenancyID id.TenancyID, opts bill.ListOpts) ([]*bill.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*bill.Bill, 0)
	for _, b := range s.bills {
		if b.TenancyID.String() == tenancyID.String() {
			if opts.Status == "" || b.Status == opts.Status {
				result = append(result, copyBill(b))
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Period() < result[j].Period() })
	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateBillCAS(_ context.Context, b *bill.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bills[b.ID.String()]
	if !ok {
		return rentledger.ErrBillNotFound
	}
	if stored.Version != b.Version {
		return rentledger.ErrConcurrentModification
	}

	updated := copyBill(b)
	updated.Version++
	updated.Touch()
	s.bills[b.ID.String()] = updated
	b.Version = updated.Version
	return nil
}

// Payment Store implementation

func (s *Store) CreatePayment(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payments[p.ID.String()]; exists {
		return rentledger.ErrAlreadyExists
	}
	if p.SourceTransactionID != "" {
		if _, exists := s.sourceIndex[p.SourceTransactionID]; exists {
			return rentledger.ErrDuplicatePayment
		}
		s.sourceIndex[p.SourceTransactionID] = p.ID.String()
	}
	s.payments[p.ID.String()] = copyPayment(p)
	return nil
}

func (s *Store) GetPayment(_ context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.payments[paymentID.String()]; ok {
		return copyPayment(p), nil
	}
	return nil, rentledger.ErrPaymentNotFound
}

func (s *Store) GetPaymentBySourceTransaction(_ context.Context, sourceTxnID string) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if paymentID, ok := s.sourceIndex[sourceTxnID]; ok {
		return copyPayment(s.payments[paymentID]), nil
	}
	return nil, rentledger.ErrPaymentNotFound
}

func (s *Store) ListPayments(_ context.Context, tenancyID id.TenancyID, opts payment.ListOpts) ([]*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*payment.Payment, 0)
	for _, p := range s.payments {
		if p.TenancyID.String() == tenancyID.String() {
			if opts.Method == "" || p.Method == opts.Method {
				result = append(result, copyPayment(p))
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ReceivedAt.Before(result[j].ReceivedAt) })
	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) LatestPayment(_ context.Context, tenancyID id.TenancyID) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *payment.Payment
	for _, p := range s.payments {
		if p.TenancyID.String() != tenancyID.String() {
			continue
		}
		if latest == nil || p.ReceivedAt.After(latest.ReceivedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, rentledger.ErrPaymentNotFound
	}
	return copyPayment(latest), nil
}

// Credit Store implementation

func (s *Store) CreateCredit(_ context.Context, c *credit.AdvanceCredit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credits = append(s.credits, *c)
	return nil
}

func (s *Store) ListCredits(_ context.Context, tenancyID id.TenancyID) ([]*credit.AdvanceCredit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*credit.AdvanceCredit, 0)
	for i := range s.credits {
		if s.credits[i].TenancyID.String() == tenancyID.String() {
			c := s.credits[i]
			result = append(result, &c)
		}
	}
	return result, nil
}

func (s *Store) CreditBalance(_ context.Context, tenancyID id.TenancyID, currency string) (types.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := types.Zero(currency)
	for i := range s.credits {
		if s.credits[i].TenancyID.String() != tenancyID.String() {
			continue
		}
		total = total.Add(s.credits[i].Amount)
	}
	return total, nil
}

// Meter Store implementation

func (s *Store) IngestReadings(_ context.Context, readings []*meter.UtilityReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range readings {
		if r.IdempotencyKey != "" && s.hasReadingKey(r.IdempotencyKey) {
			continue // Skip duplicate
		}
		s.readings = append(s.readings, *r)
	}
	return nil
}

func (s *Store) hasReadingKey(key string) bool {
	for i := range s.readings {
		if s.readings[i].IdempotencyKey == key {
			return true
		}
	}
	return false
}

func (s *Store) AggregateReadings(_ context.Context, tenancyID id.TenancyID, month, year int) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]int64)
	for i := range s.readings {
		r := &s.readings[i]
		if r.TenancyID.String() != tenancyID.String() {
			continue
		}
		if int(r.Timestamp.Month()) != month || r.Timestamp.Year() != year {
			continue
		}
		result[r.UtilityType] += r.Units
	}
	return result, nil
}

func (s *Store) QueryReadings(_ context.Context, tenancyID id.TenancyID, opts meter.QueryOpts) ([]*meter.UtilityReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*meter.UtilityReading, 0)
	for i := range s.readings {
		r := s.readings[i]
		if r.TenancyID.String() != tenancyID.String() {
			continue
		}
		if opts.UtilityType != "" && r.UtilityType != opts.UtilityType {
			continue
		}
		if (!opts.Start.IsZero() && !r.Timestamp.After(opts.Start)) ||
			(!opts.End.IsZero() && !r.Timestamp.Before(opts.End)) {
			continue
		}
		result = append(result, &r)
	}
	return result, nil
}

func (s *Store) PurgeReadings(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	kept := make([]meter.UtilityReading, 0, len(s.readings))
	for _, r := range s.readings {
		if r.Timestamp.Before(before) {
			count++
		} else {
			kept = append(kept, r)
		}
	}
	s.readings = kept
	return count, nil
}

// Rent cycle cache implementation

func (s *Store) GetCachedCycle(_ context.Context, tenancyID id.TenancyID) (*rentcycle.RentCycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := tenancyID.String()
	if expiry, ok := s.cacheExpiry[key]; ok {
		if time.Now().Before(expiry) {
			if cycle, ok := s.cycleCache[key]; ok {
				c := *cycle
				return &c, nil
			}
		}
	}
	return nil, rentledger.ErrCacheMiss
}

func (s *Store) SetCachedCycle(_ context.Context, tenancyID id.TenancyID, cycle *rentcycle.RentCycle, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tenancyID.String()
	c := *cycle
	s.cycleCache[key] = &c
	s.cacheExpiry[key] = time.Now().Add(ttl)
	return nil
}

func (s *Store) InvalidateCycle(_ context.Context, tenancyID id.TenancyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tenancyID.String()
	delete(s.cycleCache, key)
	delete(s.cacheExpiry, key)
	return nil
}

// Statement Store implementation

func (s *Store) CreateImport(_ context.Context, imp *statement.Import) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.imports[imp.ID.String()]; exists {
		return rentledger.ErrAlreadyExists
	}
	s.imports[imp.ID.String()] = copyImport(imp)
	return nil
}

func (s *Store) GetImport(_ context.Context, importID id.ImportID) (*statement.Import, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if imp, ok := s.imports[importID.String()]; ok {
		return copyImport(imp), nil
	}
	return nil, rentledger.ErrImportNotFound
}

func (s *Store) ListImports(_ context.Context, landlordID string, opts statement.ListOpts) ([]*statement.Import, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*statement.Import, 0)
	for _, imp := range s.imports {
		if imp.LandlordID == landlordID {
			result = append(result, copyImport(imp))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) MarkTransactionPromoted(_ context.Context, importID id.ImportID, txnID id.TransactionID, paymentID id.PaymentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	imp, ok := s.imports[importID.String()]
	if !ok {
		return rentledger.ErrImportNotFound
	}
	for i := range imp.Transactions {
		if imp.Transactions[i].ID.String() != txnID.String() {
			continue
		}
		if imp.Transactions[i].Promoted() {
			return rentledger.ErrAlreadyPromoted
		}
		imp.Transactions[i].PromotedPaymentID = paymentID
		return nil
	}
	return rentledger.ErrTransactionNotFound
}

// Store management

func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

// Helper functions

func copyTenancy(t *tenancy.Tenancy) *tenancy.Tenancy {
	c := *t
	if t.UtilityRates != nil {
		c.UtilityRates = make(map[string]types.Money, len(t.UtilityRates))
		for k, v := range t.UtilityRates {
			c.UtilityRates[k] = v
		}
	}
	return &c
}

func copyBill(b *bill.Bill) *bill.Bill {
	c := *b
	if b.Charges != nil {
		c.Charges = append([]bill.UtilityCharge(nil), b.Charges...)
	}
	return &c
}

func copyPayment(p *payment.Payment) *payment.Payment {
	c := *p
	if p.Allocations != nil {
		c.Allocations = append([]payment.Allocation(nil), p.Allocations...)
	}
	return &c
}

func copyImport(imp *statement.Import) *statement.Import {
	c := *imp
	if imp.Transactions != nil {
		c.Transactions = append([]statement.Transaction(nil), imp.Transactions...)
	}
	return &c
}

func paginate[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
