package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	rentledger "github.com/Carey99/rentledger"
	"github.com/Carey99/rentledger/bill"
	"github.com/Carey99/rentledger/credit"
	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/meter"
	"github.com/Carey99/rentledger/payment"
	"github.com/Carey99/rentledger/rentcycle"
	"github.com/Carey99/rentledger/statement"
	rlstore "github.com/Carey99/rentledger/store"
	"github.com/Carey99/rentledger/tenancy"
	"github.com/Carey99/rentledger/types"
)

// Collection name constants.
const (
	colTenancies    = "rentledger_tenancies"
	colBills        = "rentledger_bills"
	colPayments     = "rentledger_payments"
	colCredits      = "rentledger_credits"
	colReadings     = "rentledger_readings"
	colCycleCache   = "rentledger_cycle_cache"
	colImports      = "rentledger_imports"
	colTransactions = "rentledger_transactions"
)

// compile-time interface check
var _ rlstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all rentledger collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("rentledger/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Tenancy Store ====================

func (s *Store) CreateTenancy(ctx context.Context, t *tenancy.Tenancy) error {
	m := toTenancyModel(t)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rentledger/mongo: create tenancy: %w", err)
	}
	return nil
}

func (s *Store) GetTenancy(ctx context.Context, tenancyID id.TenancyID) (*tenancy.Tenancy, error) {
	var m tenancyModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": tenancyID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rentledger.ErrTenancyNotFound
		}
		return nil, fmt.Errorf("rentledger/mongo: get tenancy: %w", err)
	}
	return fromTenancyModel(&m)
}

func (s *Store) ListTenancies(ctx context.Context, landlordID string, opts tenancy.ListOpts) ([]*tenancy.Tenancy, error) {
	var models []tenancyModel

	filter := bson.M{"landlord_id": landlordID}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rentledger/mongo: list tenancies: %w", err)
	}

	result := make([]*tenancy.Tenancy, len(models))
	for i := range models {
		t, err := fromTenancyModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

func (s *Store) UpdateTenancy(ctx context.Context, t *tenancy.Tenancy) error {
	m := toTenancyModel(t)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rentledger/mongo: update tenancy: %w", err)
	}
	if res.MatchedCount() == 0 {
		return rentledger.ErrTenancyNotFound
	}
	return nil
}

func (s *Store) EndTenancy(ctx context.Context, tenancyID id.TenancyID) error {
	t := now()
	res, err := s.mdb.NewUpdate((*tenancyModel)(nil)).
		Filter(bson.M{"_id": tenancyID.String()}).
		Set("status", string(tenancy.StatusEnded)).
		Set("ended_at", t).
		Set("updated_at", t).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rentledger/mongo: end tenancy: %w", err)
	}
	if res.MatchedCount() == 0 {
		return rentledger.ErrTenancyNotFound
	}
	return nil
}

// ==================== Bill Store ====================

func (s *Store) CreateBill(ctx context.Context, b *bill.Bill) error {
	m := toBillModel(b)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return rentledger.ErrDuplicateBill
		}
		return fmt.Errorf("rentledger/mongo: create bill: %w", err)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	var m billModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": billID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rentledger.ErrBillNotFound
		}
		return nil, fmt.Errorf("rentledger/mongo: get bill: %w", err)
	}
	return fromBillModel(&m)
}

func (s *Store) GetBillByPeriod(ctx context.Context, tenancyID id.TenancyID, month, year int) (*bill.Bill, error) {
	var m billModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"tenancy_id": tenancyID.String(),
			"for_year":   year,
			"for_month":  month,
		}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rentledger.ErrBillNotFound
		}
		return nil, fmt.Errorf("rentledger/mongo: get bill by period: %w", err)
	}
	return fromBillModel(&m)
}

func (s *Store) ListOutstandingBills(ctx context.Context, tenancyID id.TenancyID) ([]*bill.Bill, error) {
	var models []billModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{
			"tenancy_id": tenancyID.String(),
			"status":     bson.M{"$in": bson.A{string(bill.StatusPending), string(bill.StatusPartial)}},
		}).
		Sort(bson.D{{Key: "for_year", Value: 1}, {Key: "for_month", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rentledger/mongo: list outstanding bills: %w", err)
	}

	result := make([]*bill.Bill, len(models))
	for i := range models {
		b, err := fromBillModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

func (s *Store) ListBills(ctx context.Context, tenancyID id.TenancyID, opts bill.ListOpts) ([]*bill.Bill, error) {
	var models []billModel

	filter := bson.M{"tenancy_id": tenancyID.String()}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "for_year", Value: 1}, {Key: "for_month", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rentledger/mongo: list bills: %w", err)
	}

	result := make([]*bill.Bill, len(models))
	for i := range models {
		b, err := fromBillModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

func (s *Store) UpdateBillCAS(ctx context.Context, b *bill.Bill) error {
	t := now()
	res, err := s.mdb.NewUpdate((*billModel)(nil)).
		Filter(bson.M{"_id": b.ID.String(), "version": b.Version}).
		Set("amount_paid", toMoneyModel(b.AmountPaid)).
		Set("status", string(b.Status)).
		Set("version", b.Version+1).
		Set("updated_at", t).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rentledger/mongo: update bill: %w", err)
	}
	if res.MatchedCount() == 0 {
		return rentledger.ErrConcurrentModification
	}
	b.Version++
	return nil
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	m := toPaymentModel(p)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return rentledger.ErrDuplicatePayment
		}
		return fmt.Errorf("rentledger/mongo: create payment: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	var m paymentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": paymentID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rentledger.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("rentledger/mongo: get payment: %w", err)
	}
	return fromPaymentModel(&m)
}

func (s *Store) GetPaymentBySourceTransaction(ctx context.Context, sourceTxnID string) (*payment.Payment, error) {
	if sourceTxnID == "" {
		return nil, rentledger.ErrPaymentNotFound
	}
	var m paymentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"source_transaction_id": sourceTxnID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rentledger.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("rentledger/mongo: get payment by source txn: %w", err)
	}
	return fromPaymentModel(&m)
}

func (s *Store) ListPayments(ctx context.Context, tenancyID id.TenancyID, opts payment.ListOpts) ([]*payment.Payment, error) {
	var models []paymentModel

	filter := bson.M{"tenancy_id": tenancyID.String()}
	if opts.Method != "" {
		filter["method"] = string(opts.Method)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "received_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rentledger/mongo: list payments: %w", err)
	}

	result := make([]*payment.Payment, len(models))
	for i := range models {
		p, err := fromPaymentModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) LatestPayment(ctx context.Context, tenancyID id.TenancyID) (*payment.Payment, error) {
	var m paymentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"tenancy_id": tenancyID.String()}).
		Sort(bson.D{{Key: "received_at", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rentledger.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("rentledger/mongo: latest payment: %w", err)
	}
	return fromPaymentModel(&m)
}

// ==================== Credit Store ====================

func (s *Store) CreateCredit(ctx context.Context, c *credit.AdvanceCredit) error {
	m := toCreditModel(c)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rentledger/mongo: create credit: %w", err)
	}
	return nil
}

func (s *Store) ListCredits(ctx context.Context, tenancyID id.TenancyID) ([]*credit.AdvanceCredit, error) {
	var models []creditModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenancy_id": tenancyID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rentledger/mongo: list credits: %w", err)
	}

	result := make([]*credit.AdvanceCredit, len(models))
	for i := range models {
		c, err := fromCreditModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

func (s *Store) CreditBalance(ctx context.Context, tenancyID id.TenancyID, currency string) (types.Money, error) {
	credits, err := s.ListCredits(ctx, tenancyID)
	if err != nil {
		return types.Money{}, err
	}
	balance := types.Zero(currency)
	for _, c := range credits {
		balance = balance.Add(c.Amount)
	}
	return balance, nil
}

// ==================== Meter Store ====================

func (s *Store) IngestReadings(ctx context.Context, readings []*meter.UtilityReading) error {
	if len(readings) == 0 {
		return nil
	}
	for _, r := range readings {
		m := toReadingModel(r)
		_, err := s.mdb.NewInsert(m).Exec(ctx)
		if err != nil {
			// Skip duplicates for idempotency
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("rentledger/mongo: ingest reading: %w", err)
		}
	}
	return nil
}

func (s *Store) AggregateReadings(ctx context.Context, tenancyID id.TenancyID, month, year int) (map[string]int64, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	pipeline := bson.A{
		bson.M{
			"$match": bson.M{
				"tenancy_id": tenancyID.String(),
				"timestamp":  bson.M{"$gte": start, "$lt": end},
			},
		},
		bson.M{
			"$group": bson.M{
				"_id":   "$utility_type",
				"total": bson.M{"$sum": "$units"},
			},
		},
	}

	cursor, err := s.mdb.Collection(colReadings).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("rentledger/mongo: aggregate readings: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		UtilityType string `bson:"_id"`
		Total       int64  `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("rentledger/mongo: aggregate decode: %w", err)
	}

	totals := make(map[string]int64, len(results))
	for _, r := range results {
		totals[r.UtilityType] = r.Total
	}
	return totals, nil
}

func (s *Store) QueryReadings(ctx context.Context, tenancyID id.TenancyID, opts meter.QueryOpts) ([]*meter.UtilityReading, error) {
	var models []readingModel

	filter := bson.M{"tenancy_id": tenancyID.String()}
	if opts.UtilityType != "" {
		filter["utility_type"] = opts.UtilityType
	}
	if !opts.Start.IsZero() {
		if _, ok := filter["timestamp"]; !ok {
			filter["timestamp"] = bson.M{}
		}
		if ts, ok := filter["timestamp"].(bson.M); ok {
			ts["$gte"] = opts.Start
		}
	}
	if !opts.End.IsZero() {
		if _, ok := filter["timestamp"]; !ok {
			filter["timestamp"] = bson.M{}
		}
		if ts, ok := filter["timestamp"].(bson.M); ok {
			ts["$lte"] = opts.End
		}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "timestamp", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rentledger/mongo: query readings: %w", err)
	}

	result := make([]*meter.UtilityReading, len(models))
	for i := range models {
		r, err := fromReadingModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

func (s *Store) PurgeReadings(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*readingModel)(nil)).
		Filter(bson.M{"timestamp": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("rentledger/mongo: purge readings: %w", err)
	}
	return res.DeletedCount(), nil
}

// ==================== Rent Cycle Cache Store ====================

func (s *Store) GetCachedCycle(ctx context.Context, tenancyID id.TenancyID) (*rentcycle.RentCycle, error) {
	var m cycleCacheModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"_id":        tenancyID.String(),
			"expires_at": bson.M{"$gt": time.Now().UTC()},
		}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rentledger.ErrCacheMiss
		}
		return nil, fmt.Errorf("rentledger/mongo: get cached cycle: %w", err)
	}
	return fromCycleCacheModel(&m), nil
}

func (s *Store) SetCachedCycle(ctx context.Context, tenancyID id.TenancyID, cycle *rentcycle.RentCycle, ttl time.Duration) error {
	expiresAt := time.Now().UTC().Add(ttl)
	m := toCycleCacheModel(tenancyID, cycle, expiresAt)

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.TenancyID}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":               m.TenancyID,
			"rent_status":       m.RentStatus,
			"next_due_date":     m.NextDueDate,
			"days_remaining":    m.DaysRemaining,
			"debt":              m.Debt,
			"months_owed":       m.MonthsOwed,
			"advance_months":    m.AdvanceMonths,
			"advance_days":      m.AdvanceDays,
			"last_payment_date": m.LastPaymentDate,
			"resolved_at":       m.ResolvedAt,
			"expires_at":        m.ExpiresAt,
			"created_at":        m.CreatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rentledger/mongo: set cached cycle: %w", err)
	}
	return nil
}

func (s *Store) InvalidateCycle(ctx context.Context, tenancyID id.TenancyID) error {
	_, err := s.mdb.NewDelete((*cycleCacheModel)(nil)).
		Filter(bson.M{"_id": tenancyID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rentledger/mongo: invalidate cycle: %w", err)
	}
	return nil
}

// ==================== Statement Store ====================

func (s *Store) CreateImport(ctx context.Context, imp *statement.Import) error {
	m := toImportModel(imp)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("rentledger/mongo: create import: %w", err)
	}

	for i := range imp.Transactions {
		tm := toTransactionModel(&imp.Transactions[i])
		if _, err := s.mdb.NewInsert(tm).Exec(ctx); err != nil {
			return fmt.Errorf("rentledger/mongo: create import transaction: %w", err)
		}
	}
	return nil
}

func (s *Store) GetImport(ctx context.Context, importID id.ImportID) (*statement.Import, error) {
	var m importModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": importID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rentledger.ErrImportNotFound
		}
		return nil, fmt.Errorf("rentledger/mongo: get import: %w", err)
	}

	imp, err := fromImportModel(&m)
	if err != nil {
		return nil, err
	}

	var txnModels []transactionModel
	err = s.mdb.NewFind(&txnModels).
		Filter(bson.M{"import_id": importID.String()}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rentledger/mongo: get import transactions: %w", err)
	}

	imp.Transactions = make([]statement.Transaction, len(txnModels))
	for i := range txnModels {
		txn, err := fromTransactionModel(&txnModels[i])
		if err != nil {
			return nil, err
		}
		imp.Transactions[i] = *txn
	}
	return imp, nil
}

func (s *Store) ListImports(ctx context.Context, landlordID string, opts statement.ListOpts) ([]*statement.Import, error) {
	var models []importModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{"landlord_id": landlordID}).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rentledger/mongo: list imports: %w", err)
	}

	result := make([]*statement.Import, len(models))
	for i := range models {
		imp, err := fromImportModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = imp
	}
	return result, nil
}

func (s *Store) MarkTransactionPromoted(ctx context.Context, importID id.ImportID, txnID id.TransactionID, paymentID id.PaymentID) error {
	res, err := s.mdb.NewUpdate((*transactionModel)(nil)).
		Filter(bson.M{
			"_id":       txnID.String(),
			"import_id": importID.String(),
			"promoted_payment_id": bson.M{
				"$in": bson.A{nil, ""},
			},
		}).
		Set("promoted_payment_id", paymentID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rentledger/mongo: mark transaction promoted: %w", err)
	}
	if res.MatchedCount() == 0 {
		// Distinguish "already promoted" from "no such transaction".
		var m transactionModel
		err := s.mdb.NewFind(&m).
			Filter(bson.M{"_id": txnID.String(), "import_id": importID.String()}).
			Scan(ctx)
		if err != nil {
			if isNoDocuments(err) {
				return rentledger.ErrTransactionNotFound
			}
			return fmt.Errorf("rentledger/mongo: mark transaction promoted: %w", err)
		}
		return rentledger.ErrAlreadyPromoted
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all rentledger collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colTenancies: {
			{Keys: bson.D{{Key: "landlord_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "landlord_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colBills: {
			{
				Keys:    bson.D{{Key: "tenancy_id", Value: 1}, {Key: "for_year", Value: 1}, {Key: "for_month", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenancy_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		colPayments: {
			{Keys: bson.D{{Key: "tenancy_id", Value: 1}, {Key: "received_at", Value: -1}}},
			{
				Keys:    bson.D{{Key: "source_transaction_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
		},
		colCredits: {
			{Keys: bson.D{{Key: "tenancy_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colReadings: {
			{Keys: bson.D{{Key: "tenancy_id", Value: 1}, {Key: "utility_type", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{
				Keys:    bson.D{{Key: "idempotency_key", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
		},
		colCycleCache: {
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
		colImports: {
			{Keys: bson.D{{Key: "landlord_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colTransactions: {
			{Keys: bson.D{{Key: "import_id", Value: 1}}},
			{Keys: bson.D{{Key: "source_transaction_id", Value: 1}}},
		},
	}
}
