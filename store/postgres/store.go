package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

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

// compile-time interface check
var _ rlstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("rentledger/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("rentledger/postgres: migration failed: %w", err)
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
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetTenancy(ctx context.Context, tenancyID id.TenancyID) (*tenancy.Tenancy, error) {
	m := new(tenancyModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", tenancyID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rentledger.ErrTenancyNotFound
		}
		return nil, err
	}
	return fromTenancyModel(m)
}

func (s *Store) ListTenancies(ctx context.Context, landlordID string, opts tenancy.ListOpts) ([]*tenancy.Tenancy, error) {
	var models []tenancyModel
	q := s.pg.NewSelect(&models).Where("landlord_id = $1", landlordID)

	argIdx := 1
	if opts.Status != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return rentledger.ErrTenancyNotFound
	}
	return nil
}

func (s *Store) EndTenancy(ctx context.Context, tenancyID id.TenancyID) error {
	t := now()
	res, err := s.pg.NewUpdate((*tenancyModel)(nil)).
		Set("status = $1", string(tenancy.StatusEnded)).
		Set("ended_at = $2", t).
		Set("updated_at = $3", t).
		Where("id = $4", tenancyID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return rentledger.ErrTenancyNotFound
	}
	return nil
}

// ==================== Bill Store ====================

func (s *Store) CreateBill(ctx context.Context, b *bill.Bill) error {
	m := toBillModel(b)
	res, err := s.pg.NewInsert(m).
		OnConflict("(tenancy_id, for_year, for_month) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return rentledger.ErrDuplicateBill
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	m := new(billModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", billID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rentledger.ErrBillNotFound
		}
		return nil, err
	}
	return fromBillModel(m)
}

func (s *Store) GetBillByPeriod(ctx context.Context, tenancyID id.TenancyID, month, year int) (*bill.Bill, error) {
	m := new(billModel)
	err := s.pg.NewSelect(m).
		Where("tenancy_id = $1", tenancyID.String()).
		Where("for_year = $2", year).
		Where("for_month = $3", month).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rentledger.ErrBillNotFound
		}
		return nil, err
	}
	return fromBillModel(m)
}

func (s *Store) ListOutstandingBills(ctx context.Context, tenancyID id.TenancyID) ([]*bill.Bill, error) {
	var models []billModel
	err := s.pg.NewSelect(&models).
		Where("tenancy_id = $1", tenancyID.String()).
		Where("status IN ($2, $3)", string(bill.StatusPending), string(bill.StatusPartial)).
		OrderExpr("for_year ASC, for_month ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	q := s.pg.NewSelect(&models).Where("tenancy_id = $1", tenancyID.String())

	argIdx := 1
	if opts.Status != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("for_year ASC, for_month ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	res, err := s.pg.NewUpdate((*billModel)(nil)).
		Set("amount_paid_cents = $1", b.AmountPaid.Amount).
		Set("amount_paid_currency = $2", b.AmountPaid.Currency).
		Set("status = $3", string(b.Status)).
		Set("version = $4", b.Version+1).
		Set("updated_at = $5", t).
		Where("id = $6", b.ID.String()).
		Where("version = $7", b.Version).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return rentledger.ErrConcurrentModification
	}
	b.Version++
	return nil
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	m := toPaymentModel(p)
	res, err := s.pg.NewInsert(m).
		OnConflict("(source_transaction_id) WHERE source_transaction_id != '' DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return rentledger.ErrDuplicatePayment
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	m := new(paymentModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", paymentID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rentledger.ErrPaymentNotFound
		}
		return nil, err
	}
	return fromPaymentModel(m)
}

func (s *Store) GetPaymentBySourceTransaction(ctx context.Context, sourceTxnID string) (*payment.Payment, error) {
	if sourceTxnID == "" {
		return nil, rentledger.ErrPaymentNotFound
	}
	m := new(paymentModel)
	err := s.pg.NewSelect(m).
		Where("source_transaction_id = $1", sourceTxnID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rentledger.ErrPaymentNotFound
		}
		return nil, err
	}
	return fromPaymentModel(m)
}

func (s *Store) ListPayments(ctx context.Context, tenancyID id.TenancyID, opts payment.ListOpts) ([]*payment.Payment, error) {
	var models []paymentModel
	q := s.pg.NewSelect(&models).Where("tenancy_id = $1", tenancyID.String())

	argIdx := 1
	if opts.Method != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("method = $%d", argIdx), string(opts.Method))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("received_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	m := new(paymentModel)
	err := s.pg.NewSelect(m).
		Where("tenancy_id = $1", tenancyID.String()).
		OrderExpr("received_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rentledger.ErrPaymentNotFound
		}
		return nil, err
	}
	return fromPaymentModel(m)
}

// ==================== Credit Store ====================

func (s *Store) CreateCredit(ctx context.Context, c *credit.AdvanceCredit) error {
	m := toCreditModel(c)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListCredits(ctx context.Context, tenancyID id.TenancyID) ([]*credit.AdvanceCredit, error) {
	var models []creditModel
	err := s.pg.NewSelect(&models).
		Where("tenancy_id = $1", tenancyID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	models := make([]readingModel, len(readings))
	for i, r := range readings {
		models[i] = *toReadingModel(r)
	}
	_, err := s.pg.NewInsert(&models).
		OnConflict("(idempotency_key) WHERE idempotency_key != '' DO NOTHING").
		Exec(ctx)
	return err
}

func (s *Store) AggregateReadings(ctx context.Context, tenancyID id.TenancyID, month, year int) (map[string]int64, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var models []readingModel
	err := s.pg.NewSelect(&models).
		Where("tenancy_id = $1", tenancyID.String()).
		Where("timestamp >= $2", start).
		Where("timestamp < $3", end).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int64)
	for i := range models {
		totals[models[i].UtilityType] += models[i].Units
	}
	return totals, nil
}

func (s *Store) QueryReadings(ctx context.Context, tenancyID id.TenancyID, opts meter.QueryOpts) ([]*meter.UtilityReading, error) {
	var models []readingModel
	q := s.pg.NewSelect(&models).Where("tenancy_id = $1", tenancyID.String())

	argIdx := 1
	if opts.UtilityType != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("utility_type = $%d", argIdx), opts.UtilityType)
	}
	if !opts.Start.IsZero() {
		argIdx++
		q = q.Where(fmt.Sprintf("timestamp >= $%d", argIdx), opts.Start)
	}
	if !opts.End.IsZero() {
		argIdx++
		q = q.Where(fmt.Sprintf("timestamp <= $%d", argIdx), opts.End)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("timestamp DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	res, err := s.pg.NewDelete((*readingModel)(nil)).
		Where("timestamp < $1", before).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return rows, nil
}

// ==================== Rent Cycle Cache Store ====================

func (s *Store) GetCachedCycle(ctx context.Context, tenancyID id.TenancyID) (*rentcycle.RentCycle, error) {
	m := new(cycleCacheModel)
	err := s.pg.NewSelect(m).
		Where("tenancy_id = $1", tenancyID.String()).
		Where("expires_at > $2", time.Now().UTC()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rentledger.ErrCacheMiss
		}
		return nil, err
	}
	return fromCycleCacheModel(m), nil
}

func (s *Store) SetCachedCycle(ctx context.Context, tenancyID id.TenancyID, cycle *rentcycle.RentCycle, ttl time.Duration) error {
	expiresAt := time.Now().UTC().Add(ttl)
	m := toCycleCacheModel(tenancyID, cycle, expiresAt)
	_, err := s.pg.NewInsert(m).
		OnConflict("(tenancy_id) DO UPDATE").
		Set("rent_status = EXCLUDED.rent_status").
		Set("next_due_date = EXCLUDED.next_due_date").
		Set("days_remaining = EXCLUDED.days_remaining").
		Set("debt_cents = EXCLUDED.debt_cents").
		Set("debt_currency = EXCLUDED.debt_currency").
		Set("months_owed = EXCLUDED.months_owed").
		Set("advance_months = EXCLUDED.advance_months").
		Set("advance_days = EXCLUDED.advance_days").
		Set("last_payment_date = EXCLUDED.last_payment_date").
		Set("resolved_at = EXCLUDED.resolved_at").
		Set("expires_at = EXCLUDED.expires_at").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	return err
}

func (s *Store) InvalidateCycle(ctx context.Context, tenancyID id.TenancyID) error {
	_, err := s.pg.NewDelete((*cycleCacheModel)(nil)).
		Where("tenancy_id = $1", tenancyID.String()).
		Exec(ctx)
	return err
}

// ==================== Statement Store ====================

func (s *Store) CreateImport(ctx context.Context, imp *statement.Import) error {
	m := toImportModel(imp)
	if _, err := s.pg.NewInsert(m).Exec(ctx); err != nil {
		return err
	}

	if len(imp.Transactions) == 0 {
		return nil
	}
	models := make([]transactionModel, len(imp.Transactions))
	for i := range imp.Transactions {
		models[i] = *toTransactionModel(&imp.Transactions[i])
	}
	_, err := s.pg.NewInsert(&models).Exec(ctx)
	return err
}

func (s *Store) GetImport(ctx context.Context, importID id.ImportID) (*statement.Import, error) {
	m := new(importModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", importID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rentledger.ErrImportNotFound
		}
		return nil, err
	}

	imp, err := fromImportModel(m)
	if err != nil {
		return nil, err
	}

	var txnModels []transactionModel
	err = s.pg.NewSelect(&txnModels).
		Where("import_id = $1", importID.String()).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	q := s.pg.NewSelect(&models).Where("landlord_id = $1", landlordID)

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	res, err := s.pg.NewUpdate((*transactionModel)(nil)).
		Set("promoted_payment_id = $1", paymentID.String()).
		Where("id = $2", txnID.String()).
		Where("import_id = $3", importID.String()).
		Where("promoted_payment_id = $4", "").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Distinguish "already promoted" from "no such transaction".
		m := new(transactionModel)
		err := s.pg.NewSelect(m).
			Where("id = $1", txnID.String()).
			Where("import_id = $2", importID.String()).
			Scan(ctx)
		if err != nil {
			if isNoRows(err) {
				return rentledger.ErrTransactionNotFound
			}
			return err
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

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
