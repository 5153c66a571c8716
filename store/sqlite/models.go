package sqlite

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

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

// ==================== Tenancy models ====================

type tenancyModel struct {
	grove.BaseModel `grove:"table:rentledger_tenancies"`

	ID               string            `grove:"id,pk"`
	LandlordID       string            `grove:"landlord_id"`
	TenantName       string            `grove:"tenant_name"`
	TenantPhone      string            `grove:"tenant_phone"`
	UnitLabel        string            `grove:"unit_label"`
	HouseType        string            `grove:"house_type"`
	BaseRentCents    int64             `grove:"base_rent_cents"`
	BaseRentCurrency string            `grove:"base_rent_currency"`
	UtilityRates     json.RawMessage   `grove:"utility_rates"`
	LeaseStart       time.Time         `grove:"lease_start"`
	Status           string            `grove:"status"`
	EndedAt          *time.Time        `grove:"ended_at"`
	Metadata         map[string]string `grove:"metadata"`
	CreatedAt        time.Time         `grove:"created_at"`
	UpdatedAt        time.Time         `grove:"updated_at"`
}

func toTenancyModel(t *tenancy.Tenancy) *tenancyModel {
	rates, _ := json.Marshal(t.UtilityRates) //nolint:errcheck // best-effort

	return &tenancyModel{
		ID:               t.ID.String(),
		LandlordID:       t.LandlordID,
		TenantName:       t.TenantName,
		TenantPhone:      t.TenantPhone,
		UnitLabel:        t.UnitLabel,
		HouseType:        t.HouseType,
		BaseRentCents:    t.BaseRent.Amount,
		BaseRentCurrency: t.BaseRent.Currency,
		UtilityRates:     rates,
		LeaseStart:       t.LeaseStart,
		Status:           string(t.Status),
		EndedAt:          t.EndedAt,
		Metadata:         t.Metadata,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func fromTenancyModel(m *tenancyModel) (*tenancy.Tenancy, error) {
	tenancyID, err := id.ParseTenancyID(m.ID)
	if err != nil {
		return nil, err
	}

	var rates map[string]types.Money
	if len(m.UtilityRates) > 0 {
		_ = json.Unmarshal(m.UtilityRates, &rates) //nolint:errcheck // best-effort
	}

	return &tenancy.Tenancy{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:           tenancyID,
		LandlordID:   m.LandlordID,
		TenantName:   m.TenantName,
		TenantPhone:  m.TenantPhone,
		UnitLabel:    m.UnitLabel,
		HouseType:    m.HouseType,
		BaseRent:     types.Money{Amount: m.BaseRentCents, Currency: m.BaseRentCurrency},
		UtilityRates: rates,
		LeaseStart:   m.LeaseStart,
		Status:       tenancy.Status(m.Status),
		EndedAt:      m.EndedAt,
		Metadata:     m.Metadata,
	}, nil
}

// ==================== Bill models ====================

type billModel struct {
	grove.BaseModel `grove:"table:rentledger_bills"`

	ID                 string            `grove:"id,pk"`
	TenancyID          string            `grove:"tenancy_id"`
	LandlordID         string            `grove:"landlord_id"`
	ForMonth           int               `grove:"for_month"`
	ForYear            int               `grove:"for_year"`
	BaseRentCents      int64             `grove:"base_rent_cents"`
	BaseRentCurrency   string            `grove:"base_rent_currency"`
	Charges            json.RawMessage   `grove:"charges"`
	TotalDueCents      int64             `grove:"total_due_cents"`
	TotalDueCurrency   string            `grove:"total_due_currency"`
	AmountPaidCents    int64             `grove:"amount_paid_cents"`
	AmountPaidCurrency string            `grove:"amount_paid_currency"`
	Status             string            `grove:"status"`
	DueDate            time.Time         `grove:"due_date"`
	Version            int64             `grove:"version"`
	Metadata           map[string]string `grove:"metadata"`
	CreatedAt          time.Time         `grove:"created_at"`
	UpdatedAt          time.Time         `grove:"updated_at"`
}

func toBillModel(b *bill.Bill) *billModel {
	charges, _ := json.Marshal(b.Charges) //nolint:errcheck // best-effort

	return &billModel{
		ID:                 b.ID.String(),
		TenancyID:          b.TenancyID.String(),
		LandlordID:         b.LandlordID,
		ForMonth:           b.ForMonth,
		ForYear:            b.ForYear,
		BaseRentCents:      b.BaseRent.Amount,
		BaseRentCurrency:   b.BaseRent.Currency,
		Charges:            charges,
		TotalDueCents:      b.TotalDue.Amount,
		TotalDueCurrency:   b.TotalDue.Currency,
		AmountPaidCents:    b.AmountPaid.Amount,
		AmountPaidCurrency: b.AmountPaid.Currency,
		Status:             string(b.Status),
		DueDate:            b.DueDate,
		Version:            b.Version,
		Metadata:           b.Metadata,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func fromBillModel(m *billModel) (*bill.Bill, error) {
	billID, err := id.ParseBillID(m.ID)
	if err != nil {
		return nil, err
	}
	tenancyID, err := id.ParseTenancyID(m.TenancyID)
	if err != nil {
		return nil, err
	}

	var charges []bill.UtilityCharge
	if len(m.Charges) > 0 {
		_ = json.Unmarshal(m.Charges, &charges) //nolint:errcheck // best-effort
	}

	return &bill.Bill{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         billID,
		TenancyID:  tenancyID,
		LandlordID: m.LandlordID,
		ForMonth:   m.ForMonth,
		ForYear:    m.ForYear,
		BaseRent:   types.Money{Amount: m.BaseRentCents, Currency: m.BaseRentCurrency},
		Charges:    charges,
		TotalDue:   types.Money{Amount: m.TotalDueCents, Currency: m.TotalDueCurrency},
		AmountPaid: types.Money{Amount: m.AmountPaidCents, Currency: m.AmountPaidCurrency},
		Status:     bill.Status(m.Status),
		DueDate:    m.DueDate,
		Version:    m.Version,
		Metadata:   m.Metadata,
	}, nil
}

// ==================== Payment models ====================

type paymentModel struct {
	grove.BaseModel `grove:"table:rentledger_payments"`

	ID                  string            `grove:"id,pk"`
	TenancyID           string            `grove:"tenancy_id"`
	LandlordID          string            `grove:"landlord_id"`
	AmountCents         int64             `grove:"amount_cents"`
	AmountCurrency      string            `grove:"amount_currency"`
	Method              string            `grove:"method"`
	SourceTransactionID string            `grove:"source_transaction_id"`
	Allocations         json.RawMessage   `grove:"allocations"`
	AdvanceCents        int64             `grove:"advance_cents"`
	AdvanceCurrency     string            `grove:"advance_currency"`
	ReceivedAt          time.Time         `grove:"received_at"`
	Metadata            map[string]string `grove:"metadata"`
	CreatedAt           time.Time         `grove:"created_at"`
	UpdatedAt           time.Time         `grove:"updated_at"`
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	allocations, _ := json.Marshal(p.Allocations) //nolint:errcheck // best-effort

	return &paymentModel{
		ID:                  p.ID.String(),
		TenancyID:           p.TenancyID.String(),
		LandlordID:          p.LandlordID,
		AmountCents:         p.Amount.Amount,
		AmountCurrency:      p.Amount.Currency,
		Method:              string(p.Method),
		SourceTransactionID: p.SourceTransactionID,
		Allocations:         allocations,
		AdvanceCents:        p.AdvanceAmount.Amount,
		AdvanceCurrency:     p.AdvanceAmount.Currency,
		ReceivedAt:          p.ReceivedAt,
		Metadata:            p.Metadata,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func fromPaymentModel(m *paymentModel) (*payment.Payment, error) {
	paymentID, err := id.ParsePaymentID(m.ID)
	if err != nil {
		return nil, err
	}
	tenancyID, err := id.ParseTenancyID(m.TenancyID)
	if err != nil {
		return nil, err
	}

	var allocations []payment.Allocation
	if len(m.Allocations) > 0 {
		_ = json.Unmarshal(m.Allocations, &allocations) //nolint:errcheck // best-effort
	}

	return &payment.Payment{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                  paymentID,
		TenancyID:           tenancyID,
		LandlordID:          m.LandlordID,
		Amount:              types.Money{Amount: m.AmountCents, Currency: m.AmountCurrency},
		Method:              payment.Method(m.Method),
		SourceTransactionID: m.SourceTransactionID,
		Allocations:         allocations,
		AdvanceAmount:       types.Money{Amount: m.AdvanceCents, Currency: m.AdvanceCurrency},
		ReceivedAt:          m.ReceivedAt,
		Metadata:            m.Metadata,
	}, nil
}

// ==================== Credit models ====================

type creditModel struct {
	grove.BaseModel `grove:"table:rentledger_credits"`

	ID             string    `grove:"id,pk"`
	TenancyID      string    `grove:"tenancy_id"`
	PaymentID      string    `grove:"payment_id"`
	AmountCents    int64     `grove:"amount_cents"`
	AmountCurrency string    `grove:"amount_currency"`
	Months         int       `grove:"months"`
	Days           int       `grove:"days"`
	CreatedAt      time.Time `grove:"created_at"`
	UpdatedAt      time.Time `grove:"updated_at"`
}

func toCreditModel(c *credit.AdvanceCredit) *creditModel {
	return &creditModel{
		ID:             c.ID.String(),
		TenancyID:      c.TenancyID.String(),
		PaymentID:      c.PaymentID.String(),
		AmountCents:    c.Amount.Amount,
		AmountCurrency: c.Amount.Currency,
		Months:         c.Months,
		Days:           c.Days,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func fromCreditModel(m *creditModel) (*credit.AdvanceCredit, error) {
	creditID, err := id.ParseCreditID(m.ID)
	if err != nil {
		return nil, err
	}
	tenancyID, err := id.ParseTenancyID(m.TenancyID)
	if err != nil {
		return nil, err
	}
	paymentID, err := id.ParsePaymentID(m.PaymentID)
	if err != nil {
		return nil, err
	}

	return &credit.AdvanceCredit{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        creditID,
		TenancyID: tenancyID,
		PaymentID: paymentID,
		Amount:    types.Money{Amount: m.AmountCents, Currency: m.AmountCurrency},
		Months:    m.Months,
		Days:      m.Days,
	}, nil
}

// ==================== Utility Reading models ====================

type readingModel struct {
	grove.BaseModel `grove:"table:rentledger_readings"`

	ID             string            `grove:"id,pk"`
	TenancyID      string            `grove:"tenancy_id"`
	LandlordID     string            `grove:"landlord_id"`
	UtilityType    string            `grove:"utility_type"`
	Units          int64             `grove:"units"`
	Timestamp      time.Time         `grove:"timestamp"`
	IdempotencyKey string            `grove:"idempotency_key"`
	Metadata       map[string]string `grove:"metadata"`
	CreatedAt      time.Time         `grove:"created_at"`
}

func toReadingModel(r *meter.UtilityReading) *readingModel {
	return &readingModel{
		ID:             r.ID.String(),
		TenancyID:      r.TenancyID.String(),
		LandlordID:     r.LandlordID,
		UtilityType:    r.UtilityType,
		Units:          r.Units,
		Timestamp:      r.Timestamp,
		IdempotencyKey: r.IdempotencyKey,
		Metadata:       r.Metadata,
		CreatedAt:      time.Now().UTC(),
	}
}

func fromReadingModel(m *readingModel) (*meter.UtilityReading, error) {
	readingID, err := id.ParseReadingID(m.ID)
	if err != nil {
		return nil, err
	}
	tenancyID, err := id.ParseTenancyID(m.TenancyID)
	if err != nil {
		return nil, err
	}

	return &meter.UtilityReading{
		ID:             readingID,
		TenancyID:      tenancyID,
		LandlordID:     m.LandlordID,
		UtilityType:    m.UtilityType,
		Units:          m.Units,
		Timestamp:      m.Timestamp,
		IdempotencyKey: m.IdempotencyKey,
		Metadata:       m.Metadata,
	}, nil
}

// ==================== Rent Cycle Cache models ====================

type cycleCacheModel struct {
	grove.BaseModel `grove:"table:rentledger_cycle_cache"`

	TenancyID       string     `grove:"tenancy_id,pk"`
	RentStatus      string     `grove:"rent_status"`
	NextDueDate     time.Time  `grove:"next_due_date"`
	DaysRemaining   int        `grove:"days_remaining"`
	DebtCents       int64      `grove:"debt_cents"`
	DebtCurrency    string     `grove:"debt_currency"`
	MonthsOwed      int        `grove:"months_owed"`
	AdvanceMonths   int        `grove:"advance_months"`
	AdvanceDays     int        `grove:"advance_days"`
	LastPaymentDate *time.Time `grove:"last_payment_date"`
	ResolvedAt      time.Time  `grove:"resolved_at"`
	ExpiresAt       time.Time  `grove:"expires_at"`
	CreatedAt       time.Time  `grove:"created_at"`
}

func toCycleCacheModel(tenancyID id.TenancyID, c *rentcycle.RentCycle, expiresAt time.Time) *cycleCacheModel {
	return &cycleCacheModel{
		TenancyID:       tenancyID.String(),
		RentStatus:      string(c.RentStatus),
		NextDueDate:     c.NextDueDate,
		DaysRemaining:   c.DaysRemaining,
		DebtCents:       c.DebtAmount.Amount,
		DebtCurrency:    c.DebtAmount.Currency,
		MonthsOwed:      c.MonthsOwed,
		AdvanceMonths:   c.AdvanceMonths,
		AdvanceDays:     c.AdvanceDays,
		LastPaymentDate: c.LastPaymentDate,
		ResolvedAt:      c.ResolvedAt,
		ExpiresAt:       expiresAt,
		CreatedAt:       time.Now().UTC(),
	}
}

func fromCycleCacheModel(m *cycleCacheModel) *rentcycle.RentCycle {
	return &rentcycle.RentCycle{
		TenancyID:       m.TenancyID,
		RentStatus:      rentcycle.RentStatus(m.RentStatus),
		NextDueDate:     m.NextDueDate,
		DaysRemaining:   m.DaysRemaining,
		DebtAmount:      types.Money{Amount: m.DebtCents, Currency: m.DebtCurrency},
		MonthsOwed:      m.MonthsOwed,
		AdvanceMonths:   m.AdvanceMonths,
		AdvanceDays:     m.AdvanceDays,
		LastPaymentDate: m.LastPaymentDate,
		ResolvedAt:      m.ResolvedAt,
	}
}

// ==================== Statement models ====================

type importModel struct {
	grove.BaseModel `grove:"table:rentledger_imports"`

	ID          string    `grove:"id,pk"`
	LandlordID  string    `grove:"landlord_id"`
	PeriodStart time.Time `grove:"period_start"`
	PeriodEnd   time.Time `grove:"period_end"`
	Total       int       `grove:"total"`
	Matched     int       `grove:"matched"`
	Ambiguous   int       `grove:"ambiguous"`
	NoMatch     int       `grove:"no_match"`
	MatchRate   float64   `grove:"match_rate"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toImportModel(imp *statement.Import) *importModel {
	return &importModel{
		ID:          imp.ID.String(),
		LandlordID:  imp.LandlordID,
		PeriodStart: imp.PeriodStart,
		PeriodEnd:   imp.PeriodEnd,
		Total:       imp.Summary.Total,
		Matched:     imp.Summary.Matched,
		Ambiguous:   imp.Summary.Ambiguous,
		NoMatch:     imp.Summary.NoMatch,
		MatchRate:   imp.Summary.MatchRate,
		CreatedAt:   imp.CreatedAt,
		UpdatedAt:   imp.UpdatedAt,
	}
}

func fromImportModel(m *importModel) (*statement.Import, error) {
	importID, err := id.ParseImportID(m.ID)
	if err != nil {
		return nil, err
	}

	return &statement.Import{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          importID,
		LandlordID:  m.LandlordID,
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
		Summary: statement.Summary{
			Total:     m.Total,
			Matched:   m.Matched,
			Ambiguous: m.Ambiguous,
			NoMatch:   m.NoMatch,
			MatchRate: m.MatchRate,
		},
	}, nil
}

type transactionModel struct {
	grove.BaseModel `grove:"table:rentledger_transactions"`

	ID                  string    `grove:"id,pk"`
	ImportID            string    `grove:"import_id"`
	SourceTransactionID string    `grove:"source_transaction_id"`
	AmountCents         int64     `grove:"amount_cents"`
	AmountCurrency      string    `grove:"amount_currency"`
	PayerName           string    `grove:"payer_name"`
	PayerPhone          string    `grove:"payer_phone"`
	Timestamp           time.Time `grove:"timestamp"`
	MatchedTenancyID    string    `grove:"matched_tenancy_id"`
	Confidence          string    `grove:"confidence"`
	Score               float64   `grove:"score"`
	MatchStatus         string    `grove:"match_status"`
	PromotedPaymentID   string    `grove:"promoted_payment_id"`
	CreatedAt           time.Time `grove:"created_at"`
}

func toTransactionModel(t *statement.Transaction) *transactionModel {
	matched := ""
	if !t.MatchedTenancyID.IsNil() {
		matched = t.MatchedTenancyID.String()
	}
	promoted := ""
	if !t.PromotedPaymentID.IsNil() {
		promoted = t.PromotedPaymentID.String()
	}

	return &transactionModel{
		ID:                  t.ID.String(),
		ImportID:            t.ImportID.String(),
		SourceTransactionID: t.SourceTransactionID,
		AmountCents:         t.Amount.Amount,
		AmountCurrency:      t.Amount.Currency,
		PayerName:           t.PayerName,
		PayerPhone:          t.PayerPhone,
		Timestamp:           t.Timestamp,
		MatchedTenancyID:    matched,
		Confidence:          string(t.Confidence),
		Score:               t.Score,
		MatchStatus:         string(t.MatchStatus),
		PromotedPaymentID:   promoted,
		CreatedAt:           time.Now().UTC(),
	}
}

func fromTransactionModel(m *transactionModel) (*statement.Transaction, error) {
	txnID, err := id.ParseTransactionID(m.ID)
	if err != nil {
		return nil, err
	}
	importID, err := id.ParseImportID(m.ImportID)
	if err != nil {
		return nil, err
	}

	var matched id.TenancyID
	if m.MatchedTenancyID != "" {
		matched, err = id.ParseTenancyID(m.MatchedTenancyID)
		if err != nil {
			return nil, err
		}
	}

	var promoted id.PaymentID
	if m.PromotedPaymentID != "" {
		promoted, err = id.ParsePaymentID(m.PromotedPaymentID)
		if err != nil {
			return nil, err
		}
	}

	return &statement.Transaction{
		ID:                  txnID,
		ImportID:            importID,
		SourceTransactionID: m.SourceTransactionID,
		Amount:              types.Money{Amount: m.AmountCents, Currency: m.AmountCurrency},
		PayerName:           m.PayerName,
		PayerPhone:          m.PayerPhone,
		Timestamp:           m.Timestamp,
		MatchedTenancyID:    matched,
		Confidence:          statement.Confidence(m.Confidence),
		Score:               m.Score,
		MatchStatus:         statement.MatchStatus(m.MatchStatus),
		PromotedPaymentID:   promoted,
	}, nil
}
