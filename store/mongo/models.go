package mongo

import (
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

// moneyModel embeds an integer money value in a document.
type moneyModel struct {
	Cents    int64  `bson:"cents"`
	Currency string `bson:"currency"`
}

func toMoneyModel(m types.Money) moneyModel {
	return moneyModel{Cents: m.Amount, Currency: m.Currency}
}

func fromMoneyModel(m moneyModel) types.Money {
	return types.Money{Amount: m.Cents, Currency: m.Currency}
}

// ==================== Tenancy models ====================

type tenancyModel struct {
	grove.BaseModel `grove:"table:rentledger_tenancies"`

	ID           string                `grove:"id,pk"        bson:"_id"`
	LandlordID   string                `grove:"landlord_id"  bson:"landlord_id"`
	TenantName   string                `grove:"tenant_name"  bson:"tenant_name"`
	TenantPhone  string                `grove:"tenant_phone" bson:"tenant_phone"`
	UnitLabel    string                `grove:"unit_label"   bson:"unit_label"`
	HouseType    string                `grove:"house_type"   bson:"house_type"`
	BaseRent     moneyModel            `grove:"base_rent"    bson:"base_rent"`
	UtilityRates map[string]moneyModel `grove:"utility_rates" bson:"utility_rates,omitempty"`
	LeaseStart   time.Time             `grove:"lease_start"  bson:"lease_start"`
	Status       string                `grove:"status"       bson:"status"`
	EndedAt      *time.Time            `grove:"ended_at"     bson:"ended_at,omitempty"`
	Metadata     map[string]string     `grove:"metadata"     bson:"metadata,omitempty"`
	CreatedAt    time.Time             `grove:"created_at"   bson:"created_at"`
	UpdatedAt    time.Time             `grove:"updated_at"   bson:"updated_at"`
}

func toTenancyModel(t *tenancy.Tenancy) *tenancyModel {
	var rates map[string]moneyModel
	if len(t.UtilityRates) > 0 {
		rates = make(map[string]moneyModel, len(t.UtilityRates))
		for k, v := range t.UtilityRates {
			rates[k] = toMoneyModel(v)
		}
	}

	return &tenancyModel{
		ID:           t.ID.String(),
		LandlordID:   t.LandlordID,
		TenantName:   t.TenantName,
		TenantPhone:  t.TenantPhone,
		UnitLabel:    t.UnitLabel,
		HouseType:    t.HouseType,
		BaseRent:     toMoneyModel(t.BaseRent),
		UtilityRates: rates,
		LeaseStart:   t.LeaseStart,
		Status:       string(t.Status),
		EndedAt:      t.EndedAt,
		Metadata:     t.Metadata,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func fromTenancyModel(m *tenancyModel) (*tenancy.Tenancy, error) {
	tenancyID, err := id.ParseTenancyID(m.ID)
	if err != nil {
		return nil, err
	}

	var rates map[string]types.Money
	if len(m.UtilityRates) > 0 {
		rates = make(map[string]types.Money, len(m.UtilityRates))
		for k, v := range m.UtilityRates {
			rates[k] = fromMoneyModel(v)
		}
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
		BaseRent:     fromMoneyModel(m.BaseRent),
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

	ID         string            `grove:"id,pk"       bson:"_id"`
	TenancyID  string            `grove:"tenancy_id"  bson:"tenancy_id"`
	LandlordID string            `grove:"landlord_id" bson:"landlord_id"`
	ForMonth   int               `grove:"for_month"   bson:"for_month"`
	ForYear    int               `grove:"for_year"    bson:"for_year"`
	BaseRent   moneyModel        `grove:"base_rent"   bson:"base_rent"`
	Charges    []chargeModel     `grove:"charges"     bson:"charges,omitempty"`
	TotalDue   moneyModel        `grove:"total_due"   bson:"total_due"`
	AmountPaid moneyModel        `grove:"amount_paid" bson:"amount_paid"`
	Status     string            `grove:"status"      bson:"status"`
	DueDate    time.Time         `grove:"due_date"    bson:"due_date"`
	Version    int64             `grove:"version"     bson:"version"`
	Metadata   map[string]string `grove:"metadata"    bson:"metadata,omitempty"`
	CreatedAt  time.Time         `grove:"created_at"  bson:"created_at"`
	UpdatedAt  time.Time         `grove:"updated_at"  bson:"updated_at"`
}

type chargeModel struct {
	ID           string     `bson:"id"`
	BillID       string     `bson:"bill_id"`
	UtilityType  string     `bson:"utility_type"`
	UnitsUsed    int64      `bson:"units_used"`
	PricePerUnit moneyModel `bson:"price_per_unit"`
	Amount       moneyModel `bson:"amount"`
}

func toBillModel(b *bill.Bill) *billModel {
	var charges []chargeModel
	if len(b.Charges) > 0 {
		charges = make([]chargeModel, len(b.Charges))
		for i, c := range b.Charges {
			charges[i] = chargeModel{
				ID:           c.ID.String(),
				BillID:       c.BillID.String(),
				UtilityType:  c.UtilityType,
				UnitsUsed:    c.UnitsUsed,
				PricePerUnit: toMoneyModel(c.PricePerUnit),
				Amount:       toMoneyModel(c.Amount),
			}
		}
	}

	return &billModel{
		ID:         b.ID.String(),
		TenancyID:  b.TenancyID.String(),
		LandlordID: b.LandlordID,
		ForMonth:   b.ForMonth,
		ForYear:    b.ForYear,
		BaseRent:   toMoneyModel(b.BaseRent),
		Charges:    charges,
		TotalDue:   toMoneyModel(b.TotalDue),
		AmountPaid: toMoneyModel(b.AmountPaid),
		Status:     string(b.Status),
		DueDate:    b.DueDate,
		Version:    b.Version,
		Metadata:   b.Metadata,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
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
		charges = make([]bill.UtilityCharge, len(m.Charges))
		for i, c := range m.Charges {
			chargeID, err := id.ParseChargeID(c.ID)
			if err != nil {
				return nil, err
			}
			parentID, err := id.ParseBillID(c.BillID)
			if err != nil {
				return nil, err
			}
			charges[i] = bill.UtilityCharge{
				ID:           chargeID,
				BillID:       parentID,
				UtilityType:  c.UtilityType,
				UnitsUsed:    c.UnitsUsed,
				PricePerUnit: fromMoneyModel(c.PricePerUnit),
				Amount:       fromMoneyModel(c.Amount),
			}
		}
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
		BaseRent:   fromMoneyModel(m.BaseRent),
		Charges:    charges,
		TotalDue:   fromMoneyModel(m.TotalDue),
		AmountPaid: fromMoneyModel(m.AmountPaid),
		Status:     bill.Status(m.Status),
		DueDate:    m.DueDate,
		Version:    m.Version,
		Metadata:   m.Metadata,
	}, nil
}

// ==================== Payment models ====================

type paymentModel struct {
	grove.BaseModel `grove:"table:rentledger_payments"`

	ID                  string            `grove:"id,pk"                 bson:"_id"`
	TenancyID           string            `grove:"tenancy_id"            bson:"tenancy_id"`
	LandlordID          string            `grove:"landlord_id"           bson:"landlord_id"`
	Amount              moneyModel        `grove:"amount"                bson:"amount"`
	Method              string            `grove:"method"                bson:"method"`
	SourceTransactionID string            `grove:"source_transaction_id" bson:"source_transaction_id,omitempty"`
	Allocations         []allocationModel `grove:"allocations"           bson:"allocations,omitempty"`
	AdvanceAmount       moneyModel        `grove:"advance_amount"        bson:"advance_amount"`
	ReceivedAt          time.Time         `grove:"received_at"           bson:"received_at"`
	Metadata            map[string]string `grove:"metadata"              bson:"metadata,omitempty"`
	CreatedAt           time.Time         `grove:"created_at"            bson:"created_at"`
	UpdatedAt           time.Time         `grove:"updated_at"            bson:"updated_at"`
}

type allocationModel struct {
	BillID string     `bson:"bill_id"`
	Amount moneyModel `bson:"amount"`
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	var allocations []allocationModel
	if len(p.Allocations) > 0 {
		allocations = make([]allocationModel, len(p.Allocations))
		for i, a := range p.Allocations {
			allocations[i] = allocationModel{
				BillID: a.BillID.String(),
				Amount: toMoneyModel(a.Amount),
			}
		}
	}

	return &paymentModel{
		ID:                  p.ID.String(),
		TenancyID:           p.TenancyID.String(),
		LandlordID:          p.LandlordID,
		Amount:              toMoneyModel(p.Amount),
		Method:              string(p.Method),
		SourceTransactionID: p.SourceTransactionID,
		Allocations:         allocations,
		AdvanceAmount:       toMoneyModel(p.AdvanceAmount),
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
		allocations = make([]payment.Allocation, len(m.Allocations))
		for i, a := range m.Allocations {
			billID, err := id.ParseBillID(a.BillID)
			if err != nil {
				return nil, err
			}
			allocations[i] = payment.Allocation{
				BillID: billID,
				Amount: fromMoneyModel(a.Amount),
			}
		}
	}

	return &payment.Payment{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                  paymentID,
		TenancyID:           tenancyID,
		LandlordID:          m.LandlordID,
		Amount:              fromMoneyModel(m.Amount),
		Method:              payment.Method(m.Method),
		SourceTransactionID: m.SourceTransactionID,
		Allocations:         allocations,
		AdvanceAmount:       fromMoneyModel(m.AdvanceAmount),
		ReceivedAt:          m.ReceivedAt,
		Metadata:            m.Metadata,
	}, nil
}

// ==================== Credit models ====================

type creditModel struct {
	grove.BaseModel `grove:"table:rentledger_credits"`

	ID        string     `grove:"id,pk"      bson:"_id"`
	TenancyID string     `grove:"tenancy_id" bson:"tenancy_id"`
	PaymentID string     `grove:"payment_id" bson:"payment_id"`
	Amount    moneyModel `grove:"amount"     bson:"amount"`
	Months    int        `grove:"months"     bson:"months"`
	Days      int        `grove:"days"       bson:"days"`
	CreatedAt time.Time  `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `grove:"updated_at" bson:"updated_at"`
}

func toCreditModel(c *credit.AdvanceCredit) *creditModel {
	return &creditModel{
		ID:        c.ID.String(),
		TenancyID: c.TenancyID.String(),
		PaymentID: c.PaymentID.String(),
		Amount:    toMoneyModel(c.Amount),
		Months:    c.Months,
		Days:      c.Days,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
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
		Amount:    fromMoneyModel(m.Amount),
		Months:    m.Months,
		Days:      m.Days,
	}, nil
}

// ==================== Utility Reading models ====================

type readingModel struct {
	grove.BaseModel `grove:"table:rentledger_readings"`

	ID             string            `grove:"id,pk"           bson:"_id"`
	TenancyID      string            `grove:"tenancy_id"      bson:"tenancy_id"`
	LandlordID     string            `grove:"landlord_id"     bson:"landlord_id"`
	UtilityType    string            `grove:"utility_type"    bson:"utility_type"`
	Units          int64             `grove:"units"           bson:"units"`
	Timestamp      time.Time         `grove:"timestamp"       bson:"timestamp"`
	IdempotencyKey string            `grove:"idempotency_key" bson:"idempotency_key,omitempty"`
	Metadata       map[string]string `grove:"metadata"        bson:"metadata,omitempty"`
	CreatedAt      time.Time         `grove:"created_at"      bson:"created_at"`
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

	TenancyID       string     `grove:"tenancy_id,pk"     bson:"_id"`
	RentStatus      string     `grove:"rent_status"       bson:"rent_status"`
	NextDueDate     time.Time  `grove:"next_due_date"     bson:"next_due_date"`
	DaysRemaining   int        `grove:"days_remaining"    bson:"days_remaining"`
	Debt            moneyModel `grove:"debt"              bson:"debt"`
	MonthsOwed      int        `grove:"months_owed"       bson:"months_owed"`
	AdvanceMonths   int        `grove:"advance_months"    bson:"advance_months"`
	AdvanceDays     int        `grove:"advance_days"      bson:"advance_days"`
	LastPaymentDate *time.Time `grove:"last_payment_date" bson:"last_payment_date,omitempty"`
	ResolvedAt      time.Time  `grove:"resolved_at"       bson:"resolved_at"`
	ExpiresAt       time.Time  `grove:"expires_at"        bson:"expires_at"`
	CreatedAt       time.Time  `grove:"created_at"        bson:"created_at"`
}

func toCycleCacheModel(tenancyID id.TenancyID, c *rentcycle.RentCycle, expiresAt time.Time) *cycleCacheModel {
	return &cycleCacheModel{
		TenancyID:       tenancyID.String(),
		RentStatus:      string(c.RentStatus),
		NextDueDate:     c.NextDueDate,
		DaysRemaining:   c.DaysRemaining,
		Debt:            toMoneyModel(c.DebtAmount),
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
		DebtAmount:      fromMoneyModel(m.Debt),
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

	ID          string    `grove:"id,pk"        bson:"_id"`
	LandlordID  string    `grove:"landlord_id"  bson:"landlord_id"`
	PeriodStart time.Time `grove:"period_start" bson:"period_start"`
	PeriodEnd   time.Time `grove:"period_end"   bson:"period_end"`
	Total       int       `grove:"total"        bson:"total"`
	Matched     int       `grove:"matched"      bson:"matched"`
	Ambiguous   int       `grove:"ambiguous"    bson:"ambiguous"`
	NoMatch     int       `grove:"no_match"     bson:"no_match"`
	MatchRate   float64   `grove:"match_rate"   bson:"match_rate"`
	CreatedAt   time.Time `grove:"created_at"   bson:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"   bson:"updated_at"`
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

	ID                  string     `grove:"id,pk"                 bson:"_id"`
	ImportID            string     `grove:"import_id"             bson:"import_id"`
	SourceTransactionID string     `grove:"source_transaction_id" bson:"source_transaction_id"`
	Amount              moneyModel `grove:"amount"                bson:"amount"`
	PayerName           string     `grove:"payer_name"            bson:"payer_name"`
	PayerPhone          string     `grove:"payer_phone"           bson:"payer_phone,omitempty"`
	Timestamp           time.Time  `grove:"timestamp"             bson:"timestamp"`
	MatchedTenancyID    string     `grove:"matched_tenancy_id"    bson:"matched_tenancy_id,omitempty"`
	Confidence          string     `grove:"confidence"            bson:"confidence,omitempty"`
	Score               float64    `grove:"score"                 bson:"score"`
	MatchStatus         string     `grove:"match_status"          bson:"match_status"`
	PromotedPaymentID   string     `grove:"promoted_payment_id"   bson:"promoted_payment_id,omitempty"`
	CreatedAt           time.Time  `grove:"created_at"            bson:"created_at"`
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
		Amount:              toMoneyModel(t.Amount),
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
		Amount:              fromMoneyModel(m.Amount),
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
