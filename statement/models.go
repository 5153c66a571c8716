package statement

import (
	"time"

	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/types"
)

type MatchStatus string

const (
	MatchStatusMatched   MatchStatus = "matched"
	MatchStatusAmbiguous MatchStatus = "ambiguous"
	MatchStatusNoMatch   MatchStatus = "no_match"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Import is one uploaded external statement: its period, every parsed
// transaction with its match outcome, and the aggregate summary. Match
// fields are written once by the matcher; re-matching is a new import.
type Import struct {
	types.Entity
	ID           id.ImportID   `json:"id"`
	LandlordID   string        `json:"landlord_id"`
	PeriodStart  time.Time     `json:"period_start"`
	PeriodEnd    time.Time     `json:"period_end"`
	Transactions []Transaction `json:"transactions"`
	Summary      Summary       `json:"summary"`
}

// Transaction is one external money movement inside an import.
// MatchedTenancyID is nil unless the matcher found a single candidate;
// PromotedPaymentID is set once, when the transaction is confirmed into
// a Payment.
type Transaction struct {
	ID                  id.TransactionID `json:"id"`
	ImportID            id.ImportID      `json:"import_id"`
	SourceTransactionID string           `json:"source_transaction_id"`
	Amount              types.Money      `json:"amount"`
	PayerName           string           `json:"payer_name"`
	PayerPhone          string           `json:"payer_phone,omitempty"`
	Timestamp           time.Time        `json:"timestamp"`
	MatchedTenancyID    id.TenancyID     `json:"matched_tenancy_id,omitempty"`
	Confidence          Confidence       `json:"confidence,omitempty"`
	Score               float64          `json:"score"`
	MatchStatus         MatchStatus      `json:"match_status"`
	PromotedPaymentID   id.PaymentID     `json:"promoted_payment_id,omitempty"`
}

// Promoted reports whether the transaction has already produced a Payment.
func (t *Transaction) Promoted() bool {
	return !t.PromotedPaymentID.IsNil()
}

// Summary aggregates match outcomes for one import.
// Matched + Ambiguous + NoMatch always equals Total.
type Summary struct {
	Total     int     `json:"total"`
	Matched   int     `json:"matched"`
	Ambiguous int     `json:"ambiguous"`
	NoMatch   int     `json:"no_match"`
	MatchRate float64 `json:"match_rate"`
}
