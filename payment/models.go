package payment

import (
	"time"

	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/types"
)

type Method string

const (
	MethodSTKPush        Method = "stk_push"
	MethodStatementMatch Method = "statement_match"
	MethodCash           Method = "cash"
	MethodManual         Method = "manual"
)

// Payment is an immutable record of money received and how it was
// consumed: the Allocations it settled bills with, plus any surplus
// converted to advance credit. Amount always equals the sum of
// allocation amounts plus AdvanceAmount.
type Payment struct {
	types.Entity
	ID                  id.PaymentID      `json:"id"`
	TenancyID           id.TenancyID      `json:"tenancy_id"`
	LandlordID          string            `json:"landlord_id"`
	Amount              types.Money       `json:"amount"`
	Method              Method            `json:"method"`
	SourceTransactionID string            `json:"source_transaction_id,omitempty"`
	Allocations         []Allocation      `json:"allocations,omitempty"`
	AdvanceAmount       types.Money       `json:"advance_amount"`
	ReceivedAt          time.Time         `json:"received_at"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// Allocation is the portion of a payment applied to one bill.
type Allocation struct {
	BillID id.BillID   `json:"bill_id"`
	Amount types.Money `json:"amount"`
}

// Allocated returns the total applied to bills.
func (p *Payment) Allocated() types.Money {
	total := types.Zero(p.Amount.Currency)
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}
