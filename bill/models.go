package bill

import (
	"time"

	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusCompleted Status = "completed"
	StatusOverpaid  Status = "overpaid"
)

// Bill is the charge for one tenancy covering one calendar month.
// TotalDue = BaseRent + sum of utility charge amounts, fixed at creation.
// AmountPaid and Status advance only through payment allocation; Version
// guards those updates optimistically.
type Bill struct {
	types.Entity
	ID         id.BillID         `json:"id"`
	TenancyID  id.TenancyID      `json:"tenancy_id"`
	LandlordID string            `json:"landlord_id"`
	ForMonth   int               `json:"for_month"` // 1-12
	ForYear    int               `json:"for_year"`
	BaseRent   types.Money       `json:"base_rent"`
	Charges    []UtilityCharge   `json:"charges,omitempty"`
	TotalDue   types.Money       `json:"total_due"`
	AmountPaid types.Money       `json:"amount_paid"`
	Status     Status            `json:"status"`
	DueDate    time.Time         `json:"due_date"`
	Version    int64             `json:"version"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// UtilityCharge is one metered line item on a bill.
type UtilityCharge struct {
	ID           id.ChargeID `json:"id"`
	BillID       id.BillID   `json:"bill_id"`
	UtilityType  string      `json:"utility_type"` // "electricity", "water", ...
	UnitsUsed    int64       `json:"units_used"`
	PricePerUnit types.Money `json:"price_per_unit"`
	Amount       types.Money `json:"amount"` // UnitsUsed × PricePerUnit
}

// Remaining returns the unpaid portion of the bill, never negative.
func (b *Bill) Remaining() types.Money {
	rem := b.TotalDue.Subtract(b.AmountPaid)
	if rem.IsNegative() {
		return types.Zero(b.TotalDue.Currency)
	}
	return rem
}

// IsSettled reports whether the bill needs no further allocation.
func (b *Bill) IsSettled() bool {
	return b.Status == StatusCompleted || b.Status == StatusOverpaid
}

// Period returns a sortable (year, month) key for ordering bills oldest first.
func (b *Bill) Period() int {
	return b.ForYear*100 + b.ForMonth
}
