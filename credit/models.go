package credit

import (
	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/types"
)

// AdvanceCredit records rent paid ahead of billing: the surplus left
// after a payment settled every outstanding bill. Months and Days are
// the surplus expressed against the tenancy's base rent at allocation
// time (whole months, then remaining days at 30 days per month).
type AdvanceCredit struct {
	types.Entity
	ID        id.CreditID  `json:"id"`
	TenancyID id.TenancyID `json:"tenancy_id"`
	PaymentID id.PaymentID `json:"payment_id"`
	Amount    types.Money  `json:"amount"`
	Months    int          `json:"months"`
	Days      int          `json:"days"`
}

// Split converts a surplus into whole advance months plus leftover days,
// using baseRent as the month price and 30 days per month for the
// fractional remainder.
func Split(surplus, baseRent types.Money) (months, days int) {
	if !surplus.IsPositive() || !baseRent.IsPositive() {
		return 0, 0
	}
	months = int(surplus.Amount / baseRent.Amount)
	remainder := surplus.Amount % baseRent.Amount
	days = int(remainder * 30 / baseRent.Amount)
	return months, days
}
