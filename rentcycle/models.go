package rentcycle

import (
	"time"

	"github.com/Carey99/rentledger/bill"
	"github.com/Carey99/rentledger/credit"
	"github.com/Carey99/rentledger/tenancy"
	"github.com/Carey99/rentledger/types"
)

// RentStatus is the derived display status of a tenancy.
type RentStatus string

const (
	StatusPaidInAdvance RentStatus = "paid_in_advance"
	StatusPaid          RentStatus = "paid"
	StatusPartial       RentStatus = "partial"
	StatusActive        RentStatus = "active"
	StatusGracePeriod   RentStatus = "grace_period"
	StatusOverdue       RentStatus = "overdue"
)

// RentCycle is a recomputable projection of a tenancy's payment state.
// It is a pure function of {tenancy, bills, credit balance, last payment,
// now} — any cached copy is display-only and must converge to the value
// Resolve returns.
type RentCycle struct {
	TenancyID       string      `json:"tenancy_id"`
	RentStatus      RentStatus  `json:"rent_status"`
	NextDueDate     time.Time   `json:"next_due_date"`
	DaysRemaining   int         `json:"days_remaining"`
	DebtAmount      types.Money `json:"debt_amount"`
	MonthsOwed      int         `json:"months_owed"`
	AdvanceMonths   int         `json:"advance_months"`
	AdvanceDays     int         `json:"advance_days"`
	LastPaymentDate *time.Time  `json:"last_payment_date,omitempty"`
	ResolvedAt      time.Time   `json:"resolved_at"`
}

// Input is everything Resolve reads. Callers load it from the store;
// Resolve itself touches nothing else.
type Input struct {
	Tenancy       *tenancy.Tenancy
	Bills         []*bill.Bill
	CreditBalance types.Money
	LastPaymentAt *time.Time
	Now           time.Time
	GraceDays     int
}

// Resolve derives the rent cycle for a tenancy at a point in time.
// Calling it twice with identical input yields an identical result.
func Resolve(in Input) *RentCycle {
	t := in.Tenancy
	now := in.Now

	debt := types.Zero(t.BaseRent.Currency)
	monthsOwed := 0
	var current *bill.Bill
	for _, b := range in.Bills {
		if b.ForMonth == int(now.Month()) && b.ForYear == now.Year() {
			current = b
		}
		if b.IsSettled() {
			continue
		}
		if b.DueDate.After(now) {
			continue
		}
		debt = debt.Add(b.Remaining())
		monthsOwed++
	}

	advMonths, advDays := credit.Split(in.CreditBalance, t.BaseRent)

	// Due dates are anchored on the lease start day, carried month to
	// month and clamped to short months.
	dueThisMonth := t.DueDateFor(int(now.Month()), now.Year())
	if now.Before(t.LeaseStart) {
		dueThisMonth = t.LeaseStart
	}

	nextDue := dueThisMonth
	if !now.Before(dueThisMonth) {
		nextDue = t.NextDueDate(now)
	}

	cycle := &RentCycle{
		TenancyID:       t.ID.String(),
		NextDueDate:     nextDue,
		DebtAmount:      debt,
		MonthsOwed:      monthsOwed,
		AdvanceMonths:   advMonths,
		AdvanceDays:     advDays,
		LastPaymentDate: in.LastPaymentAt,
		ResolvedAt:      now,
	}

	grace := time.Duration(in.GraceDays) * 24 * time.Hour

	switch {
	case !debt.IsPositive() && advMonths > 0:
		cycle.RentStatus = StatusPaidInAdvance
	case current != nil && current.IsSettled():
		cycle.RentStatus = StatusPaid
	case current != nil && current.Status == bill.StatusPartial:
		cycle.RentStatus = StatusPartial
	case now.Before(dueThisMonth):
		cycle.RentStatus = StatusActive
		cycle.DaysRemaining = int(dueThisMonth.Sub(now).Hours() / 24)
	case !now.After(dueThisMonth.Add(grace)):
		cycle.RentStatus = StatusGracePeriod
	default:
		cycle.RentStatus = StatusOverdue
	}

	return cycle
}
