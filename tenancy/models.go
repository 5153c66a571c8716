package tenancy

import (
	"time"

	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/types"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Tenancy is one tenant occupying one unit for a period of time.
// BaseRent and UtilityRates together form the rate card used to price
// monthly bills; TenantName and TenantPhone form the roster entry used
// by statement matching.
type Tenancy struct {
	types.Entity
	ID           id.TenancyID           `json:"id"`
	LandlordID   string                 `json:"landlord_id"`
	TenantName   string                 `json:"tenant_name"`
	TenantPhone  string                 `json:"tenant_phone"`
	UnitLabel    string                 `json:"unit_label"`
	HouseType    string                 `json:"house_type,omitempty"`
	BaseRent     types.Money            `json:"base_rent"`
	UtilityRates map[string]types.Money `json:"utility_rates,omitempty"` // per-unit price by utility type
	LeaseStart   time.Time              `json:"lease_start"`
	Status       Status                 `json:"status"`
	EndedAt      *time.Time             `json:"ended_at,omitempty"`
	Metadata     map[string]string      `json:"metadata,omitempty"`
}

// IsActive reports whether the tenancy is still running.
func (t *Tenancy) IsActive() bool {
	return t.Status == StatusActive
}

// RateFor returns the per-unit price for a utility type, and whether the
// tenancy's rate card defines it.
func (t *Tenancy) RateFor(utilityType string) (types.Money, bool) {
	rate, ok := t.UtilityRates[utilityType]
	return rate, ok
}

// NextDueDate returns the first unreached monthly due date after now,
// anchored on the lease start day. The anchor day is clamped to the last
// day of shorter months.
func (t *Tenancy) NextDueDate(now time.Time) time.Time {
	if now.Before(t.LeaseStart) {
		return t.LeaseStart
	}

	elapsed := monthsBetween(t.LeaseStart, now)
	due := addMonthsClamped(t.LeaseStart, elapsed)
	if !due.After(now) {
		due = addMonthsClamped(t.LeaseStart, elapsed+1)
	}
	return due
}

// monthsBetween returns the number of whole calendar months from start to now.
func monthsBetween(start, now time.Time) int {
	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	if months < 0 {
		return 0
	}

	// Back off one if the day-of-month anniversary has not been reached yet.
	anniversary := addMonthsClamped(start, months)
	if now.Before(anniversary) {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// addMonthsClamped adds months to t, clamping the day to the target
// month's last day instead of letting time.AddDate roll over (Jan 31 + 1
// month = Feb 28, not Mar 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -firstOfTarget.Day()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DueDateFor returns the due date for a bill covering (month, year):
// the lease anchor day applied to that month, clamped to its last day.
func (t *Tenancy) DueDateFor(month, year int) time.Time {
	anchor := t.LeaseStart.Day()
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	if anchor > lastDay {
		anchor = lastDay
	}
	return time.Date(year, time.Month(month), anchor, 0, 0, 0, 0, time.UTC)
}
