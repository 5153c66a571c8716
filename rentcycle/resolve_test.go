package rentcycle

import (
	"testing"
	"time"

	"github.com/Carey99/rentledger/bill"
	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/tenancy"
	"github.com/Carey99/rentledger/types"
)

func testTenancy() *tenancy.Tenancy {
	return &tenancy.Tenancy{
		ID:         id.NewTenancyID(),
		LandlordID: "landlord_1",
		BaseRent:   types.KES(1500000),
		LeaseStart: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Status:     tenancy.StatusActive,
	}
}

func testBill(t *tenancy.Tenancy, month, year int, paid types.Money, status bill.Status) *bill.Bill {
	return &bill.Bill{
		ID:         id.NewBillID(),
		TenancyID:  t.ID,
		LandlordID: t.LandlordID,
		ForMonth:   month,
		ForYear:    year,
		BaseRent:   t.BaseRent,
		TotalDue:   t.BaseRent,
		AmountPaid: paid,
		Status:     status,
		DueDate:    t.DueDateFor(month, year),
	}
}

func TestResolveStatuses(t *testing.T) {
	tn := testTenancy()

	tests := []struct {
		name   string
		bills  []*bill.Bill
		credit types.Money
		now    time.Time
		grace  int
		want   RentStatus
	}{
		{
			name:  "active before due date",
			bills: []*bill.Bill{testBill(tn, 3, 2026, types.Zero("kes"), bill.StatusPending)},
			now:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			want:  StatusActive,
		},
		{
			name:  "paid when current bill settled",
			bills: []*bill.Bill{testBill(tn, 3, 2026, types.KES(1500000), bill.StatusCompleted)},
			now:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			want:  StatusPaid,
		},
		{
			name:  "partial when current bill part paid",
			bills: []*bill.Bill{testBill(tn, 3, 2026, types.KES(500000), bill.StatusPartial)},
			now:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			want:  StatusPartial,
		},
		{
			name:  "grace period after due date",
			bills: []*bill.Bill{testBill(tn, 3, 2026, types.Zero("kes"), bill.StatusPending)},
			now:   time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
			grace: 5,
			want:  StatusGracePeriod,
		},
		{
			name:  "overdue past grace",
			bills: []*bill.Bill{testBill(tn, 3, 2026, types.Zero("kes"), bill.StatusPending)},
			now:   time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
			grace: 5,
			want:  StatusOverdue,
		},
		{
			name:   "paid in advance with credit and no debt",
			bills:  []*bill.Bill{testBill(tn, 3, 2026, types.KES(1500000), bill.StatusCompleted)},
			credit: types.KES(1500000),
			now:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			want:   StatusPaidInAdvance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			credit := tt.credit
			if credit.Currency == "" {
				credit = types.Zero("kes")
			}
			cycle := Resolve(Input{
				Tenancy:       tn,
				Bills:         tt.bills,
				CreditBalance: credit,
				Now:           tt.now,
				GraceDays:     tt.grace,
			})
			if cycle.RentStatus != tt.want {
				t.Errorf("RentStatus = %s, want %s", cycle.RentStatus, tt.want)
			}
		})
	}
}

func TestResolveDebtAccumulation(t *testing.T) {
	tn := testTenancy()

	bills := []*bill.Bill{
		testBill(tn, 1, 2026, types.Zero("kes"), bill.StatusPending),
		testBill(tn, 2, 2026, types.KES(500000), bill.StatusPartial),
		testBill(tn, 3, 2026, types.KES(1500000), bill.StatusCompleted),
	}

	cycle := Resolve(Input{
		Tenancy:       tn,
		Bills:         bills,
		CreditBalance: types.Zero("kes"),
		Now:           time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
	})

	// January in full plus February's remainder; March is settled.
	if want := types.KES(2500000); !cycle.DebtAmount.Equal(want) {
		t.Errorf("DebtAmount = %s, want %s", cycle.DebtAmount, want)
	}
	if cycle.MonthsOwed != 2 {
		t.Errorf("MonthsOwed = %d, want 2", cycle.MonthsOwed)
	}
}

func TestResolveFutureBillNotDebt(t *testing.T) {
	tn := testTenancy()

	// April's bill exists but is not due yet in mid-March.
	bills := []*bill.Bill{
		testBill(tn, 3, 2026, types.KES(1500000), bill.StatusCompleted),
		testBill(tn, 4, 2026, types.Zero("kes"), bill.StatusPending),
	}

	cycle := Resolve(Input{
		Tenancy:       tn,
		Bills:         bills,
		CreditBalance: types.Zero("kes"),
		Now:           time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})

	if !cycle.DebtAmount.IsZero() {
		t.Errorf("DebtAmount = %s, want zero", cycle.DebtAmount)
	}
	if cycle.RentStatus != StatusPaid {
		t.Errorf("RentStatus = %s, want %s", cycle.RentStatus, StatusPaid)
	}
}

func TestResolveNextDueDate(t *testing.T) {
	tn := testTenancy()

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before this month's anchor",
			now:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "after this month's anchor rolls forward",
			now:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "before lease start",
			now:  time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			want: tn.LeaseStart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycle := Resolve(Input{
				Tenancy:       tn,
				CreditBalance: types.Zero("kes"),
				Now:           tt.now,
			})
			if !cycle.NextDueDate.Equal(tt.want) {
				t.Errorf("NextDueDate = %s, want %s", cycle.NextDueDate, tt.want)
			}
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	tn := testTenancy()
	in := Input{
		Tenancy:       tn,
		Bills:         []*bill.Bill{testBill(tn, 3, 2026, types.KES(500000), bill.StatusPartial)},
		CreditBalance: types.Zero("kes"),
		Now:           time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		GraceDays:     5,
	}

	a, b := Resolve(in), Resolve(in)
	if *a != *b {
		t.Errorf("Resolve not deterministic: %+v vs %+v", a, b)
	}
}
