package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name   string
		raw    interface{}
		want   float64
		wantOK bool
	}{
		{"plain float", 1200.50, 1200.50, true},
		{"int", 30, 30, true},
		{"numeric string", "1200", 1200, true},
		{"currency noise", "$1,200.50", 1200.50, true},
		{"percent marker converts to fraction", "8.5%", 0.085, true},
		{"whitespace", "  2500  ", 2500, true},
		{"bare rate is never rescaled", 0.065, 0.065, true},
		{"empty string", "", 0, false},
		{"garbage", "n/a", 0, false},
		{"wrong type", true, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Number(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFlag(t *testing.T) {
	tests := []struct {
		raw    interface{}
		want   bool
		wantOK bool
	}{
		{true, true, true},
		{false, false, true},
		{"yes", true, true},
		{"Y", true, true},
		{"TRUE", true, true},
		{"no", false, true},
		{"0", false, true},
		{float64(1), true, true},
		{float64(0), false, true},
		{"maybe", false, false},
		{nil, false, false},
	}
	for _, tt := range tests {
		got, ok := Flag(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "Flag(%v)", tt.raw)
		assert.Equal(t, tt.want, got, "Flag(%v)", tt.raw)
	}
}

func TestTimestamp(t *testing.T) {
	got, ok := Timestamp("2024-03-01")
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.March, got.Month())

	got, ok = Timestamp("03/15/2024")
	require.True(t, ok)
	assert.Equal(t, 15, got.Day())

	_, ok = Timestamp("2024-03-01T10:30:00Z")
	assert.True(t, ok)

	_, ok = Timestamp("soon")
	assert.False(t, ok)
	_, ok = Timestamp(42)
	assert.False(t, ok)
}

func TestRentRollRow_LegacySpellings(t *testing.T) {
	row := RentRollRow(map[string]interface{}{
		"unitNumber":    "2B",
		"tenant_name":   "J. Alvarez",
		"actual_rent":   "$1,450",
		"proforma_rent": 1500.0,
		"occupied":      true,
	})

	assert.Equal(t, "2B", row.UnitNumber)
	assert.Equal(t, "J. Alvarez", row.Tenant)
	require.NotNil(t, row.CurrentRent)
	assert.Equal(t, 1450.0, *row.CurrentRent)
	require.NotNil(t, row.ProFormaRent)
	assert.Equal(t, 1500.0, *row.ProFormaRent)
	assert.False(t, row.IsVacant)
	assert.Nil(t, row.MarketRent)
}

func TestRentRollRow_VacancyFromInvertedOccupied(t *testing.T) {
	row := RentRollRow(map[string]interface{}{"unit": "3C", "occupied": false})
	assert.True(t, row.IsVacant)

	// An explicit vacant flag outranks the occupied spelling.
	row = RentRollRow(map[string]interface{}{"is_vacant": false, "occupied": false})
	assert.False(t, row.IsVacant)
}

func TestLoan_LegacySpellings(t *testing.T) {
	ln := Loan(map[string]interface{}{
		"lenderName": "First Bank",
		"loanAmount": "400,000",
		"rate":       "6.5%",
		"loanTerm":   30.0,
		"piti":       2528.27,
	})

	assert.Equal(t, "First Bank", ln.Lender)
	require.NotNil(t, ln.OriginalAmount)
	assert.Equal(t, 400000.0, *ln.OriginalAmount)
	assert.InDelta(t, 0.065, ln.InterestRate, 1e-9)
	assert.Equal(t, 30.0, ln.TermYears)
	require.NotNil(t, ln.MonthlyPayment)
	assert.Equal(t, 2528.27, *ln.MonthlyPayment)

	// Records without an active flag default to active.
	assert.True(t, ln.IsActive)
}

func TestLoan_ExplicitInactive(t *testing.T) {
	ln := Loan(map[string]interface{}{"principal": 200000.0, "is_active": "no"})
	assert.False(t, ln.IsActive)
}

func TestExpenseItem_BareAmountReadsMonthly(t *testing.T) {
	item := ExpenseItem(map[string]interface{}{"name": "Insurance", "amount": 120.0})

	assert.Equal(t, "Insurance", item.Category)
	require.NotNil(t, item.MonthlyAmount)
	assert.Equal(t, 120.0, *item.MonthlyAmount)
	assert.Nil(t, item.AnnualAmount)
}

func TestExpenseItem_PercentOfEGI(t *testing.T) {
	item := ExpenseItem(map[string]interface{}{"category": "Maintenance", "percent_of_egi": 0.05, "amount": 194.75})

	require.NotNil(t, item.Percentage)
	assert.Equal(t, 0.05, *item.Percentage)
	// The bare amount key must not double-fill when a real field matched.
	assert.Nil(t, item.MonthlyAmount)
}

func TestOtherIncomeItem_BareAmountReadsAnnual(t *testing.T) {
	item := OtherIncomeItem(map[string]interface{}{"label": "Laundry", "amount": 600.0})

	assert.Equal(t, "Laundry", item.Label)
	require.NotNil(t, item.AnnualAmount)
	assert.Equal(t, 600.0, *item.AnnualAmount)
}

func TestUnitTypeRow_LegacySpellings(t *testing.T) {
	row := UnitTypeRow(map[string]interface{}{
		"unit_type":    "1BR/1BA",
		"numUnits":     4.0,
		"average_rent": "1,150",
	})

	assert.Equal(t, "1BR/1BA", row.Label)
	assert.Equal(t, 4, row.Count)
	assert.Equal(t, 1150.0, row.AvgRent)
}

func TestAssumptions_PartialStaysNil(t *testing.T) {
	a := Assumptions(map[string]interface{}{"vacancyRate": 0.05})

	require.NotNil(t, a.VacancyRate)
	assert.Equal(t, 0.05, *a.VacancyRate)
	assert.Nil(t, a.ManagementFeeRate)
	assert.Nil(t, a.ExitCapRate)
	assert.Nil(t, a.ExpenseRatio)
}

func TestAssumptions_CapRateSynonyms(t *testing.T) {
	// The legacy capRate key feeds ExitCapRate; marketCapRate stays its own
	// field so resolution can prefer an explicit exit cap.
	a := Assumptions(map[string]interface{}{
		"capRate":         0.055,
		"market_cap_rate": 0.06,
		"ltv":             0.75,
	})

	require.NotNil(t, a.ExitCapRate)
	assert.Equal(t, 0.055, *a.ExitCapRate)
	require.NotNil(t, a.MarketCapRate)
	assert.Equal(t, 0.06, *a.MarketCapRate)
	require.NotNil(t, a.LoanPercentage)
	assert.Equal(t, 0.75, *a.LoanPercentage)
}

func TestRentRoll_SkipsNonObjects(t *testing.T) {
	rows := RentRoll([]interface{}{
		map[string]interface{}{"unit": "1A", "rent": 950.0},
		"not a record",
		nil,
		map[string]interface{}{"unit": "1B", "rent": 975.0},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "1A", rows[0].UnitNumber)
	assert.Equal(t, "1B", rows[1].UnitNumber)
}
