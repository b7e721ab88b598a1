package ingest

import (
	"strconv"
	"strings"
	"time"

	"property_dashboard/pkg/models"
)

// Number coerces a raw JSON value into a float64. Strings tolerate currency
// noise ("$1,200.50") and an explicit trailing percent sign, which is an
// unambiguous format marker and converts to a decimal fraction ("8.5%" ->
// 0.085). Bare numbers are never rescaled: rates are stored as decimal
// fractions and ingest does not guess units.
func Number(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		percent := strings.HasSuffix(s, "%")
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, "$", "")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		if percent {
			f = f / 100.0
		}
		return f, true
	}
	return 0, false
}

// Flag coerces a raw JSON value into a bool. Accepts booleans and the usual
// string/number spellings legacy rows used ("true", "yes", "y", "1").
func Flag(raw interface{}) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case float64:
		return v != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
	}
	return false, false
}

var timeLayouts = []string{time.RFC3339, "2006-01-02", "01/02/2006"}

// Timestamp coerces a raw JSON value into a time, trying the layouts the
// legacy dashboard produced.
func Timestamp(raw interface{}) (time.Time, bool) {
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ========== Field pickers ==========

func pickNumber(raw map[string]interface{}, keys []string) *float64 {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if f, ok := Number(v); ok {
				return &f
			}
		}
	}
	return nil
}

func pickString(raw map[string]interface{}, keys []string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func pickFlag(raw map[string]interface{}, keys []string) (bool, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if b, ok := Flag(v); ok {
				return b, true
			}
		}
	}
	return false, false
}

func pickTime(raw map[string]interface{}, keys []string) *time.Time {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if t, ok := Timestamp(v); ok {
				return &t
			}
		}
	}
	return nil
}

// ========== Canonical mappers ==========

// RentRollRow maps one raw rent-roll record onto the canonical row. Vacancy
// reads the vacant flags first, then an inverted occupied flag.
func RentRollRow(raw map[string]interface{}) models.RentRollRow {
	row := models.RentRollRow{
		UnitNumber:   pickString(raw, unitNumberKeys),
		Tenant:       pickString(raw, tenantKeys),
		CurrentRent:  pickNumber(raw, currentRentKeys),
		MarketRent:   pickNumber(raw, marketRentKeys),
		ProFormaRent: pickNumber(raw, proFormaRentKeys),
		Rent:         pickNumber(raw, rentKeys),
		LeaseStart:   pickTime(raw, leaseStartKeys),
		LeaseEnd:     pickTime(raw, leaseEndKeys),
	}
	if vacant, ok := pickFlag(raw, isVacantKeys); ok {
		row.IsVacant = vacant
	} else if occupied, ok := pickFlag(raw, occupiedKeys); ok {
		row.IsVacant = !occupied
	}
	return row
}

// Loan maps one raw loan record onto the canonical loan. A record with no
// active flag at all defaults to active; legacy sources rarely stored
// inactive loans.
func Loan(raw map[string]interface{}) models.Loan {
	ln := models.Loan{
		Lender:           pickString(raw, lenderKeys),
		OriginalAmount:   pickNumber(raw, originalAmountKeys),
		Principal:        pickNumber(raw, principalKeys),
		CurrentBalance:   pickNumber(raw, currentBalanceKeys),
		PrincipalBalance: pickNumber(raw, principalBalanceKeys),
		MonthlyPayment:   pickNumber(raw, monthlyPaymentKeys),
	}
	if r := pickNumber(raw, interestRateKeys); r != nil {
		ln.InterestRate = *r
	}
	if t := pickNumber(raw, termYearsKeys); t != nil {
		ln.TermYears = *t
	}
	if active, ok := pickFlag(raw, isActiveKeys); ok {
		ln.IsActive = active
	} else {
		ln.IsActive = true
	}
	return ln
}

// ExpenseItem maps one raw expense record. A bare "amount" key is read as a
// monthly figure, matching what the legacy expense editor wrote.
func ExpenseItem(raw map[string]interface{}) models.ExpenseItem {
	item := models.ExpenseItem{
		Category:      pickString(raw, categoryKeys),
		MonthlyAmount: pickNumber(raw, monthlyAmountKeys),
		AnnualAmount:  pickNumber(raw, annualAmountKeys),
		Percentage:    pickNumber(raw, percentageKeys),
	}
	if item.MonthlyAmount == nil && item.AnnualAmount == nil && item.Percentage == nil {
		item.MonthlyAmount = pickNumber(raw, amountKeys)
	}
	return item
}

// OtherIncomeItem maps one raw ancillary-income record. A bare "amount" key
// is read as annual.
func OtherIncomeItem(raw map[string]interface{}) models.OtherIncomeItem {
	item := models.OtherIncomeItem{
		Label:         pickString(raw, categoryKeys),
		AnnualAmount:  pickNumber(raw, annualAmountKeys),
		MonthlyAmount: pickNumber(raw, monthlyAmountKeys),
	}
	if item.AnnualAmount == nil && item.MonthlyAmount == nil {
		item.AnnualAmount = pickNumber(raw, amountKeys)
	}
	return item
}

// UnitTypeRow maps one raw unit-mix record.
func UnitTypeRow(raw map[string]interface{}) models.UnitTypeRow {
	row := models.UnitTypeRow{
		Label: pickString(raw, unitTypeLabelKeys),
	}
	if c := pickNumber(raw, unitCountKeys); c != nil {
		row.Count = int(*c)
	}
	if r := pickNumber(raw, avgRentKeys); r != nil {
		row.AvgRent = *r
	}
	return row
}

// Assumptions maps a raw assumptions object. Absent keys stay nil so that
// partial sources merge per field during resolution.
func Assumptions(raw map[string]interface{}) models.Assumptions {
	return models.Assumptions{
		VacancyRate:        pickNumber(raw, vacancyRateKeys),
		ManagementFeeRate:  pickNumber(raw, managementFeeRateKeys),
		ExitCapRate:        pickNumber(raw, exitCapRateKeys),
		MarketCapRate:      pickNumber(raw, marketCapRateKeys),
		ExpenseRatio:       pickNumber(raw, expenseRatioKeys),
		LoanPercentage:     pickNumber(raw, loanPercentageKeys),
		InterestRate:       pickNumber(raw, assumedRateKeys),
		LoanTermYears:      pickNumber(raw, loanTermYearsKeys),
		AppreciationFactor: pickNumber(raw, appreciationFactorKeys),
	}
}

// RentRoll maps a raw array of rent-roll records, skipping entries that are
// not objects.
func RentRoll(raws []interface{}) []models.RentRollRow {
	var rows []models.RentRollRow
	for _, r := range raws {
		if m, ok := r.(map[string]interface{}); ok {
			rows = append(rows, RentRollRow(m))
		}
	}
	return rows
}

// Loans maps a raw array of loan records.
func Loans(raws []interface{}) []models.Loan {
	var loans []models.Loan
	for _, r := range raws {
		if m, ok := r.(map[string]interface{}); ok {
			loans = append(loans, Loan(m))
		}
	}
	return loans
}

// ExpenseItems maps a raw array of expense records.
func ExpenseItems(raws []interface{}) []models.ExpenseItem {
	var items []models.ExpenseItem
	for _, r := range raws {
		if m, ok := r.(map[string]interface{}); ok {
			items = append(items, ExpenseItem(m))
		}
	}
	return items
}

// OtherIncomeItems maps a raw array of ancillary-income records.
func OtherIncomeItems(raws []interface{}) []models.OtherIncomeItem {
	var items []models.OtherIncomeItem
	for _, r := range raws {
		if m, ok := r.(map[string]interface{}); ok {
			items = append(items, OtherIncomeItem(m))
		}
	}
	return items
}

// UnitTypeRows maps a raw array of unit-mix records.
func UnitTypeRows(raws []interface{}) []models.UnitTypeRow {
	var rows []models.UnitTypeRow
	for _, r := range raws {
		if m, ok := r.(map[string]interface{}); ok {
			rows = append(rows, UnitTypeRow(m))
		}
	}
	return rows
}
