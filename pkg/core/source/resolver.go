package source

import (
	"sort"

	"property_dashboard/pkg/models"
)

// Assumption field names used in provenance maps and resolution warnings.
const (
	FieldVacancyRate        = "vacancy_rate"
	FieldManagementFeeRate  = "management_fee_rate"
	FieldExitCapRate        = "exit_cap_rate"
	FieldExpenseRatio       = "expense_ratio"
	FieldLoanPercentage     = "loan_percentage"
	FieldInterestRate       = "interest_rate"
	FieldLoanTermYears      = "loan_term_years"
	FieldAppreciationFactor = "appreciation_factor"
)

// ResolveRentRoll picks the highest-priority non-empty rent-roll bundle.
// Empty bundles are skipped, never merged; ties keep input order.
func ResolveRentRoll(bundles []RentRollBundle) (RentRollBundle, bool) {
	best := -1
	for i, b := range bundles {
		if len(b.Rows) == 0 {
			continue
		}
		if best == -1 || b.Source.Priority() > bundles[best].Source.Priority() {
			best = i
		}
	}
	if best == -1 {
		return RentRollBundle{}, false
	}
	return bundles[best], true
}

// ResolveLoans picks the highest-priority non-empty loan bundle.
func ResolveLoans(bundles []LoanBundle) (LoanBundle, bool) {
	best := -1
	for i, b := range bundles {
		if len(b.Loans) == 0 {
			continue
		}
		if best == -1 || b.Source.Priority() > bundles[best].Source.Priority() {
			best = i
		}
	}
	if best == -1 {
		return LoanBundle{}, false
	}
	return bundles[best], true
}

// ResolveExpenses picks the highest-priority non-empty expense bundle.
func ResolveExpenses(bundles []ExpenseBundle) (ExpenseBundle, bool) {
	best := -1
	for i, b := range bundles {
		if len(b.Items) == 0 {
			continue
		}
		if best == -1 || b.Source.Priority() > bundles[best].Source.Priority() {
			best = i
		}
	}
	if best == -1 {
		return ExpenseBundle{}, false
	}
	return bundles[best], true
}

// ResolveOtherIncome picks the highest-priority non-empty other-income bundle.
func ResolveOtherIncome(bundles []OtherIncomeBundle) (OtherIncomeBundle, bool) {
	best := -1
	for i, b := range bundles {
		if len(b.Items) == 0 {
			continue
		}
		if best == -1 || b.Source.Priority() > bundles[best].Source.Priority() {
			best = i
		}
	}
	if best == -1 {
		return OtherIncomeBundle{}, false
	}
	return bundles[best], true
}

// ResolveUnitTypes picks the highest-priority non-empty unit-type bundle.
func ResolveUnitTypes(bundles []UnitTypeBundle) (UnitTypeBundle, bool) {
	best := -1
	for i, b := range bundles {
		if len(b.Rows) == 0 {
			continue
		}
		if best == -1 || b.Source.Priority() > bundles[best].Source.Priority() {
			best = i
		}
	}
	if best == -1 {
		return UnitTypeBundle{}, false
	}
	return bundles[best], true
}

// MonthlyRent resolves one row's rent through the synonym chain
// CurrentRent -> MarketRent -> ProFormaRent -> Rent. A nil or non-positive
// field falls through, so a unit carrying only a pro-forma value still
// contributes. Returns false when no synonym holds a positive value.
func MonthlyRent(row models.RentRollRow) (float64, bool) {
	for _, v := range []*float64{row.CurrentRent, row.MarketRent, row.ProFormaRent, row.Rent} {
		if v != nil && *v > 0 {
			return *v, true
		}
	}
	return 0, false
}

// ActiveLoan selects the loan considered active at calculation time: the
// first loan flagged IsActive, else the first loan in the bundle. Multiple
// loans are never averaged.
func ActiveLoan(b LoanBundle) (models.Loan, bool) {
	if len(b.Loans) == 0 {
		return models.Loan{}, false
	}
	for _, ln := range b.Loans {
		if ln.IsActive {
			return ln, true
		}
	}
	return b.Loans[0], true
}

// LoanPrincipal resolves the amount to amortize over:
// OriginalAmount -> Principal -> CurrentBalance -> PrincipalBalance.
func LoanPrincipal(ln models.Loan) float64 {
	for _, v := range []*float64{ln.OriginalAmount, ln.Principal, ln.CurrentBalance, ln.PrincipalBalance} {
		if v != nil && *v > 0 {
			return *v
		}
	}
	return 0
}

// CurrentDebt resolves the outstanding balance:
// CurrentBalance -> PrincipalBalance -> OriginalAmount -> Principal.
func CurrentDebt(ln models.Loan) float64 {
	for _, v := range []*float64{ln.CurrentBalance, ln.PrincipalBalance, ln.OriginalAmount, ln.Principal} {
		if v != nil && *v > 0 {
			return *v
		}
	}
	return 0
}

// ResolvedAssumptions holds the per-field winners across every assumptions
// bundle. A field absent from Sources had no value in any source and reads 0.
type ResolvedAssumptions struct {
	VacancyRate        float64
	ManagementFeeRate  float64
	ExitCapRate        float64
	ExpenseRatio       float64
	LoanPercentage     float64
	InterestRate       float64
	LoanTermYears      float64
	AppreciationFactor float64

	Sources map[string]SourceCategory
}

// Has reports whether any source supplied the named field. An explicit zero
// counts as supplied.
func (ra ResolvedAssumptions) Has(field string) bool {
	_, ok := ra.Sources[field]
	return ok
}

// ResolveAssumptions resolves each assumption field independently across the
// given bundles: within a field, the highest-priority bundle holding a value
// wins, so a live bundle carrying only a vacancy rate does not shadow the
// deal model's cap rate. The exit cap field consults the MarketCapRate
// synonym inside each bundle before falling to the next source.
func ResolveAssumptions(bundles []AssumptionsBundle) ResolvedAssumptions {
	ordered := make([]AssumptionsBundle, len(bundles))
	copy(ordered, bundles)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Source.Priority() > ordered[j].Source.Priority()
	})

	ra := ResolvedAssumptions{Sources: map[string]SourceCategory{}}

	pick := func(field string, get func(models.Assumptions) *float64) float64 {
		for _, b := range ordered {
			if v := get(b.Values); v != nil {
				ra.Sources[field] = b.Source
				return *v
			}
		}
		return 0
	}

	ra.VacancyRate = pick(FieldVacancyRate, func(a models.Assumptions) *float64 { return a.VacancyRate })
	ra.ManagementFeeRate = pick(FieldManagementFeeRate, func(a models.Assumptions) *float64 { return a.ManagementFeeRate })
	ra.ExitCapRate = pick(FieldExitCapRate, func(a models.Assumptions) *float64 {
		if a.ExitCapRate != nil {
			return a.ExitCapRate
		}
		return a.MarketCapRate
	})
	ra.ExpenseRatio = pick(FieldExpenseRatio, func(a models.Assumptions) *float64 { return a.ExpenseRatio })
	ra.LoanPercentage = pick(FieldLoanPercentage, func(a models.Assumptions) *float64 { return a.LoanPercentage })
	ra.InterestRate = pick(FieldInterestRate, func(a models.Assumptions) *float64 { return a.InterestRate })
	ra.LoanTermYears = pick(FieldLoanTermYears, func(a models.Assumptions) *float64 { return a.LoanTermYears })
	ra.AppreciationFactor = pick(FieldAppreciationFactor, func(a models.Assumptions) *float64 { return a.AppreciationFactor })

	return ra
}
