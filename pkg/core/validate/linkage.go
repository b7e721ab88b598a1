// This file implements internal linkage validation: the arithmetic
// identities that must hold inside a single computed Financials. The checks
// catch adapter bugs (a consumer recombining fields wrongly) rather than
// engine bugs, so they live here and not in the engine itself.
package validate

import (
	"math"

	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/models"
)

// =============================================================================
// INTERNAL LINKAGE VALIDATION
// =============================================================================

// LinkageReport contains all internal identity checks for one result.
type LinkageReport struct {
	PropertyID       string            `json:"property_id"`
	MonthlyToAnnual  *ScaleLinkage     `json:"monthly_to_annual"`
	IncomeToNOI      *NOILinkage       `json:"income_to_noi"`
	NOIToCashFlow    *CashFlowLinkage  `json:"noi_to_cash_flow,omitempty"`
	BreakdownToTotal *BreakdownLinkage `json:"breakdown_to_total,omitempty"`
	AllPassed        bool              `json:"all_passed"`
	FailedChecks     []string          `json:"failed_checks,omitempty"`
}

// ScaleLinkage validates the three annual = 12 x monthly pairs.
type ScaleLinkage struct {
	ExpensesDiff    float64 `json:"expenses_diff"`
	DebtServiceDiff float64 `json:"debt_service_diff"`
	NOIDiff         float64 `json:"noi_diff"`
	IsLinked        bool    `json:"is_linked"`
	Tolerance       float64 `json:"tolerance"`
}

// NOILinkage validates: EGI - annualExpenses == NOI. EffectiveGrossIncome is
// an annual figure already.
type NOILinkage struct {
	AnnualEGI      float64 `json:"annual_egi"`
	AnnualExpenses float64 `json:"annual_expenses"`
	ExpectedNOI    float64 `json:"expected_noi"`
	ActualNOI      float64 `json:"actual_noi"`
	Difference     float64 `json:"difference"`
	IsLinked       bool    `json:"is_linked"`
	Tolerance      float64 `json:"tolerance"`
}

// CashFlowLinkage validates: NOI - annualDebtService == annualCashFlow.
// Only meaningful for stabilized properties; lifecycle gating zeroes the
// cash flow of everything else on purpose.
type CashFlowLinkage struct {
	NOI               float64 `json:"noi"`
	AnnualDebtService float64 `json:"annual_debt_service"`
	ExpectedCashFlow  float64 `json:"expected_cash_flow"`
	ActualCashFlow    float64 `json:"actual_cash_flow"`
	Difference        float64 `json:"difference"`
	IsLinked          bool    `json:"is_linked"`
	Tolerance         float64 `json:"tolerance"`
}

// BreakdownLinkage validates: sum of breakdown lines == reported totals.
type BreakdownLinkage struct {
	BreakdownMonthly float64 `json:"breakdown_monthly"`
	ReportedMonthly  float64 `json:"reported_monthly"`
	DifferenceM      float64 `json:"difference_monthly"`

	BreakdownAnnual float64 `json:"breakdown_annual"`
	ReportedAnnual  float64 `json:"reported_annual"`
	DifferenceA     float64 `json:"difference_annual"`

	IsLinked  bool    `json:"is_linked"`
	Tolerance float64 `json:"tolerance"`
}

// ValidateLinkages runs every internal identity check against one result.
// tolerance is in absolute dollars; 0.01 absorbs float accumulation.
func ValidateLinkages(fin calc.Financials, tolerance float64) *LinkageReport {
	report := &LinkageReport{
		PropertyID: fin.PropertyID,
		AllPassed:  true,
	}

	// 1. Monthly -> annual scaling
	report.MonthlyToAnnual = validateScaleLinkage(fin, tolerance)
	if !report.MonthlyToAnnual.IsLinked {
		report.AllPassed = false
		report.FailedChecks = append(report.FailedChecks, "annual = 12 x monthly")
	}

	// 2. Income -> NOI
	report.IncomeToNOI = validateNOILinkage(fin, tolerance)
	if !report.IncomeToNOI.IsLinked {
		report.AllPassed = false
		report.FailedChecks = append(report.FailedChecks, "EGI - annualExpenses = NOI")
	}

	// 3. NOI -> cash flow, stabilized properties only
	report.NOIToCashFlow = validateCashFlowLinkage(fin, tolerance)
	if report.NOIToCashFlow != nil && !report.NOIToCashFlow.IsLinked {
		report.AllPassed = false
		report.FailedChecks = append(report.FailedChecks, "NOI - annualDebtService = annualCashFlow")
	}

	// 4. Breakdown -> totals
	report.BreakdownToTotal = validateBreakdownLinkage(fin, tolerance)
	if report.BreakdownToTotal != nil && !report.BreakdownToTotal.IsLinked {
		report.AllPassed = false
		report.FailedChecks = append(report.FailedChecks, "breakdown sums = expense totals")
	}

	return report
}

func validateScaleLinkage(fin calc.Financials, tolerance float64) *ScaleLinkage {
	result := &ScaleLinkage{
		ExpensesDiff:    fin.AnnualExpenses - fin.MonthlyExpenses*12,
		DebtServiceDiff: fin.AnnualDebtService - fin.MonthlyDebtService*12,
		NOIDiff:         fin.NOI - fin.MonthlyNOI*12,
		Tolerance:       tolerance,
	}
	result.IsLinked = math.Abs(result.ExpensesDiff) <= tolerance &&
		math.Abs(result.DebtServiceDiff) <= tolerance &&
		math.Abs(result.NOIDiff) <= tolerance
	return result
}

func validateNOILinkage(fin calc.Financials, tolerance float64) *NOILinkage {
	annualEGI := fin.EffectiveGrossIncome
	expected := annualEGI - fin.AnnualExpenses
	diff := fin.NOI - expected

	return &NOILinkage{
		AnnualEGI:      annualEGI,
		AnnualExpenses: fin.AnnualExpenses,
		ExpectedNOI:    expected,
		ActualNOI:      fin.NOI,
		Difference:     diff,
		IsLinked:       math.Abs(diff) <= tolerance,
		Tolerance:      tolerance,
	}
}

func validateCashFlowLinkage(fin calc.Financials, tolerance float64) *CashFlowLinkage {
	if fin.Status != models.StatusCashflowing {
		return nil
	}

	expected := fin.NOI - fin.AnnualDebtService
	diff := fin.AnnualCashFlow - expected

	return &CashFlowLinkage{
		NOI:               fin.NOI,
		AnnualDebtService: fin.AnnualDebtService,
		ExpectedCashFlow:  expected,
		ActualCashFlow:    fin.AnnualCashFlow,
		Difference:        diff,
		IsLinked:          math.Abs(diff) <= tolerance,
		Tolerance:         tolerance,
	}
}

func validateBreakdownLinkage(fin calc.Financials, tolerance float64) *BreakdownLinkage {
	if len(fin.ExpenseBreakdown) == 0 {
		return nil
	}

	result := &BreakdownLinkage{
		ReportedMonthly: fin.MonthlyExpenses,
		ReportedAnnual:  fin.AnnualExpenses,
		Tolerance:       tolerance,
	}
	for _, line := range fin.ExpenseBreakdown {
		result.BreakdownMonthly += line.Monthly
		result.BreakdownAnnual += line.Annual
	}
	result.DifferenceM = result.BreakdownMonthly - result.ReportedMonthly
	result.DifferenceA = result.BreakdownAnnual - result.ReportedAnnual
	result.IsLinked = math.Abs(result.DifferenceM) <= tolerance &&
		math.Abs(result.DifferenceA) <= tolerance
	return result
}
