// Package calc is the unified property financial calculation engine. Every
// investment KPI the dashboard shows comes from here; the divergent legacy
// calculators were collapsed into this package and survive only through the
// output adapter in compat.go.
package calc

import (
	"property_dashboard/pkg/core/faults"
	"property_dashboard/pkg/core/source"
	"property_dashboard/pkg/models"
)

// ExpenseKind tags how a breakdown line was produced.
type ExpenseKind string

const (
	ExpenseFixed      ExpenseKind = "FIXED"
	ExpensePercentage ExpenseKind = "PERCENTAGE"
	ExpenseManagement ExpenseKind = "MANAGEMENT_FEE"
	ExpenseBlended    ExpenseKind = "BLENDED_RATIO"
)

// ExpenseLineItem is one reporting line of the expense breakdown. Category
// is display-only and never feeds back into a formula.
type ExpenseLineItem struct {
	Category string      `json:"category"`
	Kind     ExpenseKind `json:"kind"`
	Monthly  float64     `json:"monthly"`
	Annual   float64     `json:"annual"`
}

// ARV basis tags, recording which resolution branch produced the value.
const (
	ARVBasisSalePrice       = "SALE_PRICE"
	ARVBasisIncomeCap       = "INCOME_CAP"
	ARVBasisStoredAppraisal = "STORED_APPRAISAL"
	ARVBasisCostBasis       = "COST_BASIS"
	ARVBasisNone            = "NONE"
)

// Financials is the immutable per-property KPI set. It has no identity and
// no persisted lifecycle; it is recomputed on demand from current inputs.
// Every fractional rate in it is a decimal fraction (0.0858, not 8.58) —
// percent conversion belongs to pkg/core/report and compat.go only.
type Financials struct {
	PropertyID string                `json:"property_id"`
	Status     models.PropertyStatus `json:"status"`

	// Income
	GrossRentalIncome    float64 `json:"gross_rental_income"`
	VacancyLoss          float64 `json:"vacancy_loss"`
	OtherIncome          float64 `json:"other_income"`
	EffectiveGrossIncome float64 `json:"effective_gross_income"`

	// Expenses
	MonthlyExpenses      float64           `json:"monthly_expenses"`
	AnnualExpenses       float64           `json:"annual_expenses"`
	MonthlyManagementFee float64           `json:"monthly_management_fee"`
	ExpenseBreakdown     []ExpenseLineItem `json:"expense_breakdown,omitempty"`

	// Debt
	MonthlyDebtService float64 `json:"monthly_debt_service"`
	AnnualDebtService  float64 `json:"annual_debt_service"`
	CurrentDebt        float64 `json:"current_debt"`

	// Cash flow
	MonthlyNOI      float64 `json:"monthly_noi"`
	NOI             float64 `json:"noi"`
	MonthlyCashFlow float64 `json:"monthly_cash_flow"`
	AnnualCashFlow  float64 `json:"annual_cash_flow"`

	// Investment metrics
	CapRate            float64 `json:"cap_rate"`
	ARV                float64 `json:"arv"`
	ARVBasis           string  `json:"arv_basis"`
	CurrentEquityValue float64 `json:"current_equity_value"`
	EquityMultiple     float64 `json:"equity_multiple"`
	CashOnCashReturn   float64 `json:"cash_on_cash_return"`
	DSCR               float64 `json:"dscr"`
	BreakEvenOccupancy float64 `json:"break_even_occupancy"`

	// Cost breakdown
	RehabCosts float64 `json:"rehab_costs"`
	AllInCost  float64 `json:"all_in_cost"`

	// Audit trail
	SourceTraces      []source.SourceTrace             `json:"source_traces,omitempty"`
	AssumptionSources map[string]source.SourceCategory `json:"assumption_sources,omitempty"`
	Warnings          []faults.Fault                   `json:"warnings,omitempty"`

	// Degraded marks an all-zero substitute produced after an isolated
	// per-property failure (see safeCalculate).
	Degraded bool `json:"degraded,omitempty"`
}

// PortfolioMetrics rolls per-property results into portfolio totals and
// averages. Totals cover the non-Sold population; aggregate cash flow covers
// CASHFLOWING properties only; averages cover strictly positive values only.
type PortfolioMetrics struct {
	PropertyCount int `json:"property_count"`
	ActiveCount   int `json:"active_count"`
	SoldCount     int `json:"sold_count"`
	DegradedCount int `json:"degraded_count,omitempty"`

	AUM                      float64 `json:"aum"`
	AggregateAnnualCashFlow  float64 `json:"aggregate_annual_cash_flow"`
	AggregateMonthlyCashFlow float64 `json:"aggregate_monthly_cash_flow"`

	TotalUnits  int     `json:"total_units"`
	TotalDebt   float64 `json:"total_debt"`
	TotalEquity float64 `json:"total_equity"`

	AverageEquityMultiple float64 `json:"average_equity_multiple"`
	AverageCashOnCash     float64 `json:"average_cash_on_cash"`

	Properties []Financials `json:"properties,omitempty"`
}

// safeDivide guards every ratio in this package: a zero denominator reads as
// 0, never NaN or Inf.
func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
