package calc

import (
	"property_dashboard/pkg/models"
)

// MetricsInput carries the upstream pipeline outputs the investment metrics
// derive from. AnnualCashFlow arrives already status-gated (pre-stabilization
// and sold properties pass 0).
type MetricsInput struct {
	Property models.Property

	NOI               float64
	AnnualCashFlow    float64
	AnnualExpenses    float64
	GrossRentalIncome float64
	AnnualDebtService float64
	CurrentDebt       float64

	ExitCapRate        float64
	AppreciationFactor float64
}

// MetricsResult is the investment-metrics stage output. All rates are
// decimal fractions.
type MetricsResult struct {
	CapRate            float64
	ARV                float64
	ARVBasis           string
	CurrentEquityValue float64
	EquityMultiple     float64
	CashOnCashReturn   float64
	DSCR               float64
	BreakEvenOccupancy float64
	AllInCost          float64
}

// CalculateInvestmentMetrics computes the valuation and return metrics.
//
// FORMULA: capRate = NOI / acquisitionPrice
//
// The denominator is the purchase price, never ARV. Several of the replaced
// calculators capitalized on ARV and overstated stabilized yields; the
// purchase-price basis is a hard invariant here.
//
// ARV resolution order: recorded sale price (sold properties), income
// capitalization NOI/exitCapRate when both are positive, the stored
// purchase-time appraisal, then (acquisitionPrice + rehabCosts) ×
// appreciationFactor as the last resort.
//
// FORMULA: currentEquityValue = ARV − currentDebt
// FORMULA: equityMultiple (sold)   = totalProfits / initialCapitalRequired
// FORMULA: equityMultiple (active) = (ARV − allInCost) / initialCapitalRequired
// FORMULA: cashOnCashReturn = annualCashFlow / initialCapitalRequired
// FORMULA: DSCR = NOI / annualDebtService
// FORMULA: breakEvenOccupancy = (annualExpenses + annualDebtService) / GRI
//
// The two equity-multiple conventions are deliberately kept separate: the
// sold branch is a realized profit ratio, the active branch an unrealized
// value ratio. They measure different things and must not be merged.
// Every division returns 0 on a zero or missing denominator.
func CalculateInvestmentMetrics(input MetricsInput) MetricsResult {
	p := input.Property
	var result MetricsResult

	// 1. Cap rate — purchase price basis, every status.
	result.CapRate = safeDivide(input.NOI, p.AcquisitionPrice)

	// 2. ARV
	result.ARV, result.ARVBasis = resolveARV(p, input.NOI, input.ExitCapRate, input.AppreciationFactor)

	// 3. Equity
	result.CurrentEquityValue = result.ARV - input.CurrentDebt

	// 4. Equity multiple, by status
	result.AllInCost = p.AcquisitionPrice + p.RehabCosts + p.ClosingCosts + p.HoldingCosts
	if p.Status == models.StatusSold {
		profits := 0.0
		if p.TotalProfits != nil {
			profits = *p.TotalProfits
		}
		result.EquityMultiple = safeDivide(profits, p.InitialCapitalRequired)
	} else {
		result.EquityMultiple = safeDivide(result.ARV-result.AllInCost, p.InitialCapitalRequired)
	}

	// 5. Cash-flow-derived ratios. Sold properties freeze these at 0; the
	// operating story ended at disposition.
	if p.Status == models.StatusSold {
		return result
	}
	result.CashOnCashReturn = safeDivide(input.AnnualCashFlow, p.InitialCapitalRequired)
	result.DSCR = safeDivide(input.NOI, input.AnnualDebtService)
	result.BreakEvenOccupancy = safeDivide(input.AnnualExpenses+input.AnnualDebtService, input.GrossRentalIncome)

	return result
}

// resolveARV walks the after-repair-value priority chain. A missing
// appreciation factor reads as 1 so the cost-basis fallback still yields the
// cost itself rather than zero.
func resolveARV(p models.Property, noi, exitCapRate, appreciationFactor float64) (float64, string) {
	if p.Status == models.StatusSold && p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice, ARVBasisSalePrice
	}
	if noi > 0 && exitCapRate > 0 {
		return noi / exitCapRate, ARVBasisIncomeCap
	}
	if p.ARVAtTimePurchased != nil && *p.ARVAtTimePurchased > 0 {
		return *p.ARVAtTimePurchased, ARVBasisStoredAppraisal
	}
	costBasis := p.AcquisitionPrice + p.RehabCosts
	if costBasis > 0 {
		factor := appreciationFactor
		if factor <= 0 {
			factor = 1
		}
		return costBasis * factor, ARVBasisCostBasis
	}
	return 0, ARVBasisNone
}
