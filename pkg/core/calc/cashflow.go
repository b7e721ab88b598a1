package calc

// CashFlowResult is the pure arithmetic junction of income, expenses and
// debt service. No fallback logic lives here; every uncertainty is resolved
// upstream.
type CashFlowResult struct {
	MonthlyNOI      float64
	NOI             float64
	MonthlyCashFlow float64
	AnnualCashFlow  float64
}

// CalculateCashFlow aggregates the three upstream results.
//
// FORMULA: monthlyNOI = EGI/12 − monthlyExpenses
// FORMULA: NOI = monthlyNOI × 12
// FORMULA: monthlyCashFlow = monthlyNOI − monthlyDebtService
// FORMULA: annualCashFlow = monthlyCashFlow × 12
func CalculateCashFlow(effectiveGrossIncome, monthlyExpenses, monthlyDebtService float64) CashFlowResult {
	monthlyNOI := effectiveGrossIncome/12 - monthlyExpenses
	monthlyCashFlow := monthlyNOI - monthlyDebtService
	return CashFlowResult{
		MonthlyNOI:      monthlyNOI,
		NOI:             monthlyNOI * 12,
		MonthlyCashFlow: monthlyCashFlow,
		AnnualCashFlow:  monthlyCashFlow * 12,
	}
}
