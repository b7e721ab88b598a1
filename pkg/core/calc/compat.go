package calc

import "math"

// LegacyFinancials mirrors the JSON shape the old dashboard emitted:
// camelCase keys and percentage fields pre-multiplied by 100. It exists only
// for consumers that have not migrated; everything new takes Financials with
// its decimal fractions. The x100 conversion lives here and in pkg/core/report
// and nowhere else.
type LegacyFinancials struct {
	PropertyID string `json:"propertyId"`
	Status     string `json:"status"`

	GrossRentalIncome    float64 `json:"grossRentalIncome"`
	VacancyLoss          float64 `json:"vacancyLoss"`
	OtherIncome          float64 `json:"otherIncome"`
	EffectiveGrossIncome float64 `json:"effectiveGrossIncome"`

	MonthlyExpenses float64 `json:"monthlyExpenses"`
	AnnualExpenses  float64 `json:"annualExpenses"`

	MonthlyDebtService float64 `json:"monthlyDebtService"`
	AnnualDebtService  float64 `json:"annualDebtService"`
	CurrentDebt        float64 `json:"currentDebt"`

	MonthlyNOI      float64 `json:"monthlyNoi"`
	NOI             float64 `json:"noi"`
	MonthlyCashFlow float64 `json:"monthlyCashFlow"`
	AnnualCashFlow  float64 `json:"annualCashFlow"`

	CapRate            float64 `json:"capRate"`            // percent
	CashOnCashReturn   float64 `json:"cashOnCashReturn"`   // percent
	BreakEvenOccupancy float64 `json:"breakEvenOccupancy"` // percent
	DSCR               float64 `json:"dscr"`
	EquityMultiple     float64 `json:"equityMultiple"`

	ARV                float64 `json:"arv"`
	CurrentEquityValue float64 `json:"currentEquityValue"`
	RehabCosts         float64 `json:"rehabCosts"`
	AllInCost          float64 `json:"allInCost"`
}

// toPercent converts a stored fraction to a display percent rounded to two
// decimals: 0.0858 -> 8.58.
func toPercent(fraction float64) float64 {
	return math.Round(fraction*100*100) / 100
}

// ToLegacy converts a Financials into the old dashboard's wire shape.
func ToLegacy(fin Financials) LegacyFinancials {
	return LegacyFinancials{
		PropertyID: fin.PropertyID,
		Status:     string(fin.Status),

		GrossRentalIncome:    fin.GrossRentalIncome,
		VacancyLoss:          fin.VacancyLoss,
		OtherIncome:          fin.OtherIncome,
		EffectiveGrossIncome: fin.EffectiveGrossIncome,

		MonthlyExpenses: fin.MonthlyExpenses,
		AnnualExpenses:  fin.AnnualExpenses,

		MonthlyDebtService: fin.MonthlyDebtService,
		AnnualDebtService:  fin.AnnualDebtService,
		CurrentDebt:        fin.CurrentDebt,

		MonthlyNOI:      fin.MonthlyNOI,
		NOI:             fin.NOI,
		MonthlyCashFlow: fin.MonthlyCashFlow,
		AnnualCashFlow:  fin.AnnualCashFlow,

		CapRate:            toPercent(fin.CapRate),
		CashOnCashReturn:   toPercent(fin.CashOnCashReturn),
		BreakEvenOccupancy: toPercent(fin.BreakEvenOccupancy),
		DSCR:               fin.DSCR,
		EquityMultiple:     fin.EquityMultiple,

		ARV:                fin.ARV,
		CurrentEquityValue: fin.CurrentEquityValue,
		RehabCosts:         fin.RehabCosts,
		AllInCost:          fin.AllInCost,
	}
}
