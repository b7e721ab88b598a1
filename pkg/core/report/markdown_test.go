package report

import (
	"strings"
	"testing"

	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/core/faults"
	"property_dashboard/pkg/models"
)

func sampleFinancials() calc.Financials {
	return calc.Financials{
		PropertyID:           "prop-1",
		Status:               models.StatusCashflowing,
		GrossRentalIncome:    49200,
		VacancyLoss:          2460,
		EffectiveGrossIncome: 46740,
		MonthlyExpenses:      311.60,
		AnnualExpenses:       3739.20,
		MonthlyDebtService:   2528.27,
		AnnualDebtService:    30339.24,
		NOI:                  43000.80,
		MonthlyCashFlow:      1055.13,
		AnnualCashFlow:       12661.56,
		CapRate:              0.0860016,
		CashOnCashReturn:     0.0844101,
		DSCR:                 1.4173,
		BreakEvenOccupancy:   0.692652,
		ARV:                  781832.73,
		CurrentEquityValue:   381832.73,
		EquityMultiple:       1.5456,
		ExpenseBreakdown: []calc.ExpenseLineItem{
			{Category: "Management Fee", Kind: calc.ExpenseManagement, Monthly: 311.60, Annual: 3739.20},
		},
	}
}

func TestPropertyReport(t *testing.T) {
	p := models.Property{ID: "prop-1", Name: "Maple Court Duplex", Address: "12 Maple Ct"}
	md := PropertyReport(p, sampleFinancials())

	for _, want := range []string{
		"# Maple Court Duplex",
		"12 Maple Ct",
		"Status: **CASHFLOWING**",
		"| Gross rental income | $49,200 |",
		"| Effective gross income | $46,740 |",
		"| Operating expenses | $312 | $3,739 |",
		"| NOI (annual) | $43,001 |",
		"| Cap rate | 8.6% |",
		"| Cash-on-cash return | 8.44% |",
		"| DSCR | 1.42 |",
		"| Break-even occupancy | 69.27% |",
		"| ARV | $781,833 |",
		"| Equity multiple | 1.55x |",
		"| Management Fee | $312 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q\n%s", want, md)
		}
	}

	// No warnings, no warnings section.
	if strings.Contains(md, "## Warnings") {
		t.Error("warning section rendered without warnings")
	}
}

func TestPropertyReport_WarningsAndDegraded(t *testing.T) {
	fin := calc.Financials{
		PropertyID: "prop-2",
		Status:     models.StatusRehabbing,
		Degraded:   true,
		Warnings: []faults.Fault{
			{Kind: faults.KindResolution, Field: "vacancy_rate", Message: "no value in any source, resolved to 0"},
		},
	}
	md := PropertyReport(models.Property{ID: "prop-2"}, fin)

	// Falls back to the ID when the property has no name.
	if !strings.Contains(md, "# prop-2") {
		t.Errorf("missing ID heading:\n%s", md)
	}
	if !strings.Contains(md, "_(degraded result)_") {
		t.Error("degraded marker missing")
	}
	if !strings.Contains(md, "- `RESOLUTION_ERROR` no value in any source, resolved to 0") {
		t.Errorf("warning line missing:\n%s", md)
	}
}

func TestPortfolioReport(t *testing.T) {
	pm := calc.PortfolioMetrics{
		PropertyCount:            3,
		ActiveCount:              2,
		SoldCount:                1,
		AUM:                      1331832.73,
		TotalUnits:               6,
		TotalDebt:                700000,
		TotalEquity:              631832.73,
		AggregateMonthlyCashFlow: 1055.13,
		AggregateAnnualCashFlow:  12661.56,
		AverageEquityMultiple:    1.1374,
		AverageCashOnCash:        0.0844,
		Properties:               []calc.Financials{sampleFinancials()},
	}
	md := PortfolioReport(pm)

	for _, want := range []string{
		"# Portfolio summary",
		"| Properties | 3 (2 active, 1 sold) |",
		"| Assets under management | $1,331,833 |",
		"| Units | 6 |",
		"| Avg equity multiple | 1.14x |",
		"| Avg cash-on-cash | 8.44% |",
		"| prop-1 | CASHFLOWING | $43,001 | $12,662 | 8.6% |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("rollup missing %q\n%s", want, md)
		}
	}

	// Degraded row appears only when something degraded.
	if strings.Contains(md, "Degraded results") {
		t.Error("degraded row rendered with zero degraded results")
	}
	pm.DegradedCount = 1
	if !strings.Contains(PortfolioReport(pm), "| Degraded results | 1 |") {
		t.Error("degraded row missing")
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("# Portfolio summary\n\nplain paragraph\n")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(html, "<h1>Portfolio summary</h1>") {
		t.Errorf("heading not rendered: %s", html)
	}
	if !strings.Contains(html, "<p>plain paragraph</p>") {
		t.Errorf("paragraph not rendered: %s", html)
	}
}
