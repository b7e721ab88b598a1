package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/models"
)

// PropertyReport renders one property's computed financials as a markdown
// summary for export or email.
func PropertyReport(p models.Property, fin calc.Financials) string {
	var b strings.Builder

	name := p.Name
	if name == "" {
		name = p.ID
	}
	fmt.Fprintf(&b, "# %s\n\n", name)
	if p.Address != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Address)
	}
	fmt.Fprintf(&b, "Status: **%s**", fin.Status)
	if fin.Degraded {
		b.WriteString("  _(degraded result)_")
	}
	b.WriteString("\n\n")

	b.WriteString("## Income\n\n")
	b.WriteString("| Metric | Annual |\n|---|---|\n")
	fmt.Fprintf(&b, "| Gross rental income | %s |\n", FormatCurrency(fin.GrossRentalIncome))
	fmt.Fprintf(&b, "| Vacancy loss | %s |\n", FormatCurrency(fin.VacancyLoss))
	fmt.Fprintf(&b, "| Other income | %s |\n", FormatCurrency(fin.OtherIncome))
	fmt.Fprintf(&b, "| Effective gross income | %s |\n", FormatCurrency(fin.EffectiveGrossIncome))
	b.WriteString("\n")

	b.WriteString("## Expenses and debt\n\n")
	b.WriteString("| Metric | Monthly | Annual |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Operating expenses | %s | %s |\n",
		FormatCurrency(fin.MonthlyExpenses), FormatCurrency(fin.AnnualExpenses))
	fmt.Fprintf(&b, "| Debt service | %s | %s |\n",
		FormatCurrency(fin.MonthlyDebtService), FormatCurrency(fin.AnnualDebtService))
	b.WriteString("\n")

	if len(fin.ExpenseBreakdown) > 0 {
		b.WriteString("### Expense breakdown\n\n")
		b.WriteString("| Category | Monthly |\n|---|---|\n")
		for _, line := range fin.ExpenseBreakdown {
			fmt.Fprintf(&b, "| %s | %s |\n", line.Category, FormatCurrency(line.Monthly))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Performance\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| NOI (annual) | %s |\n", FormatCurrency(fin.NOI))
	fmt.Fprintf(&b, "| Cash flow (monthly) | %s |\n", FormatCurrency(fin.MonthlyCashFlow))
	fmt.Fprintf(&b, "| Cash flow (annual) | %s |\n", FormatCurrency(fin.AnnualCashFlow))
	fmt.Fprintf(&b, "| Cap rate | %s |\n", FormatPercent(fin.CapRate))
	fmt.Fprintf(&b, "| Cash-on-cash return | %s |\n", FormatPercent(fin.CashOnCashReturn))
	fmt.Fprintf(&b, "| DSCR | %s |\n", FormatRatio(fin.DSCR))
	fmt.Fprintf(&b, "| Break-even occupancy | %s |\n", FormatPercent(fin.BreakEvenOccupancy))
	fmt.Fprintf(&b, "| ARV | %s |\n", FormatCurrency(fin.ARV))
	fmt.Fprintf(&b, "| Current equity value | %s |\n", FormatCurrency(fin.CurrentEquityValue))
	fmt.Fprintf(&b, "| Equity multiple | %sx |\n", FormatRatio(fin.EquityMultiple))
	fmt.Fprintf(&b, "| All-in cost | %s |\n", FormatCurrency(fin.AllInCost))
	b.WriteString("\n")

	if len(fin.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range fin.Warnings {
			fmt.Fprintf(&b, "- `%s` %s\n", w.Kind, w.Message)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// PortfolioReport renders the portfolio rollup as a markdown summary.
func PortfolioReport(pm calc.PortfolioMetrics) string {
	var b strings.Builder

	b.WriteString("# Portfolio summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Properties | %d (%d active, %d sold) |\n",
		pm.PropertyCount, pm.ActiveCount, pm.SoldCount)
	if pm.DegradedCount > 0 {
		fmt.Fprintf(&b, "| Degraded results | %d |\n", pm.DegradedCount)
	}
	fmt.Fprintf(&b, "| Assets under management | %s |\n", FormatCurrency(pm.AUM))
	fmt.Fprintf(&b, "| Units | %d |\n", pm.TotalUnits)
	fmt.Fprintf(&b, "| Total debt | %s |\n", FormatCurrency(pm.TotalDebt))
	fmt.Fprintf(&b, "| Total equity | %s |\n", FormatCurrency(pm.TotalEquity))
	fmt.Fprintf(&b, "| Cash flow (monthly) | %s |\n", FormatCurrency(pm.AggregateMonthlyCashFlow))
	fmt.Fprintf(&b, "| Cash flow (annual) | %s |\n", FormatCurrency(pm.AggregateAnnualCashFlow))
	fmt.Fprintf(&b, "| Avg equity multiple | %sx |\n", FormatRatio(pm.AverageEquityMultiple))
	fmt.Fprintf(&b, "| Avg cash-on-cash | %s |\n", FormatPercent(pm.AverageCashOnCash))
	b.WriteString("\n")

	if len(pm.Properties) > 0 {
		b.WriteString("## Properties\n\n")
		b.WriteString("| Property | Status | NOI | Cash flow | Cap rate |\n|---|---|---|---|---|\n")
		for _, fin := range pm.Properties {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				fin.PropertyID, fin.Status,
				FormatCurrency(fin.NOI),
				FormatCurrency(fin.AnnualCashFlow),
				FormatPercent(fin.CapRate))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderHTML converts a markdown report to HTML for the web view.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}
