package calc

import (
	"context"

	"go.uber.org/zap"

	"property_dashboard/pkg/core/source"
	"property_dashboard/pkg/models"
)

// PropertyInput pairs one property record with its candidate source bundles.
type PropertyInput struct {
	Property models.Property
	Bundles  source.BundleSet
}

// CalculatePortfolio computes each property's financials in isolation and
// rolls them up. A failure inside one property is logged and replaced with a
// degraded all-zero result; it never aborts the rest of the portfolio.
func (e *Engine) CalculatePortfolio(ctx context.Context, inputs []PropertyInput) PortfolioMetrics {
	properties := make([]models.Property, len(inputs))
	results := make([]Financials, len(inputs))
	for i, in := range inputs {
		properties[i] = in.Property
		results[i] = e.safeCalculate(ctx, in.Property, in.Bundles)
	}
	pm := AggregatePortfolio(properties, results)
	e.log.Debug("portfolio aggregated",
		zap.Int("properties", pm.PropertyCount),
		zap.Int("degraded", pm.DegradedCount),
		zap.Float64("aum", pm.AUM))
	return pm
}

// AggregatePortfolio rolls computed per-property results into the portfolio
// header numbers. properties[i] must correspond to results[i].
//
// FORMULA:
//   AUM         = Σ arv            over status != SOLD
//   cashFlow    = Σ cashFlow       over status == CASHFLOWING
//   totals      = Σ units, debt, equity over status != SOLD
//   avg(metric) = arithmetic mean over strictly positive values
//
// Sold properties stay in the result list (their realized profit is still
// reported per property) but contribute nothing to AUM or the totals. A
// zero-valued equity multiple or cash-on-cash comes from a guarded division
// and is excluded from its average instead of dragging it toward zero.
func AggregatePortfolio(properties []models.Property, results []Financials) PortfolioMetrics {
	pm := PortfolioMetrics{
		PropertyCount: len(results),
		Properties:    results,
	}

	var emSum, cocSum float64
	var emCount, cocCount int

	for i, fin := range results {
		units := 0
		if i < len(properties) {
			units = properties[i].Apartments
		}

		if fin.Degraded {
			pm.DegradedCount++
		}

		// 1. Population split and non-Sold totals
		if fin.Status == models.StatusSold {
			pm.SoldCount++
		} else {
			pm.ActiveCount++
			pm.AUM += fin.ARV
			pm.TotalUnits += units
			pm.TotalDebt += fin.CurrentDebt
			pm.TotalEquity += fin.CurrentEquityValue
		}

		// 2. Aggregate cash flow, stabilized properties only
		if fin.Status == models.StatusCashflowing {
			pm.AggregateMonthlyCashFlow += fin.MonthlyCashFlow
			pm.AggregateAnnualCashFlow += fin.AnnualCashFlow
		}

		// 3. Averages over strictly positive values
		if fin.EquityMultiple > 0 {
			emSum += fin.EquityMultiple
			emCount++
		}
		if fin.CashOnCashReturn > 0 {
			cocSum += fin.CashOnCashReturn
			cocCount++
		}
	}

	pm.AverageEquityMultiple = safeDivide(emSum, float64(emCount))
	pm.AverageCashOnCash = safeDivide(cocSum, float64(cocCount))
	return pm
}
