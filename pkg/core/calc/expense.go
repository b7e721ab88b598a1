package calc

import (
	"property_dashboard/pkg/core/faults"
	"property_dashboard/pkg/core/source"
)

// ExpenseInput carries the resolved expense bundle (nil when no source had
// items, including the override store) and the resolved assumption rates.
type ExpenseInput struct {
	Expenses *source.ExpenseBundle

	EffectiveGrossIncome float64

	ManagementFeeRate      float64
	ManagementFeeRateKnown bool

	ExpenseRatio      float64
	ExpenseRatioKnown bool
}

// ExpenseResult is the operating-expense side of the pipeline.
type ExpenseResult struct {
	MonthlyExpenses float64
	AnnualExpenses  float64
	ManagementFee   float64 // monthly

	Breakdown []ExpenseLineItem

	Traces   []source.SourceTrace
	Warnings []faults.Fault
}

// CalculateExpenses computes monthly and annual operating expenses.
//
// FORMULA: monthlyExpenses = Σ fixed + Σ (percentage × EGI/12) + managementFee
// FORMULA: managementFee = managementFeeRate × EGI/12
//
// Fixed items read MonthlyAmount first, then AnnualAmount/12. Percentage
// items apply to monthly EGI. The management fee is applied unconditionally
// on top of itemized expenses; omitting it was the single most common defect
// in the calculators this package replaced. With no expense bundle at all,
// a single blended expenseRatio × EGI/12 line stands in for the itemized
// set — the management fee still applies on top.
func CalculateExpenses(input ExpenseInput) ExpenseResult {
	var result ExpenseResult
	monthlyEGI := input.EffectiveGrossIncome / 12

	// 1. Itemized and percentage expenses, or the blended fallback
	if input.Expenses != nil && len(input.Expenses.Items) > 0 {
		for _, item := range input.Expenses.Items {
			category := item.Category
			if category == "" {
				category = "Uncategorized"
			}
			switch {
			case item.MonthlyAmount != nil:
				result.Breakdown = append(result.Breakdown, ExpenseLineItem{
					Category: category,
					Kind:     ExpenseFixed,
					Monthly:  *item.MonthlyAmount,
					Annual:   *item.MonthlyAmount * 12,
				})
			case item.AnnualAmount != nil:
				result.Breakdown = append(result.Breakdown, ExpenseLineItem{
					Category: category,
					Kind:     ExpenseFixed,
					Monthly:  *item.AnnualAmount / 12,
					Annual:   *item.AnnualAmount,
				})
			case item.Percentage != nil:
				monthly := *item.Percentage * monthlyEGI
				result.Breakdown = append(result.Breakdown, ExpenseLineItem{
					Category: category,
					Kind:     ExpensePercentage,
					Monthly:  monthly,
					Annual:   monthly * 12,
				})
			}
		}
		result.Traces = append(result.Traces, source.SourceTrace{
			Category: source.CategoryExpenses,
			Source:   input.Expenses.Source,
		})
	} else {
		if input.ExpenseRatioKnown {
			monthly := input.ExpenseRatio * monthlyEGI
			result.Breakdown = append(result.Breakdown, ExpenseLineItem{
				Category: "Operating Expenses",
				Kind:     ExpenseBlended,
				Monthly:  monthly,
				Annual:   monthly * 12,
			})
		} else {
			result.Warnings = append(result.Warnings,
				faults.NewResolution(string(source.CategoryExpenses), source.FieldExpenseRatio))
		}
	}

	// 2. Management fee, always
	if input.ManagementFeeRateKnown {
		result.ManagementFee = input.ManagementFeeRate * monthlyEGI
	} else {
		result.Warnings = append(result.Warnings,
			faults.NewResolution(string(source.CategoryAssumptions), source.FieldManagementFeeRate))
	}
	result.Breakdown = append(result.Breakdown, ExpenseLineItem{
		Category: "Management Fee",
		Kind:     ExpenseManagement,
		Monthly:  result.ManagementFee,
		Annual:   result.ManagementFee * 12,
	})

	// 3. Totals
	for _, line := range result.Breakdown {
		result.MonthlyExpenses += line.Monthly
	}
	result.AnnualExpenses = result.MonthlyExpenses * 12

	return result
}
