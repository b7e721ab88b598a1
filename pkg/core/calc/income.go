package calc

import (
	"fmt"

	"property_dashboard/pkg/core/faults"
	"property_dashboard/pkg/core/source"
)

// IncomeInput carries the resolved income-side bundles. Nil bundle pointers
// mean no source had records; resolution already happened upstream.
type IncomeInput struct {
	RentRoll    *source.RentRollBundle
	UnitTypes   *source.UnitTypeBundle
	OtherIncome *source.OtherIncomeBundle

	UnitCount int // Property.Apartments, for the unit-type fallback

	VacancyRate      float64
	VacancyRateKnown bool
}

// IncomeResult is the income side of the pipeline.
type IncomeResult struct {
	GrossRentalIncome    float64
	VacancyLoss          float64
	OtherIncome          float64
	EffectiveGrossIncome float64

	RowsUsed    int // rent-roll rows that contributed a rent
	RowsSkipped int // rows with no positive rent synonym

	Traces   []source.SourceTrace
	Warnings []faults.Fault
}

// CalculateIncome computes gross rental income, vacancy loss, other income
// and EGI.
//
// FORMULA: GRI = 12 × Σ monthlyRent(row)
// FORMULA: vacancyLoss = GRI × vacancyRate
// FORMULA: EGI = GRI − vacancyLoss + otherIncome
//
// Each row's rent resolves through the synonym chain (CurrentRent,
// MarketRent, ProFormaRent, Rent); a row with no positive synonym is skipped
// rather than disqualifying the bundle. With no rent roll at all, GRI falls
// back to the unit-type bundle: count-weighted rents when counts are
// recorded, otherwise UnitCount × mean rent.
func CalculateIncome(input IncomeInput) IncomeResult {
	var result IncomeResult

	// 1. Gross rental income
	if input.RentRoll != nil && len(input.RentRoll.Rows) > 0 {
		var monthly float64
		for _, row := range input.RentRoll.Rows {
			if rent, ok := source.MonthlyRent(row); ok {
				monthly += rent
				result.RowsUsed++
			} else {
				result.RowsSkipped++
			}
		}
		result.GrossRentalIncome = monthly * 12
		result.Traces = append(result.Traces, source.SourceTrace{
			Category: source.CategoryRentRoll,
			Source:   input.RentRoll.Source,
			Detail:   fmt.Sprintf("%d rows used, %d skipped", result.RowsUsed, result.RowsSkipped),
		})
	} else if input.UnitTypes != nil && len(input.UnitTypes.Rows) > 0 {
		counted := 0.0
		uncountedRents := 0.0
		uncounted := 0
		for _, row := range input.UnitTypes.Rows {
			if row.Count > 0 {
				counted += float64(row.Count) * row.AvgRent
			} else {
				uncountedRents += row.AvgRent
				uncounted++
			}
		}
		monthly := counted
		if uncounted > 0 && input.UnitCount > 0 {
			monthly += float64(input.UnitCount) * (uncountedRents / float64(uncounted))
		}
		result.GrossRentalIncome = monthly * 12
		result.Traces = append(result.Traces, source.SourceTrace{
			Category: source.CategoryUnitTypes,
			Source:   input.UnitTypes.Source,
			Detail:   fmt.Sprintf("unit-type fallback over %d rows", len(input.UnitTypes.Rows)),
		})
	}

	if result.GrossRentalIncome == 0 {
		result.Warnings = append(result.Warnings,
			faults.NewResolution(string(source.CategoryRentRoll), "gross_rental_income"))
	}

	// 2. Vacancy loss
	if input.VacancyRateKnown {
		result.VacancyLoss = result.GrossRentalIncome * input.VacancyRate
	} else {
		result.Warnings = append(result.Warnings,
			faults.NewResolution(string(source.CategoryAssumptions), source.FieldVacancyRate))
	}

	// 3. Other income
	if input.OtherIncome != nil {
		for _, item := range input.OtherIncome.Items {
			switch {
			case item.AnnualAmount != nil:
				result.OtherIncome += *item.AnnualAmount
			case item.MonthlyAmount != nil:
				result.OtherIncome += *item.MonthlyAmount * 12
			}
		}
		if len(input.OtherIncome.Items) > 0 {
			result.Traces = append(result.Traces, source.SourceTrace{
				Category: source.CategoryOtherIncome,
				Source:   input.OtherIncome.Source,
				Detail:   fmt.Sprintf("%d items", len(input.OtherIncome.Items)),
			})
		}
	}

	// 4. Effective gross income
	result.EffectiveGrossIncome = result.GrossRentalIncome - result.VacancyLoss + result.OtherIncome

	return result
}
