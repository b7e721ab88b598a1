package calc

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"property_dashboard/pkg/core/faults"
	"property_dashboard/pkg/core/overrides"
	"property_dashboard/pkg/core/source"
	"property_dashboard/pkg/models"
)

// Engine runs the per-property pipeline: source resolution, then income,
// expenses, debt service, cash flow and investment metrics, strictly in that
// order. It holds no mutable state of its own; the injected override store
// is the only shared resource and is read exactly once per calculation, so
// Calculate is safe to invoke concurrently across properties. Identical
// inputs produce identical output.
type Engine struct {
	overrides overrides.Store
	defaults  models.Assumptions
	log       *zap.Logger
}

// NewEngine builds an engine around the injected override store and the
// market-standard default assumptions (the lowest-priority source). A nil
// store disables user overrides; a nil logger is replaced with a no-op.
func NewEngine(store overrides.Store, defaults models.Assumptions, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{overrides: store, defaults: defaults, log: log}
}

// SetOverrideStore swaps the override store (e.g. for testing).
func (e *Engine) SetOverrideStore(store overrides.Store) {
	e.overrides = store
}

// Calculate computes the full Financials for one property from the tagged
// candidate bundles. It never returns an error: resolution gaps degrade to
// zeros with recorded warnings, and the property record itself is never
// mutated.
func (e *Engine) Calculate(ctx context.Context, property models.Property, bundles source.BundleSet) Financials {
	var warnings []faults.Fault

	// The two slices extended below are copied so a caller's BundleSet is
	// never written through.
	bs := bundles
	bs.Assumptions = append([]source.AssumptionsBundle(nil), bundles.Assumptions...)
	bs.Expenses = append([]source.ExpenseBundle(nil), bundles.Expenses...)
	bs.MergeDefaults(e.defaults)

	// 1. User overrides — the one external read, performed exactly once.
	if e.overrides != nil {
		ov, err := e.overrides.Get(ctx, property.ID)
		if err != nil {
			e.log.Warn("override store read failed, computing without user overrides",
				zap.String("property_id", property.ID), zap.Error(err))
			warnings = append(warnings, faults.Fault{
				Kind:     faults.KindResolution,
				Category: string(source.CategoryExpenses),
				Field:    "override",
				Message:  "override store unavailable, computed without user overrides",
			})
		} else if ov != nil && len(ov.Items) > 0 {
			bs.Expenses = append(bs.Expenses, source.ExpenseBundle{
				Source: source.SourceOverride,
				Items:  ov.Items,
			})
		}
	}

	// 2. Source resolution
	rentRoll, haveRentRoll := source.ResolveRentRoll(bs.RentRolls)
	unitTypes, haveUnitTypes := source.ResolveUnitTypes(bs.UnitTypes)
	otherIncome, haveOtherIncome := source.ResolveOtherIncome(bs.OtherIncome)
	loans, haveLoans := source.ResolveLoans(bs.Loans)
	expenses, haveExpenses := source.ResolveExpenses(bs.Expenses)
	ra := source.ResolveAssumptions(bs.Assumptions)

	// 3. Income
	incomeInput := IncomeInput{
		UnitCount:        property.Apartments,
		VacancyRate:      ra.VacancyRate,
		VacancyRateKnown: ra.Has(source.FieldVacancyRate),
	}
	if haveRentRoll {
		incomeInput.RentRoll = &rentRoll
	}
	if haveUnitTypes {
		incomeInput.UnitTypes = &unitTypes
	}
	if haveOtherIncome {
		incomeInput.OtherIncome = &otherIncome
	}
	income := CalculateIncome(incomeInput)

	// 4. Expenses
	expenseInput := ExpenseInput{
		EffectiveGrossIncome:   income.EffectiveGrossIncome,
		ManagementFeeRate:      ra.ManagementFeeRate,
		ManagementFeeRateKnown: ra.Has(source.FieldManagementFeeRate),
		ExpenseRatio:           ra.ExpenseRatio,
		ExpenseRatioKnown:      ra.Has(source.FieldExpenseRatio),
	}
	if haveExpenses {
		expenseInput.Expenses = &expenses
	}
	expense := CalculateExpenses(expenseInput)

	// 5. Debt service
	debtInput := DebtInput{
		Assumptions:      ra,
		AcquisitionPrice: property.AcquisitionPrice,
	}
	if haveLoans {
		debtInput.Loans = &loans
	}
	debt := CalculateDebtService(debtInput)

	// 6. Cash flow, gated by lifecycle: properties before stabilization and
	// after disposition report zero cash flow regardless of raw inputs.
	cashFlow := CalculateCashFlow(income.EffectiveGrossIncome, expense.MonthlyExpenses, debt.MonthlyDebtService)
	if property.Status != models.StatusCashflowing {
		cashFlow.MonthlyCashFlow = 0
		cashFlow.AnnualCashFlow = 0
	}

	// 7. Investment metrics
	metrics := CalculateInvestmentMetrics(MetricsInput{
		Property:           property,
		NOI:                cashFlow.NOI,
		AnnualCashFlow:     cashFlow.AnnualCashFlow,
		AnnualExpenses:     expense.AnnualExpenses,
		GrossRentalIncome:  income.GrossRentalIncome,
		AnnualDebtService:  debt.AnnualDebtService,
		CurrentDebt:        debt.CurrentDebt,
		ExitCapRate:        ra.ExitCapRate,
		AppreciationFactor: ra.AppreciationFactor,
	})
	if metrics.ARVBasis == ARVBasisNone {
		warnings = append(warnings, faults.NewResolution("PROPERTY", "arv"))
	}

	// 8. Assemble
	warnings = append(warnings, income.Warnings...)
	warnings = append(warnings, expense.Warnings...)
	warnings = append(warnings, debt.Warnings...)

	var traces []source.SourceTrace
	traces = append(traces, income.Traces...)
	traces = append(traces, expense.Traces...)
	traces = append(traces, debt.Traces...)

	return Financials{
		PropertyID: property.ID,
		Status:     property.Status,

		GrossRentalIncome:    income.GrossRentalIncome,
		VacancyLoss:          income.VacancyLoss,
		OtherIncome:          income.OtherIncome,
		EffectiveGrossIncome: income.EffectiveGrossIncome,

		MonthlyExpenses:      expense.MonthlyExpenses,
		AnnualExpenses:       expense.AnnualExpenses,
		MonthlyManagementFee: expense.ManagementFee,
		ExpenseBreakdown:     expense.Breakdown,

		MonthlyDebtService: debt.MonthlyDebtService,
		AnnualDebtService:  debt.AnnualDebtService,
		CurrentDebt:        debt.CurrentDebt,

		MonthlyNOI:      cashFlow.MonthlyNOI,
		NOI:             cashFlow.NOI,
		MonthlyCashFlow: cashFlow.MonthlyCashFlow,
		AnnualCashFlow:  cashFlow.AnnualCashFlow,

		CapRate:            metrics.CapRate,
		ARV:                metrics.ARV,
		ARVBasis:           metrics.ARVBasis,
		CurrentEquityValue: metrics.CurrentEquityValue,
		EquityMultiple:     metrics.EquityMultiple,
		CashOnCashReturn:   metrics.CashOnCashReturn,
		DSCR:               metrics.DSCR,
		BreakEvenOccupancy: metrics.BreakEvenOccupancy,

		RehabCosts: property.RehabCosts,
		AllInCost:  metrics.AllInCost,

		SourceTraces:      traces,
		AssumptionSources: ra.Sources,
		Warnings:          warnings,
	}
}

// safeCalculate isolates one property's computation: a panic is logged and
// replaced with the all-zero degraded result so portfolio aggregation keeps
// going.
func (e *Engine) safeCalculate(ctx context.Context, property models.Property, bundles source.BundleSet) (result Financials) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("financials computation panicked, substituting degraded result",
				zap.String("property_id", property.ID), zap.Any("panic", r))
			result = DegradedFinancials(property, fmt.Sprint(r))
		}
	}()
	return e.Calculate(ctx, property, bundles)
}

// DegradedFinancials is the all-zero substitute for a property whose
// computation failed unexpectedly.
func DegradedFinancials(property models.Property, cause string) Financials {
	return Financials{
		PropertyID: property.ID,
		Status:     property.Status,
		ARVBasis:   ARVBasisNone,
		Warnings:   []faults.Fault{faults.NewDegraded(property.ID, cause)},
		Degraded:   true,
	}
}
