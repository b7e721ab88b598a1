package calc

import (
	"math"

	"property_dashboard/pkg/core/faults"
	"property_dashboard/pkg/core/source"
)

// AmortizedMonthlyPayment computes the level monthly payment for a fully
// amortizing loan.
//
// FORMULA: M = P × r(1+r)^n / ((1+r)^n − 1)
//
// Where:
//   - P = principal
//   - r = annualRate / 12 (monthly rate, decimal fraction)
//   - n = termYears × 12 (number of payments)
//
// A zero rate degenerates to straight-line principal: M = P / n.
func AmortizedMonthlyPayment(principal, annualRate, termYears float64) float64 {
	if principal <= 0 || termYears <= 0 {
		return 0
	}
	n := termYears * 12
	r := annualRate / 12
	if r == 0 {
		return principal / n
	}
	factor := math.Pow(1+r, n)
	return principal * r * factor / (factor - 1)
}

// DebtInput carries the resolved loan bundle (nil when no source had loans)
// and the resolved assumptions used to fill gaps or derive a loan when no
// bundle exists.
type DebtInput struct {
	Loans            *source.LoanBundle
	Assumptions      source.ResolvedAssumptions
	AcquisitionPrice float64
}

// DebtResult is the debt side of the pipeline.
type DebtResult struct {
	MonthlyDebtService float64
	AnnualDebtService  float64
	CurrentDebt        float64

	LoanSelected           bool // a loan from a bundle was used
	DerivedFromAssumptions bool // principal derived as loanPercentage × price

	Traces   []source.SourceTrace
	Warnings []faults.Fault
}

// CalculateDebtService resolves the active loan and its monthly payment.
//
// Payment priority: the loan's stated MonthlyPayment when present and > 0;
// otherwise the closed-form amortized payment. A selected loan missing its
// rate or term borrows the resolved assumption values. With no loan bundle
// at all, a loan is derived from loanPercentage × acquisitionPrice when the
// assumptions carry one; otherwise debt service and current debt are both 0,
// which is a legitimate debt-free property, not an error.
func CalculateDebtService(input DebtInput) DebtResult {
	var result DebtResult

	if input.Loans != nil {
		if loan, ok := source.ActiveLoan(*input.Loans); ok {
			result.LoanSelected = true
			result.CurrentDebt = source.CurrentDebt(loan)

			if loan.MonthlyPayment != nil && *loan.MonthlyPayment > 0 {
				result.MonthlyDebtService = *loan.MonthlyPayment
			} else {
				rate := loan.InterestRate
				if rate == 0 && input.Assumptions.Has(source.FieldInterestRate) {
					rate = input.Assumptions.InterestRate
				}
				term := loan.TermYears
				if term == 0 && input.Assumptions.Has(source.FieldLoanTermYears) {
					term = input.Assumptions.LoanTermYears
				}
				principal := source.LoanPrincipal(loan)
				if principal > 0 && term > 0 {
					result.MonthlyDebtService = AmortizedMonthlyPayment(principal, rate, term)
				} else {
					result.Warnings = append(result.Warnings,
						faults.NewResolution(string(source.CategoryLoans), "monthly_debt_service"))
				}
			}

			result.Traces = append(result.Traces, source.SourceTrace{
				Category: source.CategoryLoans,
				Source:   input.Loans.Source,
			})
		}
	}

	if !result.LoanSelected {
		// No loan in any source: fall back to the assumptions-derived loan.
		if input.Assumptions.LoanPercentage > 0 && input.AcquisitionPrice > 0 {
			principal := input.Assumptions.LoanPercentage * input.AcquisitionPrice
			term := input.Assumptions.LoanTermYears
			if term > 0 {
				result.MonthlyDebtService = AmortizedMonthlyPayment(principal, input.Assumptions.InterestRate, term)
				result.CurrentDebt = principal
				result.DerivedFromAssumptions = true
			} else {
				result.Warnings = append(result.Warnings,
					faults.NewResolution(string(source.CategoryAssumptions), source.FieldLoanTermYears))
			}
		}
	}

	result.AnnualDebtService = result.MonthlyDebtService * 12
	return result
}
