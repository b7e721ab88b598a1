package main

import (
	"context"
	"fmt"
	"math"

	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/core/source"
	"property_dashboard/pkg/models"
)

// Walks the reference underwriting scenario through the engine stage by stage
// and checks every intermediate figure against its closed-form value:
// a two-unit rent roll at 2000 + 2100, 5% vacancy, 8% management fee,
// a 400k loan at 6.5% over 30 years, 5.5% exit cap.

const tolerance = 0.01

var failures int

func main() {
	ctx := context.Background()

	property := models.Property{
		ID:                     "verify-001",
		Name:                   "Reference Duplex",
		Status:                 models.StatusCashflowing,
		Apartments:             2,
		AcquisitionPrice:       500000,
		RehabCosts:             50000,
		InitialCapitalRequired: 150000,
	}

	bundles := source.BundleSet{
		RentRolls: []source.RentRollBundle{{
			Source: source.SourceLive,
			Rows: []models.RentRollRow{
				{UnitNumber: "A", CurrentRent: fp(2000)},
				{UnitNumber: "B", CurrentRent: fp(2100)},
			},
		}},
		Loans: []source.LoanBundle{{
			Source: source.SourceLive,
			Loans: []models.Loan{{
				Principal:    fp(400000),
				InterestRate: 0.065,
				TermYears:    30,
				IsActive:     true,
			}},
		}},
		Assumptions: []source.AssumptionsBundle{{
			Source: source.SourceNormalized,
			Values: models.Assumptions{
				VacancyRate:       fp(0.05),
				ManagementFeeRate: fp(0.08),
				ExitCapRate:       fp(0.055),
			},
		}},
	}

	engine := calc.NewEngine(nil, models.Assumptions{}, nil)
	fin := engine.Calculate(ctx, property, bundles)

	// Closed-form expectations, derived independently of the engine.
	gri := (2000.0 + 2100.0) * 12                // 49200
	vacancy := gri * 0.05                        // 2460
	egi := gri - vacancy                         // 46740
	mgmtFee := 0.08 * egi / 12                   // 311.60
	monthlyNOI := egi/12 - mgmtFee               // 3583.40
	noi := monthlyNOI * 12                       // 43000.80
	payment := amortize(400000, 0.065, 30)       // 2528.27
	monthlyCF := monthlyNOI - payment            // 1055.13
	capRate := noi / 500000                      // 0.0860
	arv := noi / 0.055                           // 781832.73
	allIn := 500000.0 + 50000.0                  // 550000
	equityMultiple := (arv - allIn) / 150000     // 1.5456
	coc := monthlyCF * 12 / 150000               // 0.0844
	dscr := noi / (payment * 12)                 // 1.4172
	breakEven := (mgmtFee*12 + payment*12) / gri // 0.6926

	fmt.Println("====================================================================================================")
	fmt.Println("                       FINANCIAL ENGINE VERIFICATION  (REFERENCE DUPLEX)")
	fmt.Println("====================================================================================================")
	fmt.Printf("%-35s | %15s | %15s | %s\n", "FIGURE", "ENGINE", "CLOSED-FORM", "STATUS")
	fmt.Println("----------------------------------------------------------------------------------------------------")

	pRow("Gross Rental Income", fin.GrossRentalIncome, gri)
	pRow("Vacancy Loss", fin.VacancyLoss, vacancy)
	pRow("Effective Gross Income", fin.EffectiveGrossIncome, egi)

	fmt.Println("----------------------------------------------------------------------------------------------------")
	pRow("Monthly Management Fee", fin.MonthlyManagementFee, mgmtFee)
	pRow("Monthly Expenses", fin.MonthlyExpenses, mgmtFee)
	pRow("Monthly NOI", fin.MonthlyNOI, monthlyNOI)
	pRow("NOI (annual)", fin.NOI, noi)

	fmt.Println("----------------------------------------------------------------------------------------------------")
	pRow("Monthly Debt Service", fin.MonthlyDebtService, payment)
	pRow("Monthly Cash Flow", fin.MonthlyCashFlow, monthlyCF)
	pRow("Annual Cash Flow", fin.AnnualCashFlow, monthlyCF*12)

	fmt.Println("----------------------------------------------------------------------------------------------------")
	pRow("Cap Rate", fin.CapRate, capRate)
	pRow("ARV (income cap)", fin.ARV, arv)
	pRow("Equity Multiple", fin.EquityMultiple, equityMultiple)
	pRow("Cash-on-Cash", fin.CashOnCashReturn, coc)
	pRow("DSCR", fin.DSCR, dscr)
	pRow("Break-even Occupancy", fin.BreakEvenOccupancy, breakEven)

	fmt.Println("====================================================================================================")
	fmt.Println("                       INVARIANT CHECKS")
	fmt.Println("====================================================================================================")

	// capRate must hold against the purchase price no matter what ARV says.
	pRow("NOI / acquisitionPrice", fin.CapRate, fin.NOI/property.AcquisitionPrice)

	// Idempotence: a second run with identical inputs is bit-identical.
	again := engine.Calculate(ctx, property, bundles)
	if fin.NOI == again.NOI && fin.ARV == again.ARV && fin.MonthlyCashFlow == again.MonthlyCashFlow {
		fmt.Printf("%-35s | %35s | PASS\n", "Idempotence (repeat run)", "bit-identical")
	} else {
		failures++
		fmt.Printf("%-35s | %35s | FAIL\n", "Idempotence (repeat run)", "outputs differ")
	}

	// Sold properties freeze cash-flow metrics and flip ARV to the sale price.
	sold := property
	sold.Status = models.StatusSold
	sold.SalePrice = fp(800000)
	sold.TotalProfits = fp(250000)
	soldFin := engine.Calculate(ctx, sold, bundles)
	pRow("Sold: cash flow frozen", soldFin.MonthlyCashFlow, 0)
	pRow("Sold: cash-on-cash frozen", soldFin.CashOnCashReturn, 0)
	pRow("Sold: ARV = sale price", soldFin.ARV, 800000)
	pRow("Sold: realized equity multiple", soldFin.EquityMultiple, 250000.0/150000.0)

	fmt.Println("====================================================================================================")
	if failures > 0 {
		fmt.Printf("RESULT: %d check(s) FAILED\n", failures)
		return
	}
	fmt.Println("RESULT: all checks passed")
}

func pRow(label string, got, want float64) {
	status := "PASS"
	if math.Abs(got-want) > tolerance {
		status = "FAIL"
		failures++
	}
	fmt.Printf("%-35s | %15.2f | %15.2f | %s\n", label, got, want, status)
}

func amortize(principal, rate, years float64) float64 {
	r := rate / 12
	n := years * 12
	factor := math.Pow(1+r, n)
	return principal * r * factor / (factor - 1)
}

func fp(f float64) *float64 { return &f }
