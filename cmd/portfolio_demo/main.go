package main

import (
	"context"
	"fmt"
	"strings"

	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/core/overrides"
	"property_dashboard/pkg/core/report"
	"property_dashboard/pkg/core/source"
	"property_dashboard/pkg/models"
)

func floatPtr(f float64) *float64 { return &f }

// buildPortfolio assembles four in-memory properties covering every lifecycle
// stage, with their source bundles tagged the way the fetch layer would tag
// them.
func buildPortfolio() []calc.PropertyInput {
	// 1. Stabilized duplex: LIVE rent roll, NORMALIZED assumptions, LIVE loan.
	maple := calc.PropertyInput{
		Property: models.Property{
			ID:                     "demo-maple-court",
			Name:                   "Maple Court Duplex",
			Address:                "412 Maple Ct",
			Status:                 models.StatusCashflowing,
			Apartments:             2,
			AcquisitionPrice:       500000,
			RehabCosts:             50000,
			InitialCapitalRequired: 150000,
		},
		Bundles: source.BundleSet{
			RentRolls: []source.RentRollBundle{{
				Source: source.SourceLive,
				Rows: []models.RentRollRow{
					{UnitNumber: "A", CurrentRent: floatPtr(2000)},
					{UnitNumber: "B", CurrentRent: floatPtr(2100)},
				},
			}},
			Loans: []source.LoanBundle{{
				Source: source.SourceLive,
				Loans: []models.Loan{{
					Lender:       "First Meridian",
					Principal:    floatPtr(400000),
					InterestRate: 0.065,
					TermYears:    30,
					IsActive:     true,
				}},
			}},
			Assumptions: []source.AssumptionsBundle{{
				Source: source.SourceNormalized,
				Values: models.Assumptions{
					VacancyRate:       floatPtr(0.05),
					ManagementFeeRate: floatPtr(0.08),
					ExitCapRate:       floatPtr(0.055),
				},
			}},
		},
	}

	// 2. Fourplex mid-rehab: pro-forma rents only (synonym fallback), cash
	// flow gated to zero until stabilization.
	birch := calc.PropertyInput{
		Property: models.Property{
			ID:                     "demo-birch-row",
			Name:                   "Birch Row Fourplex",
			Address:                "88 Birch Row",
			Status:                 models.StatusRehabbing,
			Apartments:             4,
			AcquisitionPrice:       380000,
			RehabCosts:             95000,
			InitialCapitalRequired: 140000,
		},
		Bundles: source.BundleSet{
			RentRolls: []source.RentRollBundle{{
				Source: source.SourceDealModel,
				Rows: []models.RentRollRow{
					{UnitNumber: "1", ProFormaRent: floatPtr(1350)},
					{UnitNumber: "2", ProFormaRent: floatPtr(1350)},
					{UnitNumber: "3", ProFormaRent: floatPtr(1425)},
					{UnitNumber: "4", ProFormaRent: floatPtr(1425)},
				},
			}},
			Assumptions: []source.AssumptionsBundle{{
				Source: source.SourceDealModel,
				Values: models.Assumptions{
					VacancyRate:    floatPtr(0.07),
					ExitCapRate:    floatPtr(0.06),
					LoanPercentage: floatPtr(0.75),
					InterestRate:   floatPtr(0.07),
					LoanTermYears:  floatPtr(30),
				},
			}},
		},
	}

	// 3. Under contract: no rent roll yet, unit-type fallback and the stored
	// appraisal carry the valuation.
	cedar := calc.PropertyInput{
		Property: models.Property{
			ID:                     "demo-cedar-point",
			Name:                   "Cedar Point Flats",
			Address:                "7 Cedar Point Rd",
			Status:                 models.StatusUnderContract,
			Apartments:             6,
			AcquisitionPrice:       720000,
			InitialCapitalRequired: 180000,
			ARVAtTimePurchased:     floatPtr(810000),
		},
		Bundles: source.BundleSet{
			UnitTypes: []source.UnitTypeBundle{{
				Source: source.SourceNormalized,
				Rows: []models.UnitTypeRow{
					{Label: "1BR", Count: 4, AvgRent: 1150},
					{Label: "2BR", Count: 2, AvgRent: 1475},
				},
			}},
		},
	}

	// 4. Sold last spring: realized profit drives the equity multiple, and the
	// sale price is the ARV of record. Excluded from AUM.
	oakwood := calc.PropertyInput{
		Property: models.Property{
			ID:                     "demo-oakwood-terrace",
			Name:                   "Oakwood Terrace",
			Address:                "1500 Oakwood Ter",
			Status:                 models.StatusSold,
			Apartments:             12,
			AcquisitionPrice:       1100000,
			RehabCosts:             160000,
			InitialCapitalRequired: 340000,
			SalePrice:              floatPtr(1625000),
			TotalProfits:           floatPtr(365000),
		},
	}

	return []calc.PropertyInput{maple, birch, cedar, oakwood}
}

func main() {
	ctx := context.Background()

	fmt.Println("🏠 Property Dashboard — Portfolio Demo (in-memory, no database)")

	// 1. Override store with one user-edited expense set.
	store := overrides.NewMemoryStore()
	if err := store.Set(ctx, overrides.Override{
		PropertyID: "demo-maple-court",
		Items: []models.ExpenseItem{
			{Category: "Snow Removal", MonthlyAmount: floatPtr(85)},
		},
		UpdatedBy: "demo",
	}); err != nil {
		fmt.Printf("Error: seeding override store: %v\n", err)
		return
	}

	engine := calc.NewEngine(store, models.Assumptions{
		VacancyRate:        floatPtr(0.05),
		ManagementFeeRate:  floatPtr(0.08),
		ExitCapRate:        floatPtr(0.06),
		AppreciationFactor: floatPtr(1.1),
	}, nil)

	inputs := buildPortfolio()

	fmt.Println("\n################################################################################")
	fmt.Println("                     PROPERTY FINANCIALS - PER ASSET")
	fmt.Println("################################################################################")

	for i, in := range inputs {
		fin := engine.Calculate(ctx, in.Property, in.Bundles)

		fmt.Printf("\n[%d] %s  (%s)\n", i+1, in.Property.Name, in.Property.Status)
		fmt.Printf("%-28s %14s\n", "Gross Rental Income:", report.FormatCurrency(fin.GrossRentalIncome))
		fmt.Printf("%-28s %14s\n", "Effective Gross Income:", report.FormatCurrency(fin.EffectiveGrossIncome))
		fmt.Printf("%-28s %14s\n", "NOI (annual):", report.FormatCurrency(fin.NOI))
		fmt.Printf("%-28s %14s\n", "Monthly Cash Flow:", report.FormatCurrency(fin.MonthlyCashFlow))
		fmt.Printf("%-28s %14s  (basis: %s)\n", "ARV:", report.FormatCurrency(fin.ARV), fin.ARVBasis)
		fmt.Printf("%-28s %14s\n", "Cap Rate:", report.FormatPercent(fin.CapRate))
		fmt.Printf("%-28s %14s\n", "Cash-on-Cash:", report.FormatPercent(fin.CashOnCashReturn))
		fmt.Printf("%-28s %14s\n", "Equity Multiple:", report.FormatRatio(fin.EquityMultiple)+"x")
		for _, t := range fin.SourceTraces {
			fmt.Printf("    source %-14s <- %s\n", t.Category, t.Source)
		}
		for _, w := range fin.Warnings {
			fmt.Printf("    warning: %s\n", w.Message)
		}
	}

	// 2. Portfolio rollup.
	pm := engine.CalculatePortfolio(ctx, inputs)

	fmt.Println("\n################################################################################")
	fmt.Println("                     PORTFOLIO ROLLUP")
	fmt.Println("################################################################################")
	fmt.Printf("%-28s %6d (%d active / %d sold)\n", "Properties:", pm.PropertyCount, pm.ActiveCount, pm.SoldCount)
	fmt.Printf("%-28s %14s\n", "AUM (non-sold ARV):", report.FormatCurrency(pm.AUM))
	fmt.Printf("%-28s %14s\n", "Monthly Cash Flow:", report.FormatCurrency(pm.AggregateMonthlyCashFlow))
	fmt.Printf("%-28s %14s\n", "Total Debt:", report.FormatCurrency(pm.TotalDebt))
	fmt.Printf("%-28s %14s\n", "Total Equity:", report.FormatCurrency(pm.TotalEquity))
	fmt.Printf("%-28s %6d\n", "Total Units:", pm.TotalUnits)
	fmt.Printf("%-28s %14s\n", "Avg Equity Multiple:", report.FormatRatio(pm.AverageEquityMultiple)+"x")
	fmt.Printf("%-28s %14s\n", "Avg Cash-on-Cash:", report.FormatPercent(pm.AverageCashOnCash))

	// 3. Markdown report, as served by the dashboard.
	fmt.Println("\n" + strings.Repeat("-", 80))
	fmt.Println(report.PortfolioReport(pm))

	fmt.Println("[Done] Demo complete.")
}
