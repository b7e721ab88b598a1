package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/core/dealmodel"
	"property_dashboard/pkg/core/faults"
	"property_dashboard/pkg/core/ingest"
	"property_dashboard/pkg/core/overrides"
	"property_dashboard/pkg/core/report"
	"property_dashboard/pkg/core/source"
	"property_dashboard/pkg/core/validate"
	"property_dashboard/pkg/models"
)

// Raw inputs exactly as the legacy dashboard stored them: sloppy JSON in the
// deal-model column, legacy field spellings in the uploaded documents.
var (
	dealModelBlob = []byte(`{
		"version": 2,
		"assumptions": {
			"vacancy_rate": 0.05,
			"management_fee_rate": 0.08,
			"exit_cap_rate": 0.055,
		},
	}`)

	rentRollDoc = []byte(`[
		{"unit": "1A", "tenant": "A. Rivera", "current_rent": "$2,000.00", "occupied": true},
		{"unit": "1B", "tenant": "B. Chen", "actual_rent": 2100, "is_vacant": false}
	]`)

	loansDoc = []byte(`[
		{"lender": "First National", "loanAmount": 400000, "rate": "6.5%", "loanTerm": 30, "active": true}
	]`)
)

func TestE2E_DuplexLifecycle(t *testing.T) {
	ctx := context.Background()

	property := models.Property{
		ID:                     "prop-maple",
		Name:                   "Maple Street Duplex",
		Status:                 models.StatusCashflowing,
		Apartments:             2,
		AcquisitionPrice:       500000,
		RehabCosts:             50000,
		InitialCapitalRequired: 150000,
	}

	// 1. Deal model: the blob has trailing commas and must survive repair.
	fmt.Println(">>> Step 1: Parsing deal model blob...")
	dm, parseFaults := dealmodel.Parse(dealModelBlob)
	if dm == nil {
		t.Fatalf("deal model blob did not parse; faults: %v", parseFaults)
	}
	for _, f := range parseFaults {
		if f.Hard() {
			t.Fatalf("deal model parse produced a hard fault: %v", f)
		}
	}
	if dm.Assumptions == nil || dm.Assumptions.VacancyRate == nil {
		t.Fatalf("deal model assumptions missing: %+v", dm)
	}
	fmt.Printf("   Vacancy rate: %.2f%%\n", *dm.Assumptions.VacancyRate*100)

	// 2. Uploaded documents land as LIVE bundles via the canonical mappers.
	fmt.Println(">>> Step 2: Ingesting uploaded documents...")
	var rawRows []interface{}
	if err := json.Unmarshal(rentRollDoc, &rawRows); err != nil {
		t.Fatalf("rent roll doc: %v", err)
	}
	rows := ingest.RentRoll(rawRows)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rent roll rows, got %d", len(rows))
	}
	if rows[1].CurrentRent == nil || *rows[1].CurrentRent != 2100 {
		t.Fatalf("legacy spelling actual_rent not mapped: %+v", rows[1])
	}

	var rawLoans []interface{}
	if err := json.Unmarshal(loansDoc, &rawLoans); err != nil {
		t.Fatalf("loans doc: %v", err)
	}
	loans := ingest.Loans(rawLoans)
	if len(loans) != 1 || loans[0].OriginalAmount == nil || *loans[0].OriginalAmount != 400000 {
		t.Fatalf("legacy loan spellings not mapped: %+v", loans)
	}
	if loans[0].InterestRate != 0.065 {
		t.Fatalf("rate %q should ingest as 0.065, got %v", "6.5%", loans[0].InterestRate)
	}

	var bundles source.BundleSet
	bundles.RentRolls = append(bundles.RentRolls, source.RentRollBundle{Source: source.SourceLive, Rows: rows})
	bundles.Loans = append(bundles.Loans, source.LoanBundle{Source: source.SourceLive, Loans: loans})
	bundles.MergeDealModel(dm)

	// 3. Full calculation with an empty override store in the loop.
	fmt.Println(">>> Step 3: Calculating financials...")
	store := overrides.NewMemoryStore()
	engine := calc.NewEngine(store, models.Assumptions{}, nil)
	fin := engine.Calculate(ctx, property, bundles)

	fmt.Printf("   NOI: $%.2f\n", fin.NOI)
	fmt.Printf("   Cap rate: %.4f%%\n", fin.CapRate*100)
	fmt.Printf("   Monthly cash flow: $%.2f\n", fin.MonthlyCashFlow)
	fmt.Printf("   DSCR: %.4f\n", fin.DSCR)

	wantDollar(t, "GrossRentalIncome", fin.GrossRentalIncome, 49200)
	wantDollar(t, "VacancyLoss", fin.VacancyLoss, 2460)
	wantDollar(t, "EffectiveGrossIncome", fin.EffectiveGrossIncome, 46740)
	wantDollar(t, "MonthlyManagementFee", fin.MonthlyManagementFee, 311.60)
	wantDollar(t, "MonthlyExpenses", fin.MonthlyExpenses, 311.60)
	wantDollar(t, "NOI", fin.NOI, 43000.80)
	wantDollar(t, "MonthlyDebtService", fin.MonthlyDebtService, 2528.27)
	wantDollar(t, "MonthlyCashFlow", fin.MonthlyCashFlow, 1055.13)
	wantDollar(t, "ARV", fin.ARV, 781832.73)
	if math.Abs(fin.CapRate-0.0860016) > 1e-6 {
		t.Errorf("CapRate = %v, want 0.0860016", fin.CapRate)
	}
	if math.Abs(fin.DSCR-1.4173) > 0.001 {
		t.Errorf("DSCR = %v, want ~1.4173", fin.DSCR)
	}
	if math.Abs(fin.CashOnCashReturn-0.08441) > 1e-4 {
		t.Errorf("CashOnCashReturn = %v, want ~0.08441", fin.CashOnCashReturn)
	}
	if fin.ARVBasis != calc.ARVBasisIncomeCap {
		t.Errorf("ARVBasis = %q, want %q", fin.ARVBasis, calc.ARVBasisIncomeCap)
	}
	if got := fin.AssumptionSources[source.FieldVacancyRate]; got != source.SourceDealModel {
		t.Errorf("vacancy rate resolved from %q, want DEAL_MODEL", got)
	}

	// No expense document and no expense-ratio assumption: exactly one
	// resolution warning, nothing else.
	if len(fin.Warnings) != 1 || fin.Warnings[0].Kind != faults.KindResolution {
		t.Fatalf("warnings = %+v, want single resolution warning", fin.Warnings)
	}

	// 4. Internal linkage: monthly*12, income-to-NOI, NOI-to-cash-flow.
	fmt.Println(">>> Step 4: Verifying arithmetic linkages...")
	linkage := validate.ValidateLinkages(fin, 0.01)
	if !linkage.AllPassed {
		t.Fatalf("linkage checks failed: %v", linkage.FailedChecks)
	}

	// 5. Drift against the numbers the legacy dashboard still has persisted.
	// The legacy rows rounded differently; all sit inside the thresholds.
	fmt.Println(">>> Step 5: Checking drift against legacy snapshot...")
	legacy := validate.LegacyMetrics{
		MonthlyCashFlow:  fp(1060),
		NOI:              fp(43000),
		CapRate:          fp(0.0858),
		CashOnCashReturn: fp(0.0848),
	}
	drift := validate.CheckAgainstLegacy(property.ID, fin, legacy, validate.DefaultTolerances())
	if !drift.AllWithin {
		t.Fatalf("unexpected drift: %v", drift.FailedChecks)
	}
	fmt.Printf("   %d checks, all within tolerance\n", len(drift.Checks))

	// 6. A user override outranks every other expense source.
	fmt.Println(">>> Step 6: Applying user expense override...")
	err := store.Set(ctx, overrides.Override{
		PropertyID: property.ID,
		Items:      []models.ExpenseItem{{Category: "Lawn Care", MonthlyAmount: fp(60)}},
		UpdatedBy:  "e2e",
	})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	overridden := engine.Calculate(ctx, property, bundles)
	wantDollar(t, "MonthlyExpenses after override", overridden.MonthlyExpenses, 371.60)
	wantDollar(t, "NOI after override", overridden.NOI, 42280.80)
	var expenseTrace source.SourceCategory
	for _, tr := range overridden.SourceTraces {
		if tr.Category == source.CategoryExpenses {
			expenseTrace = tr.Source
		}
	}
	if expenseTrace != source.SourceOverride {
		t.Errorf("expense trace = %q, want USER_OVERRIDE", expenseTrace)
	}

	// 7. Determinism: the same inputs marshal to the same bytes.
	fmt.Println(">>> Step 7: Re-running for determinism...")
	again := engine.Calculate(ctx, property, bundles)
	b1, _ := json.Marshal(overridden)
	b2, _ := json.Marshal(again)
	if !bytes.Equal(b1, b2) {
		t.Errorf("identical inputs produced different outputs")
	}

	// 8. Rendered report carries the presentation-rounded figures.
	fmt.Println(">>> Step 8: Rendering report...")
	md := report.PropertyReport(property, fin)
	for _, want := range []string{
		"# Maple Street Duplex",
		"| Cap rate | 8.6% |",
		"| Cash flow (monthly) | $1,055 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
	html, err := report.RenderHTML(md)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(html, "<h1>Maple Street Duplex</h1>") {
		t.Errorf("HTML missing heading")
	}
}

func wantDollar(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.01 {
		t.Errorf("%s = %.4f, want %.2f", name, got, want)
	}
}

func fp(f float64) *float64 { return &f }
