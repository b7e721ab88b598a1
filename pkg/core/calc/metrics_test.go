package calc

import (
	"math"
	"testing"

	"property_dashboard/pkg/models"
)

func TestCapRate_PurchasePriceBasis(t *testing.T) {
	// capRate = NOI / acquisitionPrice, never NOI / ARV. The exit cap here
	// drives ARV far above the purchase price; the cap rate must not move.
	input := MetricsInput{
		Property: models.Property{
			Status:           models.StatusCashflowing,
			AcquisitionPrice: 500000,
		},
		NOI:         43000.80,
		ExitCapRate: 0.055,
	}

	result := CalculateInvestmentMetrics(input)

	expected := 43000.80 / 500000 // 0.0860016
	if math.Abs(result.CapRate-expected) > 1e-9 {
		t.Errorf("CapRate = %v, want %v", result.CapRate, expected)
	}
	// Sanity: ARV resolved differently and did not leak into the denominator.
	if math.Abs(result.ARV-781832.7272727273) > 0.01 {
		t.Errorf("ARV = %v, want 781832.73", result.ARV)
	}
}

func TestCapRate_IsFraction(t *testing.T) {
	input := MetricsInput{
		Property: models.Property{AcquisitionPrice: 500000},
		NOI:      43000.80,
	}
	result := CalculateInvestmentMetrics(input)

	if result.CapRate > 1 {
		t.Errorf("CapRate = %v, must be a decimal fraction, not a percent", result.CapRate)
	}
}

// arvOf runs the metrics stage and returns just the ARV resolution outcome.
func arvOf(t *testing.T, p models.Property, noi, exitCap, appFactor float64) (float64, string) {
	t.Helper()
	result := CalculateInvestmentMetrics(MetricsInput{
		Property:           p,
		NOI:                noi,
		ExitCapRate:        exitCap,
		AppreciationFactor: appFactor,
	})
	return result.ARV, result.ARVBasis
}

func TestResolveARV_SoldUsesSalePrice(t *testing.T) {
	// The recorded sale beats income cap and the stored appraisal.
	p := models.Property{
		Status:             models.StatusSold,
		SalePrice:          fp(800000),
		ARVAtTimePurchased: fp(700000),
		AcquisitionPrice:   500000,
	}
	arv, basis := arvOf(t, p, 43000.80, 0.055, 1.1)
	if arv != 800000 || basis != ARVBasisSalePrice {
		t.Errorf("ARV = %v (%s), want 800000 (%s)", arv, basis, ARVBasisSalePrice)
	}
}

func TestResolveARV_IncomeCapitalization(t *testing.T) {
	p := models.Property{Status: models.StatusCashflowing, AcquisitionPrice: 500000}
	arv, basis := arvOf(t, p, 43000.80, 0.055, 0)
	if math.Abs(arv-43000.80/0.055) > 0.01 || basis != ARVBasisIncomeCap {
		t.Errorf("ARV = %v (%s), want 781832.73 (%s)", arv, basis, ARVBasisIncomeCap)
	}
}

func TestResolveARV_StoredAppraisal(t *testing.T) {
	// No NOI yet (property under contract), no exit cap: fall to the
	// purchase-time appraisal.
	p := models.Property{
		Status:             models.StatusUnderContract,
		ARVAtTimePurchased: fp(810000),
		AcquisitionPrice:   720000,
	}
	arv, basis := arvOf(t, p, 0, 0.055, 0)
	if arv != 810000 || basis != ARVBasisStoredAppraisal {
		t.Errorf("ARV = %v (%s), want 810000 (%s)", arv, basis, ARVBasisStoredAppraisal)
	}
}

func TestResolveARV_CostBasisLastResort(t *testing.T) {
	p := models.Property{
		Status:           models.StatusRehabbing,
		AcquisitionPrice: 380000,
		RehabCosts:       95000,
	}
	arv, basis := arvOf(t, p, 0, 0, 1.1)
	if math.Abs(arv-(380000+95000)*1.1) > 0.01 || basis != ARVBasisCostBasis {
		t.Errorf("ARV = %v (%s), want 522500 (%s)", arv, basis, ARVBasisCostBasis)
	}
}

func TestResolveARV_MissingFactorReadsAsOne(t *testing.T) {
	p := models.Property{
		Status:           models.StatusRehabbing,
		AcquisitionPrice: 380000,
		RehabCosts:       95000,
	}
	arv, basis := arvOf(t, p, 0, 0, 0)
	if arv != 475000 || basis != ARVBasisCostBasis {
		t.Errorf("ARV = %v (%s), want cost basis itself 475000", arv, basis)
	}
}

func TestResolveARV_NothingToValue(t *testing.T) {
	arv, basis := arvOf(t, models.Property{Status: models.StatusUnderContract}, 0, 0, 0)
	if arv != 0 || basis != ARVBasisNone {
		t.Errorf("ARV = %v (%s), want 0 (%s)", arv, basis, ARVBasisNone)
	}
}

func TestEquityMultiple_SoldRealized(t *testing.T) {
	// Sold: realized profit over invested capital.
	input := MetricsInput{
		Property: models.Property{
			Status:                 models.StatusSold,
			AcquisitionPrice:       1100000,
			InitialCapitalRequired: 340000,
			SalePrice:              fp(1625000),
			TotalProfits:           fp(365000),
		},
	}

	result := CalculateInvestmentMetrics(input)

	expected := 365000.0 / 340000.0
	if math.Abs(result.EquityMultiple-expected) > 1e-9 {
		t.Errorf("EquityMultiple = %v, want %v", result.EquityMultiple, expected)
	}
}

func TestEquityMultiple_ActiveUnrealized(t *testing.T) {
	// Active: unrealized value over invested capital.
	// allIn = 500000 + 50000; EM = (781832.73 - 550000) / 150000
	input := MetricsInput{
		Property: models.Property{
			Status:                 models.StatusCashflowing,
			AcquisitionPrice:       500000,
			RehabCosts:             50000,
			InitialCapitalRequired: 150000,
		},
		NOI:         43000.80,
		ExitCapRate: 0.055,
	}

	result := CalculateInvestmentMetrics(input)

	expected := (43000.80/0.055 - 550000) / 150000
	if math.Abs(result.EquityMultiple-expected) > 1e-9 {
		t.Errorf("EquityMultiple = %v, want %v", result.EquityMultiple, expected)
	}
	if math.Abs(result.AllInCost-550000) > 1e-9 {
		t.Errorf("AllInCost = %v, want 550000", result.AllInCost)
	}
}

func TestSoldFreezesCashFlowMetrics(t *testing.T) {
	// Disposition ends the operating story: cash-on-cash, DSCR and break-even
	// stay zero even with live-looking inputs.
	input := MetricsInput{
		Property: models.Property{
			Status:                 models.StatusSold,
			AcquisitionPrice:       500000,
			InitialCapitalRequired: 150000,
			SalePrice:              fp(800000),
			TotalProfits:           fp(250000),
		},
		NOI:               43000.80,
		AnnualCashFlow:    12661.56,
		AnnualExpenses:    3739.20,
		GrossRentalIncome: 49200,
		AnnualDebtService: 30339.24,
	}

	result := CalculateInvestmentMetrics(input)

	if result.CashOnCashReturn != 0 || result.DSCR != 0 || result.BreakEvenOccupancy != 0 {
		t.Errorf("sold property must freeze cash-flow metrics, got CoC=%v DSCR=%v BE=%v",
			result.CashOnCashReturn, result.DSCR, result.BreakEvenOccupancy)
	}
	// The valuation metrics still compute.
	if result.CapRate == 0 || result.ARV != 800000 {
		t.Errorf("valuation metrics should survive disposition, got capRate=%v arv=%v",
			result.CapRate, result.ARV)
	}
}

func TestZeroDenominatorGuards(t *testing.T) {
	// initialCapitalRequired = 0 and no debt: every ratio reads 0, never NaN
	// or Inf.
	input := MetricsInput{
		Property: models.Property{
			Status:           models.StatusCashflowing,
			AcquisitionPrice: 0,
		},
		NOI:            43000.80,
		AnnualCashFlow: 12661.56,
	}

	result := CalculateInvestmentMetrics(input)

	for name, v := range map[string]float64{
		"CapRate":            result.CapRate,
		"CashOnCashReturn":   result.CashOnCashReturn,
		"EquityMultiple":     result.EquityMultiple,
		"DSCR":               result.DSCR,
		"BreakEvenOccupancy": result.BreakEvenOccupancy,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s = %v, guarded division must return 0", name, v)
		}
	}
	if result.CashOnCashReturn != 0 || result.EquityMultiple != 0 {
		t.Errorf("zero capital: CoC=%v EM=%v, want 0/0", result.CashOnCashReturn, result.EquityMultiple)
	}
}

func TestDSCRAndBreakEven(t *testing.T) {
	input := MetricsInput{
		Property: models.Property{
			Status:                 models.StatusCashflowing,
			AcquisitionPrice:       500000,
			InitialCapitalRequired: 150000,
		},
		NOI:               43000.80,
		AnnualCashFlow:    12661.56,
		AnnualExpenses:    3739.20,
		GrossRentalIncome: 49200,
		AnnualDebtService: 30339.24,
	}

	result := CalculateInvestmentMetrics(input)

	// DSCR = 43000.80 / 30339.24 = 1.4173
	if math.Abs(result.DSCR-43000.80/30339.24) > 1e-9 {
		t.Errorf("DSCR = %v", result.DSCR)
	}
	// breakEven = (3739.20 + 30339.24) / 49200 = 0.6927
	expectedBE := (3739.20 + 30339.24) / 49200
	if math.Abs(result.BreakEvenOccupancy-expectedBE) > 1e-9 {
		t.Errorf("BreakEvenOccupancy = %v, want %v", result.BreakEvenOccupancy, expectedBE)
	}
	// CoC = 12661.56 / 150000 = 0.0844
	if math.Abs(result.CashOnCashReturn-12661.56/150000) > 1e-9 {
		t.Errorf("CashOnCashReturn = %v", result.CashOnCashReturn)
	}
}
