// Package ingest maps raw, loosely-keyed records (legacy deal models, old
// JSONB columns, inline API payloads) onto the canonical types in pkg/models.
// It is the only place that knows legacy key spellings; downstream code sees
// canonical fields only.
package ingest

// Key synonym tables, one per canonical field. Order matters: earlier
// spellings win when a record carries several. These cover the spellings the
// legacy dashboard wrote over the years; semantic fallbacks between distinct
// fields (e.g. market rent standing in for current rent) are not ingest's
// job and live in pkg/core/source.
var (
	unitNumberKeys = []string{"unit_number", "unitNumber", "unit", "unit_no", "apt"}
	tenantKeys     = []string{"tenant", "tenant_name", "tenantName", "resident"}

	currentRentKeys  = []string{"current_rent", "currentRent", "rent_current", "actual_rent", "actualRent"}
	marketRentKeys   = []string{"market_rent", "marketRent", "rent_market"}
	proFormaRentKeys = []string{"pro_forma_rent", "proFormaRent", "proforma_rent", "proformaRent"}
	rentKeys         = []string{"rent", "monthly_rent", "monthlyRent"}

	isVacantKeys = []string{"is_vacant", "isVacant", "vacant"}
	occupiedKeys = []string{"occupied", "is_occupied", "isOccupied"}

	leaseStartKeys = []string{"lease_start", "leaseStart", "lease_start_date", "leaseStartDate"}
	leaseEndKeys   = []string{"lease_end", "leaseEnd", "lease_end_date", "leaseEndDate"}

	lenderKeys           = []string{"lender", "lender_name", "lenderName", "bank"}
	originalAmountKeys   = []string{"original_amount", "originalAmount", "loan_amount", "loanAmount"}
	principalKeys        = []string{"principal", "principal_amount", "principalAmount"}
	currentBalanceKeys   = []string{"current_balance", "currentBalance", "balance"}
	principalBalanceKeys = []string{"principal_balance", "principalBalance", "remaining_principal"}
	interestRateKeys     = []string{"interest_rate", "interestRate", "rate", "apr"}
	termYearsKeys        = []string{"term_years", "termYears", "loan_term", "loanTerm", "term"}
	monthlyPaymentKeys   = []string{"monthly_payment", "monthlyPayment", "payment", "piti"}
	isActiveKeys         = []string{"is_active", "isActive", "active"}

	categoryKeys      = []string{"category", "name", "label", "expense_type", "expenseType"}
	monthlyAmountKeys = []string{"monthly_amount", "monthlyAmount", "monthly", "amount_monthly"}
	annualAmountKeys  = []string{"annual_amount", "annualAmount", "annual", "amount_annual", "yearly_amount"}
	percentageKeys    = []string{"percentage", "percent", "pct", "percent_of_egi", "percentOfEgi"}
	amountKeys        = []string{"amount", "value"}

	unitTypeLabelKeys = []string{"label", "unit_type", "unitType", "type"}
	unitCountKeys     = []string{"count", "units", "num_units", "numUnits", "quantity"}
	avgRentKeys       = []string{"avg_rent", "avgRent", "average_rent", "averageRent", "rent"}

	vacancyRateKeys        = []string{"vacancy_rate", "vacancyRate", "vacancy"}
	managementFeeRateKeys  = []string{"management_fee_rate", "managementFeeRate", "management_fee", "managementFee", "mgmt_fee_rate"}
	exitCapRateKeys        = []string{"exit_cap_rate", "exitCapRate", "cap_rate", "capRate"}
	marketCapRateKeys      = []string{"market_cap_rate", "marketCapRate"}
	expenseRatioKeys       = []string{"expense_ratio", "expenseRatio", "operating_expense_ratio"}
	loanPercentageKeys     = []string{"loan_percentage", "loanPercentage", "ltv", "loan_to_value", "loanToValue"}
	assumedRateKeys        = []string{"interest_rate", "interestRate", "assumed_rate"}
	loanTermYearsKeys      = []string{"loan_term_years", "loanTermYears", "loan_term", "loanTerm", "amortization_years"}
	appreciationFactorKeys = []string{"appreciation_factor", "appreciationFactor", "appreciation"}
)
