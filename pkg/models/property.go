package models

import (
	"time"
)

// PropertyStatus is the lifecycle stage of an asset. Transitions are driven
// by the management system (upload events, user edits), never by calculations.
type PropertyStatus string

const (
	StatusUnderContract PropertyStatus = "UNDER_CONTRACT"
	StatusRehabbing     PropertyStatus = "REHABBING"
	StatusCashflowing   PropertyStatus = "CASHFLOWING"
	StatusSold          PropertyStatus = "SOLD"
)

// Valid reports whether s is one of the four known lifecycle stages.
func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusUnderContract, StatusRehabbing, StatusCashflowing, StatusSold:
		return true
	}
	return false
}

// Property is the asset record owned by the management system. Calculations
// read it and never mutate it.
type Property struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Address string         `json:"address"`
	Status  PropertyStatus `json:"status"`

	// Physical
	Apartments int `json:"apartments"` // unit count

	// Acquisition economics
	AcquisitionPrice       float64 `json:"acquisition_price"`
	RehabCosts             float64 `json:"rehab_costs"`
	ClosingCosts           float64 `json:"closing_costs"`
	HoldingCosts           float64 `json:"holding_costs"`
	InitialCapitalRequired float64 `json:"initial_capital_required"`

	// Stored appraisal at purchase time, when one exists.
	ARVAtTimePurchased *float64 `json:"arv_at_time_purchased,omitempty"`

	// Disposition fields, populated only once Status == SOLD.
	SalePrice    *float64 `json:"sale_price,omitempty"`
	TotalProfits *float64 `json:"total_profits,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RentRollRow is one unit's line on a rent roll. The four rent fields are
// synonyms populated unevenly by different sources; resolution order is
// CurrentRent, MarketRent, ProFormaRent, Rent.
type RentRollRow struct {
	UnitNumber string `json:"unit_number"`
	Tenant     string `json:"tenant,omitempty"`

	CurrentRent  *float64 `json:"current_rent,omitempty"`
	MarketRent   *float64 `json:"market_rent,omitempty"`
	ProFormaRent *float64 `json:"pro_forma_rent,omitempty"`
	Rent         *float64 `json:"rent,omitempty"`

	IsVacant   bool       `json:"is_vacant"`
	LeaseStart *time.Time `json:"lease_start,omitempty"`
	LeaseEnd   *time.Time `json:"lease_end,omitempty"`
}

// Loan is a mortgage record. OriginalAmount and Principal are synonyms;
// balance resolution order is CurrentBalance, PrincipalBalance,
// OriginalAmount, Principal.
type Loan struct {
	Lender string `json:"lender,omitempty"`

	OriginalAmount   *float64 `json:"original_amount,omitempty"`
	Principal        *float64 `json:"principal,omitempty"`
	CurrentBalance   *float64 `json:"current_balance,omitempty"`
	PrincipalBalance *float64 `json:"principal_balance,omitempty"`

	InterestRate float64 `json:"interest_rate"` // annual, decimal fraction
	TermYears    float64 `json:"term_years"`

	// Source-provided level payment. Preferred over amortization when > 0.
	MonthlyPayment *float64 `json:"monthly_payment,omitempty"`

	IsActive bool `json:"is_active"`
}

// ExpenseItem is one operating expense: either a fixed amount (monthly or
// annual) or a percentage of EGI. Category is reporting-only and never
// selects a formula.
type ExpenseItem struct {
	Category string `json:"category"`

	MonthlyAmount *float64 `json:"monthly_amount,omitempty"`
	AnnualAmount  *float64 `json:"annual_amount,omitempty"`
	Percentage    *float64 `json:"percentage,omitempty"` // decimal fraction of EGI
}

// OtherIncomeItem is ancillary income (laundry, parking, fees).
type OtherIncomeItem struct {
	Label         string   `json:"label"`
	AnnualAmount  *float64 `json:"annual_amount,omitempty"`
	MonthlyAmount *float64 `json:"monthly_amount,omitempty"`
}

// UnitTypeRow summarizes a unit mix entry; used for the gross-rental-income
// fallback when no rent roll exists. A zero Count defers to
// Property.Apartments.
type UnitTypeRow struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	AvgRent float64 `json:"avg_rent"` // monthly
}

// Assumptions are underwriting rates, all decimal fractions (0.05 = 5%),
// never whole percentages. Fields are optional so that partial sources merge
// per field during resolution.
type Assumptions struct {
	VacancyRate       *float64 `json:"vacancy_rate,omitempty"`
	ManagementFeeRate *float64 `json:"management_fee_rate,omitempty"`
	ExitCapRate       *float64 `json:"exit_cap_rate,omitempty"`
	MarketCapRate     *float64 `json:"market_cap_rate,omitempty"` // synonym for ExitCapRate
	ExpenseRatio      *float64 `json:"expense_ratio,omitempty"`

	LoanPercentage *float64 `json:"loan_percentage,omitempty"`
	InterestRate   *float64 `json:"interest_rate,omitempty"`
	LoanTermYears  *float64 `json:"loan_term_years,omitempty"`

	AppreciationFactor *float64 `json:"appreciation_factor,omitempty"`
}

// DealModel is the canonical form of the underwriting blob attached to a
// property at acquisition. It is parsed exactly once at ingestion; a blob
// that fails to parse yields a nil DealModel, never an error downstream.
type DealModel struct {
	SchemaVersion int `json:"schema_version"`

	Assumptions *Assumptions      `json:"assumptions,omitempty"`
	RentRoll    []RentRollRow     `json:"rent_roll,omitempty"`
	Expenses    []ExpenseItem     `json:"expenses,omitempty"`
	OtherIncome []OtherIncomeItem `json:"other_income,omitempty"`
	Loans       []Loan            `json:"loans,omitempty"`
	UnitTypes   []UnitTypeRow     `json:"unit_types,omitempty"`
}
