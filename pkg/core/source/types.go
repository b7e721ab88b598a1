// Package source tags data bundles with their origin and resolves, per data
// category, which source a calculation uses.
package source

import (
	"property_dashboard/pkg/models"
)

// SourceCategory defines the origin and priority of a data bundle.
// Priority order: USER_OVERRIDE > LIVE > NORMALIZED > DEAL_MODEL > DEFAULT
type SourceCategory string

const (
	SourceOverride   SourceCategory = "USER_OVERRIDE" // user-edited expenses (highest priority)
	SourceLive       SourceCategory = "LIVE"          // freshly uploaded lease/mortgage data
	SourceNormalized SourceCategory = "NORMALIZED"    // normalized relational store
	SourceDealModel  SourceCategory = "DEAL_MODEL"    // acquisition-time underwriting blob
	SourceDefault    SourceCategory = "DEFAULT"       // market-standard defaults (lowest priority)
)

// Priority returns the numeric rank of a source category; higher wins.
func (c SourceCategory) Priority() int {
	switch c {
	case SourceOverride:
		return 5
	case SourceLive:
		return 4
	case SourceNormalized:
		return 3
	case SourceDealModel:
		return 2
	case SourceDefault:
		return 1
	default:
		return 0
	}
}

// DataCategory names the bundle kinds the resolver distinguishes.
type DataCategory string

const (
	CategoryRentRoll    DataCategory = "RENT_ROLL"
	CategoryLoans       DataCategory = "LOANS"
	CategoryExpenses    DataCategory = "EXPENSES"
	CategoryOtherIncome DataCategory = "OTHER_INCOME"
	CategoryUnitTypes   DataCategory = "UNIT_TYPES"
	CategoryAssumptions DataCategory = "ASSUMPTIONS"
)

// RentRollBundle is one source's view of the rent roll.
type RentRollBundle struct {
	Source SourceCategory       `json:"source"`
	Rows   []models.RentRollRow `json:"rows"`
}

// LoanBundle is one source's view of the property's loans.
type LoanBundle struct {
	Source SourceCategory `json:"source"`
	Loans  []models.Loan  `json:"loans"`
}

// ExpenseBundle is one source's view of operating expenses.
type ExpenseBundle struct {
	Source SourceCategory       `json:"source"`
	Items  []models.ExpenseItem `json:"items"`
}

// OtherIncomeBundle is one source's view of ancillary income.
type OtherIncomeBundle struct {
	Source SourceCategory           `json:"source"`
	Items  []models.OtherIncomeItem `json:"items"`
}

// UnitTypeBundle is one source's view of the unit mix.
type UnitTypeBundle struct {
	Source SourceCategory       `json:"source"`
	Rows   []models.UnitTypeRow `json:"rows"`
}

// AssumptionsBundle is one source's (possibly partial) set of underwriting
// assumptions. Partial bundles are legal; assumption fields resolve
// independently across bundles.
type AssumptionsBundle struct {
	Source SourceCategory     `json:"source"`
	Values models.Assumptions `json:"values"`
}

// SourceTrace records which source won a category for one calculation.
// Traces ride on the Financials output as the audit trail.
type SourceTrace struct {
	Category DataCategory   `json:"category"`
	Source   SourceCategory `json:"source"`
	Detail   string         `json:"detail,omitempty"` // e.g. "2 rows", "field interest_rate"
}

// BundleSet carries every candidate bundle for one property, tagged by
// source, in the order the fetch layer produced them. Ties on priority keep
// input order.
type BundleSet struct {
	RentRolls   []RentRollBundle    `json:"rent_rolls,omitempty"`
	Loans       []LoanBundle        `json:"loans,omitempty"`
	Expenses    []ExpenseBundle     `json:"expenses,omitempty"`
	OtherIncome []OtherIncomeBundle `json:"other_income,omitempty"`
	UnitTypes   []UnitTypeBundle    `json:"unit_types,omitempty"`
	Assumptions []AssumptionsBundle `json:"assumptions,omitempty"`
}

// MergeDealModel appends every non-empty section of a parsed deal model as a
// DEAL_MODEL bundle. A nil deal model contributes nothing.
func (bs *BundleSet) MergeDealModel(dm *models.DealModel) {
	if dm == nil {
		return
	}
	if len(dm.RentRoll) > 0 {
		bs.RentRolls = append(bs.RentRolls, RentRollBundle{Source: SourceDealModel, Rows: dm.RentRoll})
	}
	if len(dm.Loans) > 0 {
		bs.Loans = append(bs.Loans, LoanBundle{Source: SourceDealModel, Loans: dm.Loans})
	}
	if len(dm.Expenses) > 0 {
		bs.Expenses = append(bs.Expenses, ExpenseBundle{Source: SourceDealModel, Items: dm.Expenses})
	}
	if len(dm.OtherIncome) > 0 {
		bs.OtherIncome = append(bs.OtherIncome, OtherIncomeBundle{Source: SourceDealModel, Items: dm.OtherIncome})
	}
	if len(dm.UnitTypes) > 0 {
		bs.UnitTypes = append(bs.UnitTypes, UnitTypeBundle{Source: SourceDealModel, Rows: dm.UnitTypes})
	}
	if dm.Assumptions != nil {
		bs.Assumptions = append(bs.Assumptions, AssumptionsBundle{Source: SourceDealModel, Values: *dm.Assumptions})
	}
}

// MergeDefaults appends the market-standard assumption defaults as the
// lowest-priority assumptions bundle.
func (bs *BundleSet) MergeDefaults(a models.Assumptions) {
	bs.Assumptions = append(bs.Assumptions, AssumptionsBundle{Source: SourceDefault, Values: a})
}
