// Package dealmodel parses the underwriting blob attached to a property at
// acquisition time. Blobs are parsed exactly once, at the boundary; whatever
// cannot be parsed degrades to an absent deal model and a soft warning, never
// an error into the calculation engine.
//
// Two schema generations exist:
//   - v2: schema_version >= 2, canonical snake_case sections, strictly typed.
//   - v1: everything older — loosely keyed, assumptions often flattened into
//     the root object, sections under legacy names ("units", "financing").
package dealmodel

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"

	"property_dashboard/pkg/core/faults"
	"property_dashboard/pkg/core/ingest"
	"property_dashboard/pkg/models"
)

// Legacy section names per category, in lookup order.
var (
	rentRollSections    = []string{"rent_roll", "rentRoll", "units", "rentroll"}
	loanSections        = []string{"loans", "financing", "mortgages"}
	loanSingleSections  = []string{"loan", "mortgage"}
	expenseSections     = []string{"expenses", "operating_expenses", "operatingExpenses", "opex"}
	otherIncomeSections = []string{"other_income", "otherIncome", "ancillary_income"}
	unitTypeSections    = []string{"unit_types", "unitTypes", "unit_mix", "unitMix"}
	versionKeys         = []string{"schema_version", "schemaVersion", "version"}
)

// Parse turns a raw deal-model payload into its canonical form. An empty or
// contentless payload yields (nil, nil). A payload no strategy can parse, or
// a v2 payload failing validation, yields nil plus a PARSE_ERROR warning.
func Parse(raw []byte) (*models.DealModel, []faults.Fault) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	loose, normalized, err := lenientUnmarshal(trimmed)
	if err != nil {
		return nil, []faults.Fault{faults.NewParse("deal_model", err)}
	}

	version := schemaVersion(loose)
	if version >= 2 {
		dm, err := parseV2(normalized, version)
		if err != nil {
			return nil, []faults.Fault{faults.NewParse("deal_model", err)}
		}
		if isEmpty(dm) {
			return nil, nil
		}
		return dm, nil
	}

	dm := parseV1(loose)
	if isEmpty(dm) {
		return nil, nil
	}
	return dm, nil
}

// lenientUnmarshal tries the parsing strategies in order of strictness and
// returns both the loose map and the normalized JSON text that produced it.
func lenientUnmarshal(input string) (map[string]interface{}, string, error) {
	var loose map[string]interface{}

	// Try 1: standard JSON
	if err := json.Unmarshal([]byte(input), &loose); err == nil {
		return loose, input, nil
	}

	// Try 2: JSON repair (trailing commas, single quotes, unclosed braces)
	if repaired, err := jsonrepair.RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), &loose); err == nil {
			return loose, repaired, nil
		}
	}

	// Try 3: Hjson (comments, unquoted keys — the oldest blobs have both)
	if err := hjson.Unmarshal([]byte(input), &loose); err == nil {
		normalized, err := json.Marshal(loose)
		if err == nil {
			return loose, string(normalized), nil
		}
	}

	return nil, "", fmt.Errorf("all parsing strategies failed")
}

func schemaVersion(loose map[string]interface{}) int {
	for _, k := range versionKeys {
		if v, ok := loose[k]; ok {
			if f, ok := ingest.Number(v); ok {
				return int(f)
			}
		}
	}
	return 1
}

// parseV2 performs the strict typed parse and validation the versioned
// schema promises.
func parseV2(normalized string, version int) (*models.DealModel, error) {
	var dm models.DealModel
	if err := json.Unmarshal([]byte(normalized), &dm); err != nil {
		return nil, fmt.Errorf("schema v%d typed parse failed: %v", version, err)
	}
	dm.SchemaVersion = version
	if err := validate(&dm); err != nil {
		return nil, err
	}
	return &dm, nil
}

// validate enforces the v2 sanity bounds. Rates are decimal fractions;
// anything outside [0, 1] means the writer used whole percentages and the
// blob cannot be trusted.
func validate(dm *models.DealModel) error {
	if dm.Assumptions != nil {
		rates := map[string]*float64{
			"vacancy_rate":        dm.Assumptions.VacancyRate,
			"management_fee_rate": dm.Assumptions.ManagementFeeRate,
			"exit_cap_rate":       dm.Assumptions.ExitCapRate,
			"market_cap_rate":     dm.Assumptions.MarketCapRate,
			"expense_ratio":       dm.Assumptions.ExpenseRatio,
			"loan_percentage":     dm.Assumptions.LoanPercentage,
			"interest_rate":       dm.Assumptions.InterestRate,
		}
		for name, v := range rates {
			if v != nil && (*v < 0 || *v > 1) {
				return fmt.Errorf("assumption %s = %v is not a decimal fraction", name, *v)
			}
		}
	}
	for i, ln := range dm.Loans {
		if ln.InterestRate < 0 || ln.InterestRate > 1 {
			return fmt.Errorf("loan %d interest_rate = %v is not a decimal fraction", i, ln.InterestRate)
		}
	}
	return nil
}

// parseV1 maps the legacy loose blob through the ingest synonym tables.
// Assumptions may live under an "assumptions" object or flattened into the
// root; both are harvested, with the nested object winning per field.
func parseV1(loose map[string]interface{}) *models.DealModel {
	dm := &models.DealModel{SchemaVersion: 1}

	if raws := section(loose, rentRollSections); raws != nil {
		dm.RentRoll = ingest.RentRoll(raws)
	}
	if raws := section(loose, loanSections); raws != nil {
		dm.Loans = ingest.Loans(raws)
	} else {
		// A single loan object was a common legacy shape.
		for _, k := range loanSingleSections {
			if m, ok := loose[k].(map[string]interface{}); ok {
				dm.Loans = []models.Loan{ingest.Loan(m)}
				break
			}
		}
	}
	if raws := section(loose, expenseSections); raws != nil {
		dm.Expenses = ingest.ExpenseItems(raws)
	}
	if raws := section(loose, otherIncomeSections); raws != nil {
		dm.OtherIncome = ingest.OtherIncomeItems(raws)
	}
	if raws := section(loose, unitTypeSections); raws != nil {
		dm.UnitTypes = ingest.UnitTypeRows(raws)
	}

	flat := ingest.Assumptions(loose)
	nested := models.Assumptions{}
	if m, ok := loose["assumptions"].(map[string]interface{}); ok {
		nested = ingest.Assumptions(m)
	}
	merged := mergeAssumptions(nested, flat)
	if merged != (models.Assumptions{}) {
		dm.Assumptions = &merged
	}

	return dm
}

func section(loose map[string]interface{}, keys []string) []interface{} {
	for _, k := range keys {
		if arr, ok := loose[k].([]interface{}); ok {
			return arr
		}
	}
	return nil
}

// mergeAssumptions fills nil fields of a from b.
func mergeAssumptions(a, b models.Assumptions) models.Assumptions {
	if a.VacancyRate == nil {
		a.VacancyRate = b.VacancyRate
	}
	if a.ManagementFeeRate == nil {
		a.ManagementFeeRate = b.ManagementFeeRate
	}
	if a.ExitCapRate == nil {
		a.ExitCapRate = b.ExitCapRate
	}
	if a.MarketCapRate == nil {
		a.MarketCapRate = b.MarketCapRate
	}
	if a.ExpenseRatio == nil {
		a.ExpenseRatio = b.ExpenseRatio
	}
	if a.LoanPercentage == nil {
		a.LoanPercentage = b.LoanPercentage
	}
	if a.InterestRate == nil {
		a.InterestRate = b.InterestRate
	}
	if a.LoanTermYears == nil {
		a.LoanTermYears = b.LoanTermYears
	}
	if a.AppreciationFactor == nil {
		a.AppreciationFactor = b.AppreciationFactor
	}
	return a
}

func isEmpty(dm *models.DealModel) bool {
	return dm.Assumptions == nil &&
		len(dm.RentRoll) == 0 &&
		len(dm.Expenses) == 0 &&
		len(dm.OtherIncome) == 0 &&
		len(dm.Loans) == 0 &&
		len(dm.UnitTypes) == 0
}
