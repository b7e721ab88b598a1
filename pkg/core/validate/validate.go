// Package validate provides reusable validation utilities for computed
// financials. These functions can be called from tests, API handlers, or
// batch tools to compare a fresh result against the numbers the legacy
// dashboard still has persisted, and to verify a result's internal
// arithmetic linkage. Drift never blocks a result; it is surfaced as
// advisory consistency warnings for operator review.
package validate

import (
	"fmt"
	"math"

	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/core/faults"
)

// =============================================================================
// LEGACY DRIFT CHECKS
// =============================================================================

// Tolerances configures how far a fresh value may drift from its persisted
// legacy counterpart before a warning fires. Relative thresholds are in
// percent of the legacy value; point thresholds are in percentage points of
// the underlying fraction. A threshold <= 0 disables that check.
type Tolerances struct {
	CashFlowPct      float64 `yaml:"cash_flow_pct" json:"cash_flow_pct"`
	NOIPct           float64 `yaml:"noi_pct" json:"noi_pct"`
	CashOnCashPoints float64 `yaml:"cash_on_cash_points" json:"cash_on_cash_points"`
	CapRatePoints    float64 `yaml:"cap_rate_points" json:"cap_rate_points"`
}

// DefaultTolerances returns the operational thresholds: 5% drift on cash
// flow and NOI, one percentage point on cash-on-cash and cap rate.
func DefaultTolerances() Tolerances {
	return Tolerances{
		CashFlowPct:      5.0,
		NOIPct:           5.0,
		CashOnCashPoints: 1.0,
		CapRatePoints:    1.0,
	}
}

// LegacyMetrics holds whatever the old dashboard persisted for a property.
// Absent fields skip their check entirely.
type LegacyMetrics struct {
	MonthlyCashFlow  *float64 `json:"monthly_cash_flow,omitempty"`
	AnnualCashFlow   *float64 `json:"annual_cash_flow,omitempty"`
	NOI              *float64 `json:"noi,omitempty"`
	CapRate          *float64 `json:"cap_rate,omitempty"`
	CashOnCashReturn *float64 `json:"cash_on_cash_return,omitempty"`
}

// DriftCheck records one fresh-versus-legacy comparison.
type DriftCheck struct {
	Metric     string  `json:"metric"`
	Fresh      float64 `json:"fresh"`
	Legacy     float64 `json:"legacy"`
	Difference float64 `json:"difference"`
	DriftPct   float64 `json:"drift_pct"` // relative to legacy, as percent
	Threshold  float64 `json:"threshold"`
	Exceeded   bool    `json:"exceeded"`
	Reason     string  `json:"reason,omitempty"`
}

// RelativeDriftPct returns |fresh - legacy| / |legacy| * 100.
func RelativeDriftPct(fresh, legacy float64) float64 {
	if legacy == 0 {
		if fresh == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(fresh-legacy) / math.Abs(legacy) * 100
}

// CheckRelativeDrift compares a dollar-denominated metric against its legacy
// value using a percent-of-legacy threshold.
func CheckRelativeDrift(metric string, fresh, legacy, thresholdPct float64) *DriftCheck {
	check := &DriftCheck{
		Metric:     metric,
		Fresh:      fresh,
		Legacy:     legacy,
		Difference: fresh - legacy,
		DriftPct:   RelativeDriftPct(fresh, legacy),
		Threshold:  thresholdPct,
	}
	if thresholdPct <= 0 {
		return check
	}

	// A legacy zero against a fresh non-zero has no defined relative drift;
	// flag it outright, the legacy row is stale or was never computed.
	if legacy == 0 && fresh != 0 {
		check.Exceeded = true
		check.Reason = "legacy value is zero while fresh value is not"
		return check
	}
	if check.DriftPct > thresholdPct {
		check.Exceeded = true
		check.Reason = fmt.Sprintf("drift of %.1f%% exceeds threshold of %.1f%%", check.DriftPct, thresholdPct)
	}
	return check
}

// CheckPointsDrift compares a fraction-typed metric (stored as 0.0858, not
// 8.58) against its legacy value using a percentage-point threshold.
func CheckPointsDrift(metric string, fresh, legacy, thresholdPoints float64) *DriftCheck {
	points := math.Abs(fresh-legacy) * 100
	check := &DriftCheck{
		Metric:     metric,
		Fresh:      fresh,
		Legacy:     legacy,
		Difference: fresh - legacy,
		DriftPct:   RelativeDriftPct(fresh, legacy),
		Threshold:  thresholdPoints,
	}
	if thresholdPoints <= 0 {
		return check
	}
	if points > thresholdPoints {
		check.Exceeded = true
		check.Reason = fmt.Sprintf("drift of %.2f points exceeds threshold of %.2f points", points, thresholdPoints)
	}
	return check
}

// DriftReport collects all drift checks for one property.
type DriftReport struct {
	PropertyID   string        `json:"property_id"`
	Checks       []*DriftCheck `json:"checks"`
	AllWithin    bool          `json:"all_within"`
	FailedChecks []string      `json:"failed_checks,omitempty"`
}

// Faults converts the exceeded checks into advisory consistency warnings.
func (r *DriftReport) Faults() []faults.Fault {
	var out []faults.Fault
	for _, c := range r.Checks {
		if c.Exceeded {
			out = append(out, faults.NewConsistency(c.Metric, c.Fresh, c.Legacy))
		}
	}
	return out
}

// CheckAgainstLegacy compares a freshly computed Financials against the
// persisted legacy metrics. Only fields present in legacy are compared.
func CheckAgainstLegacy(propertyID string, fresh calc.Financials, legacy LegacyMetrics, tol Tolerances) *DriftReport {
	report := &DriftReport{
		PropertyID: propertyID,
		AllWithin:  true,
	}

	add := func(c *DriftCheck) {
		report.Checks = append(report.Checks, c)
		if c.Exceeded {
			report.AllWithin = false
			report.FailedChecks = append(report.FailedChecks, c.Metric)
		}
	}

	if legacy.MonthlyCashFlow != nil {
		add(CheckRelativeDrift("monthly_cash_flow", fresh.MonthlyCashFlow, *legacy.MonthlyCashFlow, tol.CashFlowPct))
	}
	if legacy.AnnualCashFlow != nil {
		add(CheckRelativeDrift("annual_cash_flow", fresh.AnnualCashFlow, *legacy.AnnualCashFlow, tol.CashFlowPct))
	}
	if legacy.NOI != nil {
		add(CheckRelativeDrift("noi", fresh.NOI, *legacy.NOI, tol.NOIPct))
	}
	if legacy.CapRate != nil {
		add(CheckPointsDrift("cap_rate", fresh.CapRate, *legacy.CapRate, tol.CapRatePoints))
	}
	if legacy.CashOnCashReturn != nil {
		add(CheckPointsDrift("cash_on_cash_return", fresh.CashOnCashReturn, *legacy.CashOnCashReturn, tol.CashOnCashPoints))
	}

	return report
}
