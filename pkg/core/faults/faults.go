// Package faults defines the error taxonomy shared by the calculation engine
// and its callers. Soft faults are collected as warnings on results and never
// abort a calculation; hard faults are returned as ordinary errors.
package faults

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindResolution: a required field had no value in any source. The engine
	// substitutes 0 and records this warning (soft).
	KindResolution Kind = "RESOLUTION_ERROR"
	// KindParse: a deal-model blob failed to parse and was treated as an
	// absent bundle (soft).
	KindParse Kind = "PARSE_ERROR"
	// KindNotFound: the referenced property does not exist (hard).
	KindNotFound Kind = "NOT_FOUND"
	// KindConsistency: a freshly computed value diverges from a persisted
	// legacy value beyond tolerance (soft, advisory).
	KindConsistency Kind = "CONSISTENCY_WARNING"
	// KindDegraded: an unexpected failure was isolated and an all-zero result
	// substituted (soft).
	KindDegraded Kind = "DEGRADED_RESULT"
)

// Fault carries one taxonomy entry. It deliberately has no timestamp:
// identical inputs must produce bit-identical results, so anything
// time-dependent belongs to the logging layer, not here.
type Fault struct {
	Kind     Kind   `json:"kind"`
	Category string `json:"category,omitempty"` // data category, when relevant
	Field    string `json:"field,omitempty"`
	Ref      string `json:"ref,omitempty"` // property id or similar
	Message  string `json:"message"`
}

func (f Fault) Error() string {
	if f.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", f.Kind, f.Field, f.Message)
	}
	return fmt.Sprintf("[%s] %s", f.Kind, f.Message)
}

// Hard reports whether the fault must propagate as an error instead of being
// recorded as a warning.
func (f Fault) Hard() bool {
	return f.Kind == KindNotFound
}

// NewResolution records that field had no value in any source for the given
// data category and was resolved to 0.
func NewResolution(category, field string) Fault {
	return Fault{
		Kind:     KindResolution,
		Category: category,
		Field:    field,
		Message:  "no value in any source, resolved to 0",
	}
}

// NewParse records a deal-model payload that could not be parsed.
func NewParse(category string, err error) Fault {
	return Fault{
		Kind:     KindParse,
		Category: category,
		Message:  fmt.Sprintf("unparseable payload treated as absent: %v", err),
	}
}

// NewNotFound builds the hard fault for a missing property.
func NewNotFound(propertyID string) Fault {
	return Fault{
		Kind:    KindNotFound,
		Ref:     propertyID,
		Message: fmt.Sprintf("property %s not found", propertyID),
	}
}

// NewConsistency records a divergence between a fresh value and a persisted
// legacy value beyond the configured tolerance.
func NewConsistency(metric string, fresh, legacy float64) Fault {
	return Fault{
		Kind:    KindConsistency,
		Field:   metric,
		Message: fmt.Sprintf("computed %.4f diverges from persisted legacy %.4f", fresh, legacy),
	}
}

// NewDegraded records that a property's computation failed and an all-zero
// result was substituted.
func NewDegraded(propertyID string, cause string) Fault {
	return Fault{
		Kind:    KindDegraded,
		Ref:     propertyID,
		Message: fmt.Sprintf("computation failed, all-zero financials substituted: %s", cause),
	}
}

// IsNotFound reports whether err is (or wraps) a NOT_FOUND fault.
func IsNotFound(err error) bool {
	var f Fault
	return errors.As(err, &f) && f.Kind == KindNotFound
}
