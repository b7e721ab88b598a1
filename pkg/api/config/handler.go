// Package config exposes the effective engine configuration to the
// dashboard: the market-standard default assumptions (the lowest-priority
// source tier) and the drift tolerances in force. Read-only; defaults change
// by deployment, never at runtime.
package config

import (
	"encoding/json"
	"net/http"

	"property_dashboard/pkg/core/validate"
	"property_dashboard/pkg/models"
)

type Response struct {
	DefaultAssumptions models.Assumptions  `json:"default_assumptions"`
	Tolerances         validate.Tolerances `json:"tolerances"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Defaults   models.Assumptions
	Tolerances validate.Tolerances
}

// NewHandler creates a new config handler
func NewHandler(defaults models.Assumptions, tol validate.Tolerances) *Handler {
	return &Handler{
		Defaults:   defaults,
		Tolerances: tol,
	}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{
		DefaultAssumptions: h.Defaults,
		Tolerances:         h.Tolerances,
	})
}
