package financials

import (
	"net/http"

	"go.uber.org/zap"

	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/core/faults"
	"property_dashboard/pkg/core/report"
	"property_dashboard/pkg/core/source"
)

// writeReport sends a markdown report, converting to HTML when requested.
func writeReport(w http.ResponseWriter, r *http.Request, md string) {
	if r.URL.Query().Get("format") == "html" {
		html, err := report.RenderHTML(md)
		if err != nil {
			deps.Logger.Error("report render failed", zap.Error(err))
			http.Error(w, "failed to render report", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

// HandlePropertyReport renders one property's financials summary.
// GET /api/reports/property?id=X[&format=html]
func HandlePropertyReport(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if deps.Properties == nil {
		http.Error(w, "property store not configured", http.StatusServiceUnavailable)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	p, err := deps.Properties.GetProperty(ctx, id)
	if err != nil {
		if faults.IsNotFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		deps.Logger.Error("property load failed", zap.String("property_id", id), zap.Error(err))
		http.Error(w, "failed to load property", http.StatusInternalServerError)
		return
	}

	bundles, soft, err := deps.Properties.LoadBundles(ctx, id)
	if err != nil {
		deps.Logger.Error("bundle load failed", zap.String("property_id", id), zap.Error(err))
		http.Error(w, "failed to load property sources", http.StatusInternalServerError)
		return
	}

	fin := deps.Engine.Calculate(ctx, *p, bundles)
	if len(soft) > 0 {
		fin.Warnings = append(soft, fin.Warnings...)
	}

	writeReport(w, r, report.PropertyReport(*p, fin))
}

// HandlePortfolioReport renders the portfolio rollup summary.
// GET /api/reports/portfolio[?format=html]
func HandlePortfolioReport(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if deps.Properties == nil {
		http.Error(w, "property store not configured", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	properties, err := deps.Properties.ListProperties(ctx)
	if err != nil {
		deps.Logger.Error("property list failed", zap.Error(err))
		http.Error(w, "failed to list properties", http.StatusInternalServerError)
		return
	}

	inputs := make([]calc.PropertyInput, 0, len(properties))
	for _, p := range properties {
		bundles, _, err := deps.Properties.LoadBundles(ctx, p.ID)
		if err != nil {
			deps.Logger.Warn("bundle load failed, computing from empty sources",
				zap.String("property_id", p.ID), zap.Error(err))
			bundles = source.BundleSet{}
		}
		inputs = append(inputs, calc.PropertyInput{Property: p, Bundles: bundles})
	}

	writeReport(w, r, report.PortfolioReport(deps.Engine.CalculatePortfolio(ctx, inputs)))
}
