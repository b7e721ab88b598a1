// Package financials exposes the calculation engine over HTTP: per-property
// calculation, portfolio rollup, override editing, source uploads, and the
// drift review queue.
package financials

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/core/faults"
	"property_dashboard/pkg/core/overrides"
	"property_dashboard/pkg/core/source"
	"property_dashboard/pkg/core/validate"
	"property_dashboard/pkg/models"
)

// PropertySource loads property records and their candidate bundles.
// *store.PropertyRepo satisfies it; tests substitute fixtures.
type PropertySource interface {
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	ListProperties(ctx context.Context) ([]models.Property, error)
	LoadBundles(ctx context.Context, propertyID string) (source.BundleSet, []faults.Fault, error)
}

// SnapshotStore persists computed results and serves the legacy baseline.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, fin calc.Financials) (string, error)
	LegacyMetrics(ctx context.Context, propertyID string) (*validate.LegacyMetrics, error)
}

// PayloadStore accepts uploaded source documents.
type PayloadStore interface {
	Save(ctx context.Context, propertyID, category, src string, payload []byte) error
}

// ReviewStore is the drift review queue.
type ReviewStore interface {
	SaveReport(ctx context.Context, report *validate.DriftReport) (int64, error)
	OpenReports(ctx context.Context) ([]validate.DriftReport, error)
	Resolve(ctx context.Context, propertyID string) error
}

// Deps wires the handler package. Engine is required; every store is
// optional and its endpoints answer 503 when absent, so the API degrades
// cleanly in demo mode.
type Deps struct {
	Engine     *calc.Engine
	Properties PropertySource
	Snapshots  SnapshotStore
	Payloads   PayloadStore
	Reviews    ReviewStore
	Overrides  overrides.Store
	Tolerances validate.Tolerances
	Logger     *zap.Logger
}

var deps Deps

// InitHandler installs the handler dependencies.
func InitHandler(d Deps) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	deps = d
}

// cors writes the CORS headers and answers preflight. Returns true when the
// request was a handled OPTIONS preflight.
func cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// CalculateRequest selects a stored property by id, or carries an inline
// property plus bundles for ad-hoc what-if calculations.
type CalculateRequest struct {
	PropertyID string            `json:"property_id,omitempty"`
	Property   *models.Property  `json:"property,omitempty"`
	Bundles    *source.BundleSet `json:"bundles,omitempty"`

	CheckConsistency bool `json:"check_consistency,omitempty"`
	Persist          bool `json:"persist,omitempty"`
}

// HandleCalculate computes one property's financials.
// POST /api/financials/calculate[?shape=legacy]
func HandleCalculate(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	log := deps.Logger.With(zap.String("request_id", uuid.NewString()))

	var property models.Property
	var bundles source.BundleSet
	var soft []faults.Fault

	switch {
	case req.PropertyID != "":
		if deps.Properties == nil {
			http.Error(w, "property store not configured", http.StatusServiceUnavailable)
			return
		}
		p, err := deps.Properties.GetProperty(ctx, req.PropertyID)
		if err != nil {
			if faults.IsNotFound(err) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			log.Error("property load failed", zap.String("property_id", req.PropertyID), zap.Error(err))
			http.Error(w, "failed to load property", http.StatusInternalServerError)
			return
		}
		property = *p

		bundles, soft, err = deps.Properties.LoadBundles(ctx, req.PropertyID)
		if err != nil {
			if faults.IsNotFound(err) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			log.Error("bundle load failed", zap.String("property_id", req.PropertyID), zap.Error(err))
			http.Error(w, "failed to load property sources", http.StatusInternalServerError)
			return
		}

	case req.Property != nil:
		property = *req.Property
		if req.Bundles != nil {
			bundles = *req.Bundles
		}

	default:
		http.Error(w, "property_id or inline property required", http.StatusBadRequest)
		return
	}

	if !property.Status.Valid() {
		http.Error(w, "unknown property status "+string(property.Status), http.StatusBadRequest)
		return
	}

	fin := deps.Engine.Calculate(ctx, property, bundles)
	if len(soft) > 0 {
		fin.Warnings = append(soft, fin.Warnings...)
	}

	if req.CheckConsistency {
		checkConsistency(ctx, log, &fin)
	}

	if req.Persist && deps.Snapshots != nil {
		snapshotID, err := deps.Snapshots.SaveSnapshot(ctx, fin)
		if err != nil {
			log.Warn("snapshot save failed", zap.String("property_id", fin.PropertyID), zap.Error(err))
		} else {
			log.Info("snapshot saved",
				zap.String("property_id", fin.PropertyID),
				zap.String("snapshot_id", snapshotID))
		}
	}

	if r.URL.Query().Get("shape") == "legacy" {
		writeJSON(w, http.StatusOK, calc.ToLegacy(fin))
		return
	}
	writeJSON(w, http.StatusOK, fin)
}

// checkConsistency appends drift warnings against the legacy baseline and
// queues a review when a check exceeds tolerance. Failures here are logged
// and never block the response.
func checkConsistency(ctx context.Context, log *zap.Logger, fin *calc.Financials) {
	if deps.Snapshots == nil {
		return
	}
	legacy, err := deps.Snapshots.LegacyMetrics(ctx, fin.PropertyID)
	if err != nil {
		log.Warn("legacy metrics load failed", zap.String("property_id", fin.PropertyID), zap.Error(err))
		return
	}
	if legacy == nil {
		return
	}

	report := validate.CheckAgainstLegacy(fin.PropertyID, *fin, *legacy, deps.Tolerances)
	fin.Warnings = append(fin.Warnings, report.Faults()...)

	if !report.AllWithin && deps.Reviews != nil {
		if _, err := deps.Reviews.SaveReport(ctx, report); err != nil {
			log.Warn("drift report save failed", zap.String("property_id", fin.PropertyID), zap.Error(err))
		}
	}
}

// PortfolioRequest restricts the rollup to the named properties; an empty
// list means every property.
type PortfolioRequest struct {
	PropertyIDs []string `json:"property_ids,omitempty"`
}

// HandlePortfolio computes the portfolio rollup.
// POST /api/portfolio/metrics
func HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if deps.Properties == nil {
		http.Error(w, "property store not configured", http.StatusServiceUnavailable)
		return
	}

	var req PortfolioRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	ctx := r.Context()
	log := deps.Logger.With(zap.String("request_id", uuid.NewString()))

	var properties []models.Property
	if len(req.PropertyIDs) > 0 {
		for _, id := range req.PropertyIDs {
			p, err := deps.Properties.GetProperty(ctx, id)
			if err != nil {
				if faults.IsNotFound(err) {
					http.Error(w, err.Error(), http.StatusNotFound)
					return
				}
				log.Error("property load failed", zap.String("property_id", id), zap.Error(err))
				http.Error(w, "failed to load property", http.StatusInternalServerError)
				return
			}
			properties = append(properties, *p)
		}
	} else {
		var err error
		properties, err = deps.Properties.ListProperties(ctx)
		if err != nil {
			log.Error("property list failed", zap.Error(err))
			http.Error(w, "failed to list properties", http.StatusInternalServerError)
			return
		}
	}

	inputs := make([]calc.PropertyInput, 0, len(properties))
	for _, p := range properties {
		bundles, _, err := deps.Properties.LoadBundles(ctx, p.ID)
		if err != nil {
			// One property's load failure must not abort the portfolio; it
			// computes from an empty bundle set and carries warnings.
			log.Warn("bundle load failed, computing from empty sources",
				zap.String("property_id", p.ID), zap.Error(err))
			bundles = source.BundleSet{}
		}
		inputs = append(inputs, calc.PropertyInput{Property: p, Bundles: bundles})
	}

	writeJSON(w, http.StatusOK, deps.Engine.CalculatePortfolio(ctx, inputs))
}

// HandleOverrides serves user expense overrides.
// GET /api/overrides?property_id=X, PUT /api/overrides, DELETE /api/overrides?property_id=X
func HandleOverrides(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	if deps.Overrides == nil {
		http.Error(w, "override store not configured", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		propertyID := r.URL.Query().Get("property_id")
		if propertyID == "" {
			http.Error(w, "property_id required", http.StatusBadRequest)
			return
		}
		ov, err := deps.Overrides.Get(ctx, propertyID)
		if err != nil {
			deps.Logger.Error("override read failed", zap.String("property_id", propertyID), zap.Error(err))
			http.Error(w, "failed to read override", http.StatusInternalServerError)
			return
		}
		if ov == nil {
			http.Error(w, "no override for property "+propertyID, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, ov)

	case http.MethodPut, http.MethodPost:
		var ov overrides.Override
		if err := json.NewDecoder(r.Body).Decode(&ov); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if ov.PropertyID == "" {
			http.Error(w, "property_id required", http.StatusBadRequest)
			return
		}
		if err := deps.Overrides.Set(ctx, ov); err != nil {
			deps.Logger.Error("override write failed", zap.String("property_id", ov.PropertyID), zap.Error(err))
			http.Error(w, "failed to store override", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "stored", "property_id": ov.PropertyID})

	case http.MethodDelete:
		propertyID := r.URL.Query().Get("property_id")
		if propertyID == "" {
			http.Error(w, "property_id required", http.StatusBadRequest)
			return
		}
		if err := deps.Overrides.Delete(ctx, propertyID); err != nil {
			deps.Logger.Error("override delete failed", zap.String("property_id", propertyID), zap.Error(err))
			http.Error(w, "failed to delete override", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// UploadRequest carries one raw source document.
type UploadRequest struct {
	PropertyID string          `json:"property_id"`
	Category   string          `json:"category"`
	Source     string          `json:"source"`
	Payload    json.RawMessage `json:"payload"`
}

var validCategories = map[string]bool{
	string(source.CategoryRentRoll):    true,
	string(source.CategoryLoans):       true,
	string(source.CategoryExpenses):    true,
	string(source.CategoryOtherIncome): true,
	string(source.CategoryUnitTypes):   true,
	string(source.CategoryAssumptions): true,
}

// HandleSourceUpload stores an uploaded source payload.
// POST /api/properties/sources
func HandleSourceUpload(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if deps.Payloads == nil {
		http.Error(w, "payload store not configured", http.StatusServiceUnavailable)
		return
	}

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PropertyID == "" || len(req.Payload) == 0 {
		http.Error(w, "property_id and payload required", http.StatusBadRequest)
		return
	}
	if !validCategories[req.Category] {
		http.Error(w, "unknown category "+req.Category, http.StatusBadRequest)
		return
	}
	if req.Source != string(source.SourceLive) && req.Source != string(source.SourceNormalized) {
		http.Error(w, "source must be LIVE or NORMALIZED", http.StatusBadRequest)
		return
	}

	if err := deps.Payloads.Save(r.Context(), req.PropertyID, req.Category, req.Source, req.Payload); err != nil {
		deps.Logger.Error("payload save failed",
			zap.String("property_id", req.PropertyID),
			zap.String("category", req.Category),
			zap.Error(err))
		http.Error(w, "failed to store payload", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored", "property_id": req.PropertyID})
}

// HandleReviews lists the open drift reviews.
// GET /api/reviews
func HandleReviews(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if deps.Reviews == nil {
		http.Error(w, "review store not configured", http.StatusServiceUnavailable)
		return
	}

	reports, err := deps.Reviews.OpenReports(r.Context())
	if err != nil {
		deps.Logger.Error("review list failed", zap.Error(err))
		http.Error(w, "failed to list reviews", http.StatusInternalServerError)
		return
	}
	if reports == nil {
		reports = []validate.DriftReport{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// HandleReviewResolve closes a property's open drift review.
// POST /api/reviews/resolve
func HandleReviewResolve(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if deps.Reviews == nil {
		http.Error(w, "review store not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		PropertyID string `json:"property_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PropertyID == "" {
		http.Error(w, "property_id required", http.StatusBadRequest)
		return
	}

	if err := deps.Reviews.Resolve(r.Context(), req.PropertyID); err != nil {
		deps.Logger.Error("review resolve failed", zap.String("property_id", req.PropertyID), zap.Error(err))
		http.Error(w, "failed to resolve review", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
