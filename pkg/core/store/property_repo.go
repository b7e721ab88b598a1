package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"property_dashboard/pkg/core/dealmodel"
	"property_dashboard/pkg/core/faults"
	"property_dashboard/pkg/core/ingest"
	"property_dashboard/pkg/core/source"
	"property_dashboard/pkg/models"
)

// PropertyRepo reads property records and their per-source payloads.
type PropertyRepo struct{}

// NewPropertyRepo creates a new repository instance.
func NewPropertyRepo() *PropertyRepo {
	return &PropertyRepo{}
}

// Schema assumption:
// CREATE TABLE IF NOT EXISTS properties (
//   id TEXT PRIMARY KEY,
//   name TEXT NOT NULL DEFAULT '',
//   address TEXT NOT NULL DEFAULT '',
//   status TEXT NOT NULL,
//   apartments INT NOT NULL DEFAULT 0,
//   acquisition_price DOUBLE PRECISION NOT NULL DEFAULT 0,
//   rehab_costs DOUBLE PRECISION NOT NULL DEFAULT 0,
//   closing_costs DOUBLE PRECISION NOT NULL DEFAULT 0,
//   holding_costs DOUBLE PRECISION NOT NULL DEFAULT 0,
//   initial_capital_required DOUBLE PRECISION NOT NULL DEFAULT 0,
//   arv_at_time_purchased DOUBLE PRECISION,
//   sale_price DOUBLE PRECISION,
//   total_profits DOUBLE PRECISION,
//   deal_model JSONB,
//   created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//   updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
// );
//
// CREATE TABLE IF NOT EXISTS property_sources (
//   property_id TEXT NOT NULL REFERENCES properties(id),
//   category TEXT NOT NULL,  -- RENT_ROLL, LOANS, EXPENSES, OTHER_INCOME, UNIT_TYPES, ASSUMPTIONS
//   source TEXT NOT NULL,    -- LIVE or NORMALIZED
//   payload JSONB NOT NULL,
//   updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//   PRIMARY KEY (property_id, category, source)
// );

const propertyColumns = `
	id, name, address, status, apartments,
	acquisition_price, rehab_costs, closing_costs, holding_costs,
	initial_capital_required, arv_at_time_purchased, sale_price,
	total_profits, created_at, updated_at`

// GetProperty loads one property record. A missing id is the hard NOT_FOUND
// fault, everything else an ordinary wrapped error.
func (r *PropertyRepo) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	var p models.Property
	err := pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Address, &p.Status, &p.Apartments,
		&p.AcquisitionPrice, &p.RehabCosts, &p.ClosingCosts, &p.HoldingCosts,
		&p.InitialCapitalRequired, &p.ARVAtTimePurchased, &p.SalePrice,
		&p.TotalProfits, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, faults.NewNotFound(id)
		}
		return nil, fmt.Errorf("failed to load property %s: %w", id, err)
	}
	return &p, nil
}

// ListProperties returns every property record, ordered by creation time so
// portfolio output is stable across calls.
func (r *PropertyRepo) ListProperties(ctx context.Context) ([]models.Property, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT ` + propertyColumns + ` FROM properties ORDER BY created_at, id`

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var out []models.Property
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Address, &p.Status, &p.Apartments,
			&p.AcquisitionPrice, &p.RehabCosts, &p.ClosingCosts, &p.HoldingCosts,
			&p.InitialCapitalRequired, &p.ARVAtTimePurchased, &p.SalePrice,
			&p.TotalProfits, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return out, nil
}

// LoadBundles assembles every candidate source bundle for one property: the
// LIVE and NORMALIZED payload rows plus the deal-model blob. Payloads that
// fail to parse become soft parse faults and are skipped; the error return
// covers the database only.
func (r *PropertyRepo) LoadBundles(ctx context.Context, propertyID string) (source.BundleSet, []faults.Fault, error) {
	pool := GetPool()
	if pool == nil {
		return source.BundleSet{}, nil, fmt.Errorf("database pool not initialized")
	}

	var bs source.BundleSet
	var soft []faults.Fault

	// 1. Per-source payload rows. LIVE before NORMALIZED so equal-priority
	// ties keep a stable order.
	query := `
		SELECT category, source, payload
		FROM property_sources
		WHERE property_id = $1
		ORDER BY source = 'LIVE' DESC, category`

	rows, err := pool.Query(ctx, query, propertyID)
	if err != nil {
		return bs, nil, fmt.Errorf("failed to load source payloads for %s: %w", propertyID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, src string
		var payload []byte
		if err := rows.Scan(&category, &src, &payload); err != nil {
			return bs, nil, fmt.Errorf("failed to scan source payload: %w", err)
		}
		if fault, ok := appendPayload(&bs, category, src, payload); !ok {
			soft = append(soft, fault)
		}
	}
	if err := rows.Err(); err != nil {
		return bs, nil, fmt.Errorf("failed to load source payloads for %s: %w", propertyID, err)
	}

	// 2. Deal-model blob
	var blob []byte
	err = pool.QueryRow(ctx, `SELECT deal_model FROM properties WHERE id = $1`, propertyID).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bs, soft, faults.NewNotFound(propertyID)
		}
		return bs, soft, fmt.Errorf("failed to load deal model for %s: %w", propertyID, err)
	}
	dm, parseFaults := dealmodel.Parse(blob)
	soft = append(soft, parseFaults...)
	bs.MergeDealModel(dm)

	return bs, soft, nil
}

func sourceCategoryOf(src string) source.SourceCategory {
	if src == string(source.SourceNormalized) {
		return source.SourceNormalized
	}
	return source.SourceLive
}

// appendPayload decodes one payload row into its bundle slot. A payload that
// does not decode yields (parse fault, false).
func appendPayload(bs *source.BundleSet, category, src string, payload []byte) (faults.Fault, bool) {
	sc := sourceCategoryOf(src)

	fail := func(err error) (faults.Fault, bool) {
		return faults.NewParse(category, err), false
	}

	switch source.DataCategory(category) {
	case source.CategoryAssumptions:
		var raw map[string]interface{}
		if err := json.Unmarshal(payload, &raw); err != nil {
			return fail(err)
		}
		bs.Assumptions = append(bs.Assumptions, source.AssumptionsBundle{Source: sc, Values: ingest.Assumptions(raw)})
	case source.CategoryRentRoll:
		var raws []interface{}
		if err := json.Unmarshal(payload, &raws); err != nil {
			return fail(err)
		}
		bs.RentRolls = append(bs.RentRolls, source.RentRollBundle{Source: sc, Rows: ingest.RentRoll(raws)})
	case source.CategoryLoans:
		var raws []interface{}
		if err := json.Unmarshal(payload, &raws); err != nil {
			return fail(err)
		}
		bs.Loans = append(bs.Loans, source.LoanBundle{Source: sc, Loans: ingest.Loans(raws)})
	case source.CategoryExpenses:
		var raws []interface{}
		if err := json.Unmarshal(payload, &raws); err != nil {
			return fail(err)
		}
		bs.Expenses = append(bs.Expenses, source.ExpenseBundle{Source: sc, Items: ingest.ExpenseItems(raws)})
	case source.CategoryOtherIncome:
		var raws []interface{}
		if err := json.Unmarshal(payload, &raws); err != nil {
			return fail(err)
		}
		bs.OtherIncome = append(bs.OtherIncome, source.OtherIncomeBundle{Source: sc, Items: ingest.OtherIncomeItems(raws)})
	case source.CategoryUnitTypes:
		var raws []interface{}
		if err := json.Unmarshal(payload, &raws); err != nil {
			return fail(err)
		}
		bs.UnitTypes = append(bs.UnitTypes, source.UnitTypeBundle{Source: sc, Rows: ingest.UnitTypeRows(raws)})
	default:
		return fail(fmt.Errorf("unknown data category %q", category))
	}
	return faults.Fault{}, true
}
