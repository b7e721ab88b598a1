// Package overrides persists user-entered expense figures keyed by property.
// An override is the highest-priority expense source the calculation engine
// consults; the engine reads it through the Store interface exactly once per
// calculation and never writes. Writes come from the API layer and follow
// last-writer-wins, ordered by the store's own clock.
package overrides

import (
	"context"
	"time"

	"property_dashboard/pkg/models"
)

// Override is one property's user-entered expense set. Items replace, not
// extend, whatever the other sources report for that property.
type Override struct {
	PropertyID string               `json:"property_id"`
	Items      []models.ExpenseItem `json:"items"`
	UpdatedBy  string               `json:"updated_by,omitempty"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// Event kinds delivered on a Watch channel.
const (
	EventSet     = "set"
	EventDeleted = "deleted"
)

// Event notifies watchers that a property's override changed and its
// financials should be recomputed. It carries no payload: consumers re-read
// through Get so they always see the latest write.
type Event struct {
	PropertyID string `json:"property_id"`
	Kind       string `json:"kind"`
}

// Store is the override persistence contract. Get returns (nil, nil) when the
// property has no override. Watch delivers change events until ctx is
// cancelled; delivery is best-effort and slow consumers may miss events.
type Store interface {
	Get(ctx context.Context, propertyID string) (*Override, error)
	Set(ctx context.Context, ov Override) error
	Delete(ctx context.Context, propertyID string) error
	Watch(ctx context.Context) (<-chan Event, error)
}
