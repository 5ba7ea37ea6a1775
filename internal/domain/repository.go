package domain

import (
	"context"

	"github.com/google/uuid"
)

// LotRepository defines the interface for lot persistence operations
type LotRepository interface {
	// List retrieves lots matching the filter, ordered by purchase date descending
	List(ctx context.Context, filter LotFilter) ([]*Lot, error)

	// GetByID retrieves a lot by its ID
	// Returns an error wrapping ErrNotFound if the lot does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// Create persists a new lot and assigns its ID
	Create(ctx context.Context, lot *Lot) error

	// ApplySale commits a sale plan atomically: the original row is updated
	// and, for a partial sale, the sold row is inserted in the same transaction.
	// Returns an error wrapping ErrConflict if the original row no longer
	// holds plan.ExpectedAmount or is no longer active.
	ApplySale(ctx context.Context, plan *SalePlan) error

	// Delete removes a lot regardless of status
	// Returns an error wrapping ErrNotFound if the lot does not exist
	Delete(ctx context.Context, id uuid.UUID) error
}
