package trip

import (
	"context"

	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TripRepository persists trips. Lookups return (nil, nil) when nothing
// matches.
type TripRepository interface {
	Create(ctx context.Context, trip *Trip) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Trip, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Trip, int64, error)
	SaveWithLock(ctx context.Context, trip *Trip) error
}
