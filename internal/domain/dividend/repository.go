package dividend

import (
	"context"
	"time"

	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DistributionRepository persists distribution aggregates.
// Implementations return (nil, nil) when a lookup finds nothing.
type DistributionRepository interface {
	// Create persists a distribution and all of its dividend records in one
	// transaction. It fails with DUPLICATE_DISTRIBUTION when a non-voided
	// distribution already holds the same
	// (tenant, member type, period start, period end) key; in that case
	// nothing is written.
	Create(ctx context.Context, distribution *Distribution) error

	// FindByIDForTenant loads a distribution without its records
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Distribution, error)

	// FindByIDWithRecords loads a distribution together with its records,
	// ordered by member ID
	FindByIDWithRecords(ctx context.Context, tenantID, id uuid.UUID) (*Distribution, error)

	// FindActiveByPeriodKey returns the non-voided distribution for a period
	// key, if any
	FindActiveByPeriodKey(ctx context.Context, tenantID uuid.UUID, memberType MemberType, periodStart, periodEnd time.Time) (*Distribution, error)

	// FindAllForTenant lists distributions newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Distribution, int64, error)

	// SaveWithLock updates a distribution guarded by its version; a stale
	// version yields ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, distribution *Distribution) error

	// Void persists an already-voided distribution and flags every one of
	// its records superseded in a single transaction, guarded by the
	// distribution's version. Either both the period mark and the record
	// flags land, or neither does.
	Void(ctx context.Context, distribution *Distribution) error
}

// DividendRecordRepository reads and updates individual dividend records
type DividendRecordRepository interface {
	// FindByIDForTenant loads a record; (nil, nil) when absent
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*DividendRecord, error)

	// FindByDistribution lists a distribution's records ordered by member ID
	FindByDistribution(ctx context.Context, tenantID, distributionID uuid.UUID) ([]*DividendRecord, error)

	// FindByMember lists a member's non-superseded records of one member
	// type ordered by period start descending, at most limit rows
	FindByMember(ctx context.Context, tenantID uuid.UUID, memberType MemberType, memberID uuid.UUID, limit int) ([]*DividendRecord, error)

	// SaveWithLock updates a record guarded by its version; a stale version
	// yields ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, record *DividendRecord) error
}
