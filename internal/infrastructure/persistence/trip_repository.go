package persistence

import (
	"context"
	"errors"

	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/coopfleet/backend/internal/domain/shared/valueobject"
	"github.com/coopfleet/backend/internal/domain/trip"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTripRepository implements TripRepository using GORM
type GormTripRepository struct {
	db *gorm.DB
}

// NewGormTripRepository creates a new GormTripRepository
func NewGormTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

// Create persists a trip
func (r *GormTripRepository) Create(ctx context.Context, t *trip.Trip) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// FindByIDForTenant finds a trip by ID for a tenant
func (r *GormTripRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trip.Trip, error) {
	var t trip.Trip
	if err := r.db.WithContext(ctx).
		First(&t, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// FindAllForTenant lists trips newest first with pagination
func (r *GormTripRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*trip.Trip, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&trip.Trip{}).
		Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var trips []*trip.Trip
	if err := query.
		Order("scheduled_at DESC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Find(&trips).Error; err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormTripRepository) SaveWithLock(ctx context.Context, t *trip.Trip) error {
	result := r.db.WithContext(ctx).
		Model(t).
		Where("id = ? AND version = ?", t.ID, t.Version-1).
		Updates(t)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// memberCount is the row shape of the patronage aggregation queries
type memberCount struct {
	MemberID uuid.UUID
	Count    int64
}

// CustomerPatronageSource counts completed trips taken per customer member.
// The aggregation runs in the database; only (member, count) pairs come back.
type CustomerPatronageSource struct {
	db *gorm.DB
}

// NewCustomerPatronageSource creates a patronage source for customer members
func NewCustomerPatronageSource(db *gorm.DB) *CustomerPatronageSource {
	return &CustomerPatronageSource{db: db}
}

// AggregatePatronage counts completed trips grouped by customer for the period
func (s *CustomerPatronageSource) AggregatePatronage(ctx context.Context, tenantID uuid.UUID, period valueobject.Period) ([]dividend.MemberPatronage, error) {
	return aggregateTripCounts(ctx, s.db, "customer_id", dividend.MemberTypeCustomer, tenantID, period)
}

// DriverPatronageSource counts completed trips driven per driver member
type DriverPatronageSource struct {
	db *gorm.DB
}

// NewDriverPatronageSource creates a patronage source for driver members
func NewDriverPatronageSource(db *gorm.DB) *DriverPatronageSource {
	return &DriverPatronageSource{db: db}
}

// AggregatePatronage counts completed trips grouped by driver for the period
func (s *DriverPatronageSource) AggregatePatronage(ctx context.Context, tenantID uuid.UUID, period valueobject.Period) ([]dividend.MemberPatronage, error) {
	return aggregateTripCounts(ctx, s.db, "driver_id", dividend.MemberTypeDriver, tenantID, period)
}

func aggregateTripCounts(ctx context.Context, db *gorm.DB, memberColumn string, memberType dividend.MemberType, tenantID uuid.UUID, period valueobject.Period) ([]dividend.MemberPatronage, error) {
	var rows []memberCount
	err := db.WithContext(ctx).
		Model(&trip.Trip{}).
		Select(memberColumn+" AS member_id, COUNT(*) AS count").
		Where("tenant_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
			tenantID, trip.TripStatusCompleted, period.Start(), period.EndExclusive()).
		Group(memberColumn).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	patronage := make([]dividend.MemberPatronage, len(rows))
	for i, row := range rows {
		patronage[i] = dividend.MemberPatronage{
			MemberID:       row.MemberID,
			MemberType:     memberType,
			PatronageValue: row.Count,
		}
	}
	return patronage, nil
}
