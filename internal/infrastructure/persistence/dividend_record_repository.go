package persistence

import (
	"context"
	"errors"

	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDividendRecordRepository implements DividendRecordRepository using GORM
type GormDividendRecordRepository struct {
	db *gorm.DB
}

// NewGormDividendRecordRepository creates a new GormDividendRecordRepository
func NewGormDividendRecordRepository(db *gorm.DB) *GormDividendRecordRepository {
	return &GormDividendRecordRepository{db: db}
}

// FindByIDForTenant finds a dividend record by ID for a tenant
func (r *GormDividendRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*dividend.DividendRecord, error) {
	var record dividend.DividendRecord
	if err := r.db.WithContext(ctx).
		First(&record, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindByDistribution lists a distribution's records ordered by member ID
func (r *GormDividendRecordRepository) FindByDistribution(ctx context.Context, tenantID, distributionID uuid.UUID) ([]*dividend.DividendRecord, error) {
	var records []*dividend.DividendRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND distribution_id = ?", tenantID, distributionID).
		Order("member_id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByMember lists a member's non-superseded records of one member type,
// newest period first
func (r *GormDividendRecordRepository) FindByMember(ctx context.Context, tenantID uuid.UUID, memberType dividend.MemberType, memberID uuid.UUID, limit int) ([]*dividend.DividendRecord, error) {
	var records []*dividend.DividendRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND member_type = ? AND member_id = ? AND superseded = ?",
			tenantID, memberType, memberID, false).
		Order("period_start DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormDividendRecordRepository) SaveWithLock(ctx context.Context, record *dividend.DividendRecord) error {
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(record)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
