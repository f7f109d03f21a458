package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDistributionRepository implements DistributionRepository using GORM
type GormDistributionRepository struct {
	db *gorm.DB
}

// NewGormDistributionRepository creates a new GormDistributionRepository
func NewGormDistributionRepository(db *gorm.DB) *GormDistributionRepository {
	return &GormDistributionRepository{db: db}
}

// Create persists a distribution and its records in one transaction.
// The period key is checked under a row lock inside the transaction, and
// the partial unique index backs it up: a race between two creators makes
// exactly one insert succeed, the other gets DUPLICATE_DISTRIBUTION.
func (r *GormDistributionRepository) Create(ctx context.Context, distribution *dividend.Distribution) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		// SQLite (tests) has no row locks; the unique index still guards
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var existing dividend.Distribution
		err := query.
			Where("tenant_id = ? AND member_type = ? AND period_start = ? AND period_end = ? AND status <> ?",
				distribution.TenantID,
				distribution.MemberType,
				distribution.PeriodStart,
				distribution.PeriodEnd,
				dividend.DistributionStatusVoided).
			First(&existing).Error
		if err == nil {
			return dividend.NewDuplicateDistributionError(
				"A distribution already exists for %s %s..%s",
				distribution.MemberType,
				distribution.PeriodStart.Format("2006-01-02"),
				distribution.PeriodEnd.Format("2006-01-02"))
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(distribution).Error; err != nil {
			if isUniqueViolation(err) {
				return dividend.NewDuplicateDistributionError(
					"A distribution already exists for %s %s..%s",
					distribution.MemberType,
					distribution.PeriodStart.Format("2006-01-02"),
					distribution.PeriodEnd.Format("2006-01-02"))
			}
			return err
		}
		return nil
	})
}

// FindByIDForTenant finds a distribution by ID without loading records
func (r *GormDistributionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*dividend.Distribution, error) {
	var distribution dividend.Distribution
	if err := r.db.WithContext(ctx).
		First(&distribution, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distribution, nil
}

// FindByIDWithRecords finds a distribution with its records ordered by member ID
func (r *GormDistributionRepository) FindByIDWithRecords(ctx context.Context, tenantID, id uuid.UUID) (*dividend.Distribution, error) {
	var distribution dividend.Distribution
	if err := r.db.WithContext(ctx).
		Preload("Records", func(db *gorm.DB) *gorm.DB {
			return db.Order("member_id ASC")
		}).
		First(&distribution, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distribution, nil
}

// FindActiveByPeriodKey finds the non-voided distribution for a period key
func (r *GormDistributionRepository) FindActiveByPeriodKey(ctx context.Context, tenantID uuid.UUID, memberType dividend.MemberType, periodStart, periodEnd time.Time) (*dividend.Distribution, error) {
	var distribution dividend.Distribution
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND member_type = ? AND period_start = ? AND period_end = ? AND status <> ?",
			tenantID, memberType, periodStart, periodEnd, dividend.DistributionStatusVoided).
		First(&distribution).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distribution, nil
}

// FindAllForTenant lists distributions newest first with pagination
func (r *GormDistributionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*dividend.Distribution, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&dividend.Distribution{}).
		Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var distributions []*dividend.Distribution
	if err := query.
		Order("distributed_at DESC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Find(&distributions).Error; err != nil {
		return nil, 0, err
	}
	return distributions, total, nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormDistributionRepository) SaveWithLock(ctx context.Context, distribution *dividend.Distribution) error {
	result := r.db.WithContext(ctx).
		Model(distribution).
		Omit("Records").
		Where("id = ? AND version = ?", distribution.ID, distribution.Version-1).
		Updates(distribution)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Void persists a voided distribution and supersedes its records in one
// transaction. The version check serializes it against a concurrent
// finalize; when that race is lost no record is touched.
func (r *GormDistributionRepository) Void(ctx context.Context, distribution *dividend.Distribution) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(distribution).
			Omit("Records").
			Where("id = ? AND version = ?", distribution.ID, distribution.Version-1).
			Updates(distribution)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return tx.
			Model(&dividend.DividendRecord{}).
			Where("tenant_id = ? AND distribution_id = ?", distribution.TenantID, distribution.ID).
			Updates(map[string]any{
				"superseded": true,
				"updated_at": time.Now(),
				"version":    gorm.Expr("version + 1"),
			}).Error
	})
}
