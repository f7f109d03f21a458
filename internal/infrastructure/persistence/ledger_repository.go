package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/coopfleet/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Create persists a ledger entry
func (r *GormLedgerEntryRepository) Create(ctx context.Context, entry *ledger.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// SumByType sums entry amounts of one type over an inclusive date range
func (r *GormLedgerEntryRepository) SumByType(ctx context.Context, tenantID uuid.UUID, entryType ledger.EntryType, from, to time.Time) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&ledger.LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND entry_type = ? AND booked_on >= ? AND booked_on <= ?",
			tenantID, entryType, from, to).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// GormTenantSettingsRepository implements TenantSettingsRepository using GORM
type GormTenantSettingsRepository struct {
	db *gorm.DB
}

// NewGormTenantSettingsRepository creates a new GormTenantSettingsRepository
func NewGormTenantSettingsRepository(db *gorm.DB) *GormTenantSettingsRepository {
	return &GormTenantSettingsRepository{db: db}
}

// Save creates or updates tenant settings
func (r *GormTenantSettingsRepository) Save(ctx context.Context, settings *ledger.TenantSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

// FindByTenant finds settings for a tenant; (nil, nil) when absent
func (r *GormTenantSettingsRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*ledger.TenantSettings, error) {
	var settings ledger.TenantSettings
	if err := r.db.WithContext(ctx).
		First(&settings, "tenant_id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}
