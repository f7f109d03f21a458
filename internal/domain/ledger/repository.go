package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LedgerEntryRepository persists ledger entries. SumByType aggregates in the
// database rather than loading rows; both date bounds are inclusive.
type LedgerEntryRepository interface {
	Create(ctx context.Context, entry *LedgerEntry) error
	SumByType(ctx context.Context, tenantID uuid.UUID, entryType EntryType, from, to time.Time) (int64, error)
}

// TenantSettingsRepository persists per-tenant settings.
// FindByTenant returns (nil, nil) when the tenant has no settings row.
type TenantSettingsRepository interface {
	Save(ctx context.Context, settings *TenantSettings) error
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*TenantSettings, error)
}
