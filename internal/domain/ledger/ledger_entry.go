package ledger

import (
	"time"

	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/coopfleet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// EntryType classifies a ledger entry for surplus purposes
type EntryType string

const (
	EntryTypeRevenue       EntryType = "REVENUE"
	EntryTypeOperatingCost EntryType = "OPERATING_COST"
)

// IsValid returns true for a known entry type
func (t EntryType) IsValid() bool {
	return t == EntryTypeRevenue || t == EntryTypeOperatingCost
}

// LedgerEntry is one booked revenue or cost line. Entries are append-only;
// corrections are new entries, never edits.
type LedgerEntry struct {
	shared.TenantAggregateRoot
	EntryType   EntryType         `gorm:"type:varchar(20);not null;index"`
	Amount      valueobject.Money `gorm:"type:bigint;not null"`
	Description string            `gorm:"type:varchar(500)"`
	BookedOn    time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates a ledger entry
func NewLedgerEntry(tenantID uuid.UUID, entryType EntryType, amount valueobject.Money, description string, bookedOn time.Time) (*LedgerEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenant ID cannot be empty")
	}
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Entry type is not valid")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Ledger amounts are booked as positive values")
	}
	if bookedOn.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Booking date is required")
	}

	return &LedgerEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EntryType:           entryType,
		Amount:              amount,
		Description:         description,
		BookedOn:            bookedOn,
	}, nil
}
