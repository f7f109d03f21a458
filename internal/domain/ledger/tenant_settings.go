package ledger

import (
	"time"

	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantSettings holds per-tenant distribution configuration. One row per
// tenant; LedgerCompleteThrough advances as books are closed and gates
// which periods may be computed.
type TenantSettings struct {
	shared.BaseAggregateRoot
	TenantID              uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	DividendRate          decimal.Decimal `gorm:"type:decimal(5,4);not null"`
	LedgerCompleteThrough time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TenantSettings) TableName() string {
	return "tenant_settings"
}

// NewTenantSettings creates settings for a tenant
func NewTenantSettings(tenantID uuid.UUID, rate decimal.Decimal, completeThrough time.Time) (*TenantSettings, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenant ID cannot be empty")
	}
	s := &TenantSettings{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
	}
	if err := s.SetDividendRate(rate); err != nil {
		return nil, err
	}
	s.LedgerCompleteThrough = completeThrough
	return s, nil
}

// SetDividendRate updates the rate, enforcing the [0,1] range
func (s *TenantSettings) SetDividendRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_INPUT",
			"Dividend rate must be between 0 and 1, got "+rate.String())
	}
	s.DividendRate = rate
	s.UpdatedAt = time.Now()
	return nil
}

// AdvanceLedgerCompleteThrough moves the bookkeeping cutoff forward.
// It never moves backwards; closed books stay closed.
func (s *TenantSettings) AdvanceLedgerCompleteThrough(date time.Time) error {
	if date.Before(s.LedgerCompleteThrough) {
		return shared.NewDomainError("INVALID_INPUT",
			"Ledger cutoff cannot move backwards")
	}
	s.LedgerCompleteThrough = date
	s.UpdatedAt = time.Now()
	return nil
}
