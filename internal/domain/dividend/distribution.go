package dividend

import (
	"fmt"
	"time"

	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/coopfleet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DistributionStatus represents the lifecycle state of a distribution
type DistributionStatus string

const (
	// DistributionStatusComputed - created; can still be voided for recomputation
	DistributionStatusComputed DistributionStatus = "COMPUTED"
	// DistributionStatusFinalized - accepted; immutable apart from payment transitions
	DistributionStatusFinalized DistributionStatus = "FINALIZED"
	// DistributionStatusVoided - superseded; the period key is free again
	DistributionStatusVoided DistributionStatus = "VOIDED"
)

// IsValid returns true for a known status
func (s DistributionStatus) IsValid() bool {
	switch s {
	case DistributionStatusComputed, DistributionStatusFinalized, DistributionStatusVoided:
		return true
	}
	return false
}

// CanFinalize returns true if the distribution can be finalized from this status
func (s DistributionStatus) CanFinalize() bool {
	return s == DistributionStatusComputed
}

// CanVoid returns true if the distribution can be voided from this status
func (s DistributionStatus) CanVoid() bool {
	return s == DistributionStatusComputed
}

// IsTerminal returns true for statuses with no outgoing transitions
func (s DistributionStatus) IsTerminal() bool {
	return s == DistributionStatusFinalized || s == DistributionStatusVoided
}

// Distribution represents one period's dividend distribution aggregate root.
// At most one non-voided distribution may exist per
// (tenant, member type, period start, period end) key.
type Distribution struct {
	shared.TenantAggregateRoot
	MemberType      MemberType         `gorm:"type:varchar(20);not null;index:idx_distribution_period_key,priority:2"`
	PeriodStart     time.Time          `gorm:"not null;index:idx_distribution_period_key,priority:3"`
	PeriodEnd       time.Time          `gorm:"not null;index:idx_distribution_period_key,priority:4"`
	GrossSurplus    valueobject.Money  `gorm:"type:bigint;not null"` // may be negative
	DividendPool    valueobject.Money  `gorm:"type:bigint;not null"`
	DividendRate    decimal.Decimal    `gorm:"type:decimal(5,4);not null"`
	TotalPatronage  int64              `gorm:"not null"`
	EligibleMembers int                `gorm:"not null"`
	Status          DistributionStatus `gorm:"type:varchar(20);not null;default:'COMPUTED';index"`
	DistributedAt   time.Time          `gorm:"not null"`
	FinalizedAt     *time.Time
	VoidedAt        *time.Time
	VoidReason      string           `gorm:"type:varchar(500)"`
	Records         []DividendRecord `gorm:"foreignKey:DistributionID;references:ID"`
}

// TableName returns the table name for GORM
func (Distribution) TableName() string {
	return "distribution_periods"
}

// NewDistribution builds a distribution and its dividend records from a
// period's surplus and allocation. The caller persists the whole aggregate
// in a single transaction; nothing here touches storage.
func NewDistribution(
	tenantID uuid.UUID,
	memberType MemberType,
	period valueobject.Period,
	surplus Surplus,
	allocation Allocation,
) (*Distribution, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenant ID cannot be empty")
	}
	if !memberType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Member type is not valid")
	}
	if allocation.Pool.Amount() != surplus.DividendPool.Amount() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf(
			"Allocation pool %d does not match surplus pool %d",
			allocation.Pool.Amount(), surplus.DividendPool.Amount()))
	}

	d := &Distribution{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		MemberType:          memberType,
		PeriodStart:         period.Start(),
		PeriodEnd:           period.End(),
		GrossSurplus:        surplus.GrossSurplus,
		DividendPool:        surplus.DividendPool,
		DividendRate:        surplus.Rate,
		TotalPatronage:      allocation.TotalPatronage,
		EligibleMembers:     len(allocation.Members),
		Status:              DistributionStatusComputed,
		DistributedAt:       time.Now(),
	}

	records := make([]DividendRecord, 0, len(allocation.Members))
	for _, m := range allocation.Members {
		record, err := newDividendRecord(d, m)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	d.Records = records

	return d, nil
}

// Period returns the distribution's date range
func (d *Distribution) Period() valueobject.Period {
	p, _ := valueobject.NewPeriod(d.PeriodStart, d.PeriodEnd)
	return p
}

// HasEligibleMembers returns false for a zero-patronage distribution
func (d *Distribution) HasEligibleMembers() bool {
	return d.EligibleMembers > 0
}

// Finalize accepts the distribution. One-way: a finalized distribution can
// never be voided or recomputed.
func (d *Distribution) Finalize() error {
	if !d.Status.CanFinalize() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot finalize distribution in %s status", d.Status))
	}

	now := time.Now()
	d.Status = DistributionStatusFinalized
	d.FinalizedAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()

	return nil
}

// Void marks the distribution superseded, freeing its period key for
// recomputation. Only permitted before finalization.
func (d *Distribution) Void(reason string) error {
	if !d.Status.CanVoid() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot void distribution in %s status", d.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Void reason is required")
	}

	now := time.Now()
	d.Status = DistributionStatusVoided
	d.VoidedAt = &now
	d.VoidReason = reason
	d.UpdatedAt = now
	d.IncrementVersion()

	return nil
}
