package trip

import (
	"time"

	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/coopfleet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TripStatus represents the lifecycle state of a trip
type TripStatus string

const (
	TripStatusScheduled TripStatus = "SCHEDULED"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
	TripStatusNoShow    TripStatus = "NO_SHOW"
)

// IsValid returns true for a known status
func (s TripStatus) IsValid() bool {
	switch s {
	case TripStatusScheduled, TripStatusCompleted, TripStatusCancelled, TripStatusNoShow:
		return true
	}
	return false
}

// CountsAsPatronage reports whether trips in this status earn patronage.
// Only completed trips do; cancellations and no-shows never count.
func (s TripStatus) CountsAsPatronage() bool {
	return s == TripStatusCompleted
}

// Trip is one ride booked by a customer member and driven by a driver
// member. Completed trips are the patronage unit for both sides: one trip
// taken for the customer, one trip driven for the driver.
type Trip struct {
	shared.TenantAggregateRoot
	CustomerID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	DriverID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status      TripStatus        `gorm:"type:varchar(20);not null;default:'SCHEDULED';index"`
	FareAmount  valueobject.Money `gorm:"type:bigint;not null"`
	ScheduledAt time.Time         `gorm:"not null"`
	CompletedAt *time.Time        `gorm:"index"`
}

// TableName returns the table name for GORM
func (Trip) TableName() string {
	return "trips"
}

// NewTrip creates a scheduled trip
func NewTrip(tenantID, customerID, driverID uuid.UUID, fare valueobject.Money, scheduledAt time.Time) (*Trip, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenant ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer ID cannot be empty")
	}
	if driverID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Driver ID cannot be empty")
	}
	if fare.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Fare amount cannot be negative")
	}
	if scheduledAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Scheduled time is required")
	}

	return &Trip{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		DriverID:            driverID,
		Status:              TripStatusScheduled,
		FareAmount:          fare,
		ScheduledAt:         scheduledAt,
	}, nil
}

// Complete marks the trip completed at the given time
func (t *Trip) Complete(completedAt time.Time) error {
	if t.Status != TripStatusScheduled {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot complete trip in "+string(t.Status)+" status")
	}
	if completedAt.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "Completion time is required")
	}

	t.Status = TripStatusCompleted
	t.CompletedAt = &completedAt
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// Cancel marks the trip cancelled
func (t *Trip) Cancel() error {
	if t.Status != TripStatusScheduled {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot cancel trip in "+string(t.Status)+" status")
	}

	t.Status = TripStatusCancelled
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// MarkNoShow marks the trip as a customer no-show
func (t *Trip) MarkNoShow() error {
	if t.Status != TripStatusScheduled {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot mark no-show for trip in "+string(t.Status)+" status")
	}

	t.Status = TripStatusNoShow
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}
