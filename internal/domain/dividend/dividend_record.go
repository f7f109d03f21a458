package dividend

import (
	"fmt"
	"time"

	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/coopfleet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordStatus represents the payment state of a dividend record
type RecordStatus string

const (
	// RecordStatusPending - computed, not yet paid out
	RecordStatusPending RecordStatus = "PENDING"
	// RecordStatusPaid - terminal; payment completed
	RecordStatusPaid RecordStatus = "PAID"
	// RecordStatusCancelled - terminal; payment will never happen
	RecordStatusCancelled RecordStatus = "CANCELLED"
)

// IsValid returns true for a known status
func (s RecordStatus) IsValid() bool {
	switch s {
	case RecordStatusPending, RecordStatusPaid, RecordStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true once no further transition is possible
func (s RecordStatus) IsTerminal() bool {
	return s == RecordStatusPaid || s == RecordStatusCancelled
}

// PaymentMethod identifies how a dividend was paid out
type PaymentMethod string

const (
	PaymentMethodBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentMethodAccountCredit PaymentMethod = "ACCOUNT_CREDIT"
	PaymentMethodCheque        PaymentMethod = "CHEQUE"
)

// IsValid returns true for a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodAccountCredit, PaymentMethodCheque:
		return true
	}
	return false
}

// DividendRecord is one member's dividend within a distribution. It carries
// its own version so payment transitions on different records never contend,
// and denormalizes the period so member history queries skip the join.
type DividendRecord struct {
	shared.TenantAggregateRoot
	DistributionID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	MemberID            uuid.UUID         `gorm:"type:uuid;not null;index:idx_dividend_record_member,priority:2"`
	MemberType          MemberType        `gorm:"type:varchar(20);not null"`
	PeriodStart         time.Time         `gorm:"not null;index:idx_dividend_record_member,priority:3,sort:desc"`
	PeriodEnd           time.Time         `gorm:"not null"`
	PatronageValue      int64             `gorm:"not null"`
	DividendAmount      valueobject.Money `gorm:"type:bigint;not null"`
	PatronagePercentage decimal.Decimal   `gorm:"type:decimal(7,2);not null"`
	Status              RecordStatus      `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentMethod       PaymentMethod     `gorm:"type:varchar(30)"`
	PaymentDate         *time.Time
	CancelReason        string `gorm:"type:varchar(500)"`
	Superseded          bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (DividendRecord) TableName() string {
	return "dividend_records"
}

func newDividendRecord(d *Distribution, m MemberAllocation) (*DividendRecord, error) {
	if m.MemberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Member ID cannot be empty")
	}
	if m.DividendAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Dividend amount cannot be negative")
	}

	return &DividendRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(d.TenantID),
		DistributionID:      d.ID,
		MemberID:            m.MemberID,
		MemberType:          d.MemberType,
		PeriodStart:         d.PeriodStart,
		PeriodEnd:           d.PeriodEnd,
		PatronageValue:      m.PatronageValue,
		DividendAmount:      m.DividendAmount,
		PatronagePercentage: m.PatronagePercentage,
		Status:              RecordStatusPending,
	}, nil
}

// MarkPaid records a completed payment. Valid only from PENDING on a live
// record; both terminal states and superseded records reject it, so a
// duplicate confirmation, a race with a cancellation, or a payout against a
// voided distribution surfaces as a state conflict instead of a double
// payment.
func (r *DividendRecord) MarkPaid(method PaymentMethod, paymentDate time.Time) error {
	if r.Superseded {
		return NewStateConflictError("Cannot mark a superseded record paid; its distribution was voided")
	}
	if r.Status != RecordStatusPending {
		return NewStateConflictError("Cannot mark record paid in %s status", r.Status)
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Payment method %s is not valid", method))
	}
	if paymentDate.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "Payment date is required")
	}

	now := time.Now()
	r.Status = RecordStatusPaid
	r.PaymentMethod = method
	r.PaymentDate = &paymentDate
	r.UpdatedAt = now
	r.IncrementVersion()

	return nil
}

// Cancel marks the record as never to be paid. Valid only from PENDING on a
// live record; superseded records already carry no payment obligation.
func (r *DividendRecord) Cancel(reason string) error {
	if r.Superseded {
		return NewStateConflictError("Cannot cancel a superseded record; its distribution was voided")
	}
	if r.Status != RecordStatusPending {
		return NewStateConflictError("Cannot cancel record in %s status", r.Status)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Cancel reason is required")
	}

	r.Status = RecordStatusCancelled
	r.CancelReason = reason
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// MarkSuperseded flags the record as belonging to a voided distribution.
// Superseded records are excluded from member history totals.
func (r *DividendRecord) MarkSuperseded() {
	r.Superseded = true
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
