package dividend

import (
	"fmt"

	"github.com/coopfleet/backend/internal/domain/shared"
)

// Engine error codes. These are the caller-visible failure kinds of the
// distribution engine; the HTTP layer maps them onto status codes.
const (
	// ErrCodeInsufficientData - ledger or patronage inputs incomplete; nothing persisted
	ErrCodeInsufficientData = "INSUFFICIENT_DATA"
	// ErrCodeDuplicateDistribution - a non-voided distribution already exists for the period key
	ErrCodeDuplicateDistribution = "DUPLICATE_DISTRIBUTION"
	// ErrCodeRoundingInvariant - internal defect: allocation did not conserve the pool
	ErrCodeRoundingInvariant = "ROUNDING_INVARIANT_VIOLATION"
	// ErrCodeStateConflict - invalid or racing payment transition
	ErrCodeStateConflict = "STATE_CONFLICT"
	// ErrCodeZeroPatronage - informational: no eligible members in the period
	ErrCodeZeroPatronage = "ZERO_PATRONAGE"
)

// NewInsufficientDataError reports incomplete ledger or patronage inputs
func NewInsufficientDataError(format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInsufficientData, fmt.Sprintf(format, args...))
}

// NewDuplicateDistributionError reports an attempt to compute a period key
// that already has a non-voided distribution
func NewDuplicateDistributionError(format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(ErrCodeDuplicateDistribution, fmt.Sprintf(format, args...))
}

// NewRoundingInvariantViolation reports an allocation that failed to conserve
// the pool. This is a defect, never a recoverable condition; computations
// that hit it are aborted without any partial write.
func NewRoundingInvariantViolation(format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(ErrCodeRoundingInvariant, fmt.Sprintf(format, args...))
}

// NewStateConflictError reports a payment transition attempted from a state
// other than pending, including the losing side of a concurrent race
func NewStateConflictError(format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(ErrCodeStateConflict, fmt.Sprintf(format, args...))
}
