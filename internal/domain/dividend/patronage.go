package dividend

import (
	"context"

	"github.com/coopfleet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// MemberPatronage is the transient allocation input for a single member:
// a nonnegative count of eligible activity units in the period.
type MemberPatronage struct {
	MemberID       uuid.UUID
	MemberType     MemberType
	PatronageValue int64
}

// PatronageSource counts each member's eligible activity for a period.
// There is one implementation per member type (trips taken, trips driven);
// both are pure reads over persisted trip data, so re-running with unchanged
// data yields identical output.
type PatronageSource interface {
	AggregatePatronage(ctx context.Context, tenantID uuid.UUID, period valueobject.Period) ([]MemberPatronage, error)
}

// PatronageSources resolves the source for a member type
type PatronageSources struct {
	customer PatronageSource
	driver   PatronageSource
}

// NewPatronageSources wires one source per member type
func NewPatronageSources(customer, driver PatronageSource) PatronageSources {
	return PatronageSources{customer: customer, driver: driver}
}

// For returns the source for the given member type
func (s PatronageSources) For(t MemberType) (PatronageSource, bool) {
	switch t {
	case MemberTypeCustomer:
		return s.customer, s.customer != nil
	case MemberTypeDriver:
		return s.driver, s.driver != nil
	default:
		return nil, false
	}
}

// TotalPatronage sums patronage values across members
func TotalPatronage(patronage map[uuid.UUID]int64) int64 {
	var total int64
	for _, v := range patronage {
		total += v
	}
	return total
}

// PatronageByMember collapses aggregated rows into the allocation input map
func PatronageByMember(rows []MemberPatronage) map[uuid.UUID]int64 {
	patronage := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		patronage[row.MemberID] = row.PatronageValue
	}
	return patronage
}
