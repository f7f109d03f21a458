package dividend

import "strings"

// MemberType identifies which side of the cooperative a member belongs to.
// It is a closed variant: customers earn patronage by taking trips, drivers
// by operating them. Engine code dispatches on the type once, at the edges;
// nothing inside the allocation path branches on it.
type MemberType string

const (
	// MemberTypeCustomer - riders; patronage counts completed trips taken
	MemberTypeCustomer MemberType = "CUSTOMER"
	// MemberTypeDriver - operators; patronage counts completed trips driven
	MemberTypeDriver MemberType = "DRIVER"
)

// IsValid returns true for a known member type
func (t MemberType) IsValid() bool {
	return t == MemberTypeCustomer || t == MemberTypeDriver
}

// String returns the string representation
func (t MemberType) String() string {
	return string(t)
}

// ParseMemberType normalizes external input ("customer", "drivers", …) to a
// MemberType. Returns false for anything outside the closed set.
func ParseMemberType(s string) (MemberType, bool) {
	switch strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "S") {
	case "CUSTOMER":
		return MemberTypeCustomer, true
	case "DRIVER":
		return MemberTypeDriver, true
	default:
		return "", false
	}
}
