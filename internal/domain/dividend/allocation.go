package dividend

import (
	"math/big"
	"sort"

	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/coopfleet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemberAllocation is one member's computed share of a dividend pool
type MemberAllocation struct {
	MemberID            uuid.UUID
	PatronageValue      int64
	DividendAmount      valueobject.Money
	PatronagePercentage decimal.Decimal
}

// Allocation is the result of apportioning a pool across members.
// Members are ordered by ascending member ID so the result is stable
// regardless of map iteration order.
type Allocation struct {
	Pool           valueobject.Money
	TotalPatronage int64
	Members        []MemberAllocation
}

// IsEmpty returns true when no member received an allocation
func (a Allocation) IsEmpty() bool {
	return len(a.Members) == 0
}

// Allocate apportions a dividend pool across members proportionally to
// patronage using the largest-remainder method. Each member first receives
// the integer floor of pool*value/total; the minor units left over are then
// awarded one each to the largest fractional remainders, ties broken by
// ascending member ID. The allocated amounts always sum to exactly the pool.
//
// A zero total patronage yields an empty allocation and no error; the pool
// is simply not distributed. A post-condition failure returns a
// ROUNDING_INVARIANT_VIOLATION and must be treated as a defect.
func Allocate(pool valueobject.Money, patronage map[uuid.UUID]int64) (Allocation, error) {
	if pool.IsNegative() {
		return Allocation{}, shared.NewDomainError("INVALID_INPUT", "Dividend pool cannot be negative")
	}
	for memberID, value := range patronage {
		if value < 0 {
			return Allocation{}, shared.NewDomainError("INVALID_INPUT",
				"Patronage value for member "+memberID.String()+" cannot be negative")
		}
	}

	total := TotalPatronage(patronage)
	if total == 0 {
		return Allocation{Pool: pool, TotalPatronage: 0}, nil
	}

	type share struct {
		memberID  uuid.UUID
		value     int64
		floor     int64
		remainder int64 // numerator of the fractional part, denominator is total
	}

	poolAmount := pool.Amount()
	bigPool := big.NewInt(poolAmount)
	bigTotal := big.NewInt(total)

	shares := make([]share, 0, len(patronage))
	var floorSum int64
	for memberID, value := range patronage {
		// exact rational share: pool * value / total, via big.Int so the
		// product cannot overflow int64 for large pools
		num := new(big.Int).Mul(bigPool, big.NewInt(value))
		quo, rem := new(big.Int).QuoRem(num, bigTotal, new(big.Int))
		s := share{
			memberID:  memberID,
			value:     value,
			floor:     quo.Int64(),
			remainder: rem.Int64(),
		}
		floorSum += s.floor
		shares = append(shares, s)
	}

	remaining := poolAmount - floorSum
	if remaining < 0 || remaining > int64(len(shares)) {
		return Allocation{}, NewRoundingInvariantViolation(
			"Floor allocation left %d units for %d members (pool %d, total patronage %d)",
			remaining, len(shares), poolAmount, total)
	}

	// Rank by fractional remainder descending; ties go to the lexically
	// smaller member ID so reruns award the same members.
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].remainder != shares[j].remainder {
			return shares[i].remainder > shares[j].remainder
		}
		return shares[i].memberID.String() < shares[j].memberID.String()
	})
	for i := int64(0); i < remaining; i++ {
		shares[i].floor++
	}

	sort.Slice(shares, func(i, j int) bool {
		return shares[i].memberID.String() < shares[j].memberID.String()
	})

	totalDec := decimal.NewFromInt(total)
	hundred := decimal.NewFromInt(100)

	members := make([]MemberAllocation, len(shares))
	var allocatedSum int64
	for i, s := range shares {
		allocatedSum += s.floor
		members[i] = MemberAllocation{
			MemberID:            s.memberID,
			PatronageValue:      s.value,
			DividendAmount:      valueobject.NewMoney(s.floor, pool.Currency()),
			PatronagePercentage: decimal.NewFromInt(s.value).Mul(hundred).Div(totalDec).Round(2),
		}
	}

	if allocatedSum != poolAmount {
		return Allocation{}, NewRoundingInvariantViolation(
			"Allocated %d minor units from a pool of %d", allocatedSum, poolAmount)
	}

	return Allocation{
		Pool:           pool,
		TotalPatronage: total,
		Members:        members,
	}, nil
}
