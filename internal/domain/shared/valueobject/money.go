package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	GBP Currency = "GBP" // British Pound (default)
	EUR Currency = "EUR" // Euro
	USD Currency = "USD" // US Dollar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = GBP

// minorUnitsPerMajor is the number of minor units in one major unit
// for all supported currencies (pence per pound, cents per euro/dollar).
const minorUnitsPerMajor = 100

// Money is a value object representing monetary amounts as integer minor
// units (pence). Keeping money integral end-to-end is what allows the
// allocation engine to guarantee exact conservation; fractional types are
// only ever produced for display.
// It is immutable - all operations return new Money instances.
type Money struct {
	amount   int64
	currency Currency
}

// NewMoney creates a new Money from an amount in minor units
func NewMoney(minorUnits int64, currency Currency) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: minorUnits, currency: currency}
}

// NewMoneyGBP creates Money in GBP from an amount in pence
func NewMoneyGBP(pence int64) Money {
	return Money{amount: pence, currency: GBP}
}

// NewMoneyFromDecimal creates Money from a major-unit decimal amount,
// truncating anything below one minor unit.
func NewMoneyFromDecimal(major decimal.Decimal, currency Currency) Money {
	minor := major.Mul(decimal.NewFromInt(minorUnitsPerMajor)).Truncate(0).IntPart()
	return NewMoney(minor, currency)
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: 0, currency: currency}
}

// ZeroGBP returns a zero-value Money in GBP
func ZeroGBP() Money {
	return Zero(GBP)
}

// Amount returns the amount in minor units
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount == 0
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// Add returns a new Money with the sum of both amounts
// Returns error if currencies don't match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Subtract returns a new Money with the difference
// Returns error if currencies don't match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// Negate returns a new Money with the sign reversed
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// FloorAtZero returns the Money unchanged when nonnegative, zero otherwise
func (m Money) FloorAtZero() Money {
	if m.amount < 0 {
		return Zero(m.currency)
	}
	return m
}

// ApplyRate returns the Money scaled by rate, truncated to a whole minor
// unit. The truncation keeps the result representable without sub-unit
// fractions; the discarded remainder stays in the source pool.
func (m Money) ApplyRate(rate decimal.Decimal) Money {
	scaled := decimal.NewFromInt(m.amount).Mul(rate).Truncate(0).IntPart()
	return Money{amount: scaled, currency: m.currency}
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount == other.amount
}

// Decimal returns the amount in major units as a decimal (display only)
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.amount).Div(decimal.NewFromInt(minorUnitsPerMajor))
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(2), m.currency)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MinorUnits int64    `json:"minor_units"`
		Currency   Currency `json:"currency"`
	}{
		MinorUnits: m.amount,
		Currency:   m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		MinorUnits int64    `json:"minor_units"`
		Currency   Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.amount = v.MinorUnits
	m.currency = v.Currency
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// Value implements driver.Valuer for database storage
// Stores as a bigint (minor units only)
func (m Money) Value() (driver.Value, error) {
	return m.amount, nil
}

// Scan implements sql.Scanner for database retrieval.
// Only the minor-unit amount is stored; currency defaults to
// DefaultCurrency unless already set.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = 0
		m.currency = DefaultCurrency
		return nil
	}

	switch v := value.(type) {
	case int64:
		m.amount = v
	case int:
		m.amount = int64(v)
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("invalid money value: %w", err)
		}
		m.amount = d.IntPart()
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}
