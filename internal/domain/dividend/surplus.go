package dividend

import (
	"context"

	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/coopfleet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PeriodFinancials is the ledger's view of a period
type PeriodFinancials struct {
	Revenue        valueobject.Money
	OperatingCosts valueobject.Money
}

// LedgerService supplies period financials. Implementations must return an
// INSUFFICIENT_DATA error when the ledger cannot supply complete figures for
// the range - the calculator never works from partial or estimated numbers.
type LedgerService interface {
	PeriodFinancials(ctx context.Context, tenantID uuid.UUID, period valueobject.Period) (PeriodFinancials, error)
}

// SettingsService supplies per-tenant distribution configuration
type SettingsService interface {
	// DividendRate returns the fraction of gross surplus allocated for
	// distribution, in [0,1]
	DividendRate(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
}

// Surplus is the financial input to a distribution: the period's gross
// surplus, the pool carved out of it, and the rate that was applied. The
// rate is stamped onto the distribution so later settings changes never
// retroactively alter a computed period.
type Surplus struct {
	GrossSurplus valueobject.Money
	DividendPool valueobject.Money
	Rate         decimal.Decimal
}

// SurplusCalculator derives the dividend pool for a period from ledger
// figures and tenant settings
type SurplusCalculator struct {
	ledger   LedgerService
	settings SettingsService
}

// NewSurplusCalculator creates a SurplusCalculator
func NewSurplusCalculator(ledger LedgerService, settings SettingsService) *SurplusCalculator {
	return &SurplusCalculator{ledger: ledger, settings: settings}
}

// Calculate computes gross surplus and dividend pool for the period.
// gross = revenue - operating costs (may be negative);
// pool = max(0, gross) * rate, truncated to a whole minor unit.
func (c *SurplusCalculator) Calculate(ctx context.Context, tenantID uuid.UUID, period valueobject.Period) (Surplus, error) {
	financials, err := c.ledger.PeriodFinancials(ctx, tenantID, period)
	if err != nil {
		return Surplus{}, err
	}

	rate, err := c.settings.DividendRate(ctx, tenantID)
	if err != nil {
		return Surplus{}, err
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return Surplus{}, shared.NewDomainError("INVALID_INPUT",
			"Dividend rate must be between 0 and 1, got "+rate.String())
	}

	gross, err := financials.Revenue.Subtract(financials.OperatingCosts)
	if err != nil {
		return Surplus{}, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	return Surplus{
		GrossSurplus: gross,
		DividendPool: gross.FloorAtZero().ApplyRate(rate),
		Rate:         rate,
	}, nil
}
