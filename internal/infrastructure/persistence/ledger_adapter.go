package persistence

import (
	"context"

	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/coopfleet/backend/internal/domain/ledger"
	"github.com/coopfleet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerAdapter implements the surplus calculator's LedgerService and
// SettingsService ports over the ledger tables. Financials are only served
// for periods fully inside the tenant's closed books; anything beyond the
// cutoff is INSUFFICIENT_DATA, never a partial sum.
type LedgerAdapter struct {
	entries  ledger.LedgerEntryRepository
	settings ledger.TenantSettingsRepository
}

// NewLedgerAdapter creates a new LedgerAdapter
func NewLedgerAdapter(entries ledger.LedgerEntryRepository, settings ledger.TenantSettingsRepository) *LedgerAdapter {
	return &LedgerAdapter{entries: entries, settings: settings}
}

// PeriodFinancials returns revenue and operating costs for the period
func (a *LedgerAdapter) PeriodFinancials(ctx context.Context, tenantID uuid.UUID, period valueobject.Period) (dividend.PeriodFinancials, error) {
	settings, err := a.settings.FindByTenant(ctx, tenantID)
	if err != nil {
		return dividend.PeriodFinancials{}, err
	}
	if settings == nil {
		return dividend.PeriodFinancials{}, dividend.NewInsufficientDataError(
			"No distribution settings configured for tenant %s", tenantID)
	}
	if period.End().After(settings.LedgerCompleteThrough) {
		return dividend.PeriodFinancials{}, dividend.NewInsufficientDataError(
			"Ledger is complete only through %s, period ends %s",
			settings.LedgerCompleteThrough.Format("2006-01-02"),
			period.End().Format("2006-01-02"))
	}

	revenue, err := a.entries.SumByType(ctx, tenantID, ledger.EntryTypeRevenue, period.Start(), period.End())
	if err != nil {
		return dividend.PeriodFinancials{}, err
	}
	costs, err := a.entries.SumByType(ctx, tenantID, ledger.EntryTypeOperatingCost, period.Start(), period.End())
	if err != nil {
		return dividend.PeriodFinancials{}, err
	}

	return dividend.PeriodFinancials{
		Revenue:        valueobject.NewMoneyGBP(revenue),
		OperatingCosts: valueobject.NewMoneyGBP(costs),
	}, nil
}

// DividendRate returns the tenant's configured distribution rate
func (a *LedgerAdapter) DividendRate(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	settings, err := a.settings.FindByTenant(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	if settings == nil {
		return decimal.Zero, dividend.NewInsufficientDataError(
			"No distribution settings configured for tenant %s", tenantID)
	}
	return settings.DividendRate, nil
}

var (
	_ dividend.LedgerService   = (*LedgerAdapter)(nil)
	_ dividend.SettingsService = (*LedgerAdapter)(nil)
)
