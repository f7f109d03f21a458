package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/coopfleet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDividendTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&dividend.Distribution{}, &dividend.DividendRecord{})
	require.NoError(t, err)

	// Partial unique index backing the one-active-distribution-per-key rule
	err = db.Exec(`CREATE UNIQUE INDEX uq_distribution_period_key
		ON distribution_periods (tenant_id, member_type, period_start, period_end)
		WHERE status <> 'VOIDED'`).Error
	require.NoError(t, err)

	return db
}

func buildDistribution(t *testing.T, tenantID uuid.UUID, memberType dividend.MemberType, start, end time.Time, patronage map[uuid.UUID]int64) *dividend.Distribution {
	t.Helper()
	period, err := valueobject.NewPeriod(start, end)
	require.NoError(t, err)

	pool := valueobject.NewMoneyGBP(1000)
	alloc, err := dividend.Allocate(pool, patronage)
	require.NoError(t, err)

	d, err := dividend.NewDistribution(tenantID, memberType, period, dividend.Surplus{
		GrossSurplus: valueobject.NewMoneyGBP(5000),
		DividendPool: pool,
		Rate:         decimal.NewFromFloat(0.2),
	}, alloc)
	require.NoError(t, err)
	return d
}

func january(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
}

func TestDistributionRepository_Create(t *testing.T) {
	db := setupDividendTestDB(t)
	repo := NewGormDistributionRepository(db)
	ctx := context.Background()

	t.Run("persists distribution with records atomically", func(t *testing.T) {
		tenantID := uuid.New()
		start, end := january(t)
		d := buildDistribution(t, tenantID, dividend.MemberTypeCustomer, start, end,
			map[uuid.UUID]int64{uuid.New(): 3, uuid.New(): 2})

		require.NoError(t, repo.Create(ctx, d))

		loaded, err := repo.FindByIDWithRecords(ctx, tenantID, d.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, dividend.DistributionStatusComputed, loaded.Status)
		assert.Len(t, loaded.Records, 2)

		var sum int64
		for _, r := range loaded.Records {
			sum += r.DividendAmount.Amount()
		}
		assert.Equal(t, loaded.DividendPool.Amount(), sum)
	})

	t.Run("rejects second distribution for the same period key", func(t *testing.T) {
		tenantID := uuid.New()
		start, end := january(t)
		first := buildDistribution(t, tenantID, dividend.MemberTypeCustomer, start, end,
			map[uuid.UUID]int64{uuid.New(): 1})
		require.NoError(t, repo.Create(ctx, first))

		second := buildDistribution(t, tenantID, dividend.MemberTypeCustomer, start, end,
			map[uuid.UUID]int64{uuid.New(): 1})
		err := repo.Create(ctx, second)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, dividend.ErrCodeDuplicateDistribution, domainErr.Code)

		// nothing from the failed attempt is visible
		loaded, err := repo.FindByIDForTenant(ctx, tenantID, second.ID)
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("same period for the other member type is allowed", func(t *testing.T) {
		tenantID := uuid.New()
		start, end := january(t)
		customer := buildDistribution(t, tenantID, dividend.MemberTypeCustomer, start, end,
			map[uuid.UUID]int64{uuid.New(): 1})
		require.NoError(t, repo.Create(ctx, customer))

		driver := buildDistribution(t, tenantID, dividend.MemberTypeDriver, start, end,
			map[uuid.UUID]int64{uuid.New(): 1})
		require.NoError(t, repo.Create(ctx, driver))
	})

	t.Run("same period for another tenant is allowed", func(t *testing.T) {
		start, end := january(t)
		a := buildDistribution(t, uuid.New(), dividend.MemberTypeCustomer, start, end,
			map[uuid.UUID]int64{uuid.New(): 1})
		require.NoError(t, repo.Create(ctx, a))

		b := buildDistribution(t, uuid.New(), dividend.MemberTypeCustomer, start, end,
			map[uuid.UUID]int64{uuid.New(): 1})
		require.NoError(t, repo.Create(ctx, b))
	})

	t.Run("voided distribution frees the period key", func(t *testing.T) {
		tenantID := uuid.New()
		start, end := january(t)
		first := buildDistribution(t, tenantID, dividend.MemberTypeDriver, start, end,
			map[uuid.UUID]int64{uuid.New(): 1})
		require.NoError(t, repo.Create(ctx, first))

		require.NoError(t, first.Void("ledger restated"))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		second := buildDistribution(t, tenantID, dividend.MemberTypeDriver, start, end,
			map[uuid.UUID]int64{uuid.New(): 1})
		require.NoError(t, repo.Create(ctx, second))
	})
}

func TestDistributionRepository_FindActiveByPeriodKey(t *testing.T) {
	db := setupDividendTestDB(t)
	repo := NewGormDistributionRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	start, end := january(t)

	found, err := repo.FindActiveByPeriodKey(ctx, tenantID, dividend.MemberTypeCustomer, start, end)
	require.NoError(t, err)
	assert.Nil(t, found)

	d := buildDistribution(t, tenantID, dividend.MemberTypeCustomer, start, end,
		map[uuid.UUID]int64{uuid.New(): 1})
	require.NoError(t, repo.Create(ctx, d))

	found, err = repo.FindActiveByPeriodKey(ctx, tenantID, dividend.MemberTypeCustomer, start, end)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, d.ID, found.ID)
}

func TestDistributionRepository_SaveWithLock(t *testing.T) {
	db := setupDividendTestDB(t)
	repo := NewGormDistributionRepository(db)
	ctx := context.Background()

	t.Run("persists status transition", func(t *testing.T) {
		tenantID := uuid.New()
		start, end := january(t)
		d := buildDistribution(t, tenantID, dividend.MemberTypeCustomer, start, end,
			map[uuid.UUID]int64{uuid.New(): 1})
		require.NoError(t, repo.Create(ctx, d))

		require.NoError(t, d.Finalize())
		require.NoError(t, repo.SaveWithLock(ctx, d))

		loaded, err := repo.FindByIDForTenant(ctx, tenantID, d.ID)
		require.NoError(t, err)
		assert.Equal(t, dividend.DistributionStatusFinalized, loaded.Status)
		assert.Equal(t, 2, loaded.Version)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		tenantID := uuid.New()
		d := buildDistribution(t, tenantID, dividend.MemberTypeDriver,
			time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
			map[uuid.UUID]int64{uuid.New(): 1})
		require.NoError(t, repo.Create(ctx, d))

		// two in-memory copies of the same row race to transition it
		stale, err := repo.FindByIDForTenant(ctx, tenantID, d.ID)
		require.NoError(t, err)

		require.NoError(t, d.Finalize())
		require.NoError(t, repo.SaveWithLock(ctx, d))

		require.NoError(t, stale.Void("conflicting decision"))
		err = repo.SaveWithLock(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestDistributionRepository_Void(t *testing.T) {
	db := setupDividendTestDB(t)
	repo := NewGormDistributionRepository(db)
	recordRepo := NewGormDividendRecordRepository(db)
	ctx := context.Background()

	t.Run("marks the period voided and its records superseded together", func(t *testing.T) {
		tenantID := uuid.New()
		memberID := uuid.New()
		start, end := january(t)
		d := buildDistribution(t, tenantID, dividend.MemberTypeCustomer, start, end,
			map[uuid.UUID]int64{memberID: 2, uuid.New(): 3})
		require.NoError(t, repo.Create(ctx, d))

		require.NoError(t, d.Void("ledger restated"))
		require.NoError(t, repo.Void(ctx, d))

		loaded, err := repo.FindByIDForTenant(ctx, tenantID, d.ID)
		require.NoError(t, err)
		assert.Equal(t, dividend.DistributionStatusVoided, loaded.Status)

		records, err := recordRepo.FindByDistribution(ctx, tenantID, d.ID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, r := range records {
			assert.True(t, r.Superseded)
		}

		// superseded records disappear from member history
		history, err := recordRepo.FindByMember(ctx, tenantID, dividend.MemberTypeCustomer, memberID, 10)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("stale version voids nothing, records stay live", func(t *testing.T) {
		tenantID := uuid.New()
		memberID := uuid.New()
		d := buildDistribution(t, tenantID, dividend.MemberTypeDriver,
			time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
			map[uuid.UUID]int64{memberID: 1})
		require.NoError(t, repo.Create(ctx, d))

		stale, err := repo.FindByIDForTenant(ctx, tenantID, d.ID)
		require.NoError(t, err)

		require.NoError(t, d.Finalize())
		require.NoError(t, repo.SaveWithLock(ctx, d))

		// the void built on the pre-finalize copy loses the race
		require.NoError(t, stale.Void("raced with finalize"))
		err = repo.Void(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		records, err := recordRepo.FindByDistribution(ctx, tenantID, d.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.False(t, records[0].Superseded)
	})
}

func TestDistributionRepository_FindAllForTenant(t *testing.T) {
	db := setupDividendTestDB(t)
	repo := NewGormDistributionRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	for month := 1; month <= 3; month++ {
		d := buildDistribution(t, tenantID, dividend.MemberTypeCustomer,
			time.Date(2025, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.Month(month), 28, 0, 0, 0, 0, time.UTC),
			map[uuid.UUID]int64{uuid.New(): 1})
		require.NoError(t, repo.Create(ctx, d))
	}
	// another tenant's data must not leak in
	other := buildDistribution(t, uuid.New(), dividend.MemberTypeCustomer,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 28, 0, 0, 0, 0, time.UTC),
		map[uuid.UUID]int64{uuid.New(): 1})
	require.NoError(t, repo.Create(ctx, other))

	filter := shared.DefaultFilter()
	distributions, total, err := repo.FindAllForTenant(ctx, tenantID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, distributions, 3)

	filter.PageSize = 2
	page, total, err := repo.FindAllForTenant(ctx, tenantID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)
}
