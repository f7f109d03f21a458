package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDividendRecordRepository_FindByMember(t *testing.T) {
	db := setupDividendTestDB(t)
	distRepo := NewGormDistributionRepository(db)
	repo := NewGormDividendRecordRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	memberID := uuid.New()

	// three periods, newest last
	for month := 1; month <= 3; month++ {
		d := buildDistribution(t, tenantID, dividend.MemberTypeDriver,
			time.Date(2025, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.Month(month), 28, 0, 0, 0, 0, time.UTC),
			map[uuid.UUID]int64{memberID: 2})
		require.NoError(t, distRepo.Create(ctx, d))
	}

	t.Run("orders by period start descending", func(t *testing.T) {
		records, err := repo.FindByMember(ctx, tenantID, dividend.MemberTypeDriver, memberID, 10)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, time.March, records[0].PeriodStart.Month())
		assert.Equal(t, time.January, records[2].PeriodStart.Month())
	})

	t.Run("respects the limit", func(t *testing.T) {
		records, err := repo.FindByMember(ctx, tenantID, dividend.MemberTypeDriver, memberID, 2)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("the other member type sees nothing for the same ID", func(t *testing.T) {
		records, err := repo.FindByMember(ctx, tenantID, dividend.MemberTypeCustomer, memberID, 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("unknown member yields empty result", func(t *testing.T) {
		records, err := repo.FindByMember(ctx, tenantID, dividend.MemberTypeDriver, uuid.New(), 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestDividendRecordRepository_SaveWithLock(t *testing.T) {
	db := setupDividendTestDB(t)
	distRepo := NewGormDistributionRepository(db)
	repo := NewGormDividendRecordRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	memberID := uuid.New()
	start, end := january(t)

	newRecord := func(t *testing.T, periodStart, periodEnd time.Time) *dividend.DividendRecord {
		d := buildDistribution(t, tenantID, dividend.MemberTypeCustomer, periodStart, periodEnd,
			map[uuid.UUID]int64{memberID: 1})
		require.NoError(t, distRepo.Create(ctx, d))
		record, err := repo.FindByIDForTenant(ctx, tenantID, d.Records[0].ID)
		require.NoError(t, err)
		require.NotNil(t, record)
		return record
	}

	t.Run("persists payment transition", func(t *testing.T) {
		record := newRecord(t, start, end)

		require.NoError(t, record.MarkPaid(dividend.PaymentMethodBankTransfer, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, repo.SaveWithLock(ctx, record))

		loaded, err := repo.FindByIDForTenant(ctx, tenantID, record.ID)
		require.NoError(t, err)
		assert.Equal(t, dividend.RecordStatusPaid, loaded.Status)
		assert.Equal(t, dividend.PaymentMethodBankTransfer, loaded.PaymentMethod)
		assert.Equal(t, 2, loaded.Version)
	})

	t.Run("concurrent transitions resolve to exactly one winner", func(t *testing.T) {
		record := newRecord(t,
			time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))

		// both sides load the same pending row
		payer, err := repo.FindByIDForTenant(ctx, tenantID, record.ID)
		require.NoError(t, err)
		canceller, err := repo.FindByIDForTenant(ctx, tenantID, record.ID)
		require.NoError(t, err)

		require.NoError(t, payer.MarkPaid(dividend.PaymentMethodAccountCredit, time.Now()))
		require.NoError(t, repo.SaveWithLock(ctx, payer))

		require.NoError(t, canceller.Cancel("duplicate payout attempt"))
		err = repo.SaveWithLock(ctx, canceller)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		// the stored row kept the winner's state
		loaded, err := repo.FindByIDForTenant(ctx, tenantID, record.ID)
		require.NoError(t, err)
		assert.Equal(t, dividend.RecordStatusPaid, loaded.Status)
	})
}
