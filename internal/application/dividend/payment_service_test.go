package dividend

import (
	"context"
	"testing"
	"time"

	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pendingRecord(t *testing.T, tenantID uuid.UUID) *dividend.DividendRecord {
	t.Helper()
	d := newPersistedDistribution(t, tenantID)
	require.NotEmpty(t, d.Records)
	return &d.Records[0]
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("marks pending record paid", func(t *testing.T) {
		record := pendingRecord(t, tenantID)
		repo := new(MockDividendRecordRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)
		repo.On("SaveWithLock", mock.Anything, record).Return(nil)

		svc := NewPaymentService(repo, zap.NewNop())

		resp, err := svc.MarkPaid(ctx, tenantID, record.ID, MarkPaidRequest{
			PaymentMethod: "BANK_TRANSFER",
			PaymentDate:   time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Equal(t, "PAID", resp.Status)
		assert.Equal(t, "BANK_TRANSFER", resp.PaymentMethod)
		repo.AssertExpectations(t)
	})

	t.Run("returns not found for missing record", func(t *testing.T) {
		repo := new(MockDividendRecordRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, mock.Anything).Return(nil, nil)

		svc := NewPaymentService(repo, zap.NewNop())

		_, err := svc.MarkPaid(ctx, tenantID, uuid.New(), MarkPaidRequest{
			PaymentMethod: "BANK_TRANSFER",
			PaymentDate:   time.Now(),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects second payment as state conflict", func(t *testing.T) {
		record := pendingRecord(t, tenantID)
		require.NoError(t, record.MarkPaid(dividend.PaymentMethodCheque, time.Now()))

		repo := new(MockDividendRecordRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)

		svc := NewPaymentService(repo, zap.NewNop())

		_, err := svc.MarkPaid(ctx, tenantID, record.ID, MarkPaidRequest{
			PaymentMethod: "BANK_TRANSFER",
			PaymentDate:   time.Now(),
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, dividend.ErrCodeStateConflict, domainErr.Code)
		repo.AssertNotCalled(t, "SaveWithLock")
	})

	t.Run("lost optimistic lock race surfaces as state conflict", func(t *testing.T) {
		record := pendingRecord(t, tenantID)
		repo := new(MockDividendRecordRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)
		repo.On("SaveWithLock", mock.Anything, record).Return(shared.ErrConcurrencyConflict)

		svc := NewPaymentService(repo, zap.NewNop())

		_, err := svc.MarkPaid(ctx, tenantID, record.ID, MarkPaidRequest{
			PaymentMethod: "ACCOUNT_CREDIT",
			PaymentDate:   time.Now(),
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, dividend.ErrCodeStateConflict, domainErr.Code)
	})

	t.Run("rejects unknown payment method", func(t *testing.T) {
		record := pendingRecord(t, tenantID)
		repo := new(MockDividendRecordRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)

		svc := NewPaymentService(repo, zap.NewNop())

		_, err := svc.MarkPaid(ctx, tenantID, record.ID, MarkPaidRequest{
			PaymentMethod: "BARTER",
			PaymentDate:   time.Now(),
		})
		require.Error(t, err)
		repo.AssertNotCalled(t, "SaveWithLock")
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("cancels pending record", func(t *testing.T) {
		record := pendingRecord(t, tenantID)
		repo := new(MockDividendRecordRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)
		repo.On("SaveWithLock", mock.Anything, record).Return(nil)

		svc := NewPaymentService(repo, zap.NewNop())

		resp, err := svc.Cancel(ctx, tenantID, record.ID, CancelRequest{Reason: "member account closed"})
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.Equal(t, "member account closed", resp.CancelReason)
	})

	t.Run("rejects cancelling a paid record", func(t *testing.T) {
		record := pendingRecord(t, tenantID)
		require.NoError(t, record.MarkPaid(dividend.PaymentMethodBankTransfer, time.Now()))

		repo := new(MockDividendRecordRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)

		svc := NewPaymentService(repo, zap.NewNop())

		_, err := svc.Cancel(ctx, tenantID, record.ID, CancelRequest{Reason: "too late"})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, dividend.ErrCodeStateConflict, domainErr.Code)
	})
}
