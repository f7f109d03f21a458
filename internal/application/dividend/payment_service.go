package dividend

import (
	"context"
	"errors"
	"time"

	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService applies payment status transitions to dividend records.
// Every transition is guarded twice: the aggregate rejects anything but
// PENDING, and the version-checked save turns a lost race into a conflict
// instead of a double payment.
type PaymentService struct {
	recordRepo dividend.DividendRecordRepository
	logger     *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(recordRepo dividend.DividendRecordRepository, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		recordRepo: recordRepo,
		logger:     logger,
	}
}

// MarkPaidRequest represents a request to confirm a dividend payment
type MarkPaidRequest struct {
	PaymentMethod string    `json:"payment_method" binding:"required"`
	PaymentDate   time.Time `json:"payment_date" binding:"required"`
}

// CancelRequest represents a request to cancel a dividend payment
type CancelRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// MarkPaid records a completed payment on a pending dividend record
func (s *PaymentService) MarkPaid(ctx context.Context, tenantID, recordID uuid.UUID, req MarkPaidRequest) (*DividendRecordResponse, error) {
	record, err := s.recordRepo.FindByIDForTenant(ctx, tenantID, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, shared.ErrNotFound
	}

	if err := record.MarkPaid(dividend.PaymentMethod(req.PaymentMethod), req.PaymentDate); err != nil {
		return nil, err
	}
	if err := s.save(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Dividend record marked paid",
		zap.String("tenant_id", tenantID.String()),
		zap.String("record_id", recordID.String()),
		zap.String("payment_method", req.PaymentMethod),
		zap.Int64("amount", record.DividendAmount.Amount()))

	resp := toDividendRecordResponse(record)
	return &resp, nil
}

// Cancel marks a pending dividend record as never to be paid
func (s *PaymentService) Cancel(ctx context.Context, tenantID, recordID uuid.UUID, req CancelRequest) (*DividendRecordResponse, error) {
	record, err := s.recordRepo.FindByIDForTenant(ctx, tenantID, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, shared.ErrNotFound
	}

	if err := record.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.save(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Dividend record cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("record_id", recordID.String()),
		zap.String("reason", req.Reason))

	resp := toDividendRecordResponse(record)
	return &resp, nil
}

// save persists the transition; a version conflict means another transition
// landed first and is reported as a state conflict, not retried
func (s *PaymentService) save(ctx context.Context, record *dividend.DividendRecord) error {
	err := s.recordRepo.SaveWithLock(ctx, record)
	if err == nil {
		return nil
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == shared.ErrConcurrencyConflict.Code {
		s.logger.Warn("Concurrent payment transition lost the race",
			zap.String("record_id", record.ID.String()))
		return dividend.NewStateConflictError(
			"Record %s was modified by another transition", record.ID)
	}
	return err
}
