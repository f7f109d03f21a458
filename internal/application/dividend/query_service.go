package dividend

import (
	"context"

	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// QueryService serves read-only dividend views. Summaries are folded from
// the same record set that is returned, so the numbers a client displays
// always agree with the rows next to them.
type QueryService struct {
	recordRepo dividend.DividendRecordRepository
	logger     *zap.Logger
}

// NewQueryService creates a new QueryService
func NewQueryService(recordRepo dividend.DividendRecordRepository, logger *zap.Logger) *QueryService {
	return &QueryService{
		recordRepo: recordRepo,
		logger:     logger,
	}
}

// MemberHistorySummary aggregates a member's dividend records. Cancelled
// records count toward the record and patronage totals but never toward
// money totals.
type MemberHistorySummary struct {
	TotalRecords   int   `json:"total_records"`
	TotalReceived  int64 `json:"total_received"`
	TotalPending   int64 `json:"total_pending"`
	TotalPatronage int64 `json:"total_patronage"`
	PaidRecords    int   `json:"paid_records"`
	PendingRecords int   `json:"pending_records"`
	CancelledCount int   `json:"cancelled_records"`
}

// MemberHistoryResponse is a member's dividend history, newest period first
type MemberHistoryResponse struct {
	MemberID   uuid.UUID                `json:"member_id"`
	MemberType string                   `json:"member_type"`
	Summary    MemberHistorySummary     `json:"summary"`
	Records    []DividendRecordResponse `json:"records"`
}

// MemberHistory returns a member's non-superseded dividend records of one
// member type ordered by period start descending, with a summary derived
// from the same set
func (s *QueryService) MemberHistory(ctx context.Context, tenantID uuid.UUID, memberType dividend.MemberType, memberID uuid.UUID, limit int) (*MemberHistoryResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.recordRepo.FindByMember(ctx, tenantID, memberType, memberID, limit)
	if err != nil {
		return nil, err
	}

	resp := &MemberHistoryResponse{
		MemberID:   memberID,
		MemberType: memberType.String(),
		Records:    make([]DividendRecordResponse, len(records)),
	}
	for i, r := range records {
		resp.Records[i] = toDividendRecordResponse(r)
		resp.Summary.TotalRecords++
		resp.Summary.TotalPatronage += r.PatronageValue
		switch r.Status {
		case dividend.RecordStatusPaid:
			resp.Summary.PaidRecords++
			resp.Summary.TotalReceived += r.DividendAmount.Amount()
		case dividend.RecordStatusPending:
			resp.Summary.PendingRecords++
			resp.Summary.TotalPending += r.DividendAmount.Amount()
		case dividend.RecordStatusCancelled:
			resp.Summary.CancelledCount++
		}
	}

	return resp, nil
}

// DistributionRecords returns all records of one distribution ordered by
// member ID
func (s *QueryService) DistributionRecords(ctx context.Context, tenantID, distributionID uuid.UUID) ([]DividendRecordResponse, error) {
	records, err := s.recordRepo.FindByDistribution(ctx, tenantID, distributionID)
	if err != nil {
		return nil, err
	}

	responses := make([]DividendRecordResponse, len(records))
	for i, r := range records {
		responses[i] = toDividendRecordResponse(r)
	}
	return responses, nil
}
