package dividend

import (
	"context"
	"errors"
	"time"

	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/coopfleet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DistributionConfig tunes the computation pipeline
type DistributionConfig struct {
	// ComputeTimeout bounds a single distribution computation end to end
	ComputeTimeout time.Duration

	// MaxRetries is the maximum number of attempts for transient failures
	MaxRetries int

	// RetryBaseDelay is the base delay between retries (exponential backoff)
	RetryBaseDelay time.Duration

	// IdempotencyTTL is how long a request key stays deduplicated
	IdempotencyTTL time.Duration
}

// DefaultDistributionConfig returns default configuration
func DefaultDistributionConfig() DistributionConfig {
	return DistributionConfig{
		ComputeTimeout: 30 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: 200 * time.Millisecond,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// DistributionService orchestrates the distribution pipeline: patronage
// aggregation, surplus calculation, allocation, and the atomic persist.
type DistributionService struct {
	distributionRepo dividend.DistributionRepository
	sources          dividend.PatronageSources
	calculator       *dividend.SurplusCalculator
	idempotency      shared.IdempotencyStore
	config           DistributionConfig
	logger           *zap.Logger
}

// NewDistributionService creates a new DistributionService
func NewDistributionService(
	distributionRepo dividend.DistributionRepository,
	sources dividend.PatronageSources,
	calculator *dividend.SurplusCalculator,
	idempotency shared.IdempotencyStore,
	config DistributionConfig,
	logger *zap.Logger,
) *DistributionService {
	return &DistributionService{
		distributionRepo: distributionRepo,
		sources:          sources,
		calculator:       calculator,
		idempotency:      idempotency,
		config:           config,
		logger:           logger,
	}
}

// CreateDistributionRequest represents a request to compute a distribution
type CreateDistributionRequest struct {
	MemberType  string    `json:"member_type" binding:"required"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`

	// IdempotencyKey, when set, dedupes retried submissions of the same
	// request. Optional; the period-key uniqueness constraint is the real
	// guard, this just short-circuits known repeats.
	IdempotencyKey string `json:"-"`
}

// DividendRecordResponse represents a dividend record in API responses
type DividendRecordResponse struct {
	ID                  uuid.UUID       `json:"id"`
	DistributionID      uuid.UUID       `json:"distribution_id"`
	MemberID            uuid.UUID       `json:"member_id"`
	MemberType          string          `json:"member_type"`
	PeriodStart         time.Time       `json:"period_start"`
	PeriodEnd           time.Time       `json:"period_end"`
	PatronageValue      int64           `json:"patronage_value"`
	DividendAmount      int64           `json:"dividend_amount"`
	PatronagePercentage decimal.Decimal `json:"patronage_percentage"`
	Status              string          `json:"status"`
	PaymentMethod       string          `json:"payment_method,omitempty"`
	PaymentDate         *time.Time      `json:"payment_date,omitempty"`
	CancelReason        string          `json:"cancel_reason,omitempty"`
	Superseded          bool            `json:"superseded"`
	Version             int             `json:"version"`
}

// DistributionResponse represents a distribution in API responses
type DistributionResponse struct {
	ID              uuid.UUID                `json:"id"`
	TenantID        uuid.UUID                `json:"tenant_id"`
	MemberType      string                   `json:"member_type"`
	PeriodStart     time.Time                `json:"period_start"`
	PeriodEnd       time.Time                `json:"period_end"`
	GrossSurplus    int64                    `json:"gross_surplus"`
	DividendPool    int64                    `json:"dividend_pool"`
	DividendRate    decimal.Decimal          `json:"dividend_rate"`
	TotalPatronage  int64                    `json:"total_patronage"`
	EligibleMembers int                      `json:"eligible_members"`
	Status          string                   `json:"status"`
	Flags           []string                 `json:"flags,omitempty"`
	DistributedAt   time.Time                `json:"distributed_at"`
	FinalizedAt     *time.Time               `json:"finalized_at,omitempty"`
	VoidedAt        *time.Time               `json:"voided_at,omitempty"`
	VoidReason      string                   `json:"void_reason,omitempty"`
	Records         []DividendRecordResponse `json:"records,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	Version         int                      `json:"version"`
}

// DistributionListFilter defines filtering options for distribution lists
type DistributionListFilter struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// CreateDistribution computes and persists a distribution for a period.
// The whole pipeline runs under ComputeTimeout; transient infrastructure
// failures are retried with exponential backoff, domain failures never are.
func (s *DistributionService) CreateDistribution(ctx context.Context, tenantID uuid.UUID, req CreateDistributionRequest) (*DistributionResponse, error) {
	memberType, ok := dividend.ParseMemberType(req.MemberType)
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT",
			"Member type must be customer or driver, got "+req.MemberType)
	}

	period, err := valueobject.NewPeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.ComputeTimeout)
	defer cancel()

	if req.IdempotencyKey != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, req.IdempotencyKey, s.config.IdempotencyTTL)
		if err != nil {
			s.logger.Warn("Idempotency check failed, proceeding without dedupe",
				zap.Error(err))
		} else if !fresh {
			// Replay of a request we already served: hand back the
			// distribution that earlier attempt created.
			existing, err := s.distributionRepo.FindActiveByPeriodKey(ctx, tenantID, memberType, period.Start(), period.End())
			if err != nil {
				return nil, err
			}
			if existing != nil {
				s.logger.Info("Returning existing distribution for replayed request",
					zap.String("idempotency_key", req.IdempotencyKey),
					zap.String("distribution_id", existing.ID.String()))
				return toDistributionResponse(existing, false), nil
			}
			// Key marked but nothing persisted: the first attempt died
			// mid-flight, so fall through and compute.
		}
	}

	var distribution *dividend.Distribution
	err = s.withRetry(ctx, func() error {
		distribution, err = s.compute(ctx, tenantID, memberType, period)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Distribution computed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("distribution_id", distribution.ID.String()),
		zap.String("member_type", memberType.String()),
		zap.String("period", period.String()),
		zap.Int64("dividend_pool", distribution.DividendPool.Amount()),
		zap.Int("eligible_members", distribution.EligibleMembers))

	return toDistributionResponse(distribution, true), nil
}

// compute runs one attempt of the full pipeline
func (s *DistributionService) compute(ctx context.Context, tenantID uuid.UUID, memberType dividend.MemberType, period valueobject.Period) (*dividend.Distribution, error) {
	source, ok := s.sources.For(memberType)
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT",
			"No patronage source configured for member type "+memberType.String())
	}

	rows, err := source.AggregatePatronage(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}
	patronage := dividend.PatronageByMember(rows)

	surplus, err := s.calculator.Calculate(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}

	allocation, err := dividend.Allocate(surplus.DividendPool, patronage)
	if err != nil {
		return nil, err
	}

	distribution, err := dividend.NewDistribution(tenantID, memberType, period, surplus, allocation)
	if err != nil {
		return nil, err
	}

	if !distribution.HasEligibleMembers() {
		s.logger.Warn("Zero patronage period, distribution persisted with no records",
			zap.String("tenant_id", tenantID.String()),
			zap.String("member_type", memberType.String()),
			zap.String("period", period.String()))
	}

	if err := s.distributionRepo.Create(ctx, distribution); err != nil {
		return nil, err
	}
	return distribution, nil
}

// withRetry runs fn, retrying transient failures with exponential backoff.
// Domain errors are final: a duplicate key or bad input will not improve
// on a second attempt.
func (s *DistributionService) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.config.RetryBaseDelay * time.Duration(1<<(attempt-1))
			s.logger.Warn("Retrying distribution computation",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var domainErr *shared.DomainError
		if errors.As(lastErr, &domainErr) {
			return lastErr
		}
		if errors.Is(lastErr, context.DeadlineExceeded) || errors.Is(lastErr, context.Canceled) {
			return lastErr
		}
	}
	return lastErr
}

// GetDistribution loads a distribution with its records
func (s *DistributionService) GetDistribution(ctx context.Context, tenantID, id uuid.UUID) (*DistributionResponse, error) {
	distribution, err := s.distributionRepo.FindByIDWithRecords(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if distribution == nil {
		return nil, shared.ErrNotFound
	}
	return toDistributionResponse(distribution, true), nil
}

// ListDistributions lists a tenant's distributions newest first
func (s *DistributionService) ListDistributions(ctx context.Context, tenantID uuid.UUID, filter DistributionListFilter) ([]*DistributionResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	distributions, total, err := s.distributionRepo.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*DistributionResponse, len(distributions))
	for i, d := range distributions {
		responses[i] = toDistributionResponse(d, false)
	}
	return responses, total, nil
}

// FinalizeDistribution accepts a computed distribution
func (s *DistributionService) FinalizeDistribution(ctx context.Context, tenantID, id uuid.UUID) (*DistributionResponse, error) {
	distribution, err := s.distributionRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if distribution == nil {
		return nil, shared.ErrNotFound
	}

	if err := distribution.Finalize(); err != nil {
		return nil, err
	}
	if err := s.distributionRepo.SaveWithLock(ctx, distribution); err != nil {
		return nil, err
	}

	s.logger.Info("Distribution finalized",
		zap.String("tenant_id", tenantID.String()),
		zap.String("distribution_id", id.String()))

	return toDistributionResponse(distribution, false), nil
}

// VoidDistribution marks a computed distribution superseded, along with all
// of its records, freeing the period key for recomputation
func (s *DistributionService) VoidDistribution(ctx context.Context, tenantID, id uuid.UUID, reason string) (*DistributionResponse, error) {
	distribution, err := s.distributionRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if distribution == nil {
		return nil, shared.ErrNotFound
	}

	if err := distribution.Void(reason); err != nil {
		return nil, err
	}
	if err := s.distributionRepo.Void(ctx, distribution); err != nil {
		return nil, err
	}

	s.logger.Info("Distribution voided",
		zap.String("tenant_id", tenantID.String()),
		zap.String("distribution_id", id.String()),
		zap.String("reason", reason))

	return toDistributionResponse(distribution, false), nil
}

func toDistributionResponse(d *dividend.Distribution, includeRecords bool) *DistributionResponse {
	resp := &DistributionResponse{
		ID:              d.ID,
		TenantID:        d.TenantID,
		MemberType:      d.MemberType.String(),
		PeriodStart:     d.PeriodStart,
		PeriodEnd:       d.PeriodEnd,
		GrossSurplus:    d.GrossSurplus.Amount(),
		DividendPool:    d.DividendPool.Amount(),
		DividendRate:    d.DividendRate,
		TotalPatronage:  d.TotalPatronage,
		EligibleMembers: d.EligibleMembers,
		Status:          string(d.Status),
		DistributedAt:   d.DistributedAt,
		FinalizedAt:     d.FinalizedAt,
		VoidedAt:        d.VoidedAt,
		VoidReason:      d.VoidReason,
		CreatedAt:       d.CreatedAt,
		Version:         d.Version,
	}
	if !d.HasEligibleMembers() {
		resp.Flags = append(resp.Flags, dividend.ErrCodeZeroPatronage)
	}
	if includeRecords {
		resp.Records = make([]DividendRecordResponse, len(d.Records))
		for i := range d.Records {
			resp.Records[i] = toDividendRecordResponse(&d.Records[i])
		}
	}
	return resp
}

func toDividendRecordResponse(r *dividend.DividendRecord) DividendRecordResponse {
	return DividendRecordResponse{
		ID:                  r.ID,
		DistributionID:      r.DistributionID,
		MemberID:            r.MemberID,
		MemberType:          r.MemberType.String(),
		PeriodStart:         r.PeriodStart,
		PeriodEnd:           r.PeriodEnd,
		PatronageValue:      r.PatronageValue,
		DividendAmount:      r.DividendAmount.Amount(),
		PatronagePercentage: r.PatronagePercentage,
		Status:              string(r.Status),
		PaymentMethod:       string(r.PaymentMethod),
		PaymentDate:         r.PaymentDate,
		CancelReason:        r.CancelReason,
		Superseded:          r.Superseded,
		Version:             r.Version,
	}
}
