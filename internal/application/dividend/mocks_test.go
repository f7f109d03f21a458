package dividend

import (
	"context"
	"time"

	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/coopfleet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDistributionRepository is a mock implementation of dividend.DistributionRepository
type MockDistributionRepository struct {
	mock.Mock
}

func (m *MockDistributionRepository) Create(ctx context.Context, d *dividend.Distribution) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDistributionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*dividend.Distribution, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dividend.Distribution), args.Error(1)
}

func (m *MockDistributionRepository) FindByIDWithRecords(ctx context.Context, tenantID, id uuid.UUID) (*dividend.Distribution, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dividend.Distribution), args.Error(1)
}

func (m *MockDistributionRepository) FindActiveByPeriodKey(ctx context.Context, tenantID uuid.UUID, memberType dividend.MemberType, periodStart, periodEnd time.Time) (*dividend.Distribution, error) {
	args := m.Called(ctx, tenantID, memberType, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dividend.Distribution), args.Error(1)
}

func (m *MockDistributionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*dividend.Distribution, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*dividend.Distribution), args.Get(1).(int64), args.Error(2)
}

func (m *MockDistributionRepository) SaveWithLock(ctx context.Context, d *dividend.Distribution) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDistributionRepository) Void(ctx context.Context, d *dividend.Distribution) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

// MockDividendRecordRepository is a mock implementation of dividend.DividendRecordRepository
type MockDividendRecordRepository struct {
	mock.Mock
}

func (m *MockDividendRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*dividend.DividendRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dividend.DividendRecord), args.Error(1)
}

func (m *MockDividendRecordRepository) FindByDistribution(ctx context.Context, tenantID, distributionID uuid.UUID) ([]*dividend.DividendRecord, error) {
	args := m.Called(ctx, tenantID, distributionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dividend.DividendRecord), args.Error(1)
}

func (m *MockDividendRecordRepository) FindByMember(ctx context.Context, tenantID uuid.UUID, memberType dividend.MemberType, memberID uuid.UUID, limit int) ([]*dividend.DividendRecord, error) {
	args := m.Called(ctx, tenantID, memberType, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dividend.DividendRecord), args.Error(1)
}

func (m *MockDividendRecordRepository) SaveWithLock(ctx context.Context, record *dividend.DividendRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Stub collaborators for the computation pipeline

type stubPatronageSource struct {
	patronage map[uuid.UUID]int64
	err       error
}

func (s stubPatronageSource) AggregatePatronage(context.Context, uuid.UUID, valueobject.Period) ([]dividend.MemberPatronage, error) {
	if s.err != nil {
		return nil, s.err
	}
	rows := make([]dividend.MemberPatronage, 0, len(s.patronage))
	for id, value := range s.patronage {
		rows = append(rows, dividend.MemberPatronage{MemberID: id, PatronageValue: value})
	}
	return rows, nil
}

type stubLedger struct {
	financials dividend.PeriodFinancials
	err        error
}

func (s stubLedger) PeriodFinancials(context.Context, uuid.UUID, valueobject.Period) (dividend.PeriodFinancials, error) {
	return s.financials, s.err
}

type stubSettings struct {
	rate decimal.Decimal
}

func (s stubSettings) DividendRate(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return s.rate, nil
}
