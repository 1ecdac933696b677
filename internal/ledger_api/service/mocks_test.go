package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/flowi-ledger/internal/domain/counterparty"
	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type MockObligationRepository struct {
	mock.Mock
}

func (m *MockObligationRepository) Load(ctx context.Context, kind obligation.Kind) ([]obligation.Obligation, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]obligation.Obligation), args.Error(1)
}

func (m *MockObligationRepository) Save(ctx context.Context, kind obligation.Kind, entries []obligation.Obligation) error {
	args := m.Called(ctx, kind, entries)
	return args.Error(0)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) LoadCustomers(ctx context.Context) ([]counterparty.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]counterparty.Customer), args.Error(1)
}

func (m *MockDirectory) LoadSuppliers(ctx context.Context) ([]counterparty.Supplier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]counterparty.Supplier), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

type MockSalesSource struct {
	mock.Mock
}

func (m *MockSalesSource) LoadSales(ctx context.Context) ([]sales.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Record), args.Error(1)
}

func (m *MockSalesSource) LoadProducts(ctx context.Context) ([]sales.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Product), args.Error(1)
}

type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) Append(ctx context.Context, rate exchange.Rate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRateRepository) Latest(ctx context.Context) (*exchange.Rate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exchange.Rate), args.Error(1)
}

func (m *MockRateRepository) History(ctx context.Context, limit int) ([]exchange.Rate, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exchange.Rate), args.Error(1)
}

type MockObligationService struct {
	mock.Mock
}

func (m *MockObligationService) List(ctx context.Context, kind obligation.Kind, c obligation.Criteria) ([]obligation.Obligation, error) {
	args := m.Called(ctx, kind, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]obligation.Obligation), args.Error(1)
}

func (m *MockObligationService) Get(ctx context.Context, kind obligation.Kind, id uuid.UUID) (*obligation.Obligation, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*obligation.Obligation), args.Error(1)
}

func (m *MockObligationService) Create(ctx context.Context, kind obligation.Kind, in obligation.Input) (*obligation.Obligation, error) {
	args := m.Called(ctx, kind, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*obligation.Obligation), args.Error(1)
}

func (m *MockObligationService) Update(ctx context.Context, kind obligation.Kind, id uuid.UUID, in obligation.Input) (*obligation.Obligation, error) {
	args := m.Called(ctx, kind, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*obligation.Obligation), args.Error(1)
}

func (m *MockObligationService) Delete(ctx context.Context, kind obligation.Kind, id uuid.UUID) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockObligationService) MarkPaid(ctx context.Context, kind obligation.Kind, id uuid.UUID) (*obligation.Obligation, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*obligation.Obligation), args.Error(1)
}

func (m *MockObligationService) Cancel(ctx context.Context, kind obligation.Kind, id uuid.UUID) (*obligation.Obligation, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*obligation.Obligation), args.Error(1)
}

func (m *MockObligationService) Reconcile(ctx context.Context, kind obligation.Kind) ([]uuid.UUID, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockObligationService) Summary(ctx context.Context, kind obligation.Kind) (obligation.Summary, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(obligation.Summary), args.Error(1)
}

func (m *MockObligationService) NextReference(ctx context.Context, kind obligation.Kind) (string, error) {
	args := m.Called(ctx, kind)
	return args.String(0), args.Error(1)
}

type stubRates struct {
	rate exchange.Rate
	ok   bool
}

func (s stubRates) Current() (exchange.Rate, bool) {
	return s.rate, s.ok
}

var (
	_ obligation.Repository  = (*MockObligationRepository)(nil)
	_ counterparty.Directory = (*MockDirectory)(nil)
	_ EventPublisher         = (*MockPublisher)(nil)
	_ sales.Source           = (*MockSalesSource)(nil)
	_ exchange.Repository    = (*MockRateRepository)(nil)
	_ ObligationService      = (*MockObligationService)(nil)
	_ RateProvider           = stubRates{}
	_ RateProvider           = (*exchange.Manager)(nil)
)
