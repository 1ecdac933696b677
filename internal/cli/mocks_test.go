package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/flowi-ledger/internal/analytics"
	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type testServices struct {
	rates       *MockRateService
	obligations *MockObligationService
	dashboard   *MockDashboardService
	released    bool
}

func newTestServices() *testServices {
	return &testServices{
		rates:       new(MockRateService),
		obligations: new(MockObligationService),
		dashboard:   new(MockDashboardService),
	}
}

func (ts *testServices) opener() Opener {
	return func(_ context.Context, _ string) (*Services, func(), error) {
		return &Services{Rates: ts.rates, Obligations: ts.obligations, Dashboard: ts.dashboard}, func() { ts.released = true }, nil
	}
}

// run executes ledgerctl with args and returns what it printed
func run(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(open)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) Current(ctx context.Context) (*exchange.Rate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exchange.Rate), args.Error(1)
}

func (m *MockRateService) SetRate(ctx context.Context, value float64, source string) (*exchange.Rate, error) {
	args := m.Called(ctx, value, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exchange.Rate), args.Error(1)
}

func (m *MockRateService) History(ctx context.Context, limit int) ([]exchange.Rate, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exchange.Rate), args.Error(1)
}

func (m *MockRateService) Convert(ctx context.Context, amount decimal.Decimal, from, to shared.Currency) (shared.Money, *exchange.Rate, error) {
	args := m.Called(ctx, amount, from, to)
	var rate *exchange.Rate
	if args.Get(1) != nil {
		rate = args.Get(1).(*exchange.Rate)
	}
	return args.Get(0).(shared.Money), rate, args.Error(2)
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

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Snapshot(ctx context.Context) (*analytics.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.Snapshot), args.Error(1)
}

func (m *MockDashboardService) TopProducts(ctx context.Context, n int) ([]analytics.ProductRevenue, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.ProductRevenue), args.Error(1)
}

func (m *MockDashboardService) Trend(ctx context.Context, days int) ([]analytics.DayRevenue, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.DayRevenue), args.Error(1)
}

func (m *MockDashboardService) Inventory(ctx context.Context, threshold int) (*analytics.InventorySnapshot, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.InventorySnapshot), args.Error(1)
}
