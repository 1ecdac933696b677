package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flowi-ledger/internal/analytics"
	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/flowi-ledger/internal/ledger_api/middleware"
	"github.com/flowi-ledger/internal/ledger_api/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	return r
}

// doRequest serves one request and decodes the envelope; data is left raw for the caller
func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, Response, json.RawMessage) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	req, _ := http.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var envelope struct {
		Response
		Data json.RawMessage `json:"data,omitempty"`
	}
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	}
	return rr, envelope.Response, envelope.Data
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

var (
	_ service.RateService       = (*MockRateService)(nil)
	_ service.ObligationService = (*MockObligationService)(nil)
	_ service.DashboardService  = (*MockDashboardService)(nil)
)
