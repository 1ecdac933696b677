package exchange

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) Append(ctx context.Context, rate Rate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRateRepository) Latest(ctx context.Context) (*Rate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Rate), args.Error(1)
}

func (m *MockRateRepository) History(ctx context.Context, limit int) ([]Rate, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Rate), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRate(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		r, err := NewRate(36.5, "manual", now)
		require.NoError(t, err)
		assert.Equal(t, "36.5", r.USDToLocal.String())
		assert.Equal(t, now, r.CapturedAt)
		assert.NotEmpty(t, r.ID)
	})

	for name, v := range map[string]float64{
		"zero":     0,
		"negative": -1,
		"NaN":      math.NaN(),
		"+Inf":     math.Inf(1),
		"-Inf":     math.Inf(-1),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewRate(v, "manual", now)
			assert.ErrorIs(t, err, InvalidRate{})
		})
	}
}

func TestConvert(t *testing.T) {
	rate := Rate{USDToLocal: decimal.RequireFromString("36.5")}

	t.Run("identity", func(t *testing.T) {
		out, err := Convert(decimal.NewFromInt(12), shared.CurrencyVES, shared.CurrencyVES, Rate{})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(12).Equal(out))
	})

	t.Run("USD to VES multiplies", func(t *testing.T) {
		out, err := Convert(decimal.NewFromInt(10), shared.CurrencyUSD, shared.CurrencyVES, rate)
		require.NoError(t, err)
		assert.Equal(t, "365", out.String())
	})

	t.Run("VES to USD divides", func(t *testing.T) {
		out, err := Convert(decimal.NewFromInt(1460), shared.CurrencyVES, shared.CurrencyUSD, rate)
		require.NoError(t, err)
		assert.Equal(t, "40", out.String())
	})

	t.Run("missing rate", func(t *testing.T) {
		_, err := Convert(decimal.NewFromInt(1), shared.CurrencyUSD, shared.CurrencyVES, Rate{})
		assert.ErrorIs(t, err, ErrNoRate)
	})

	t.Run("unknown currency", func(t *testing.T) {
		_, err := Convert(decimal.NewFromInt(1), shared.Currency("EUR"), shared.CurrencyVES, rate)
		assert.ErrorIs(t, err, shared.ErrInvalidCurrency)
	})

	t.Run("round trip", func(t *testing.T) {
		tolerance := decimal.New(1, -9)
		for _, r := range []string{"36.5", "0.0137", "7", "1234.5678"} {
			rr := Rate{USDToLocal: decimal.RequireFromString(r)}
			for _, x := range []string{"0.01", "1", "99.99", "123456.789"} {
				amount := decimal.RequireFromString(x)
				ves, err := Convert(amount, shared.CurrencyUSD, shared.CurrencyVES, rr)
				require.NoError(t, err)
				back, err := Convert(ves, shared.CurrencyVES, shared.CurrencyUSD, rr)
				require.NoError(t, err)
				assert.True(t, back.Sub(amount).Abs().LessThan(tolerance), "rate %s amount %s came back as %s", r, x, back)
			}
		}
	})

	t.Run("ConvertMoney", func(t *testing.T) {
		m, err := rate.ConvertMoney(shared.Money{Amount: decimal.NewFromInt(2), Currency: shared.CurrencyUSD}, shared.CurrencyVES)
		require.NoError(t, err)
		assert.Equal(t, shared.CurrencyVES, m.Currency)
		assert.Equal(t, "73", m.Amount.String())
	})
}

func TestManager_SetRate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success notifies subscribers in order", func(t *testing.T) {
		repo := new(MockRateRepository)
		repo.On("Append", ctx, mock.AnythingOfType("exchange.Rate")).Return(nil).Once()
		m := NewManager(repo, newTestLogger())

		var calls []string
		m.Subscribe(func(_ context.Context, r Rate) { calls = append(calls, "first:"+r.USDToLocal.String()) })
		m.Subscribe(func(_ context.Context, r Rate) {
			current, ok := m.Current()
			require.True(t, ok)
			assert.Equal(t, r.ID, current.ID)
			calls = append(calls, "second")
		})

		rate, err := m.SetRate(ctx, 36.5, "manual")
		require.NoError(t, err)
		assert.Equal(t, "36.5", rate.USDToLocal.String())
		assert.Equal(t, []string{"first:36.5", "second"}, calls)
		repo.AssertExpectations(t)
	})

	t.Run("invalid rate keeps prior rate", func(t *testing.T) {
		m := NewManager(nil, newTestLogger())
		_, err := m.SetRate(ctx, 40, "manual")
		require.NoError(t, err)

		notified := false
		m.Subscribe(func(context.Context, Rate) { notified = true })

		_, err = m.SetRate(ctx, -3, "manual")
		var invalid InvalidRate
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, -3.0, invalid.Value)

		current, ok := m.Current()
		require.True(t, ok)
		assert.Equal(t, "40", current.USDToLocal.String())
		assert.False(t, notified)
	})

	t.Run("persistence failure keeps prior rate", func(t *testing.T) {
		repo := new(MockRateRepository)
		repo.On("Append", ctx, mock.Anything).Return(errors.New("db down")).Once()
		m := NewManager(repo, newTestLogger())

		_, err := m.SetRate(ctx, 38, "manual")
		assert.ErrorIs(t, err, &shared.PersistenceError{Op: "save"})
		_, ok := m.Current()
		assert.False(t, ok)
	})

	t.Run("concurrent sets leave the newest persisted rate current", func(t *testing.T) {
		repo := new(MockRateRepository)
		var (
			appendMu sync.Mutex
			appended []Rate
		)
		repo.On("Append", ctx, mock.AnythingOfType("exchange.Rate")).
			Run(func(args mock.Arguments) {
				time.Sleep(time.Millisecond)
				appendMu.Lock()
				appended = append(appended, args.Get(1).(Rate))
				appendMu.Unlock()
			}).
			Return(nil)
		m := NewManager(repo, newTestLogger())

		var wg sync.WaitGroup
		for i := 1; i <= 20; i++ {
			wg.Add(1)
			go func(v float64) {
				defer wg.Done()
				_, err := m.SetRate(ctx, v, "feed")
				assert.NoError(t, err)
			}(float64(30 + i))
		}
		wg.Wait()

		require.Len(t, appended, 20)
		current, ok := m.Current()
		require.True(t, ok)
		assert.Equal(t, appended[len(appended)-1].ID, current.ID)
	})

	t.Run("unsubscribe stops notifications", func(t *testing.T) {
		m := NewManager(nil, newTestLogger())
		count := 0
		unsubscribe := m.Subscribe(func(context.Context, Rate) { count++ })
		other := 0
		m.Subscribe(func(context.Context, Rate) { other++ })

		_, _ = m.SetRate(ctx, 1, "a")
		unsubscribe()
		unsubscribe()
		_, _ = m.SetRate(ctx, 2, "b")

		assert.Equal(t, 1, count)
		assert.Equal(t, 2, other)
	})

	t.Run("captured rate is unaffected by later updates", func(t *testing.T) {
		m := NewManager(nil, newTestLogger())
		_, _ = m.SetRate(ctx, 10, "a")
		captured, _ := m.Current()

		_, _ = m.SetRate(ctx, 20, "b")

		out, err := Convert(decimal.NewFromInt(1), shared.CurrencyUSD, shared.CurrencyVES, captured)
		require.NoError(t, err)
		assert.Equal(t, "10", out.String())
	})
}

func TestManager_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("latest from repository", func(t *testing.T) {
		repo := new(MockRateRepository)
		latest := &Rate{USDToLocal: decimal.RequireFromString("39.1"), Source: "feed"}
		repo.On("Latest", ctx).Return(latest, nil).Once()
		m := NewManager(repo, newTestLogger())

		require.NoError(t, m.Restore(ctx, 36.5))
		current, ok := m.Current()
		require.True(t, ok)
		assert.Equal(t, "39.1", current.USDToLocal.String())
		repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("seed when empty", func(t *testing.T) {
		repo := new(MockRateRepository)
		repo.On("Latest", ctx).Return(nil, nil).Once()
		repo.On("Append", ctx, mock.MatchedBy(func(r Rate) bool { return r.Source == "seed" })).Return(nil).Once()
		m := NewManager(repo, newTestLogger())

		require.NoError(t, m.Restore(ctx, 36.5))
		current, ok := m.Current()
		require.True(t, ok)
		assert.Equal(t, "36.5", current.USDToLocal.String())
		repo.AssertExpectations(t)
	})

	t.Run("load failure", func(t *testing.T) {
		repo := new(MockRateRepository)
		repo.On("Latest", ctx).Return(nil, errors.New("boom")).Once()
		m := NewManager(repo, newTestLogger())

		err := m.Restore(ctx, 0)
		assert.ErrorIs(t, err, &shared.PersistenceError{Op: "load", Collection: "exchange_rates"})
	})
}

func TestManager_History(t *testing.T) {
	ctx := context.Background()

	t.Run("in-memory", func(t *testing.T) {
		m := NewManager(nil, newTestLogger())
		rates, err := m.History(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, rates)
	})

	t.Run("from repository", func(t *testing.T) {
		repo := new(MockRateRepository)
		repo.On("History", ctx, 2).Return([]Rate{{Source: "b"}, {Source: "a"}}, nil).Once()
		m := NewManager(repo, newTestLogger())
		rates, err := m.History(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, rates, 2)
		assert.Equal(t, "b", rates[0].Source)
	})
}
