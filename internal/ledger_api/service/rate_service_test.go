package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRateService_CurrentAndSet(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateRepository)
	svc := NewRateService(newTestLogger(), exchange.NewManager(repo, newTestLogger()))

	_, err := svc.Current(ctx)
	assert.ErrorIs(t, err, exchange.ErrNoRate)

	repo.On("Append", ctx, mock.MatchedBy(func(r exchange.Rate) bool {
		return r.Source == "manual" && r.USDToLocal.Equal(decimal.RequireFromString("36.5"))
	})).Return(nil).Once()

	set, err := svc.SetRate(ctx, 36.5, "")
	require.NoError(t, err)
	assert.Equal(t, "manual", set.Source)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, set.ID, current.ID)
	repo.AssertExpectations(t)
}

func TestRateService_SetRateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateRepository)
	svc := NewRateService(newTestLogger(), exchange.NewManager(repo, newTestLogger()))

	_, err := svc.SetRate(ctx, -1, "bcv")
	assert.ErrorIs(t, err, exchange.InvalidRate{})
	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRateService_Convert(t *testing.T) {
	ctx := context.Background()

	t.Run("NoRateSameCurrency", func(t *testing.T) {
		svc := NewRateService(newTestLogger(), exchange.NewManager(nil, newTestLogger()))
		money, rate, err := svc.Convert(ctx, decimal.NewFromInt(10), shared.CurrencyUSD, shared.CurrencyUSD)
		require.NoError(t, err)
		assert.Nil(t, rate)
		assert.Equal(t, "10", money.Amount.String())
		assert.Equal(t, shared.CurrencyUSD, money.Currency)
	})

	t.Run("NoRateCrossCurrency", func(t *testing.T) {
		svc := NewRateService(newTestLogger(), exchange.NewManager(nil, newTestLogger()))
		_, _, err := svc.Convert(ctx, decimal.NewFromInt(10), shared.CurrencyUSD, shared.CurrencyVES)
		assert.ErrorIs(t, err, exchange.ErrNoRate)
	})

	t.Run("UsesCurrentRate", func(t *testing.T) {
		mgr := exchange.NewManager(nil, newTestLogger())
		_, err := mgr.SetRate(ctx, 36.5, "bcv")
		require.NoError(t, err)
		svc := NewRateService(newTestLogger(), mgr)

		money, rate, err := svc.Convert(ctx, decimal.NewFromInt(10), shared.CurrencyUSD, shared.CurrencyVES)
		require.NoError(t, err)
		require.NotNil(t, rate)
		assert.Equal(t, "365", money.Amount.String())
		assert.Equal(t, shared.CurrencyVES, money.Currency)

		back, _, err := svc.Convert(ctx, money.Amount, shared.CurrencyVES, shared.CurrencyUSD)
		require.NoError(t, err)
		assert.True(t, back.Amount.Equal(decimal.NewFromInt(10)))
	})

	t.Run("InvalidCurrency", func(t *testing.T) {
		svc := NewRateService(newTestLogger(), exchange.NewManager(nil, newTestLogger()))
		_, _, err := svc.Convert(ctx, decimal.NewFromInt(1), "EUR", shared.CurrencyUSD)
		assert.ErrorIs(t, err, shared.ErrInvalidCurrency)
	})
}

func TestRateService_History(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateRepository)
	svc := NewRateService(newTestLogger(), exchange.NewManager(repo, newTestLogger()))

	rates := []exchange.Rate{{ID: uuid.New(), USDToLocal: decimal.NewFromInt(37)}, {ID: uuid.New(), USDToLocal: decimal.NewFromInt(36)}}
	repo.On("History", ctx, 2).Return(rates, nil).Once()
	got, err := svc.History(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, rates, got)

	repo.On("History", ctx, 5).Return(nil, errors.New("timeout")).Once()
	_, err = svc.History(ctx, 5)
	assert.ErrorIs(t, err, &shared.PersistenceError{Op: "load", Collection: "exchange_rates"})
}

func TestRateChangePublisher(t *testing.T) {
	ctx := shared.ContextWithCorrelationID(context.Background(), "corr-1")
	publisher := new(MockPublisher)
	rate := exchange.Rate{
		ID:         uuid.New(),
		USDToLocal: decimal.RequireFromString("36.5"),
		Source:     "bcv",
		CapturedAt: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
	}

	publisher.On("Publish", ctx, rate.ID.String(), mock.MatchedBy(func(v interface{}) bool {
		e, ok := v.(shared.Event)
		return ok && e.Type == shared.EventRateUpdated && e.CorrelationID == "corr-1" && e.OccurredAt.Equal(rate.CapturedAt)
	})).Return(errors.New("broker down")).Once()

	// a publish failure is logged, never raised into the rate manager
	RateChangePublisher(newTestLogger(), publisher)(ctx, rate)
	publisher.AssertExpectations(t)
}

func TestRateChangeLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	rate := exchange.Rate{ID: uuid.New(), USDToLocal: decimal.RequireFromString("40.1"), Source: "bcv"}

	RateChangeLogger(logger)(shared.ContextWithCorrelationID(context.Background(), "corr-9"), rate)

	out := buf.String()
	assert.Contains(t, out, `"msg":"Exchange rate updated"`)
	assert.Contains(t, out, `"usd_to_local":"40.1"`)
	assert.Contains(t, out, `"source":"bcv"`)
	assert.Contains(t, out, `"correlation_id":"corr-9"`)
}
