package service

import (
	"context"
	"log/slog"

	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RateServiceImpl implements the RateService interface over the rate manager
type RateServiceImpl struct {
	manager *exchange.Manager
	logger  *slog.Logger
}

// NewRateService creates a new rate service
func NewRateService(logger *slog.Logger, manager *exchange.Manager) RateService {
	return &RateServiceImpl{
		manager: manager,
		logger:  logger,
	}
}

// Current returns the rate in force or exchange.ErrNoRate
func (s *RateServiceImpl) Current(_ context.Context) (*exchange.Rate, error) {
	rate, ok := s.manager.Current()
	if !ok {
		return nil, exchange.ErrNoRate
	}
	return &rate, nil
}

// SetRate records a manually entered or fed rate
func (s *RateServiceImpl) SetRate(ctx context.Context, value float64, source string) (*exchange.Rate, error) {
	if source == "" {
		source = "manual"
	}
	rate, err := s.manager.SetRate(ctx, value, source)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// History lists recorded rates, newest first
func (s *RateServiceImpl) History(ctx context.Context, limit int) ([]exchange.Rate, error) {
	return s.manager.History(ctx, limit)
}

// Convert reads the current rate once and converts with it.
// A same-currency conversion succeeds even before any rate is set.
func (s *RateServiceImpl) Convert(_ context.Context, amount decimal.Decimal, from, to shared.Currency) (shared.Money, *exchange.Rate, error) {
	source, err := shared.NewMoney(amount, from)
	if err != nil {
		return shared.Money{}, nil, err
	}
	rate, ok := s.manager.Current()
	money, err := rate.ConvertMoney(source, to)
	if err != nil {
		return shared.Money{}, nil, err
	}
	if !ok {
		return money, nil, nil
	}
	return money, &rate, nil
}

// RateChangePublisher returns a subscriber that publishes every new rate as a rate.updated event
func RateChangePublisher(logger *slog.Logger, publisher EventPublisher) exchange.Subscriber {
	return func(ctx context.Context, rate exchange.Rate) {
		event := shared.NewEvent(shared.EventRateUpdated, rate, rate.CapturedAt)
		event.CorrelationID = shared.CorrelationIDFromContext(ctx)
		if err := publisher.Publish(ctx, rate.ID.String(), event); err != nil {
			logger.Error("Failed to publish rate event", "rate_id", rate.ID, "error", err)
		}
	}
}

// RateChangeLogger returns a subscriber that writes one log line per new rate
func RateChangeLogger(logger *slog.Logger) exchange.Subscriber {
	return func(ctx context.Context, rate exchange.Rate) {
		logger.Info("Exchange rate updated",
			"rate_id", rate.ID,
			"usd_to_local", rate.USDToLocal.String(),
			"source", rate.Source,
			"correlation_id", shared.CorrelationIDFromContext(ctx),
		)
	}
}
