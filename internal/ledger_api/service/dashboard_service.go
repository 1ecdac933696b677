package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/flowi-ledger/internal/analytics"
	"github.com/flowi-ledger/internal/domain/exchange"
)

// RateProvider hands out the rate in force
type RateProvider interface {
	Current() (exchange.Rate, bool)
}

// DashboardSettings are the defaults applied when a caller does not pass its own
type DashboardSettings struct {
	LowStockThreshold int
	TopProductsLimit  int
	TrendDays         int
}

// DashboardServiceImpl implements the DashboardService interface
type DashboardServiceImpl struct {
	loader   InputsLoader
	rates    RateProvider
	settings DashboardSettings
	logger   *slog.Logger
	now      func() time.Time
}

// NewDashboardService creates a new dashboard service evaluating calendar days in loc
func NewDashboardService(logger *slog.Logger, loader InputsLoader, rates RateProvider, settings DashboardSettings, loc *time.Location) DashboardService {
	return &DashboardServiceImpl{
		loader:   loader,
		rates:    rates,
		settings: settings,
		logger:   logger,
		now: func() time.Time {
			return time.Now().In(loc)
		},
	}
}

// Snapshot loads every input, captures the rate once and assembles the dashboard
func (s *DashboardServiceImpl) Snapshot(ctx context.Context) (*analytics.Snapshot, error) {
	loaded, err := s.loader.Load(ctx, PartAll)
	if err != nil {
		return nil, err
	}
	rate, hasRate := s.rates.Current()

	snap := analytics.Assemble(analytics.Inputs{
		Sales:             loaded.Sales,
		Products:          loaded.Products,
		Receivables:       loaded.Receivables,
		Payables:          loaded.Payables,
		Rate:              rate,
		HasRate:           hasRate,
		Now:               s.now(),
		LowStockThreshold: s.settings.LowStockThreshold,
		TopProductsLimit:  s.settings.TopProductsLimit,
	})
	return &snap, nil
}

// TopProducts ranks products by realized revenue; n <= 0 uses the configured limit
func (s *DashboardServiceImpl) TopProducts(ctx context.Context, n int) ([]analytics.ProductRevenue, error) {
	if n <= 0 {
		n = s.settings.TopProductsLimit
	}
	loaded, err := s.loader.Load(ctx, PartSales)
	if err != nil {
		return nil, err
	}
	return analytics.TopProducts(loaded.Sales, n), nil
}

// Trend returns one entry per calendar day ending today; days <= 0 uses the configured window
func (s *DashboardServiceImpl) Trend(ctx context.Context, days int) ([]analytics.DayRevenue, error) {
	if days <= 0 {
		days = s.settings.TrendDays
	}
	loaded, err := s.loader.Load(ctx, PartSales)
	if err != nil {
		return nil, err
	}
	return analytics.DailyTrend(loaded.Sales, s.now(), days), nil
}

// Inventory values the catalog at the current rate; threshold <= 0 uses the configured one
func (s *DashboardServiceImpl) Inventory(ctx context.Context, threshold int) (*analytics.InventorySnapshot, error) {
	if threshold <= 0 {
		threshold = s.settings.LowStockThreshold
	}
	loaded, err := s.loader.Load(ctx, PartProducts)
	if err != nil {
		return nil, err
	}
	rate, hasRate := s.rates.Current()
	inv := analytics.Inventory(loaded.Products, threshold, rate, hasRate)
	return &inv, nil
}
