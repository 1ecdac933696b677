package service

import (
	"context"

	"github.com/flowi-ledger/internal/analytics"
	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventPublisher is where ledger events go once a change is stored
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// ObligationService defines the receivable and payable operations.
// Every read reconciles overdue status against the clock and persists the result.
type ObligationService interface {
	// List returns the reconciled collection narrowed by c, in stored order
	List(ctx context.Context, kind obligation.Kind, c obligation.Criteria) ([]obligation.Obligation, error)

	// Get returns ErrObligationNotFound if id is not in the collection
	Get(ctx context.Context, kind obligation.Kind, id uuid.UUID) (*obligation.Obligation, error)

	// Create validates in, resolves the counterparty name and stores a pending entry
	Create(ctx context.Context, kind obligation.Kind, in obligation.Input) (*obligation.Obligation, error)

	// Update re-validates and rewrites the editable fields; the due date is recomputed from creation time
	Update(ctx context.Context, kind obligation.Kind, id uuid.UUID, in obligation.Input) (*obligation.Obligation, error)

	// Delete removes id; removing an absent id succeeds and leaves the collection untouched
	Delete(ctx context.Context, kind obligation.Kind, id uuid.UUID) error

	// MarkPaid returns InvalidTransition if the entry is already paid or cancelled
	MarkPaid(ctx context.Context, kind obligation.Kind, id uuid.UUID) (*obligation.Obligation, error)

	// Cancel returns InvalidTransition if the entry is already paid or cancelled
	Cancel(ctx context.Context, kind obligation.Kind, id uuid.UUID) (*obligation.Obligation, error)

	// Reconcile applies the overdue transition and returns the ids it moved
	Reconcile(ctx context.Context, kind obligation.Kind) ([]uuid.UUID, error)

	Summary(ctx context.Context, kind obligation.Kind) (obligation.Summary, error)

	// NextReference suggests an unused INV-YYYYMMDD-NNN reference for today
	NextReference(ctx context.Context, kind obligation.Kind) (string, error)
}

// RateService defines the exchange rate operations
type RateService interface {
	// Current returns exchange.ErrNoRate when no rate has been recorded
	Current(ctx context.Context) (*exchange.Rate, error)
	SetRate(ctx context.Context, value float64, source string) (*exchange.Rate, error)
	History(ctx context.Context, limit int) ([]exchange.Rate, error)

	// Convert uses the rate in force when it is called and returns that rate with the result
	Convert(ctx context.Context, amount decimal.Decimal, from, to shared.Currency) (shared.Money, *exchange.Rate, error)
}

// DashboardService computes derived metrics from freshly loaded inputs on every call
type DashboardService interface {
	Snapshot(ctx context.Context) (*analytics.Snapshot, error)
	TopProducts(ctx context.Context, n int) ([]analytics.ProductRevenue, error)
	Trend(ctx context.Context, days int) ([]analytics.DayRevenue, error)
	Inventory(ctx context.Context, threshold int) (*analytics.InventorySnapshot, error)
}
