package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const defaultHistoryLimit = 50

// RateRepository implements the exchange.Repository interface for PostgreSQL
type RateRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRateRepository creates a new PostgreSQL exchange rate repository
func NewRateRepository(logger *slog.Logger, db *persistence.PostgresDB) exchange.Repository {
	return &RateRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Append records a new rate. Existing rows are never touched.
func (r *RateRepository) Append(ctx context.Context, rate exchange.Rate) error {
	query := `
		INSERT INTO exchange_rates (id, usd_to_local, source, captured_at)
		VALUES ($1, $2::numeric, $3, $4)
	`

	_, err := r.querier.Exec(ctx, query, rate.ID, rate.USDToLocal.String(), rate.Source, rate.CapturedAt)
	if err != nil {
		r.logger.Error("Failed to append exchange rate", "id", rate.ID.String(), "error", err)
		return fmt.Errorf("failed to append exchange rate: %w", err)
	}

	return nil
}

// Latest returns the newest rate, or nil when the table is empty
func (r *RateRepository) Latest(ctx context.Context) (*exchange.Rate, error) {
	query := `
		SELECT id, usd_to_local::text, source, captured_at
		FROM exchange_rates
		ORDER BY captured_at DESC
		LIMIT 1
	`

	rate, err := scanRate(r.querier.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get latest exchange rate", "error", err)
		return nil, fmt.Errorf("failed to get latest exchange rate: %w", err)
	}

	return &rate, nil
}

// History lists rates newest first
func (r *RateRepository) History(ctx context.Context, limit int) ([]exchange.Rate, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query := `
		SELECT id, usd_to_local::text, source, captured_at
		FROM exchange_rates
		ORDER BY captured_at DESC
		LIMIT $1
	`

	rows, err := r.querier.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list exchange rates", "error", err)
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	defer rows.Close()

	rates := make([]exchange.Rate, 0, limit)
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating exchange rates: %w", err)
	}

	return rates, nil
}

func scanRate(row pgx.Row) (exchange.Rate, error) {
	var (
		rate exchange.Rate
		raw  string
	)
	if err := row.Scan(&rate.ID, &raw, &rate.Source, &rate.CapturedAt); err != nil {
		return exchange.Rate{}, err
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return exchange.Rate{}, fmt.Errorf("invalid stored rate %q: %w", raw, err)
	}
	rate.USDToLocal = value
	return rate, nil
}
