// Package postgres provides PostgreSQL implementations of the domain repositories.
// Obligation collections are replaced wholesale inside one transaction and
// exchange rates are appended, never updated.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/flowi-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ObligationRepository implements the obligation.Repository interface for PostgreSQL
type ObligationRepository struct {
	db     persistence.TxQuerier // *pgxpool.Pool in production
	logger *slog.Logger
}

// NewObligationRepository creates a new PostgreSQL obligation repository
func NewObligationRepository(logger *slog.Logger, db *persistence.PostgresDB) obligation.Repository {
	return &ObligationRepository{
		db:     db.Pool(),
		logger: logger,
	}
}

// Load returns the collection of kind in its saved order
func (r *ObligationRepository) Load(ctx context.Context, kind obligation.Kind) ([]obligation.Obligation, error) {
	query := `
		SELECT id, counterparty_type, counterparty_id, counterparty_name, reference_number,
			amount::text, currency, payment_terms_days, due_date, status, description, created_at, updated_at
		FROM obligations
		WHERE kind = $1
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query, string(kind))
	if err != nil {
		r.logger.Error("Failed to load obligations", "kind", kind, "error", err)
		return nil, fmt.Errorf("failed to load %s: %w", kind.Collection(), err)
	}
	defer rows.Close()

	entries := make([]obligation.Obligation, 0)
	for rows.Next() {
		var (
			o                 obligation.Obligation
			cpType, currency  string
			status, rawAmount string
		)
		if err := rows.Scan(
			&o.ID,
			&cpType,
			&o.CounterpartyID,
			&o.CounterpartyName,
			&o.ReferenceNumber,
			&rawAmount,
			&currency,
			&o.PaymentTermsDays,
			&o.DueDate,
			&status,
			&o.Description,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan obligation", "kind", kind, "error", err)
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		amount, err := decimal.NewFromString(rawAmount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount of obligation %s: %w", o.ID, err)
		}
		o.Amount = amount
		o.CounterpartyType = obligation.CounterpartyType(cpType)
		o.Currency = shared.Currency(currency)
		o.Status = obligation.Status(status)
		entries = append(entries, o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed iterating obligations", "kind", kind, "error", err)
		return nil, fmt.Errorf("failed iterating %s: %w", kind.Collection(), err)
	}

	return entries, nil
}

// Save replaces the whole collection of kind atomically
func (r *ObligationRepository) Save(ctx context.Context, kind obligation.Kind, entries []obligation.Obligation) error {
	deleteQuery := `DELETE FROM obligations WHERE kind = $1`
	insertQuery := `
		INSERT INTO obligations (id, kind, position, counterparty_type, counterparty_id, counterparty_name,
			reference_number, amount, currency, payment_terms_days, due_date, status, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10, $11, $12, $13, $14, $15)
	`

	err := persistence.ExecuteTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteQuery, string(kind)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", kind.Collection(), err)
		}
		for i, o := range entries {
			if _, err := tx.Exec(ctx, insertQuery,
				o.ID,
				string(kind),
				i,
				string(o.CounterpartyType),
				o.CounterpartyID,
				o.CounterpartyName,
				o.ReferenceNumber,
				o.Amount.String(),
				string(o.Currency),
				o.PaymentTermsDays,
				o.DueDate,
				string(o.Status),
				o.Description,
				o.CreatedAt,
				o.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert obligation %s: %w", o.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save obligations", "kind", kind, "count", len(entries), "error", err)
		return err
	}

	r.logger.Debug("Saved obligations", "kind", kind, "count", len(entries))
	return nil
}
