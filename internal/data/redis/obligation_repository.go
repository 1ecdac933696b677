// Package redis stores each obligation collection as one JSON document in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/platform/persistence"
	goredis "github.com/redis/go-redis/v9"
)

// kvStore is the subset of the go-redis client the repository needs
type kvStore interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

var _ kvStore = (*goredis.Client)(nil)

// ObligationRepository implements the obligation.Repository interface for Redis
type ObligationRepository struct {
	kv     kvStore
	prefix string
	logger *slog.Logger
}

// NewObligationRepository creates a new Redis obligation repository
func NewObligationRepository(logger *slog.Logger, rdb *persistence.Redis) obligation.Repository {
	return &ObligationRepository{
		kv:     rdb.Client(),
		prefix: rdb.KeyPrefix(),
		logger: logger,
	}
}

func (r *ObligationRepository) key(kind obligation.Kind) string {
	if r.prefix == "" {
		return "obligations:" + kind.Collection()
	}
	return r.prefix + ":obligations:" + kind.Collection()
}

// Load reads the collection document; a missing key is an empty collection
func (r *ObligationRepository) Load(ctx context.Context, kind obligation.Kind) ([]obligation.Obligation, error) {
	raw, err := r.kv.Get(ctx, r.key(kind)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return []obligation.Obligation{}, nil
		}
		r.logger.Error("Failed to load obligations", "kind", kind, "error", err)
		return nil, fmt.Errorf("failed to load %s: %w", kind.Collection(), err)
	}

	entries := make([]obligation.Obligation, 0)
	if err := json.Unmarshal(raw, &entries); err != nil {
		r.logger.Error("Failed to decode obligations", "kind", kind, "error", err)
		return nil, fmt.Errorf("failed to decode %s: %w", kind.Collection(), err)
	}
	return entries, nil
}

// Save overwrites the collection document in a single SET
func (r *ObligationRepository) Save(ctx context.Context, kind obligation.Kind, entries []obligation.Obligation) error {
	if entries == nil {
		entries = []obligation.Obligation{}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind.Collection(), err)
	}

	if err := r.kv.Set(ctx, r.key(kind), payload, 0).Err(); err != nil {
		r.logger.Error("Failed to save obligations", "kind", kind, "count", len(entries), "error", err)
		return fmt.Errorf("failed to save %s: %w", kind.Collection(), err)
	}

	r.logger.Debug("Saved obligations", "kind", kind, "count", len(entries))
	return nil
}
