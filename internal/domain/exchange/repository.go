package exchange

import "context"

// Repository keeps the append-only rate history. The newest row is the current rate.
type Repository interface {
	Append(ctx context.Context, rate Rate) error
	// Latest returns nil without error when no rate was ever recorded
	Latest(ctx context.Context) (*Rate, error)
	History(ctx context.Context, limit int) ([]Rate, error)
}
