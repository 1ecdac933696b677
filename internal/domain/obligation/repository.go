package obligation

import "context"

// Repository persists whole obligation collections.
// There is no partial patch: callers compute the full new collection and Save replaces it.
type Repository interface {
	Load(ctx context.Context, kind Kind) ([]Obligation, error)
	Save(ctx context.Context, kind Kind, entries []Obligation) error
}
