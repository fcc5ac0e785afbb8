package pack

import (
	"context"

	domain "stayfit/internal/domain/pack"
)

// Store persists Pack state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Pack, error)
	Create(ctx context.Context, value domain.Pack) error
	Update(ctx context.Context, value domain.Pack) error
	Delete(ctx context.Context, id string) error
	// List returns every pack, cheapest first.
	List(ctx context.Context) ([]domain.Pack, error)
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*FirestoreStore)(nil)
)
