package review

import (
	"context"

	domain "stayfit/internal/domain/review"
)

// Store persists Review state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Review, error)
	Create(ctx context.Context, value domain.Review) error
	Update(ctx context.Context, value domain.Review) error
	Delete(ctx context.Context, id string) error
	// List returns matching reviews, newest first.
	List(ctx context.Context, filter ListFilter) ([]domain.Review, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	ClientID      string
	PublishedOnly bool
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*FirestoreStore)(nil)
)
