package user

import (
	"context"

	domain "stayfit/internal/domain/user"
)

// Store persists User state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByExternalID(ctx context.Context, externalID string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, value domain.User) error
	Update(ctx context.Context, value domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.User, error)
	CountByRole(ctx context.Context) (map[string]int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Role string
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*FirestoreStore)(nil)
)
