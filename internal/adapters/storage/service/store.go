package service

import (
	"context"

	domain "stayfit/internal/domain/service"
)

// Store persists Service state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Service, error)
	Create(ctx context.Context, value domain.Service) error
	Update(ctx context.Context, value domain.Service) error
	Delete(ctx context.Context, id string) error
	// List returns every service in display order.
	List(ctx context.Context) ([]domain.Service, error)
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*FirestoreStore)(nil)
)
