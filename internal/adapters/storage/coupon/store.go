package coupon

import (
	"context"

	domain "stayfit/internal/domain/coupon"
)

// Store persists Coupon state. Codes are unique.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Coupon, error)
	GetByCode(ctx context.Context, code string) (domain.Coupon, error)
	Create(ctx context.Context, value domain.Coupon) error
	Update(ctx context.Context, value domain.Coupon) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Coupon, error)
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*FirestoreStore)(nil)
)
