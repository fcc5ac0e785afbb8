package orchestrators

import (
	"context"
	"time"

	domainClientPack "stayfit/internal/domain/clientpack"
	domainCoupon "stayfit/internal/domain/coupon"
	domainOutbox "stayfit/internal/domain/outbox"
	domainPack "stayfit/internal/domain/pack"
	domainSession "stayfit/internal/domain/session"
	domainUser "stayfit/internal/domain/user"
)

// PackReader looks up packs for purchase and notification flows.
type PackReader interface {
	GetByID(ctx context.Context, id string) (domainPack.Pack, error)
}

// ClientPackStore is the subset of the client-pack store the purchase flows need.
type ClientPackStore interface {
	GetByID(ctx context.Context, id string) (domainClientPack.ClientPack, error)
	Create(ctx context.Context, value domainClientPack.ClientPack) error
	TransitionState(ctx context.Context, id, to string, now time.Time) (bool, error)
	SetTransactionNo(ctx context.Context, id, transactionNo string, now time.Time) error
	DecrementRemaining(ctx context.Context, id string, now time.Time) (int, error)
}

// CouponReader resolves coupon codes.
type CouponReader interface {
	GetByCode(ctx context.Context, code string) (domainCoupon.Coupon, error)
}

// UserReader looks up users by primary key.
type UserReader interface {
	GetByID(ctx context.Context, id string) (domainUser.User, error)
}

// UserStore is the subset of the user store identity sync needs.
type UserStore interface {
	UserReader
	GetByExternalID(ctx context.Context, externalID string) (domainUser.User, error)
	GetByEmail(ctx context.Context, email string) (domainUser.User, error)
	Create(ctx context.Context, value domainUser.User) error
	Update(ctx context.Context, value domainUser.User) error
}

// SessionStore is the subset of the session store the booking flows need.
type SessionStore interface {
	GetByID(ctx context.Context, id string) (domainSession.Session, error)
	Create(ctx context.Context, value domainSession.Session) error
	UpdateStatus(ctx context.Context, id, from, to string, now time.Time) error
}

// OutboxWriter queues outbound actions.
type OutboxWriter interface {
	Save(ctx context.Context, e domainOutbox.Entry) error
}
