package projections

import (
	"context"

	"stayfit/internal/adapters/storage/clientpack"
	"stayfit/internal/adapters/storage/session"
	"stayfit/internal/adapters/storage/user"
	domainClientPack "stayfit/internal/domain/clientpack"
	domainOutbox "stayfit/internal/domain/outbox"
	domainPack "stayfit/internal/domain/pack"
	domainSession "stayfit/internal/domain/session"
	domainUser "stayfit/internal/domain/user"
)

// UserStore interface for user queries.
type UserStore interface {
	GetByID(ctx context.Context, id string) (domainUser.User, error)
	List(ctx context.Context, filter user.ListFilter) ([]domainUser.User, error)
	CountByRole(ctx context.Context) (map[string]int, error)
}

// PackStore interface for pack queries.
type PackStore interface {
	GetByID(ctx context.Context, id string) (domainPack.Pack, error)
	List(ctx context.Context) ([]domainPack.Pack, error)
}

// ClientPackStore interface for purchase queries.
type ClientPackStore interface {
	GetByID(ctx context.Context, id string) (domainClientPack.ClientPack, error)
	List(ctx context.Context, filter clientpack.ListFilter) ([]domainClientPack.ClientPack, error)
}

// SessionStore interface for session queries.
type SessionStore interface {
	List(ctx context.Context, filter session.ListFilter) ([]domainSession.Session, error)
}

// OutboxStore interface for delivery queries.
type OutboxStore interface {
	ListFailed(ctx context.Context, limit int) ([]domainOutbox.Entry, error)
}
