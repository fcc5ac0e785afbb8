package session

import (
	"context"
	"time"

	domain "stayfit/internal/domain/session"
)

// Store persists Session state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Create(ctx context.Context, value domain.Session) error
	Update(ctx context.Context, value domain.Session) error
	// UpdateStatus moves a session from status from to status to. It fails with
	// domain.ErrAlreadyClosed when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id, from, to string, now time.Time) error
	Delete(ctx context.Context, id string) error
	// List returns matching sessions in insertion order.
	List(ctx context.Context, filter ListFilter) ([]domain.Session, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	ClientID string
	CoachID  string
	Status   string
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*FirestoreStore)(nil)
)
