package clientpack

import (
	"context"
	"time"

	domain "stayfit/internal/domain/clientpack"
)

// Store persists ClientPack state. Every mutation touches a single record.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.ClientPack, error)
	Create(ctx context.Context, value domain.ClientPack) error
	// Update replaces every mutable field. Administrative edits only.
	Update(ctx context.Context, value domain.ClientPack) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.ClientPack, error)

	// TransitionState moves a pending purchase to a terminal state.
	// PRE: to is completed or cancelled
	// POST: returns true when this call performed the transition, false when the
	// record had already left pending (first write wins)
	TransitionState(ctx context.Context, id, to string, now time.Time) (bool, error)

	// SetTransactionNo records the gateway invoice reference on a pending purchase.
	SetTransactionNo(ctx context.Context, id, transactionNo string, now time.Time) error

	// DecrementRemaining consumes one session, never going below zero.
	// POST: returns the remaining count after the update
	DecrementRemaining(ctx context.Context, id string, now time.Time) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	ClientID string
	State    string
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*FirestoreStore)(nil)
)
