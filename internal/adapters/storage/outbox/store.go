package outbox

import (
	"context"

	domain "stayfit/internal/domain/outbox"
)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// PRE: id is non-empty
	// POST: Returns the entry or an error wrapping storage.ErrNotFound
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an outbox entry (insert or update).
	// PRE: entity has been validated
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries that need to be processed (pending or retrying).
	// PRE: limit > 0
	// POST: Returns up to limit entries ordered by created_at
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListFailed returns entries that have permanently failed, most recent attempt first.
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)

	// Delete removes an outbox entry.
	Delete(ctx context.Context, id string) error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*FirestoreStore)(nil)
)
