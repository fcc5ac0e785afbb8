package outbox

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/outbox"
)

// FirestoreStore implements the outbox Store on Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new outbox store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(storage.CollectionOutbox)
}

// GetByID retrieves an outbox entry by document id.
func (s *FirestoreStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	snap, err := s.col().Doc(id).Get(ctx)
	if err != nil {
		return domain.Entry{}, storage.WrapFirestore(err, "get outbox entry "+id)
	}
	var e domain.Entry
	if err := snap.DataTo(&e); err != nil {
		return domain.Entry{}, fmt.Errorf("decode outbox entry %s: %w", id, err)
	}
	e.ID = snap.Ref.ID
	return e, nil
}

// Save persists an outbox entry (insert or update).
func (s *FirestoreStore) Save(ctx context.Context, e domain.Entry) error {
	_, err := s.col().Doc(e.ID).Set(ctx, e)
	return storage.WrapFirestore(err, "save outbox entry")
}

// ListPending returns entries that need to be processed (pending or retrying).
func (s *FirestoreStore) ListPending(ctx context.Context, limit int) ([]domain.Entry, error) {
	q := s.col().Where("status", "in", []string{domain.StatusPending, domain.StatusRetrying})
	entries, err := storage.DecodeAll(ctx, q, func(e *domain.Entry, id string) { e.ID = id })
	if err != nil {
		return nil, storage.WrapFirestore(err, "list pending outbox entries")
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.Before(entries[j].CreatedAt) })
	return head(entries, limit), nil
}

// ListFailed returns entries that have permanently failed.
func (s *FirestoreStore) ListFailed(ctx context.Context, limit int) ([]domain.Entry, error) {
	q := s.col().Where("status", "==", domain.StatusFailed)
	entries, err := storage.DecodeAll(ctx, q, func(e *domain.Entry, id string) { e.ID = id })
	if err != nil {
		return nil, storage.WrapFirestore(err, "list failed outbox entries")
	}
	failed := entries[:0]
	for _, e := range entries {
		if e.Attempts >= e.MaxAttempts {
			failed = append(failed, e)
		}
	}
	sort.SliceStable(failed, func(i, j int) bool { return failed[i].LastAttemptedAt.After(failed[j].LastAttemptedAt) })
	return head(failed, limit), nil
}

// Delete removes an outbox entry.
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteDoc(ctx, s.col().Doc(id), "delete outbox entry "+id)
}

func head(entries []domain.Entry, limit int) []domain.Entry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
