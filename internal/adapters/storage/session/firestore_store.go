package session

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/session"
)

// FirestoreStore implements Store on Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new session store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(storage.CollectionSessions)
}

// GetByID retrieves a Session by document id.
func (s *FirestoreStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	snap, err := s.col().Doc(id).Get(ctx)
	if err != nil {
		return domain.Session{}, storage.WrapFirestore(err, "get session "+id)
	}
	var v domain.Session
	if err := snap.DataTo(&v); err != nil {
		return domain.Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	v.ID = snap.Ref.ID
	return normalize(v), nil
}

// Create inserts a new Session.
func (s *FirestoreStore) Create(ctx context.Context, v domain.Session) error {
	v.SessionDate = domain.DateOnly(v.SessionDate)
	_, err := s.col().Doc(v.ID).Create(ctx, v)
	return storage.WrapFirestore(err, "create session")
}

// Update replaces an existing Session.
func (s *FirestoreStore) Update(ctx context.Context, v domain.Session) error {
	v.SessionDate = domain.DateOnly(v.SessionDate)
	return storage.ReplaceDoc(ctx, s.client, s.col().Doc(v.ID), v, "update session "+v.ID)
}

// UpdateStatus moves a session from one status to another inside a transaction.
func (s *FirestoreStore) UpdateStatus(ctx context.Context, id, from, to string, now time.Time) error {
	ref := s.col().Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		current, err := snap.DataAt("status")
		if err != nil {
			return err
		}
		if current != from {
			return domain.ErrAlreadyClosed
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: to},
			{Path: "updatedAt", Value: now.UTC()},
		})
	})
	return storage.WrapFirestore(err, "update session status "+id)
}

// Delete removes a Session.
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteDoc(ctx, s.col().Doc(id), "delete session "+id)
}

// List returns matching sessions in creation order.
func (s *FirestoreStore) List(ctx context.Context, filter ListFilter) ([]domain.Session, error) {
	q := s.col().Query
	if filter.ClientID != "" {
		q = q.Where("clientId", "==", filter.ClientID)
	}
	if filter.CoachID != "" {
		q = q.Where("coachId", "==", filter.CoachID)
	}
	if filter.Status != "" {
		q = q.Where("status", "==", filter.Status)
	}
	sessions, err := storage.DecodeAll(ctx, q, func(v *domain.Session, id string) { v.ID = id })
	if err != nil {
		return nil, storage.WrapFirestore(err, "list sessions")
	}
	for i := range sessions {
		sessions[i] = normalize(sessions[i])
	}
	// sorted client side so no composite index is needed
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// normalize restores UTC on timestamps read back from Firestore.
func normalize(v domain.Session) domain.Session {
	v.SessionDate = domain.DateOnly(v.SessionDate)
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	return v
}
