package pack

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/pack"
)

// FirestoreStore implements Store on Cloud Firestore. Offers are an array of maps.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new pack store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(storage.CollectionPacks)
}

// GetByID retrieves a Pack by document id.
func (s *FirestoreStore) GetByID(ctx context.Context, id string) (domain.Pack, error) {
	snap, err := s.col().Doc(id).Get(ctx)
	if err != nil {
		return domain.Pack{}, storage.WrapFirestore(err, "get pack "+id)
	}
	var p domain.Pack
	if err := snap.DataTo(&p); err != nil {
		return domain.Pack{}, fmt.Errorf("decode pack %s: %w", id, err)
	}
	p.ID = snap.Ref.ID
	return p, nil
}

// Create inserts a new Pack.
func (s *FirestoreStore) Create(ctx context.Context, p domain.Pack) error {
	_, err := s.col().Doc(p.ID).Create(ctx, p)
	return storage.WrapFirestore(err, "create pack")
}

// Update replaces an existing Pack.
func (s *FirestoreStore) Update(ctx context.Context, p domain.Pack) error {
	ref := s.col().Doc(p.ID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var existing domain.Pack
		if err := snap.DataTo(&existing); err != nil {
			return err
		}
		p.CreatedAt = existing.CreatedAt
		return tx.Set(ref, p)
	})
	return storage.WrapFirestore(err, "update pack "+p.ID)
}

// Delete removes a Pack.
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteDoc(ctx, s.col().Doc(id), "delete pack "+id)
}

// List returns every pack, cheapest first.
func (s *FirestoreStore) List(ctx context.Context) ([]domain.Pack, error) {
	q := s.col().OrderBy("startPrice", firestore.Asc)
	packs, err := storage.DecodeAll(ctx, q, func(p *domain.Pack, id string) { p.ID = id })
	if err != nil {
		return nil, storage.WrapFirestore(err, "list packs")
	}
	return packs, nil
}
