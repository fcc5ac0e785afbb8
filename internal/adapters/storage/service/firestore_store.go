package service

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/service"
)

// FirestoreStore implements Store on Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new service store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(storage.CollectionServices)
}

// GetByID retrieves a Service by document id.
func (s *FirestoreStore) GetByID(ctx context.Context, id string) (domain.Service, error) {
	snap, err := s.col().Doc(id).Get(ctx)
	if err != nil {
		return domain.Service{}, storage.WrapFirestore(err, "get service "+id)
	}
	var v domain.Service
	if err := snap.DataTo(&v); err != nil {
		return domain.Service{}, fmt.Errorf("decode service %s: %w", id, err)
	}
	v.ID = snap.Ref.ID
	return v, nil
}

// Create inserts a new Service.
func (s *FirestoreStore) Create(ctx context.Context, v domain.Service) error {
	_, err := s.col().Doc(v.ID).Create(ctx, v)
	return storage.WrapFirestore(err, "create service")
}

// Update replaces the mutable fields of an existing Service.
func (s *FirestoreStore) Update(ctx context.Context, v domain.Service) error {
	_, err := s.col().Doc(v.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: v.Title},
		{Path: "description", Value: v.Description},
		{Path: "imageUrl", Value: v.ImageURL},
		{Path: "order", Value: v.Order},
	})
	return storage.WrapFirestore(err, "update service "+v.ID)
}

// Delete removes a Service.
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteDoc(ctx, s.col().Doc(id), "delete service "+id)
}

// List returns every service in display order.
func (s *FirestoreStore) List(ctx context.Context) ([]domain.Service, error) {
	services, err := storage.DecodeAll(ctx, s.col().OrderBy("order", firestore.Asc), func(v *domain.Service, id string) { v.ID = id })
	if err != nil {
		return nil, storage.WrapFirestore(err, "list services")
	}
	return services, nil
}
