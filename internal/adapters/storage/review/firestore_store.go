package review

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/review"
)

// FirestoreStore implements Store on Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new review store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(storage.CollectionReviews)
}

// GetByID retrieves a Review by document id.
func (s *FirestoreStore) GetByID(ctx context.Context, id string) (domain.Review, error) {
	snap, err := s.col().Doc(id).Get(ctx)
	if err != nil {
		return domain.Review{}, storage.WrapFirestore(err, "get review "+id)
	}
	var r domain.Review
	if err := snap.DataTo(&r); err != nil {
		return domain.Review{}, fmt.Errorf("decode review %s: %w", id, err)
	}
	r.ID = snap.Ref.ID
	return r, nil
}

// Create inserts a new Review.
func (s *FirestoreStore) Create(ctx context.Context, r domain.Review) error {
	_, err := s.col().Doc(r.ID).Create(ctx, r)
	return storage.WrapFirestore(err, "create review")
}

// Update replaces the rating, comment and published flag.
func (s *FirestoreStore) Update(ctx context.Context, r domain.Review) error {
	_, err := s.col().Doc(r.ID).Update(ctx, []firestore.Update{
		{Path: "rating", Value: r.Rating},
		{Path: "comment", Value: r.Comment},
		{Path: "published", Value: r.Published},
	})
	return storage.WrapFirestore(err, "update review "+r.ID)
}

// Delete removes a Review.
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteDoc(ctx, s.col().Doc(id), "delete review "+id)
}

// List returns matching reviews, newest first.
func (s *FirestoreStore) List(ctx context.Context, filter ListFilter) ([]domain.Review, error) {
	q := s.col().Query
	if filter.ClientID != "" {
		q = q.Where("clientId", "==", filter.ClientID)
	}
	if filter.PublishedOnly {
		q = q.Where("published", "==", true)
	}
	reviews, err := storage.DecodeAll(ctx, q, func(r *domain.Review, id string) { r.ID = id })
	if err != nil {
		return nil, storage.WrapFirestore(err, "list reviews")
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}
