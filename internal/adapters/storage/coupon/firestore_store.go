package coupon

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/coupon"
)

// FirestoreStore implements Store on Cloud Firestore.
// Code uniqueness is checked inside the write transaction.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new coupon store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(storage.CollectionCoupons)
}

// GetByID retrieves a Coupon by document id.
func (s *FirestoreStore) GetByID(ctx context.Context, id string) (domain.Coupon, error) {
	snap, err := s.col().Doc(id).Get(ctx)
	if err != nil {
		return domain.Coupon{}, storage.WrapFirestore(err, "get coupon "+id)
	}
	return decodeCoupon(snap)
}

// GetByCode retrieves a Coupon by its normalized code.
func (s *FirestoreStore) GetByCode(ctx context.Context, code string) (domain.Coupon, error) {
	code = domain.NormalizeCode(code)
	snap, err := storage.FirstDoc(ctx, s.col().Where("code", "==", code), "coupon code="+code)
	if err != nil {
		return domain.Coupon{}, err
	}
	return decodeCoupon(snap)
}

// Create inserts a new Coupon. A taken code wraps storage.ErrDuplicate.
func (s *FirestoreStore) Create(ctx context.Context, c domain.Coupon) error {
	c.Code = domain.NormalizeCode(c.Code)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := s.checkCode(tx, c); err != nil {
			return err
		}
		return tx.Create(s.col().Doc(c.ID), c)
	})
	return storage.WrapFirestore(err, "create coupon")
}

// Update replaces an existing Coupon.
func (s *FirestoreStore) Update(ctx context.Context, c domain.Coupon) error {
	c.Code = domain.NormalizeCode(c.Code)
	ref := s.col().Doc(c.ID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if err := s.checkCode(tx, c); err != nil {
			return err
		}
		existing, err := decodeCoupon(snap)
		if err != nil {
			return err
		}
		c.CreatedAt = existing.CreatedAt
		return tx.Set(ref, c)
	})
	return storage.WrapFirestore(err, "update coupon "+c.ID)
}

func (s *FirestoreStore) checkCode(tx *firestore.Transaction, c domain.Coupon) error {
	docs, err := tx.Documents(s.col().Where("code", "==", c.Code).Limit(2)).GetAll()
	if err != nil {
		return err
	}
	for _, d := range docs {
		if d.Ref.ID != c.ID {
			return fmt.Errorf("coupon code %s: %w", c.Code, storage.ErrDuplicate)
		}
	}
	return nil
}

// Delete removes a Coupon.
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteDoc(ctx, s.col().Doc(id), "delete coupon "+id)
}

// List returns every coupon ordered by code.
func (s *FirestoreStore) List(ctx context.Context) ([]domain.Coupon, error) {
	coupons, err := storage.DecodeAll(ctx, s.col().Query, func(c *domain.Coupon, id string) { c.ID = id })
	if err != nil {
		return nil, storage.WrapFirestore(err, "list coupons")
	}
	sort.Slice(coupons, func(i, j int) bool { return coupons[i].Code < coupons[j].Code })
	return coupons, nil
}

func decodeCoupon(snap *firestore.DocumentSnapshot) (domain.Coupon, error) {
	var c domain.Coupon
	if err := snap.DataTo(&c); err != nil {
		return domain.Coupon{}, fmt.Errorf("decode coupon %s: %w", snap.Ref.ID, err)
	}
	c.ID = snap.Ref.ID
	return c, nil
}
