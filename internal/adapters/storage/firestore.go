package storage

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// Firestore collection names.
const (
	CollectionUsers       = "users"
	CollectionPacks       = "packs"
	CollectionClientPacks = "clientPacks"
	CollectionSessions    = "sessions"
	CollectionReviews     = "reviews"
	CollectionCoupons     = "coupons"
	CollectionServices    = "services"
	CollectionOutbox      = "outbox"
)

// ReplaceDoc overwrites an existing document. A missing document yields ErrNotFound.
func ReplaceDoc(ctx context.Context, client *firestore.Client, ref *firestore.DocumentRef, data any, what string) error {
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, data)
	})
	return WrapFirestore(err, what)
}

// DeleteDoc removes an existing document. A missing document yields ErrNotFound.
func DeleteDoc(ctx context.Context, ref *firestore.DocumentRef, what string) error {
	_, err := ref.Delete(ctx, firestore.Exists)
	return WrapFirestore(err, what)
}

// FirstDoc returns the first document matched by q, or ErrNotFound.
func FirstDoc(ctx context.Context, q firestore.Query, what string) (*firestore.DocumentSnapshot, error) {
	iter := q.Limit(1).Documents(ctx)
	defer iter.Stop()
	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return nil, WrapFirestore(err, what)
	}
	return snap, nil
}

// DecodeAll decodes every document matched by q, setting ids with setID.
func DecodeAll[T any](ctx context.Context, q firestore.Query, setID func(*T, string)) ([]T, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []T{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := snap.DataTo(&v); err != nil {
			return nil, err
		}
		setID(&v, snap.Ref.ID)
		out = append(out, v)
	}
}
