package clientpack

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/clientpack"
)

// FirestoreStore implements Store on Cloud Firestore.
// State changes run in single-document transactions.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new client pack store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(storage.CollectionClientPacks)
}

// GetByID retrieves a ClientPack by document id.
func (s *FirestoreStore) GetByID(ctx context.Context, id string) (domain.ClientPack, error) {
	snap, err := s.col().Doc(id).Get(ctx)
	if err != nil {
		return domain.ClientPack{}, storage.WrapFirestore(err, "get client pack "+id)
	}
	return decodeClientPack(snap)
}

// Create inserts a new ClientPack.
func (s *FirestoreStore) Create(ctx context.Context, c domain.ClientPack) error {
	_, err := s.col().Doc(c.ID).Create(ctx, c)
	return storage.WrapFirestore(err, "create client pack")
}

// Update replaces an existing ClientPack.
func (s *FirestoreStore) Update(ctx context.Context, c domain.ClientPack) error {
	return storage.ReplaceDoc(ctx, s.client, s.col().Doc(c.ID), c, "update client pack "+c.ID)
}

// Delete removes a ClientPack.
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteDoc(ctx, s.col().Doc(id), "delete client pack "+id)
}

// List retrieves ClientPacks based on the filter, newest purchase first.
func (s *FirestoreStore) List(ctx context.Context, filter ListFilter) ([]domain.ClientPack, error) {
	q := s.col().Query
	if filter.ClientID != "" {
		q = q.Where("clientId", "==", filter.ClientID)
	}
	if filter.State != "" {
		q = q.Where("purchaseState", "==", filter.State)
	}
	packs, err := storage.DecodeAll(ctx, q, func(c *domain.ClientPack, id string) { c.ID = id })
	if err != nil {
		return nil, storage.WrapFirestore(err, "list client packs")
	}
	sort.SliceStable(packs, func(i, j int) bool {
		return packs[i].PurchaseDate.After(packs[j].PurchaseDate)
	})
	return packs, nil
}

// TransitionState moves a pending purchase to a terminal state.
func (s *FirestoreStore) TransitionState(ctx context.Context, id, to string, now time.Time) (bool, error) {
	if !domain.IsTerminalState(to) {
		return false, domain.ErrInvalidState
	}
	ref := s.col().Doc(id)
	var moved bool
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		moved = false
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		state, err := snap.DataAt("purchaseState")
		if err != nil {
			return err
		}
		if state != domain.StatePending {
			return nil
		}
		moved = true
		return tx.Update(ref, []firestore.Update{
			{Path: "purchaseState", Value: to},
			{Path: "updatedAt", Value: now.UTC()},
		})
	})
	if err != nil {
		return false, storage.WrapFirestore(err, "transition client pack "+id)
	}
	return moved, nil
}

// SetTransactionNo records the gateway invoice reference on a pending purchase.
func (s *FirestoreStore) SetTransactionNo(ctx context.Context, id, transactionNo string, now time.Time) error {
	ref := s.col().Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if state, _ := snap.DataAt("purchaseState"); state != domain.StatePending {
			return domain.ErrTerminalState
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "transactionNo", Value: transactionNo},
			{Path: "updatedAt", Value: now.UTC()},
		})
	})
	return storage.WrapFirestore(err, "set transaction no "+id)
}

// DecrementRemaining consumes one session, never going below zero.
func (s *FirestoreStore) DecrementRemaining(ctx context.Context, id string, now time.Time) (int, error) {
	ref := s.col().Doc(id)
	var remaining int
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		c, err := decodeClientPack(snap)
		if err != nil {
			return err
		}
		remaining = max(c.RemainingSessions-1, 0)
		return tx.Update(ref, []firestore.Update{
			{Path: "remainingSessions", Value: remaining},
			{Path: "updatedAt", Value: now.UTC()},
		})
	})
	if err != nil {
		return 0, storage.WrapFirestore(err, "decrement remaining sessions "+id)
	}
	return remaining, nil
}

func decodeClientPack(snap *firestore.DocumentSnapshot) (domain.ClientPack, error) {
	var c domain.ClientPack
	if err := snap.DataTo(&c); err != nil {
		return domain.ClientPack{}, fmt.Errorf("decode client pack %s: %w", snap.Ref.ID, err)
	}
	c.ID = snap.Ref.ID
	return c, nil
}
