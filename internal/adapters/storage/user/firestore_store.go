package user

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/user"
)

// FirestoreStore implements Store on Cloud Firestore.
// externalId and email uniqueness is enforced inside transactions.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new user store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(storage.CollectionUsers)
}

// GetByID retrieves a User by document id.
func (s *FirestoreStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	snap, err := s.col().Doc(id).Get(ctx)
	if err != nil {
		return domain.User{}, storage.WrapFirestore(err, "get user "+id)
	}
	return decodeUser(snap)
}

// GetByExternalID retrieves a User by identity-provider uid.
func (s *FirestoreStore) GetByExternalID(ctx context.Context, externalID string) (domain.User, error) {
	snap, err := storage.FirstDoc(ctx, s.col().Where("externalId", "==", externalID), "user externalId="+externalID)
	if err != nil {
		return domain.User{}, err
	}
	return decodeUser(snap)
}

// GetByEmail retrieves a User by normalized email.
func (s *FirestoreStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	snap, err := storage.FirstDoc(ctx, s.col().Where("email", "==", email), "user email="+email)
	if err != nil {
		return domain.User{}, err
	}
	return decodeUser(snap)
}

// Create inserts a new User.
// PRE: entity has been validated
// POST: duplicate id, email or external id wraps storage.ErrDuplicate
func (s *FirestoreStore) Create(ctx context.Context, u domain.User) error {
	u.Email = domain.NormalizeEmail(u.Email)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := s.checkUnique(tx, u); err != nil {
			return err
		}
		return tx.Create(s.col().Doc(u.ID), u)
	})
	return storage.WrapFirestore(err, "create user")
}

// Update replaces an existing User.
func (s *FirestoreStore) Update(ctx context.Context, u domain.User) error {
	u.Email = domain.NormalizeEmail(u.Email)
	ref := s.col().Doc(u.ID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		if err := s.checkUnique(tx, u); err != nil {
			return err
		}
		return tx.Set(ref, u)
	})
	return storage.WrapFirestore(err, "update user "+u.ID)
}

// checkUnique fails when another document already holds u's email or external id.
func (s *FirestoreStore) checkUnique(tx *firestore.Transaction, u domain.User) error {
	for field, value := range map[string]string{"externalId": u.ExternalID, "email": u.Email} {
		docs, err := tx.Documents(s.col().Where(field, "==", value).Limit(2)).GetAll()
		if err != nil {
			return err
		}
		for _, d := range docs {
			if d.Ref.ID != u.ID {
				return fmt.Errorf("user %s=%s: %w", field, value, storage.ErrDuplicate)
			}
		}
	}
	return nil
}

// Delete removes a User.
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteDoc(ctx, s.col().Doc(id), "delete user "+id)
}

// List retrieves Users based on the filter, oldest first.
func (s *FirestoreStore) List(ctx context.Context, filter ListFilter) ([]domain.User, error) {
	q := s.col().Query
	if filter.Role != "" {
		q = q.Where("role", "==", filter.Role)
	}
	users, err := storage.DecodeAll(ctx, q, func(u *domain.User, id string) { u.ID = id })
	if err != nil {
		return nil, storage.WrapFirestore(err, "list users")
	}
	sortByCreated(users)
	return users, nil
}

// CountByRole runs one server-side count aggregation per role.
func (s *FirestoreStore) CountByRole(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, role := range domain.ValidRoles {
		q := s.col().Where("role", "==", role)
		res, err := q.NewAggregationQuery().WithCount("count").Get(ctx)
		if err != nil {
			return nil, storage.WrapFirestore(err, "count users")
		}
		if v, ok := res["count"].(*firestorepb.Value); ok && v.GetIntegerValue() > 0 {
			counts[role] = int(v.GetIntegerValue())
		}
	}
	return counts, nil
}

func decodeUser(snap *firestore.DocumentSnapshot) (domain.User, error) {
	var u domain.User
	if err := snap.DataTo(&u); err != nil {
		return domain.User{}, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	u.ID = snap.Ref.ID
	return u, nil
}

func sortByCreated(users []domain.User) {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}
