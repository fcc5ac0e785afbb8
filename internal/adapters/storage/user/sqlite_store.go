package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/user"
)

const userColumns = "id, external_id, email, first_name, last_name, role, phone, profile_pic, bio, specialties, experience_years, languages, created_at, updated_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new user store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a User by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	return s.getBy(ctx, "id", id)
}

// GetByExternalID retrieves a User by identity-provider uid.
func (s *SQLiteStore) GetByExternalID(ctx context.Context, externalID string) (domain.User, error) {
	return s.getBy(ctx, "external_id", externalID)
}

// GetByEmail retrieves a User by email, case-insensitively.
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.getBy(ctx, "email", domain.NormalizeEmail(email))
}

func (s *SQLiteStore) getBy(ctx context.Context, column, value string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM app_user WHERE "+column+" = ?", value)
	entity, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("user %s=%s: %w", column, value, storage.ErrNotFound)
	}
	return entity, err
}

// Create inserts a new User.
// PRE: entity has been validated
// POST: Entity is persisted; duplicate id, email or external id wraps storage.ErrDuplicate
func (s *SQLiteStore) Create(ctx context.Context, u domain.User) error {
	args, err := userArgs(u)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO app_user ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", args...)
	return storage.WrapSQLite(err, "create user")
}

// Update replaces every mutable field of an existing User.
// PRE: entity has been validated
// POST: Entity is updated or an error wrapping storage.ErrNotFound is returned
func (s *SQLiteStore) Update(ctx context.Context, u domain.User) error {
	args, err := userArgs(u)
	if err != nil {
		return err
	}
	// created_at is immutable
	updateArgs := make([]any, 0, len(args))
	updateArgs = append(updateArgs, args[1:12]...)
	updateArgs = append(updateArgs, args[13], u.ID)
	res, err := s.db.ExecContext(ctx,
		`UPDATE app_user SET external_id = ?, email = ?, first_name = ?, last_name = ?, role = ?, phone = ?,
		 profile_pic = ?, bio = ?, specialties = ?, experience_years = ?, languages = ?, updated_at = ?
		 WHERE id = ?`, updateArgs...)
	if err != nil {
		return storage.WrapSQLite(err, "update user")
	}
	return storage.RequireAffected(res, "user", u.ID)
}

// Delete removes a User.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM app_user WHERE id = ?", id)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "user", id)
}

// List retrieves Users based on the filter, oldest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.User, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString("SELECT " + userColumns + " FROM app_user")
	if filter.Role != "" {
		queryBuilder.WriteString(" WHERE role = ?")
		args = append(args, filter.Role)
	}
	queryBuilder.WriteString(" ORDER BY created_at ASC, rowid ASC")

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.User{}
	for rows.Next() {
		entity, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// CountByRole returns the number of users per role.
func (s *SQLiteStore) CountByRole(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT role, COUNT(*) FROM app_user GROUP BY role")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}

func userArgs(u domain.User) ([]any, error) {
	bio, err := storage.MarshalJSON(u.Bio)
	if err != nil {
		return nil, err
	}
	specialties, err := storage.MarshalJSON(storage.NonNil(u.Specialties))
	if err != nil {
		return nil, err
	}
	languages, err := storage.MarshalJSON(storage.NonNil(u.Languages))
	if err != nil {
		return nil, err
	}
	return []any{
		u.ID, u.ExternalID, domain.NormalizeEmail(u.Email), u.FirstName, u.LastName, u.Role, u.Phone,
		u.ProfilePic, bio, specialties, u.ExperienceYears, languages,
		storage.FormatTime(u.CreatedAt), storage.FormatTime(u.UpdatedAt),
	}, nil
}

func scanUser(scan func(dest ...any) error) (domain.User, error) {
	var u domain.User
	var bio, specialties, languages, createdAt, updatedAt string
	err := scan(&u.ID, &u.ExternalID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.Phone,
		&u.ProfilePic, &bio, &specialties, &u.ExperienceYears, &languages, &createdAt, &updatedAt)
	if err != nil {
		return domain.User{}, err
	}
	if err := storage.UnmarshalJSON(bio, &u.Bio); err != nil {
		return domain.User{}, err
	}
	if err := storage.UnmarshalJSON(specialties, &u.Specialties); err != nil {
		return domain.User{}, err
	}
	if err := storage.UnmarshalJSON(languages, &u.Languages); err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = storage.ParseTime(createdAt)
	u.UpdatedAt = storage.ParseTime(updatedAt)
	return u, nil
}
