package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/review"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new review store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Review by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Review, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, client_id, rating, comment, published, created_at FROM review WHERE id = ?", id)
	entity, err := scanReview(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Review{}, fmt.Errorf("review %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Create inserts a new Review.
func (s *SQLiteStore) Create(ctx context.Context, r domain.Review) error {
	comment, err := storage.MarshalJSON(r.Comment)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO review (id, client_id, rating, comment, published, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		r.ID, r.ClientID, r.Rating, comment, r.Published, storage.FormatTime(r.CreatedAt))
	return storage.WrapSQLite(err, "create review")
}

// Update replaces the rating, comment and published flag.
func (s *SQLiteStore) Update(ctx context.Context, r domain.Review) error {
	comment, err := storage.MarshalJSON(r.Comment)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE review SET rating = ?, comment = ?, published = ? WHERE id = ?",
		r.Rating, comment, r.Published, r.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return storage.RequireAffected(res, "review", r.ID)
}

// Delete removes a Review.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM review WHERE id = ?", id)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "review", id)
}

// List returns matching reviews, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Review, error) {
	var conds []string
	var args []any
	if filter.ClientID != "" {
		conds = append(conds, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.PublishedOnly {
		conds = append(conds, "published = 1")
	}
	query := "SELECT id, client_id, rating, comment, published, created_at FROM review"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Review{}
	for rows.Next() {
		entity, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanReview(scan func(dest ...any) error) (domain.Review, error) {
	var r domain.Review
	var comment, createdAt string
	if err := scan(&r.ID, &r.ClientID, &r.Rating, &comment, &r.Published, &createdAt); err != nil {
		return domain.Review{}, err
	}
	if err := storage.UnmarshalJSON(comment, &r.Comment); err != nil {
		return domain.Review{}, err
	}
	r.CreatedAt = storage.ParseTime(createdAt)
	return r, nil
}
