package pack

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/pack"
)

const packColumns = "id, start_price, category, sessions, features, created_at, updated_at"

// SQLiteStore implements Store using SQLite. Category, offers and features are JSON columns.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new pack store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Pack by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Pack, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+packColumns+" FROM pack WHERE id = ?", id)
	entity, err := scanPack(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Pack{}, fmt.Errorf("pack %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Create inserts a new Pack.
// PRE: entity has been validated
func (s *SQLiteStore) Create(ctx context.Context, p domain.Pack) error {
	category, sessions, features, err := encodePack(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO pack ("+packColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.StartPrice, category, sessions, features,
		storage.FormatTime(p.CreatedAt), storage.FormatTime(p.UpdatedAt))
	return storage.WrapSQLite(err, "create pack")
}

// Update replaces the mutable fields of an existing Pack.
func (s *SQLiteStore) Update(ctx context.Context, p domain.Pack) error {
	category, sessions, features, err := encodePack(p)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE pack SET start_price = ?, category = ?, sessions = ?, features = ?, updated_at = ? WHERE id = ?",
		p.StartPrice, category, sessions, features, storage.FormatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("update pack: %w", err)
	}
	return storage.RequireAffected(res, "pack", p.ID)
}

// Delete removes a Pack.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM pack WHERE id = ?", id)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "pack", id)
}

// List returns every pack, cheapest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Pack, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+packColumns+" FROM pack ORDER BY start_price ASC, created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Pack{}
	for rows.Next() {
		entity, err := scanPack(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func encodePack(p domain.Pack) (category, sessions, features string, err error) {
	if category, err = storage.MarshalJSON(p.Category); err != nil {
		return
	}
	if sessions, err = storage.MarshalJSON(storage.NonNil(p.Sessions)); err != nil {
		return
	}
	features, err = storage.MarshalJSON(storage.NonNil(p.Features))
	return
}

func scanPack(scan func(dest ...any) error) (domain.Pack, error) {
	var p domain.Pack
	var category, sessions, features, createdAt, updatedAt string
	if err := scan(&p.ID, &p.StartPrice, &category, &sessions, &features, &createdAt, &updatedAt); err != nil {
		return domain.Pack{}, err
	}
	for _, col := range []struct {
		raw string
		dst any
	}{{category, &p.Category}, {sessions, &p.Sessions}, {features, &p.Features}} {
		if err := storage.UnmarshalJSON(col.raw, col.dst); err != nil {
			return domain.Pack{}, err
		}
	}
	p.CreatedAt = storage.ParseTime(createdAt)
	p.UpdatedAt = storage.ParseTime(updatedAt)
	return p, nil
}
