package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/service"
)

const serviceColumns = "id, title, description, image_url, sort_order, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new service store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Service by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Service, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+serviceColumns+" FROM service WHERE id = ?", id)
	entity, err := scanService(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Service{}, fmt.Errorf("service %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Create inserts a new Service.
func (s *SQLiteStore) Create(ctx context.Context, v domain.Service) error {
	title, description, err := encodeService(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO service ("+serviceColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		v.ID, title, description, v.ImageURL, v.Order, storage.FormatTime(v.CreatedAt))
	return storage.WrapSQLite(err, "create service")
}

// Update replaces the mutable fields of an existing Service.
func (s *SQLiteStore) Update(ctx context.Context, v domain.Service) error {
	title, description, err := encodeService(v)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE service SET title = ?, description = ?, image_url = ?, sort_order = ? WHERE id = ?",
		title, description, v.ImageURL, v.Order, v.ID)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	return storage.RequireAffected(res, "service", v.ID)
}

// Delete removes a Service.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM service WHERE id = ?", id)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "service", id)
}

// List returns every service in display order.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Service, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+serviceColumns+" FROM service ORDER BY sort_order ASC, created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Service{}
	for rows.Next() {
		entity, err := scanService(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func encodeService(v domain.Service) (title, description string, err error) {
	if title, err = storage.MarshalJSON(v.Title); err != nil {
		return
	}
	description, err = storage.MarshalJSON(v.Description)
	return
}

func scanService(scan func(dest ...any) error) (domain.Service, error) {
	var v domain.Service
	var title, description, createdAt string
	if err := scan(&v.ID, &title, &description, &v.ImageURL, &v.Order, &createdAt); err != nil {
		return domain.Service{}, err
	}
	if err := storage.UnmarshalJSON(title, &v.Title); err != nil {
		return domain.Service{}, err
	}
	if err := storage.UnmarshalJSON(description, &v.Description); err != nil {
		return domain.Service{}, err
	}
	v.CreatedAt = storage.ParseTime(createdAt)
	return v, nil
}
