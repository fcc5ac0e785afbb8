package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/session"
)

const sessionColumns = `id, client_id, coach_id, pack_id, client_pack_id, session_date, session_time, duration,
	location, status, notes, created_at, updated_at`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Session by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM session WHERE id = ?", id)
	entity, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Create inserts a new Session.
// PRE: entity has been validated
func (s *SQLiteStore) Create(ctx context.Context, v domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO session ("+sessionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		v.ID, v.ClientID, v.CoachID, v.PackID, v.ClientPackID, v.SessionDate.UTC().Format(domain.DateLayout),
		v.SessionTime, v.Duration, v.Location, v.Status, v.Notes,
		storage.FormatTime(v.CreatedAt), storage.FormatTime(v.UpdatedAt))
	return storage.WrapSQLite(err, "create session")
}

// Update replaces the mutable fields of an existing Session.
func (s *SQLiteStore) Update(ctx context.Context, v domain.Session) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE session SET client_id = ?, coach_id = ?, pack_id = ?, client_pack_id = ?, session_date = ?,
		 session_time = ?, duration = ?, location = ?, status = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		v.ClientID, v.CoachID, v.PackID, v.ClientPackID, v.SessionDate.UTC().Format(domain.DateLayout),
		v.SessionTime, v.Duration, v.Location, v.Status, v.Notes, storage.FormatTime(v.UpdatedAt), v.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return storage.RequireAffected(res, "session", v.ID)
}

// UpdateStatus moves a session from one status to another in a single conditional write.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id, from, to string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, "UPDATE session SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, storage.FormatTime(now), id, from)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("update session status %s: %w", id, domain.ErrAlreadyClosed)
}

// Delete removes a Session.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM session WHERE id = ?", id)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "session", id)
}

// List returns matching sessions in insertion order.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Session, error) {
	var queryBuilder strings.Builder
	var conds []string
	var args []any

	queryBuilder.WriteString("SELECT " + sessionColumns + " FROM session")
	if filter.ClientID != "" {
		conds = append(conds, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.CoachID != "" {
		conds = append(conds, "coach_id = ?")
		args = append(args, filter.CoachID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if len(conds) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY rowid ASC")

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Session{}
	for rows.Next() {
		entity, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var v domain.Session
	var sessionDate, createdAt, updatedAt string
	err := scan(&v.ID, &v.ClientID, &v.CoachID, &v.PackID, &v.ClientPackID, &sessionDate, &v.SessionTime,
		&v.Duration, &v.Location, &v.Status, &v.Notes, &createdAt, &updatedAt)
	if err != nil {
		return domain.Session{}, err
	}
	if d, err := domain.ParseDate(sessionDate); err == nil {
		v.SessionDate = d
	}
	v.CreatedAt = storage.ParseTime(createdAt)
	v.UpdatedAt = storage.ParseTime(updatedAt)
	return v, nil
}
