package clientpack

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/clientpack"
)

const clientPackColumns = `id, client_id, pack_id, offer_id, pack_price, amount_due, coupon_code, purchase_date,
	expiration_date, remaining_sessions, purchase_state, transaction_no, created_at, updated_at`

// SQLiteStore implements Store using SQLite.
// State changes are conditional single-row UPDATEs.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new client pack store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a ClientPack by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.ClientPack, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+clientPackColumns+" FROM client_pack WHERE id = ?", id)
	entity, err := scanClientPack(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ClientPack{}, fmt.Errorf("client pack %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Create inserts a new ClientPack.
// PRE: entity has been validated
func (s *SQLiteStore) Create(ctx context.Context, c domain.ClientPack) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO client_pack ("+clientPackColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.ClientID, c.PackID, c.OfferID, c.PackPrice, c.AmountDue, c.CouponCode,
		storage.FormatTime(c.PurchaseDate), storage.FormatTime(c.ExpirationDate), c.RemainingSessions,
		c.PurchaseState, c.TransactionNo, storage.FormatTime(c.CreatedAt), storage.FormatTime(c.UpdatedAt))
	return storage.WrapSQLite(err, "create client pack")
}

// Update replaces the mutable fields of an existing ClientPack.
func (s *SQLiteStore) Update(ctx context.Context, c domain.ClientPack) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE client_pack SET client_id = ?, pack_id = ?, offer_id = ?, pack_price = ?, amount_due = ?,
		 coupon_code = ?, purchase_date = ?, expiration_date = ?, remaining_sessions = ?, purchase_state = ?,
		 transaction_no = ?, updated_at = ?
		 WHERE id = ?`,
		c.ClientID, c.PackID, c.OfferID, c.PackPrice, c.AmountDue, c.CouponCode,
		storage.FormatTime(c.PurchaseDate), storage.FormatTime(c.ExpirationDate), c.RemainingSessions,
		c.PurchaseState, c.TransactionNo, storage.FormatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("update client pack: %w", err)
	}
	return storage.RequireAffected(res, "client pack", c.ID)
}

// Delete removes a ClientPack.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM client_pack WHERE id = ?", id)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "client pack", id)
}

// List retrieves ClientPacks based on the filter, newest purchase first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.ClientPack, error) {
	var queryBuilder strings.Builder
	var conds []string
	var args []any

	queryBuilder.WriteString("SELECT " + clientPackColumns + " FROM client_pack")
	if filter.ClientID != "" {
		conds = append(conds, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.State != "" {
		conds = append(conds, "purchase_state = ?")
		args = append(args, filter.State)
	}
	if len(conds) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY purchase_date DESC, rowid DESC")

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.ClientPack{}
	for rows.Next() {
		entity, err := scanClientPack(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// TransitionState moves a pending purchase to a terminal state.
func (s *SQLiteStore) TransitionState(ctx context.Context, id, to string, now time.Time) (bool, error) {
	if !domain.IsTerminalState(to) {
		return false, domain.ErrInvalidState
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE client_pack SET purchase_state = ?, updated_at = ? WHERE id = ? AND purchase_state = ?",
		to, storage.FormatTime(now), id, domain.StatePending)
	if err != nil {
		return false, fmt.Errorf("transition client pack: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// SetTransactionNo records the gateway invoice reference on a pending purchase.
func (s *SQLiteStore) SetTransactionNo(ctx context.Context, id, transactionNo string, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE client_pack SET transaction_no = ?, updated_at = ? WHERE id = ? AND purchase_state = ?",
		transactionNo, storage.FormatTime(now), id, domain.StatePending)
	if err != nil {
		return fmt.Errorf("set transaction no: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrTerminalState
	}
	return nil
}

// DecrementRemaining consumes one session, never going below zero.
func (s *SQLiteStore) DecrementRemaining(ctx context.Context, id string, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE client_pack SET remaining_sessions = MAX(remaining_sessions - 1, 0), updated_at = ? WHERE id = ?",
		storage.FormatTime(now), id)
	if err != nil {
		return 0, fmt.Errorf("decrement remaining sessions: %w", err)
	}
	if err := storage.RequireAffected(res, "client pack", id); err != nil {
		return 0, err
	}
	var remaining int
	err = s.db.QueryRowContext(ctx, "SELECT remaining_sessions FROM client_pack WHERE id = ?", id).Scan(&remaining)
	return remaining, err
}

func scanClientPack(scan func(dest ...any) error) (domain.ClientPack, error) {
	var c domain.ClientPack
	var purchaseDate, expirationDate, createdAt, updatedAt string
	err := scan(&c.ID, &c.ClientID, &c.PackID, &c.OfferID, &c.PackPrice, &c.AmountDue, &c.CouponCode,
		&purchaseDate, &expirationDate, &c.RemainingSessions, &c.PurchaseState, &c.TransactionNo,
		&createdAt, &updatedAt)
	if err != nil {
		return domain.ClientPack{}, err
	}
	c.PurchaseDate = storage.ParseTime(purchaseDate)
	c.ExpirationDate = storage.ParseTime(expirationDate)
	c.CreatedAt = storage.ParseTime(createdAt)
	c.UpdatedAt = storage.ParseTime(updatedAt)
	return c, nil
}
