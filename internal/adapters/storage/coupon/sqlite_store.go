package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stayfit/internal/adapters/storage"
	domain "stayfit/internal/domain/coupon"
)

const couponColumns = "id, code, percentage, expiry_date, status, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new coupon store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Coupon by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Coupon, error) {
	return s.getBy(ctx, "id", id)
}

// GetByCode retrieves a Coupon by its normalized code.
func (s *SQLiteStore) GetByCode(ctx context.Context, code string) (domain.Coupon, error) {
	return s.getBy(ctx, "code", domain.NormalizeCode(code))
}

func (s *SQLiteStore) getBy(ctx context.Context, column, value string) (domain.Coupon, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+couponColumns+" FROM coupon WHERE "+column+" = ?", value)
	entity, err := scanCoupon(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coupon{}, fmt.Errorf("coupon %s=%s: %w", column, value, storage.ErrNotFound)
	}
	return entity, err
}

// Create inserts a new Coupon. A taken code wraps storage.ErrDuplicate.
func (s *SQLiteStore) Create(ctx context.Context, c domain.Coupon) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO coupon ("+couponColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, domain.NormalizeCode(c.Code), c.Percentage, storage.FormatTime(c.ExpiryDate), c.Status,
		storage.FormatTime(c.CreatedAt))
	return storage.WrapSQLite(err, "create coupon")
}

// Update replaces the mutable fields of an existing Coupon.
func (s *SQLiteStore) Update(ctx context.Context, c domain.Coupon) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE coupon SET code = ?, percentage = ?, expiry_date = ?, status = ? WHERE id = ?",
		domain.NormalizeCode(c.Code), c.Percentage, storage.FormatTime(c.ExpiryDate), c.Status, c.ID)
	if err != nil {
		return storage.WrapSQLite(err, "update coupon")
	}
	return storage.RequireAffected(res, "coupon", c.ID)
}

// Delete removes a Coupon.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM coupon WHERE id = ?", id)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "coupon", id)
}

// List returns every coupon ordered by code.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Coupon, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+couponColumns+" FROM coupon ORDER BY code ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Coupon{}
	for rows.Next() {
		entity, err := scanCoupon(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanCoupon(scan func(dest ...any) error) (domain.Coupon, error) {
	var c domain.Coupon
	var expiry, createdAt string
	if err := scan(&c.ID, &c.Code, &c.Percentage, &expiry, &c.Status, &createdAt); err != nil {
		return domain.Coupon{}, err
	}
	c.ExpiryDate = storage.ParseTime(expiry)
	c.CreatedAt = storage.ParseTime(createdAt)
	return c, nil
}
