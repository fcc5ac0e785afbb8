package storage

import (
	"database/sql"
	"errors"
	"sort"
	"testing"
	"time"
)

// openTestDB creates a migrated in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// expectedTables is the sorted list of tables after all migrations.
var expectedTables = []string{
	"app_user",
	"client_pack",
	"coupon",
	"outbox",
	"pack",
	"review",
	"schema_migrations",
	"service",
	"session",
}

// TestMigrateDB_Fresh verifies all migrations apply cleanly to an empty database.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB failed on fresh db: %v", err)
	}

	version, dirty, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("version = %d dirty = %v, want 1 clean", version, dirty)
	}

	tables := getTableNames(t, db)
	if len(tables) != len(expectedTables) {
		t.Fatalf("got tables %v, want %v", tables, expectedTables)
	}
	for i, want := range expectedTables {
		if tables[i] != want {
			t.Errorf("table[%d] = %q, want %q", i, tables[i], want)
		}
	}
}

// TestMigrateDB_Idempotent verifies that running MigrateDB twice is a no-op.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db); err != nil {
		t.Fatalf("first MigrateDB failed: %v", err)
	}
	if err := MigrateDB(db); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("db closed by migrator: %v", err)
	}
}

// TestIsUniqueViolation verifies constraint failures are recognised.
func TestIsUniqueViolation(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	insert := "INSERT INTO coupon (id, code, percentage, expiry_date, status, created_at) VALUES (?, ?, 10, '', 'active', '')"
	if _, err := db.Exec(insert, "c1", "SPRING"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := db.Exec(insert, "c2", "SPRING")
	if !IsUniqueViolation(err) {
		t.Fatalf("IsUniqueViolation(%v) = false", err)
	}
	if !errors.Is(WrapSQLite(err, "create coupon"), ErrDuplicate) {
		t.Error("WrapSQLite should map to ErrDuplicate")
	}
	if IsUniqueViolation(errors.New("disk I/O error")) {
		t.Error("unrelated error reported as unique violation")
	}
}

func TestFormatParseTime(t *testing.T) {
	in := time.Date(2026, 3, 10, 9, 30, 0, 123, time.FixedZone("AST", 3*3600))
	out := ParseTime(FormatTime(in))
	if !out.Equal(in) || out.Location() != time.UTC {
		t.Errorf("round trip = %v, want %v in UTC", out, in)
	}
	if FormatTime(time.Time{}) != "" || !ParseTime("").IsZero() {
		t.Error("zero time should encode as empty string")
	}
}
