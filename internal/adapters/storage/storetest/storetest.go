// Package storetest opens throwaway databases for store tests.
package storetest

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"stayfit/internal/adapters/storage"
)

// SQLite returns a migrated in-memory database wrapped in a TimedDB.
func SQLite(t *testing.T) *storage.TimedDB {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.MigrateDB(db))
	return storage.NewTimedDB(db, 0)
}

// Firestore returns a client for a fresh emulator project, skipping the test
// when FIRESTORE_EMULATOR_HOST is unset.
func Firestore(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "stayfit-test-"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}
