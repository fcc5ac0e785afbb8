package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stayfit/internal/adapters/storage"
	"stayfit/internal/adapters/storage/service"
	"stayfit/internal/adapters/storage/storetest"
	"stayfit/internal/domain/i18n"
	domain "stayfit/internal/domain/service"
)

func backends() map[string]func(t *testing.T) service.Store {
	return map[string]func(t *testing.T) service.Store{
		"sqlite":    func(t *testing.T) service.Store { return service.NewSQLiteStore(storetest.SQLite(t)) },
		"firestore": func(t *testing.T) service.Store { return service.NewFirestoreStore(storetest.Firestore(t)) },
	}
}

func TestStore_DisplayOrder(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()
			now := time.Now().UTC()

			mk := func(id string, order int) domain.Service {
				return domain.Service{ID: id, Title: i18n.Text(id, ""), Description: i18n.Text("**"+id+"**", ""), Order: order, CreatedAt: now}
			}
			require.NoError(t, store.Create(ctx, mk("yoga", 2)))
			require.NoError(t, store.Create(ctx, mk("boxing", 1)))

			list, err := store.List(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"boxing", "yoga"}, []string{list[0].ID, list[1].ID})

			yoga := mk("yoga", 0)
			yoga.Description = i18n.Text("Flow", "يوغا")
			require.NoError(t, store.Update(ctx, yoga))
			got, err := store.GetByID(ctx, "yoga")
			require.NoError(t, err)
			require.Equal(t, "يوغا", got.Description.Ar)
			require.Equal(t, 0, got.Order)

			require.NoError(t, store.Delete(ctx, "boxing"))
			require.ErrorIs(t, store.Delete(ctx, "boxing"), storage.ErrNotFound)
		})
	}
}
