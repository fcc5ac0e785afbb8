package projections

import (
	"context"
	"testing"

	domainClientPack "stayfit/internal/domain/clientpack"
	domainOutbox "stayfit/internal/domain/outbox"
	domainUser "stayfit/internal/domain/user"
)

// TestQueryGetAdminOverview verifies counts and that revenue only includes completed purchases.
func TestQueryGetAdminOverview(t *testing.T) {
	later := wednesday.AddDate(0, 3, 0)
	discounted := purchase("cp-3", domainClientPack.StateCompleted, 10, later)
	discounted.AmountDue = 450

	deps := GetAdminOverviewDeps{
		UserStore: &stubUserStore{users: []domainUser.User{
			coach(), client(),
			{ID: "client-2", Email: "noor@example.com", Role: domainUser.RoleClient},
		}},
		ClientPackStore: &stubClientPackStore{packs: []domainClientPack.ClientPack{
			purchase("cp-1", domainClientPack.StatePending, 10, later),
			purchase("cp-2", domainClientPack.StateCompleted, 10, later),
			discounted,
			purchase("cp-4", domainClientPack.StateCancelled, 10, later),
		}},
		OutboxStore: &stubOutboxStore{failed: []domainOutbox.Entry{{ID: "e1", Status: domainOutbox.StatusFailed}}},
	}

	got, err := QueryGetAdminOverview(context.Background(), deps)
	if err != nil {
		t.Fatalf("QueryGetAdminOverview: %v", err)
	}
	if got.TotalUsers != 3 || got.UsersByRole[domainUser.RoleClient] != 2 || got.UsersByRole[domainUser.RoleAdmin] != 0 {
		t.Errorf("users = %d %+v", got.TotalUsers, got.UsersByRole)
	}
	if _, ok := got.UsersByRole[domainUser.RoleAdmin]; !ok {
		t.Error("admin role missing from counts")
	}
	if got.PendingPurchases != 1 || got.CompletedPurchases != 2 || got.CancelledPurchases != 1 {
		t.Errorf("purchases = %d/%d/%d", got.PendingPurchases, got.CompletedPurchases, got.CancelledPurchases)
	}
	if got.Revenue != 950 {
		t.Errorf("revenue = %v, want 950", got.Revenue)
	}
	if len(got.FailedDeliveries) != 1 {
		t.Errorf("failed deliveries = %+v", got.FailedDeliveries)
	}
}
