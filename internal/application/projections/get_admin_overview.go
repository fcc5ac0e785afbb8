package projections

import (
	"context"
	"fmt"

	"stayfit/internal/adapters/storage/clientpack"
	domainClientPack "stayfit/internal/domain/clientpack"
	domainOutbox "stayfit/internal/domain/outbox"
	domainUser "stayfit/internal/domain/user"
)

// failedDeliveryLimit caps how many failed outbox entries the overview lists.
const failedDeliveryLimit = 20

// GetAdminOverviewResult carries the query result.
type GetAdminOverviewResult struct {
	UsersByRole        map[string]int       `json:"usersByRole"`
	TotalUsers         int                  `json:"totalUsers"`
	PendingPurchases   int                  `json:"pendingPurchases"`
	CompletedPurchases int                  `json:"completedPurchases"`
	CancelledPurchases int                  `json:"cancelledPurchases"`
	Revenue            float64              `json:"revenue"`
	FailedDeliveries   []domainOutbox.Entry `json:"failedDeliveries"`
}

// GetAdminOverviewDeps holds dependencies for GetAdminOverview.
type GetAdminOverviewDeps struct {
	UserStore       UserStore
	ClientPackStore ClientPackStore
	OutboxStore     OutboxStore
}

// QueryGetAdminOverview summarizes users, purchases and email delivery.
// PRE: caller is an admin
// POST: every role in user.ValidRoles has an entry in UsersByRole; Revenue sums AmountDue of
// completed purchases only
func QueryGetAdminOverview(ctx context.Context, deps GetAdminOverviewDeps) (GetAdminOverviewResult, error) {
	counts, err := deps.UserStore.CountByRole(ctx)
	if err != nil {
		return GetAdminOverviewResult{}, fmt.Errorf("count users: %w", err)
	}
	result := GetAdminOverviewResult{UsersByRole: make(map[string]int, len(domainUser.ValidRoles))}
	for _, role := range domainUser.ValidRoles {
		result.UsersByRole[role] = counts[role]
		result.TotalUsers += counts[role]
	}

	purchases, err := deps.ClientPackStore.List(ctx, clientpack.ListFilter{})
	if err != nil {
		return GetAdminOverviewResult{}, fmt.Errorf("list purchases: %w", err)
	}
	for _, cp := range purchases {
		switch cp.PurchaseState {
		case domainClientPack.StatePending:
			result.PendingPurchases++
		case domainClientPack.StateCompleted:
			result.CompletedPurchases++
			result.Revenue += cp.AmountDue
		case domainClientPack.StateCancelled:
			result.CancelledPurchases++
		}
	}

	failed, err := deps.OutboxStore.ListFailed(ctx, failedDeliveryLimit)
	if err != nil {
		return GetAdminOverviewResult{}, fmt.Errorf("list failed deliveries: %w", err)
	}
	result.FailedDeliveries = failed
	return result, nil
}
