package projections

import (
	"context"
	"fmt"

	domainClientPack "stayfit/internal/domain/clientpack"
)

// GetCheckoutQuery carries query parameters.
type GetCheckoutQuery struct {
	ClientPackID string
}

// GetCheckoutResult carries the query result.
type GetCheckoutResult struct {
	Purchase ClientPackView `json:"purchase"`
	Client   *UserSummary   `json:"client"`
	Payable  bool           `json:"payable"`
}

// GetCheckoutDeps holds dependencies for GetCheckout.
type GetCheckoutDeps struct {
	ClientPackStore ClientPackStore
	UserStore       UserStore
	PackStore       PackStore
}

// QueryGetCheckout loads a purchase for the checkout summary page.
// PRE: query.ClientPackID is non-empty
// POST: Payable is true only while the purchase is pending
func QueryGetCheckout(ctx context.Context, query GetCheckoutQuery, deps GetCheckoutDeps) (GetCheckoutResult, error) {
	cp, err := deps.ClientPackStore.GetByID(ctx, query.ClientPackID)
	if err != nil {
		return GetCheckoutResult{}, fmt.Errorf("get purchase: %w", err)
	}
	populate := PopulateDeps{UserStore: deps.UserStore, PackStore: deps.PackStore}
	views, err := PopulateClientPacks(ctx, []domainClientPack.ClientPack{cp}, populate)
	if err != nil {
		return GetCheckoutResult{}, err
	}
	client, err := newResolver(populate).user(ctx, cp.ClientID)
	if err != nil {
		return GetCheckoutResult{}, err
	}
	return GetCheckoutResult{
		Purchase: views[0],
		Client:   client,
		Payable:  cp.PurchaseState == domainClientPack.StatePending,
	}, nil
}
