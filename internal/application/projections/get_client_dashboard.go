package projections

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stayfit/internal/adapters/storage/clientpack"
	"stayfit/internal/adapters/storage/session"
	"stayfit/internal/domain/calendar"
	domainClientPack "stayfit/internal/domain/clientpack"
)

// GetClientDashboardQuery carries query parameters.
type GetClientDashboardQuery struct {
	ClientID string
}

// GetClientDashboardResult carries the query result.
type GetClientDashboardResult struct {
	ActivePacks  []ClientPackView `json:"activePacks"`
	PendingPacks []ClientPackView `json:"pendingPacks"`
	Upcoming     []SessionView    `json:"upcoming"`
}

// GetClientDashboardDeps holds dependencies for GetClientDashboard.
type GetClientDashboardDeps struct {
	ClientPackStore ClientPackStore
	SessionStore    SessionStore
	UserStore       UserStore
	PackStore       PackStore
	Now             func() time.Time
}

// QueryGetClientDashboard assembles a client's usable packs and upcoming sessions.
// PRE: query.ClientID is non-empty
// POST: ActivePacks are completed, unexpired and not exhausted; PendingPacks await checkout;
// Upcoming holds scheduled sessions dated today or later, earliest first
func QueryGetClientDashboard(ctx context.Context, query GetClientDashboardQuery, deps GetClientDashboardDeps) (GetClientDashboardResult, error) {
	now := deps.Now()
	populate := PopulateDeps{UserStore: deps.UserStore, PackStore: deps.PackStore}

	packs, err := deps.ClientPackStore.List(ctx, clientpack.ListFilter{ClientID: query.ClientID})
	if err != nil {
		return GetClientDashboardResult{}, fmt.Errorf("list client packs: %w", err)
	}
	var active, pending []domainClientPack.ClientPack
	for _, cp := range packs {
		switch {
		case cp.IsUsable(now):
			active = append(active, cp)
		case cp.PurchaseState == domainClientPack.StatePending:
			pending = append(pending, cp)
		}
	}

	sessions, err := deps.SessionStore.List(ctx, session.ListFilter{ClientID: query.ClientID})
	if err != nil {
		return GetClientDashboardResult{}, fmt.Errorf("list client sessions: %w", err)
	}
	upcoming := sessions[:0:0]
	for _, s := range sessions {
		if s.IsUpcoming(now) {
			upcoming = append(upcoming, s)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		if !upcoming[i].Day().Equal(upcoming[j].Day()) {
			return upcoming[i].Day().Before(upcoming[j].Day())
		}
		hi, _ := calendar.ParseHour(upcoming[i].SessionTime)
		hj, _ := calendar.ParseHour(upcoming[j].SessionTime)
		return hi < hj
	})

	var result GetClientDashboardResult
	if result.ActivePacks, err = PopulateClientPacks(ctx, active, populate); err != nil {
		return GetClientDashboardResult{}, err
	}
	if result.PendingPacks, err = PopulateClientPacks(ctx, pending, populate); err != nil {
		return GetClientDashboardResult{}, err
	}
	if result.Upcoming, err = PopulateSessions(ctx, upcoming, populate); err != nil {
		return GetClientDashboardResult{}, err
	}
	return result, nil
}
