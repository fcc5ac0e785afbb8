package projections

import (
	"context"
	"fmt"
	"sort"

	"stayfit/internal/adapters/storage/review"
	"stayfit/internal/adapters/storage/user"
	domainPack "stayfit/internal/domain/pack"
	domainReview "stayfit/internal/domain/review"
	domainService "stayfit/internal/domain/service"
	domainUser "stayfit/internal/domain/user"
)

// ReviewView is a published review with its author's summary. Client is nil for deleted users.
type ReviewView struct {
	domainReview.Review
	Client *UserSummary `json:"client"`
}

// GetHomeResult carries the marketing page content.
type GetHomeResult struct {
	Services []domainService.Service `json:"services"`
	Packs    []domainPack.Pack       `json:"packs"`
	Coaches  []domainUser.User       `json:"coaches"`
	Reviews  []ReviewView            `json:"reviews"`
}

// GetHomeDeps holds dependencies for GetHome.
type GetHomeDeps struct {
	ServiceStore interface {
		List(ctx context.Context) ([]domainService.Service, error)
	}
	ReviewStore interface {
		List(ctx context.Context, filter review.ListFilter) ([]domainReview.Review, error)
	}
	UserStore UserStore
	PackStore PackStore
}

// QueryGetHome gathers the public content shown on the home, coaches and pricing pages.
// PRE: none
// POST: Services are ordered by Order; Packs by lowest offer price; only published reviews
func QueryGetHome(ctx context.Context, deps GetHomeDeps) (GetHomeResult, error) {
	services, err := deps.ServiceStore.List(ctx)
	if err != nil {
		return GetHomeResult{}, fmt.Errorf("list services: %w", err)
	}
	sort.SliceStable(services, func(i, j int) bool { return services[i].Order < services[j].Order })

	packs, err := deps.PackStore.List(ctx)
	if err != nil {
		return GetHomeResult{}, fmt.Errorf("list packs: %w", err)
	}
	sort.SliceStable(packs, func(i, j int) bool { return packs[i].LowestPrice() < packs[j].LowestPrice() })

	coaches, err := deps.UserStore.List(ctx, user.ListFilter{Role: domainUser.RoleCoach})
	if err != nil {
		return GetHomeResult{}, fmt.Errorf("list coaches: %w", err)
	}

	reviews, err := deps.ReviewStore.List(ctx, review.ListFilter{PublishedOnly: true})
	if err != nil {
		return GetHomeResult{}, fmt.Errorf("list reviews: %w", err)
	}
	r := newResolver(PopulateDeps{UserStore: deps.UserStore, PackStore: deps.PackStore})
	views := make([]ReviewView, 0, len(reviews))
	for _, rv := range reviews {
		client, err := r.user(ctx, rv.ClientID)
		if err != nil {
			return GetHomeResult{}, err
		}
		views = append(views, ReviewView{Review: rv, Client: client})
	}

	return GetHomeResult{Services: services, Packs: packs, Coaches: coaches, Reviews: views}, nil
}
