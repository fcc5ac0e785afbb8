package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Pallinder/go-randomdata"

	domainCoupon "stayfit/internal/domain/coupon"
	"stayfit/internal/domain/i18n"
	domainPack "stayfit/internal/domain/pack"
	domainReview "stayfit/internal/domain/review"
	domainService "stayfit/internal/domain/service"
	domainUser "stayfit/internal/domain/user"
)

// SeedDemoDeps holds the stores the demo seed writes to.
type SeedDemoDeps struct {
	UserStore interface {
		Create(ctx context.Context, value domainUser.User) error
	}
	PackStore interface {
		Create(ctx context.Context, value domainPack.Pack) error
		List(ctx context.Context) ([]domainPack.Pack, error)
	}
	ServiceStore interface {
		Create(ctx context.Context, value domainService.Service) error
	}
	ReviewStore interface {
		Create(ctx context.Context, value domainReview.Review) error
	}
	CouponStore interface {
		Create(ctx context.Context, value domainCoupon.Coupon) error
	}
	GenerateID func() string
	Now        func() time.Time
}

// DemoCouponCode is the always-valid coupon created by the demo seed.
const DemoCouponCode = "WELCOME10"

// ExecuteSeedDemo fills an empty store with packs, services, coaches and reviews
// so the marketing pages have something to show in development.
// PRE: none
// POST: if any pack exists nothing is written; otherwise the demo catalog exists
func ExecuteSeedDemo(ctx context.Context, deps SeedDemoDeps) error {
	existing, err := deps.PackStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list packs: %w", err)
	}
	if len(existing) > 0 {
		slog.Debug("seed_demo_skipped", "packs", len(existing))
		return nil
	}
	now := deps.Now().UTC()

	packs := []domainPack.Pack{
		{
			Category: i18n.Text("Personal training", "تدريب شخصي"),
			Sessions: []domainPack.Offer{
				{Price: 500, SessionCount: 10, ExpirationDays: 90},
				{Price: 280, SessionCount: 5, ExpirationDays: 45},
				{Price: 900, SessionCount: 20, ExpirationDays: 150},
			},
			Features: []i18n.LocalizedText{
				i18n.Text("One-to-one coaching", "تدريب فردي"),
				i18n.Text("Personal nutrition plan", "خطة تغذية شخصية"),
			},
		},
		{
			Category: i18n.Text("Small group", "مجموعات صغيرة"),
			Sessions: []domainPack.Offer{
				{Price: 200, SessionCount: 8, ExpirationDays: 30},
				{Price: 520, SessionCount: 24, ExpirationDays: 90},
			},
			Features: []i18n.LocalizedText{
				i18n.Text("Up to four people", "حتى أربعة أشخاص"),
			},
		},
	}
	for _, p := range packs {
		p.ID = deps.GenerateID()
		p.AssignOfferIDs(deps.GenerateID)
		p.StartPrice = p.LowestPrice()
		p.CreatedAt, p.UpdatedAt = now, now
		if err := p.Validate(); err != nil {
			return fmt.Errorf("seed pack %q: %w", p.Category.En, err)
		}
		if err := deps.PackStore.Create(ctx, p); err != nil {
			return fmt.Errorf("seed pack %q: %w", p.Category.En, err)
		}
	}

	services := []domainService.Service{
		{
			Title:       i18n.Text("Strength", "القوة"),
			Description: i18n.Text("Progressive **strength** programs for every level.", "برامج **قوة** متدرجة لجميع المستويات."),
		},
		{
			Title:       i18n.Text("Mobility", "المرونة"),
			Description: i18n.Text("Move better, recover faster.", "تحرّك بشكل أفضل وتعافَ أسرع."),
		},
		{
			Title:       i18n.Text("Weight loss", "إنقاص الوزن"),
			Description: i18n.Text("Training and nutrition that fit your week.", "تدريب وتغذية تناسب أسبوعك."),
		},
	}
	for i, s := range services {
		s.ID = deps.GenerateID()
		s.Order = i
		s.CreatedAt = now
		if err := deps.ServiceStore.Create(ctx, s); err != nil {
			return fmt.Errorf("seed service %q: %w", s.Title.En, err)
		}
	}

	for i := 0; i < 3; i++ {
		first := randomdata.FirstName(randomdata.RandomGender)
		last := randomdata.LastName()
		coach := domainUser.User{
			ID:              deps.GenerateID(),
			ExternalID:      "seed-" + deps.GenerateID(),
			Email:           strings.ToLower(fmt.Sprintf("%s.%s.%d@coaches.stayfit.example", first, last, i)),
			FirstName:       first,
			LastName:        last,
			Role:            domainUser.RoleCoach,
			Bio:             i18n.Text(randomdata.Paragraph(), ""),
			Specialties:     []i18n.LocalizedText{services[i%len(services)].Title},
			ExperienceYears: randomdata.Number(2, 15),
			Languages:       []string{"en", "ar"},
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := deps.UserStore.Create(ctx, coach); err != nil {
			return fmt.Errorf("seed coach: %w", err)
		}
	}

	client := domainUser.User{
		ID:         deps.GenerateID(),
		ExternalID: "seed-" + deps.GenerateID(),
		Email:      "demo.client@stayfit.example",
		FirstName:  randomdata.FirstName(randomdata.RandomGender),
		LastName:   randomdata.LastName(),
		Role:       domainUser.RoleClient,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := deps.UserStore.Create(ctx, client); err != nil {
		return fmt.Errorf("seed client: %w", err)
	}
	comments := []i18n.LocalizedText{
		i18n.Text("Best coaching I have had.", "أفضل تدريب حصلت عليه."),
		i18n.Text("Flexible times and great results.", "مواعيد مرنة ونتائج رائعة."),
	}
	for _, c := range comments {
		r := domainReview.Review{
			ID:        deps.GenerateID(),
			ClientID:  client.ID,
			Rating:    randomdata.Number(4, 6),
			Comment:   c,
			Published: true,
			CreatedAt: now,
		}
		if err := deps.ReviewStore.Create(ctx, r); err != nil {
			return fmt.Errorf("seed review: %w", err)
		}
	}

	coupon := domainCoupon.Coupon{
		ID:         deps.GenerateID(),
		Code:       DemoCouponCode,
		Percentage: 10,
		ExpiryDate: now.AddDate(1, 0, 0),
		Status:     domainCoupon.StatusActive,
		CreatedAt:  now,
	}
	if err := deps.CouponStore.Create(ctx, coupon); err != nil {
		return fmt.Errorf("seed coupon: %w", err)
	}

	slog.Info("seed_demo_loaded", "packs", len(packs), "services", len(services), "coaches", 3)
	return nil
}
