package projections

import (
	"context"
	"fmt"
	"time"

	"stayfit/internal/adapters/storage"
	"stayfit/internal/adapters/storage/clientpack"
	"stayfit/internal/adapters/storage/review"
	"stayfit/internal/adapters/storage/session"
	"stayfit/internal/adapters/storage/user"
	domainClientPack "stayfit/internal/domain/clientpack"
	"stayfit/internal/domain/i18n"
	domainOutbox "stayfit/internal/domain/outbox"
	domainPack "stayfit/internal/domain/pack"
	domainReview "stayfit/internal/domain/review"
	domainService "stayfit/internal/domain/service"
	domainSession "stayfit/internal/domain/session"
	domainUser "stayfit/internal/domain/user"
)

// Wednesday 2025-03-12 10:00 UTC.
var wednesday = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func day(raw string) time.Time {
	d, err := domainSession.ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

type stubUserStore struct {
	users []domainUser.User
	err   error
}

func (s *stubUserStore) GetByID(_ context.Context, id string) (domainUser.User, error) {
	if s.err != nil {
		return domainUser.User{}, s.err
	}
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domainUser.User{}, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
}

func (s *stubUserStore) List(_ context.Context, filter user.ListFilter) ([]domainUser.User, error) {
	var out []domainUser.User
	for _, u := range s.users {
		if filter.Role == "" || u.Role == filter.Role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *stubUserStore) CountByRole(_ context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, u := range s.users {
		counts[u.Role]++
	}
	return counts, nil
}

type stubPackStore struct {
	packs []domainPack.Pack
}

func (s *stubPackStore) GetByID(_ context.Context, id string) (domainPack.Pack, error) {
	for _, p := range s.packs {
		if p.ID == id {
			return p, nil
		}
	}
	return domainPack.Pack{}, fmt.Errorf("pack %s: %w", id, storage.ErrNotFound)
}

func (s *stubPackStore) List(_ context.Context) ([]domainPack.Pack, error) {
	return s.packs, nil
}

type stubClientPackStore struct {
	packs []domainClientPack.ClientPack
}

func (s *stubClientPackStore) GetByID(_ context.Context, id string) (domainClientPack.ClientPack, error) {
	for _, cp := range s.packs {
		if cp.ID == id {
			return cp, nil
		}
	}
	return domainClientPack.ClientPack{}, fmt.Errorf("client pack %s: %w", id, storage.ErrNotFound)
}

func (s *stubClientPackStore) List(_ context.Context, filter clientpack.ListFilter) ([]domainClientPack.ClientPack, error) {
	var out []domainClientPack.ClientPack
	for _, cp := range s.packs {
		if filter.ClientID != "" && cp.ClientID != filter.ClientID {
			continue
		}
		if filter.State != "" && cp.PurchaseState != filter.State {
			continue
		}
		out = append(out, cp)
	}
	return out, nil
}

type stubSessionStore struct {
	sessions []domainSession.Session
	filters  []session.ListFilter
}

func (s *stubSessionStore) List(_ context.Context, filter session.ListFilter) ([]domainSession.Session, error) {
	s.filters = append(s.filters, filter)
	var out []domainSession.Session
	for _, sess := range s.sessions {
		if filter.ClientID != "" && sess.ClientID != filter.ClientID {
			continue
		}
		if filter.CoachID != "" && sess.CoachID != filter.CoachID {
			continue
		}
		out = append(out, sess)
	}
	return out, nil
}

type stubOutboxStore struct {
	failed []domainOutbox.Entry
}

func (s *stubOutboxStore) ListFailed(_ context.Context, limit int) ([]domainOutbox.Entry, error) {
	if len(s.failed) > limit {
		return s.failed[:limit], nil
	}
	return s.failed, nil
}

type stubServiceStore struct {
	services []domainService.Service
}

func (s *stubServiceStore) List(_ context.Context) ([]domainService.Service, error) {
	return s.services, nil
}

type stubReviewStore struct {
	reviews []domainReview.Review
}

func (s *stubReviewStore) List(_ context.Context, filter review.ListFilter) ([]domainReview.Review, error) {
	var out []domainReview.Review
	for _, r := range s.reviews {
		if filter.PublishedOnly && !r.Published {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func coach() domainUser.User {
	return domainUser.User{ID: "coach-1", Email: "sami@example.com", FirstName: "Sami", LastName: "Haddad", Role: domainUser.RoleCoach}
}

func client() domainUser.User {
	return domainUser.User{ID: "client-1", Email: "amal@example.com", FirstName: "Amal", Role: domainUser.RoleClient}
}

func trainingPack() domainPack.Pack {
	return domainPack.Pack{
		ID:       "pack-1",
		Category: i18n.Text("Personal training", "تدريب شخصي"),
		Sessions: []domainPack.Offer{{ID: "offer-1", Price: 500, SessionCount: 10, ExpirationDays: 90}},
	}
}

func booked(id, date, hour, status string) domainSession.Session {
	return domainSession.Session{
		ID: id, ClientID: "client-1", CoachID: "coach-1", PackID: "pack-1", ClientPackID: "cp-1",
		SessionDate: day(date), SessionTime: hour, Duration: 60, Status: status,
	}
}
