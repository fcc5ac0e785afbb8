package projections

import (
	"context"
	"errors"
	"fmt"

	"stayfit/internal/adapters/storage"
	domainClientPack "stayfit/internal/domain/clientpack"
	domainPack "stayfit/internal/domain/pack"
	domainSession "stayfit/internal/domain/session"
	domainUser "stayfit/internal/domain/user"
)

// UserSummary is the part of a user shown next to the records that reference it.
type UserSummary struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// Summarize reduces a user to its summary.
func Summarize(u domainUser.User) *UserSummary {
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Phone: u.Phone, ProfilePic: u.ProfilePic}
}

// FullName mirrors user.FullName for templates.
func (u UserSummary) FullName() string {
	return domainUser.User{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}.FullName()
}

// ClientPackView is a purchase with its pack populated. Pack is nil when it has been deleted.
type ClientPackView struct {
	domainClientPack.ClientPack
	Pack  *domainPack.Pack  `json:"pack"`
	Offer *domainPack.Offer `json:"offer,omitempty"`
}

// SessionView is a session with client, coach and pack populated. Missing references are nil.
type SessionView struct {
	domainSession.Session
	Client *UserSummary     `json:"client"`
	Coach  *UserSummary     `json:"coach"`
	Pack   *domainPack.Pack `json:"pack"`
}

// PopulateDeps holds the lookups used to populate references.
type PopulateDeps struct {
	UserStore interface {
		GetByID(ctx context.Context, id string) (domainUser.User, error)
	}
	PackStore interface {
		GetByID(ctx context.Context, id string) (domainPack.Pack, error)
	}
}

// resolver memoizes lookups for one populate call. Missing records resolve to nil.
type resolver struct {
	deps  PopulateDeps
	users map[string]*UserSummary
	packs map[string]*domainPack.Pack
}

func newResolver(deps PopulateDeps) *resolver {
	return &resolver{deps: deps, users: map[string]*UserSummary{}, packs: map[string]*domainPack.Pack{}}
}

func (r *resolver) user(ctx context.Context, id string) (*UserSummary, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	u, err := r.deps.UserStore.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		r.users[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("populate user %s: %w", id, err)
	}
	r.users[id] = Summarize(u)
	return r.users[id], nil
}

func (r *resolver) pack(ctx context.Context, id string) (*domainPack.Pack, error) {
	if p, ok := r.packs[id]; ok {
		return p, nil
	}
	p, err := r.deps.PackStore.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		r.packs[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("populate pack %s: %w", id, err)
	}
	r.packs[id] = &p
	return &p, nil
}

// PopulateClientPacks attaches each purchase's pack and offer.
func PopulateClientPacks(ctx context.Context, list []domainClientPack.ClientPack, deps PopulateDeps) ([]ClientPackView, error) {
	r := newResolver(deps)
	out := make([]ClientPackView, 0, len(list))
	for _, cp := range list {
		p, err := r.pack(ctx, cp.PackID)
		if err != nil {
			return nil, err
		}
		v := ClientPackView{ClientPack: cp, Pack: p}
		if p != nil {
			if o, err := p.FindOffer(cp.OfferID); err == nil {
				v.Offer = &o
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// PopulateSessions attaches each session's client, coach and pack.
func PopulateSessions(ctx context.Context, list []domainSession.Session, deps PopulateDeps) ([]SessionView, error) {
	r := newResolver(deps)
	out := make([]SessionView, 0, len(list))
	for _, s := range list {
		client, err := r.user(ctx, s.ClientID)
		if err != nil {
			return nil, err
		}
		coach, err := r.user(ctx, s.CoachID)
		if err != nil {
			return nil, err
		}
		p, err := r.pack(ctx, s.PackID)
		if err != nil {
			return nil, err
		}
		out = append(out, SessionView{Session: s, Client: client, Coach: coach, Pack: p})
	}
	return out, nil
}
