package pack

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"stayfit/internal/domain/i18n"
)

// Domain errors
var (
	ErrEmptyCategory       = errors.New("category name (en) cannot be empty")
	ErrNoOffers            = errors.New("pack must offer at least one session option")
	ErrNegativeStartPrice  = errors.New("start price cannot be negative")
	ErrInvalidOfferPrice   = errors.New("offer price must be greater than zero")
	ErrInvalidSessionCount = errors.New("offer session count must be greater than zero")
	ErrInvalidExpiration   = errors.New("offer expiration days must be greater than zero")
	ErrDuplicateOfferID    = errors.New("offer ids must be unique within a pack")
	ErrOfferNotFound       = errors.New("offer not found in pack")
)

// Offer is one purchasable option of a Pack: a number of sessions at a price,
// valid for a number of days after purchase.
type Offer struct {
	ID             string  `json:"id" firestore:"id"`
	Price          float64 `json:"price" firestore:"price"`
	SessionCount   int     `json:"sessionCount" firestore:"sessionCount"`
	ExpirationDays int     `json:"expirationDays" firestore:"expirationDays"`
}

// Pack is a purchasable plan shown on the pricing page.
type Pack struct {
	ID         string               `json:"id" firestore:"-"`
	StartPrice float64              `json:"startPrice" firestore:"startPrice"`
	Category   i18n.LocalizedText   `json:"category" firestore:"category"`
	Sessions   []Offer              `json:"sessions" firestore:"sessions"`
	Features   []i18n.LocalizedText `json:"features" firestore:"features"`
	CreatedAt  time.Time            `json:"createdAt" firestore:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt" firestore:"updatedAt"`
}

// Validate checks if the Pack has valid data.
// PRE: Pack struct is populated; offers have ids assigned
// POST: Returns nil if valid, error otherwise
func (p *Pack) Validate() error {
	if strings.TrimSpace(p.Category.En) == "" {
		return ErrEmptyCategory
	}
	if p.StartPrice < 0 {
		return ErrNegativeStartPrice
	}
	if len(p.Sessions) == 0 {
		return ErrNoOffers
	}
	seen := make(map[string]bool, len(p.Sessions))
	for i, o := range p.Sessions {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("offer %d: %w", i+1, err)
		}
		if seen[o.ID] {
			return ErrDuplicateOfferID
		}
		seen[o.ID] = true
	}
	return nil
}

// Validate checks a single offer.
func (o Offer) Validate() error {
	if o.Price <= 0 {
		return ErrInvalidOfferPrice
	}
	if o.SessionCount <= 0 {
		return ErrInvalidSessionCount
	}
	if o.ExpirationDays <= 0 {
		return ErrInvalidExpiration
	}
	return nil
}

// AssignOfferIDs gives every offer without an id one from newID.
func (p *Pack) AssignOfferIDs(newID func() string) {
	for i := range p.Sessions {
		if strings.TrimSpace(p.Sessions[i].ID) == "" {
			p.Sessions[i].ID = newID()
		}
	}
}

// FindOffer returns the offer with the given id.
func (p Pack) FindOffer(offerID string) (Offer, error) {
	for _, o := range p.Sessions {
		if o.ID == offerID {
			return o, nil
		}
	}
	return Offer{}, ErrOfferNotFound
}

// LowestPrice returns the cheapest offer price, or StartPrice when it is set.
func (p Pack) LowestPrice() float64 {
	if p.StartPrice > 0 {
		return p.StartPrice
	}
	lowest := 0.0
	for i, o := range p.Sessions {
		if i == 0 || o.Price < lowest {
			lowest = o.Price
		}
	}
	return lowest
}
