package clientpack

import (
	"errors"
	"math"
	"strings"
	"time"

	"stayfit/internal/domain/pack"
)

// Purchase state constants
const (
	StatePending   = "pending"
	StateCompleted = "completed"
	StateCancelled = "cancelled"
)

// ValidStates contains all valid purchase states.
var ValidStates = []string{StatePending, StateCompleted, StateCancelled}

// Domain errors
var (
	ErrEmptyClientID       = errors.New("client id cannot be empty")
	ErrEmptyPackID         = errors.New("pack id cannot be empty")
	ErrInvalidState        = errors.New("purchase state must be one of: pending, completed, cancelled")
	ErrNegativeRemaining   = errors.New("remaining sessions cannot be negative")
	ErrExpiresBeforeBought = errors.New("expiration date cannot be before purchase date")
	ErrNegativePrice       = errors.New("pack price cannot be negative")
	ErrTerminalState       = errors.New("purchase is already in a terminal state")
	ErrExhausted           = errors.New("no sessions remaining on this pack")
)

// ClientPack records one client's purchase of one pack offer.
type ClientPack struct {
	ID                string    `json:"id" firestore:"-"`
	ClientID          string    `json:"clientId" firestore:"clientId"`
	PackID            string    `json:"packId" firestore:"packId"`
	OfferID           string    `json:"offerId" firestore:"offerId"`
	PackPrice         float64   `json:"packPrice" firestore:"packPrice"`
	AmountDue         float64   `json:"amountDue" firestore:"amountDue"`
	CouponCode        string    `json:"couponCode,omitempty" firestore:"couponCode"`
	PurchaseDate      time.Time `json:"purchaseDate" firestore:"purchaseDate"`
	ExpirationDate    time.Time `json:"expirationDate" firestore:"expirationDate"`
	RemainingSessions int       `json:"remainingSessions" firestore:"remainingSessions"`
	PurchaseState     string    `json:"purchaseState" firestore:"purchaseState"`
	TransactionNo     string    `json:"transactionNo,omitempty" firestore:"transactionNo"`
	CreatedAt         time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// CalculateExpirationDate returns the instant exactly days calendar days after now.
// The computation is done in UTC so the result is always days*24h after now.
func CalculateExpirationDate(now time.Time, days int) time.Time {
	return now.UTC().AddDate(0, 0, days)
}

// New builds a pending purchase for the given offer.
// PRE: offer has been validated as part of its pack
// POST: PurchaseState=pending, RemainingSessions=offer.SessionCount, PackPrice=offer.Price
func New(id, clientID, packID string, offer pack.Offer, now time.Time) ClientPack {
	now = now.UTC()
	return ClientPack{
		ID:                id,
		ClientID:          clientID,
		PackID:            packID,
		OfferID:           offer.ID,
		PackPrice:         offer.Price,
		AmountDue:         offer.Price,
		PurchaseDate:      now,
		ExpirationDate:    CalculateExpirationDate(now, offer.ExpirationDays),
		RemainingSessions: offer.SessionCount,
		PurchaseState:     StatePending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// ApplyDiscount records a coupon and reduces AmountDue by percentage (rounded to 2 decimals).
// PackPrice keeps the undiscounted offer price.
func (c *ClientPack) ApplyDiscount(code string, percentage int) {
	c.CouponCode = code
	due := c.PackPrice * float64(100-percentage) / 100
	c.AmountDue = math.Round(due*100) / 100
}

// Validate checks if the ClientPack has valid data.
// PRE: ClientPack struct is populated
// POST: Returns nil if valid, error otherwise
func (c *ClientPack) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return ErrEmptyClientID
	}
	if strings.TrimSpace(c.PackID) == "" {
		return ErrEmptyPackID
	}
	if !IsValidState(c.PurchaseState) {
		return ErrInvalidState
	}
	if c.PackPrice < 0 || c.AmountDue < 0 {
		return ErrNegativePrice
	}
	if c.RemainingSessions < 0 {
		return ErrNegativeRemaining
	}
	if c.ExpirationDate.Before(c.PurchaseDate) {
		return ErrExpiresBeforeBought
	}
	return nil
}

// IsTerminal reports whether the purchase has left the pending state.
func (c ClientPack) IsTerminal() bool {
	return IsTerminalState(c.PurchaseState)
}

// CanTransition reports whether moving to target is allowed.
// Re-applying the current terminal state is allowed and is a no-op.
func (c ClientPack) CanTransition(target string) error {
	if !IsTerminalState(target) {
		return ErrInvalidState
	}
	if c.PurchaseState == target {
		return nil
	}
	if c.IsTerminal() {
		return ErrTerminalState
	}
	return nil
}

// IsExhausted reports whether every session of the pack has been used.
func (c ClientPack) IsExhausted() bool {
	return c.RemainingSessions <= 0
}

// IsExpired reports whether the pack's validity has lapsed at now.
func (c ClientPack) IsExpired(now time.Time) bool {
	return now.After(c.ExpirationDate)
}

// IsUsable reports whether a session can be booked against this pack at now.
func (c ClientPack) IsUsable(now time.Time) bool {
	return c.PurchaseState == StateCompleted && !c.IsExhausted() && !c.IsExpired(now)
}

// IsValidState reports whether state is one of ValidStates.
func IsValidState(state string) bool {
	for _, s := range ValidStates {
		if s == state {
			return true
		}
	}
	return false
}

// IsTerminalState reports whether state is completed or cancelled.
func IsTerminalState(state string) bool {
	return state == StateCompleted || state == StateCancelled
}
