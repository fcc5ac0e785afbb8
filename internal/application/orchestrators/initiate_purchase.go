package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"stayfit/internal/adapters/storage"
	domainClientPack "stayfit/internal/domain/clientpack"
	domainCoupon "stayfit/internal/domain/coupon"
)

// Errors surfaced by the purchase flows.
var (
	ErrNoIdentity      = errors.New("no application user is linked to this sign-in")
	ErrUnknownCoupon   = errors.New("coupon code is not valid")
	ErrOrderMismatch   = errors.New("gateway order number does not match the purchase")
	ErrNotCheckoutable = errors.New("purchase is no longer awaiting payment")
)

// InitiatePurchaseInput carries input for starting a pack purchase.
type InitiatePurchaseInput struct {
	ClientID   string // resolved application user buying the pack
	PackID     string
	OfferID    string
	CouponCode string // optional
}

// InitiatePurchaseDeps holds dependencies for InitiatePurchase.
type InitiatePurchaseDeps struct {
	PackStore       PackReader
	ClientPackStore ClientPackStore
	CouponStore     CouponReader
	GenerateID      func() string
	Now             func() time.Time
}

// InitiatePurchaseResult is the pending purchase and where to pay for it.
type InitiatePurchaseResult struct {
	ClientPack  domainClientPack.ClientPack `json:"clientPack"`
	CheckoutURL string                      `json:"checkoutUrl"`
}

// CheckoutURL returns the checkout page for a purchase.
func CheckoutURL(clientPackID string) string {
	return "/checkout?id=" + url.QueryEscape(clientPackID)
}

// ExecuteInitiatePurchase persists a pending purchase for one offer of a pack.
// PRE: input.ClientID is the caller's application user id (empty when unresolved)
// POST: exactly one pending ClientPack exists per successful call; nothing is written on error
func ExecuteInitiatePurchase(ctx context.Context, input InitiatePurchaseInput, deps InitiatePurchaseDeps) (InitiatePurchaseResult, error) {
	if strings.TrimSpace(input.ClientID) == "" {
		return InitiatePurchaseResult{}, ErrNoIdentity
	}

	p, err := deps.PackStore.GetByID(ctx, input.PackID)
	if err != nil {
		return InitiatePurchaseResult{}, err
	}
	offer, err := p.FindOffer(input.OfferID)
	if err != nil {
		return InitiatePurchaseResult{}, err
	}

	now := deps.Now()
	cp := domainClientPack.New(deps.GenerateID(), input.ClientID, p.ID, offer, now)

	if code := domainCoupon.NormalizeCode(input.CouponCode); code != "" {
		c, err := deps.CouponStore.GetByCode(ctx, code)
		if errors.Is(err, storage.ErrNotFound) {
			return InitiatePurchaseResult{}, ErrUnknownCoupon
		}
		if err != nil {
			return InitiatePurchaseResult{}, fmt.Errorf("look up coupon: %w", err)
		}
		if !c.Applicable(now) {
			return InitiatePurchaseResult{}, domainCoupon.ErrNotApplicable
		}
		cp.ApplyDiscount(c.Code, c.Percentage)
	}

	if err := cp.Validate(); err != nil {
		return InitiatePurchaseResult{}, err
	}
	if err := deps.ClientPackStore.Create(ctx, cp); err != nil {
		return InitiatePurchaseResult{}, fmt.Errorf("create client pack: %w", err)
	}

	slog.Info("purchase_event", "event", "client_pack_created",
		"client_pack_id", cp.ID, "client_id", cp.ClientID, "pack_id", cp.PackID,
		"offer_id", cp.OfferID, "amount_due", cp.AmountDue, "coupon", cp.CouponCode)

	return InitiatePurchaseResult{ClientPack: cp, CheckoutURL: CheckoutURL(cp.ID)}, nil
}
