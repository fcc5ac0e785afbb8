package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stayfit/internal/adapters/payment"
	domainClientPack "stayfit/internal/domain/clientpack"
	"stayfit/internal/domain/i18n"
)

// StartCheckoutInput carries input for handing a purchase to the gateway.
type StartCheckoutInput struct {
	ClientPackID string
	CallbackURL  string // absolute URL of /payment/callback
	Locale       i18n.Locale
}

// StartCheckoutDeps holds dependencies for StartCheckout.
type StartCheckoutDeps struct {
	ClientPackStore ClientPackStore
	PackStore       PackReader
	UserStore       UserReader
	OutboxStore     OutboxWriter
	Gateway         payment.Gateway
	GenerateID      func() string
	Now             func() time.Time
}

// StartCheckoutResult says where the browser goes next.
type StartCheckoutResult struct {
	RedirectURL   string
	TransactionNo string
}

// ExecuteStartCheckout creates a gateway invoice for a pending purchase.
// A purchase discounted to nothing skips the gateway and completes immediately.
// PRE: caller may read the purchase
// POST: on success the purchase carries the gateway transaction number; on gateway
// failure the purchase is unchanged and still pending
func ExecuteStartCheckout(ctx context.Context, input StartCheckoutInput, deps StartCheckoutDeps) (StartCheckoutResult, error) {
	cp, err := deps.ClientPackStore.GetByID(ctx, input.ClientPackID)
	if err != nil {
		return StartCheckoutResult{}, err
	}
	if cp.PurchaseState != domainClientPack.StatePending {
		return StartCheckoutResult{}, ErrNotCheckoutable
	}

	now := deps.Now()
	if cp.AmountDue <= 0 {
		if _, _, err := completePurchase(ctx, cp, input.Locale, ReconcilePaymentDeps{
			ClientPackStore: deps.ClientPackStore,
			PackStore:       deps.PackStore,
			UserStore:       deps.UserStore,
			OutboxStore:     deps.OutboxStore,
			GenerateID:      deps.GenerateID,
		}, now); err != nil {
			return StartCheckoutResult{}, err
		}
		return StartCheckoutResult{RedirectURL: "/dashboard/client"}, nil
	}

	p, err := deps.PackStore.GetByID(ctx, cp.PackID)
	if err != nil {
		return StartCheckoutResult{}, fmt.Errorf("load pack %s: %w", cp.PackID, err)
	}
	client, err := deps.UserStore.GetByID(ctx, cp.ClientID)
	if err != nil {
		return StartCheckoutResult{}, fmt.Errorf("load client %s: %w", cp.ClientID, err)
	}

	checkout, err := deps.Gateway.CreateInvoice(ctx, payment.Invoice{
		OrderNumber: cp.ID,
		Amount:      cp.AmountDue,
		CallbackURL: input.CallbackURL,
		Title:       p.Category.Resolve(input.Locale),
		ClientName:  client.FullName(),
		ClientEmail: client.Email,
		ClientPhone: client.Phone,
	})
	if err != nil {
		slog.Warn("purchase_event", "event", "checkout_failed", "client_pack_id", cp.ID, "error", err)
		return StartCheckoutResult{}, err
	}

	if err := deps.ClientPackStore.SetTransactionNo(ctx, cp.ID, checkout.TransactionNo, now); err != nil {
		return StartCheckoutResult{}, fmt.Errorf("record transaction: %w", err)
	}
	slog.Info("purchase_event", "event", "checkout_started", "client_pack_id", cp.ID, "transaction_no", checkout.TransactionNo)

	return StartCheckoutResult{RedirectURL: checkout.URL, TransactionNo: checkout.TransactionNo}, nil
}
