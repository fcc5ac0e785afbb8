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

// Reconciliation outcomes. OutcomeFailed and OutcomePending are display-only:
// the stored purchase is not changed.
const (
	OutcomeCompleted = domainClientPack.StateCompleted
	OutcomeCancelled = domainClientPack.StateCancelled
	OutcomeFailed    = "failed"
	OutcomePending   = domainClientPack.StatePending
)

// ReconcilePaymentInput carries the gateway callback parameters.
type ReconcilePaymentInput struct {
	OrderNumber   string // our ClientPack id
	TransactionNo string
	Locale        i18n.Locale // for the receipt email
}

// ReconcilePaymentDeps holds dependencies for ReconcilePayment.
type ReconcilePaymentDeps struct {
	ClientPackStore ClientPackStore
	PackStore       PackReader
	UserStore       UserReader
	OutboxStore     OutboxWriter
	Gateway         payment.Gateway
	GenerateID      func() string
	Now             func() time.Time
}

// ReconcilePaymentResult is what the callback page shows.
type ReconcilePaymentResult struct {
	Outcome       string                      `json:"outcome"`
	GatewayStatus string                      `json:"gatewayStatus,omitempty"`
	ClientPack    domainClientPack.ClientPack `json:"clientPack"`
	ReceiptQueued bool                        `json:"receiptQueued"`
}

// targetState maps a gateway status to the stored purchase state.
// The gateway reports an abandoned checkout as "Pending", which is stored as cancelled.
func targetState(gatewayStatus string) (string, bool) {
	switch gatewayStatus {
	case payment.StatusPaid:
		return domainClientPack.StateCompleted, true
	case payment.StatusPending:
		return domainClientPack.StateCancelled, true
	}
	return "", false
}

// ExecuteReconcilePayment applies the gateway's verdict on a purchase.
// PRE: input.OrderNumber and input.TransactionNo come from the gateway callback
// POST: Paid moves pending to completed, gateway Pending moves pending to cancelled,
// any other status changes nothing. A purchase already in a terminal state keeps it;
// re-applying the same state is a no-op. Gateway failure leaves the purchase pending.
func ExecuteReconcilePayment(ctx context.Context, input ReconcilePaymentInput, deps ReconcilePaymentDeps) (ReconcilePaymentResult, error) {
	cp, err := deps.ClientPackStore.GetByID(ctx, input.OrderNumber)
	if err != nil {
		return ReconcilePaymentResult{}, err
	}

	invoice, err := deps.Gateway.GetInvoice(ctx, input.TransactionNo)
	if err != nil {
		slog.Warn("purchase_event", "event", "reconcile_gateway_failed", "client_pack_id", cp.ID, "error", err)
		return ReconcilePaymentResult{Outcome: OutcomePending, ClientPack: cp}, err
	}
	if invoice.OrderNumber != cp.ID {
		slog.Warn("purchase_event", "event", "reconcile_order_mismatch",
			"client_pack_id", cp.ID, "gateway_order_number", invoice.OrderNumber, "transaction_no", input.TransactionNo)
		return ReconcilePaymentResult{}, ErrOrderMismatch
	}

	result := ReconcilePaymentResult{GatewayStatus: invoice.Status, ClientPack: cp}
	target, ok := targetState(invoice.Status)
	if !ok {
		slog.Info("purchase_event", "event", "reconcile_failed_status", "client_pack_id", cp.ID, "gateway_status", invoice.Status)
		result.Outcome = OutcomeFailed
		return result, nil
	}

	if cp.IsTerminal() {
		if cp.PurchaseState != target {
			slog.Warn("purchase_event", "event", "reconcile_conflict",
				"client_pack_id", cp.ID, "state", cp.PurchaseState, "gateway_target", target)
		}
		result.Outcome = cp.PurchaseState
		return result, nil
	}

	now := deps.Now()
	if target == domainClientPack.StateCompleted {
		updated, queued, err := completePurchase(ctx, cp, input.Locale, deps, now)
		if err != nil {
			return ReconcilePaymentResult{}, err
		}
		result.ClientPack = updated
		result.Outcome = updated.PurchaseState
		result.ReceiptQueued = queued
		return result, nil
	}

	updated, _, err := transition(ctx, deps.ClientPackStore, cp.ID, target, now)
	if err != nil {
		return ReconcilePaymentResult{}, err
	}
	result.ClientPack = updated
	result.Outcome = updated.PurchaseState
	return result, nil
}

// transition applies a conditional state change and reloads the record.
// POST: changed reports whether this call won the transition
func transition(ctx context.Context, store ClientPackStore, id, to string, now time.Time) (domainClientPack.ClientPack, bool, error) {
	changed, err := store.TransitionState(ctx, id, to, now)
	if err != nil {
		return domainClientPack.ClientPack{}, false, fmt.Errorf("transition %s to %s: %w", id, to, err)
	}
	cp, err := store.GetByID(ctx, id)
	if err != nil {
		return domainClientPack.ClientPack{}, false, fmt.Errorf("reload %s: %w", id, err)
	}
	if changed {
		slog.Info("purchase_event", "event", "state_changed", "client_pack_id", id, "state", to)
	} else {
		slog.Info("purchase_event", "event", "state_unchanged", "client_pack_id", id, "state", cp.PurchaseState, "requested", to)
	}
	return cp, changed, nil
}

// completePurchase marks a purchase completed and, when this call made the change,
// queues the receipt email.
func completePurchase(ctx context.Context, cp domainClientPack.ClientPack, locale i18n.Locale, deps ReconcilePaymentDeps, now time.Time) (domainClientPack.ClientPack, bool, error) {
	updated, changed, err := transition(ctx, deps.ClientPackStore, cp.ID, domainClientPack.StateCompleted, now)
	if err != nil || !changed {
		return updated, false, err
	}
	return updated, queueReceipt(ctx, updated, locale, deps, now), nil
}

func queueReceipt(ctx context.Context, cp domainClientPack.ClientPack, locale i18n.Locale, deps ReconcilePaymentDeps, now time.Time) bool {
	client, err := deps.UserStore.GetByID(ctx, cp.ClientID)
	if err != nil {
		slog.Error("outbox_enqueue_failed", "client_pack_id", cp.ID, "error", err)
		return false
	}
	p, err := deps.PackStore.GetByID(ctx, cp.PackID)
	if err != nil {
		slog.Error("outbox_enqueue_failed", "client_pack_id", cp.ID, "error", err)
		return false
	}
	payload, err := composeEmail(locale, client.Email, "email.receipt.subject", "email.receipt.body",
		client.FullName(), p.Category.Resolve(locale), cp.RemainingSessions, cp.AmountDue,
		cp.ExpirationDate.Format("2006-01-02"))
	if err != nil {
		slog.Error("outbox_enqueue_failed", "client_pack_id", cp.ID, "error", err)
		return false
	}
	return enqueueEmail(ctx, deps.OutboxStore, deps.GenerateID(), payload, now) != ""
}
