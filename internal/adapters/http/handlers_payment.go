package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"stayfit/internal/adapters/http/middleware"
	"stayfit/internal/adapters/payment"
	"stayfit/internal/application/orchestrators"
	"stayfit/internal/application/projections"
	domainClientPack "stayfit/internal/domain/clientpack"
	"stayfit/internal/domain/policy"
)

// pageError renders err on the error page. Signed-out visitors are sent to /login instead.
func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	switch {
	case status == http.StatusUnauthorized:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case status >= 500:
		slog.Error("internal_error", "method", r.Method, "path", r.URL.Path, "status", status, "error", err.Error())
	}
	s.renderError(w, r, status, publicMessage(err, status))
}

func (s *Server) checkoutDeps() projections.GetCheckoutDeps {
	return projections.GetCheckoutDeps{
		ClientPackStore: s.stores.ClientPackStore,
		UserStore:       s.stores.UserStore,
		PackStore:       s.stores.PackStore,
	}
}

// handlePricingBuy handles POST /pricing: the buy form on the pricing page.
func (s *Server) handlePricingBuy(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if !caller.Authenticated() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	result, err := s.initiatePurchase(r, orchestrators.InitiatePurchaseInput{
		ClientID:   caller.UserID,
		PackID:     r.PostFormValue("packId"),
		OfferID:    r.PostFormValue("offerId"),
		CouponCode: r.PostFormValue("couponCode"),
	})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusBadRequest {
			s.renderPricing(w, r, status, publicMessage(err, status))
			return
		}
		s.pageError(w, r, err)
		return
	}
	http.Redirect(w, r, result.CheckoutURL, http.StatusSeeOther)
}

// handleCheckout handles GET/POST for /checkout?id=
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.URL.Query().Get("id")
	if id == "" {
		s.renderError(w, r, http.StatusBadRequest, "id is required")
		return
	}
	view, err := projections.QueryGetCheckout(ctx, projections.GetCheckoutQuery{ClientPackID: id}, s.checkoutDeps())
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	res := policy.Resource{Kind: policy.KindClientPack, OwnerID: view.Purchase.ClientID}
	if err := policy.Evaluate(middleware.CallerFromContext(ctx), res, policy.ActionRead); err != nil {
		s.pageError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.renderTemplate(w, r, http.StatusOK, "checkout.html", pageData{Title: "checkout.title", Data: view})

	case http.MethodPost:
		result, err := orchestrators.ExecuteStartCheckout(ctx, orchestrators.StartCheckoutInput{
			ClientPackID: id,
			CallbackURL:  s.publicURL + "/payment/callback",
			Locale:       middleware.LocaleFromContext(ctx),
		}, s.startCheckoutDeps())
		if err != nil {
			status := statusFor(err)
			if errors.Is(err, payment.ErrGateway) || status == http.StatusConflict {
				s.renderTemplate(w, r, status, "checkout.html", pageData{
					Title: "checkout.title",
					Data:  view,
					Error: publicMessage(err, status),
				})
				return
			}
			s.pageError(w, r, err)
			return
		}
		http.Redirect(w, r, result.RedirectURL, http.StatusSeeOther)

	default:
		s.renderError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) startCheckoutDeps() orchestrators.StartCheckoutDeps {
	return orchestrators.StartCheckoutDeps{
		ClientPackStore: s.stores.ClientPackStore,
		PackStore:       s.stores.PackStore,
		UserStore:       s.stores.UserStore,
		OutboxStore:     s.stores.OutboxStore,
		Gateway:         s.gateway,
		GenerateID:      s.generateID,
		Now:             s.now,
	}
}

func (s *Server) reconcile(r *http.Request) (orchestrators.ReconcilePaymentResult, error) {
	q := r.URL.Query()
	return orchestrators.ExecuteReconcilePayment(r.Context(), orchestrators.ReconcilePaymentInput{
		OrderNumber:   strings.TrimSpace(q.Get("orderNumber")),
		TransactionNo: strings.TrimSpace(q.Get("transactionNo")),
		Locale:        middleware.LocaleFromContext(r.Context()),
	}, orchestrators.ReconcilePaymentDeps{
		ClientPackStore: s.stores.ClientPackStore,
		PackStore:       s.stores.PackStore,
		UserStore:       s.stores.UserStore,
		OutboxStore:     s.stores.OutboxStore,
		Gateway:         s.gateway,
		GenerateID:      s.generateID,
		Now:             s.now,
	})
}

// paymentPage is what payment.html renders.
type paymentPage struct {
	Outcome  string
	Purchase *projections.ClientPackView
}

// handlePaymentCallback handles GET /payment/callback, where the gateway sends the browser back.
// The gateway's answer is authoritative, so the page does not require a session.
func (s *Server) handlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.renderError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	if q.Get("orderNumber") == "" || q.Get("transactionNo") == "" {
		s.renderError(w, r, http.StatusBadRequest, "orderNumber and transactionNo are required")
		return
	}
	result, err := s.reconcile(r)
	if err != nil && !errors.Is(err, payment.ErrGateway) {
		s.pageError(w, r, err)
		return
	}

	page := paymentPage{Outcome: result.Outcome}
	if result.ClientPack.ID != "" {
		views, perr := projections.PopulateClientPacks(r.Context(), []domainClientPack.ClientPack{result.ClientPack}, s.populateDeps())
		if perr != nil {
			slog.Warn("purchase_event", "event", "callback_populate_failed", "client_pack_id", result.ClientPack.ID, "error", perr)
		} else {
			page.Purchase = &views[0]
		}
	}
	status := http.StatusOK
	msg := ""
	if err != nil {
		status = http.StatusBadGateway
		msg = publicMessage(err, status)
	}
	s.renderTemplate(w, r, status, "payment.html", pageData{Title: "payment.title", Data: page, Error: msg})
}

// handlePaymentStatus handles GET /api/payment/status: the callback reconciliation as JSON.
func (s *Server) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	orderNumber := q.Get("orderNumber")
	if orderNumber == "" || q.Get("transactionNo") == "" {
		badRequest(w, "orderNumber and transactionNo are required")
		return
	}
	cp, err := s.stores.ClientPackStore.GetByID(r.Context(), orderNumber)
	if err != nil {
		lookupFailed(w, r, err)
		return
	}
	if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindClientPack, OwnerID: cp.ClientID}, policy.ActionRead); !ok {
		return
	}
	result, err := s.reconcile(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
