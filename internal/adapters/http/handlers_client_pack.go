package web

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"stayfit/internal/adapters/http/middleware"
	clientPackStore "stayfit/internal/adapters/storage/clientpack"
	"stayfit/internal/application/orchestrators"
	"stayfit/internal/application/projections"
	domainClientPack "stayfit/internal/domain/clientpack"
	"stayfit/internal/domain/policy"
)

// clientPackPatch is the admin update body; nil fields are left unchanged.
type clientPackPatch struct {
	PurchaseState     *string    `json:"purchaseState"`
	RemainingSessions *int       `json:"remainingSessions"`
	ExpirationDate    *time.Time `json:"expirationDate"`
}

func (s *Server) populateDeps() projections.PopulateDeps {
	return projections.PopulateDeps{UserStore: s.stores.UserStore, PackStore: s.stores.PackStore}
}

// handleClientPack handles GET/POST/PUT/PATCH/DELETE for /api/client-pack
func (s *Server) handleClientPack(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getClientPacks(w, r)
	case http.MethodPost:
		s.createClientPack(w, r)
	case http.MethodPut, http.MethodPatch:
		s.updateClientPack(w, r)
	case http.MethodDelete:
		s.deleteClientPack(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) getClientPacks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if id := q.Get("id"); id != "" {
		cp, err := s.stores.ClientPackStore.GetByID(ctx, id)
		if err != nil {
			lookupFailed(w, r, err)
			return
		}
		if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindClientPack, OwnerID: cp.ClientID}, policy.ActionRead); !ok {
			return
		}
		views, err := projections.PopulateClientPacks(ctx, []domainClientPack.ClientPack{cp}, s.populateDeps())
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, views[0])
		return
	}

	filter := clientPackStore.ListFilter{ClientID: q.Get("clientId"), State: q.Get("state")}
	if filter.State != "" && !domainClientPack.IsValidState(filter.State) {
		badRequest(w, domainClientPack.ErrInvalidState.Error())
		return
	}
	if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindClientPack, OwnerID: filter.ClientID}, policy.ActionList); !ok {
		return
	}
	list, err := s.stores.ClientPackStore.List(ctx, filter)
	if err != nil {
		internalError(w, err)
		return
	}
	list = pageOf(w, r, list)
	views, err := projections.PopulateClientPacks(ctx, list, s.populateDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) createClientPack(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ClientID   string `json:"clientId"`
		PackID     string `json:"packId"`
		OfferID    string `json:"offerId"`
		CouponCode string `json:"couponCode"`
	}
	if err := strictDecode(w, r, &in); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if strings.TrimSpace(in.ClientID) == "" {
		in.ClientID = caller.UserID
	}
	if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindClientPack, OwnerID: in.ClientID}, policy.ActionCreate); !ok {
		return
	}

	result, err := s.initiatePurchase(r, orchestrators.InitiatePurchaseInput{
		ClientID:   in.ClientID,
		PackID:     in.PackID,
		OfferID:    in.OfferID,
		CouponCode: in.CouponCode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// initiatePurchase runs the purchase orchestrator with the server's stores.
func (s *Server) initiatePurchase(r *http.Request, input orchestrators.InitiatePurchaseInput) (orchestrators.InitiatePurchaseResult, error) {
	return orchestrators.ExecuteInitiatePurchase(r.Context(), input, orchestrators.InitiatePurchaseDeps{
		PackStore:       s.stores.PackStore,
		ClientPackStore: s.stores.ClientPackStore,
		CouponStore:     s.stores.CouponStore,
		GenerateID:      s.generateID,
		Now:             s.now,
	})
}

func (s *Server) updateClientPack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.URL.Query().Get("id")
	if id == "" {
		badRequest(w, "id is required")
		return
	}
	cp, err := s.stores.ClientPackStore.GetByID(ctx, id)
	if err != nil {
		lookupFailed(w, r, err)
		return
	}
	if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindClientPack, OwnerID: cp.ClientID}, policy.ActionUpdate); !ok {
		return
	}
	var patch clientPackPatch
	if err := strictDecode(w, r, &patch); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if patch.PurchaseState != nil && *patch.PurchaseState != cp.PurchaseState {
		if err := cp.CanTransition(*patch.PurchaseState); err != nil {
			writeError(w, r, err)
			return
		}
		slog.Info("purchase_event", "event", "state_overridden", "client_pack_id", cp.ID, "from", cp.PurchaseState, "to", *patch.PurchaseState)
		cp.PurchaseState = *patch.PurchaseState
	}
	if patch.RemainingSessions != nil {
		cp.RemainingSessions = *patch.RemainingSessions
	}
	if patch.ExpirationDate != nil {
		cp.ExpirationDate = patch.ExpirationDate.UTC()
	}
	cp.UpdatedAt = s.now().UTC()
	if err := cp.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.stores.ClientPackStore.Update(ctx, cp); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (s *Server) deleteClientPack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.URL.Query().Get("id")
	if id == "" {
		badRequest(w, "id is required")
		return
	}
	cp, err := s.stores.ClientPackStore.GetByID(ctx, id)
	if err != nil {
		lookupFailed(w, r, err)
		return
	}
	if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindClientPack, OwnerID: cp.ClientID}, policy.ActionDelete); !ok {
		return
	}
	if err := s.stores.ClientPackStore.Delete(ctx, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
