package web

import (
	"net/http"

	"stayfit/internal/domain/i18n"
	domainPack "stayfit/internal/domain/pack"
	"stayfit/internal/domain/policy"
)

// packInput is the create and replace body.
type packInput struct {
	StartPrice float64              `json:"startPrice"`
	Category   i18n.LocalizedText   `json:"category"`
	Sessions   []domainPack.Offer   `json:"sessions"`
	Features   []i18n.LocalizedText `json:"features"`
}

// handlePacks handles GET/POST/PUT/DELETE for /api/packs
func (s *Server) handlePacks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.URL.Query().Get("id")
	res := policy.Resource{Kind: policy.KindPack}

	switch r.Method {
	case http.MethodGet:
		if id != "" {
			if _, ok := authorize(w, r, res, policy.ActionRead); !ok {
				return
			}
			p, err := s.stores.PackStore.GetByID(ctx, id)
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, p)
			return
		}
		if _, ok := authorize(w, r, res, policy.ActionList); !ok {
			return
		}
		packs, err := s.stores.PackStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pageOf(w, r, packs))

	case http.MethodPost:
		if _, ok := authorize(w, r, res, policy.ActionCreate); !ok {
			return
		}
		var in packInput
		if err := strictDecode(w, r, &in); err != nil {
			badRequest(w, "invalid JSON")
			return
		}
		now := s.now().UTC()
		p := domainPack.Pack{
			ID:         s.generateID(),
			StartPrice: in.StartPrice,
			Category:   in.Category,
			Sessions:   in.Sessions,
			Features:   in.Features,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		p.AssignOfferIDs(s.generateID)
		if err := p.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.stores.PackStore.Create(ctx, p); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)

	case http.MethodPut:
		if _, ok := authorize(w, r, res, policy.ActionUpdate); !ok {
			return
		}
		if id == "" {
			badRequest(w, "id is required")
			return
		}
		existing, err := s.stores.PackStore.GetByID(ctx, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var in packInput
		if err := strictDecode(w, r, &in); err != nil {
			badRequest(w, "invalid JSON")
			return
		}
		existing.StartPrice = in.StartPrice
		existing.Category = in.Category
		existing.Sessions = in.Sessions
		existing.Features = in.Features
		existing.UpdatedAt = s.now().UTC()
		existing.AssignOfferIDs(s.generateID)
		if err := existing.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.stores.PackStore.Update(ctx, existing); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, existing)

	case http.MethodDelete:
		if _, ok := authorize(w, r, res, policy.ActionDelete); !ok {
			return
		}
		if id == "" {
			badRequest(w, "id is required")
			return
		}
		if err := s.stores.PackStore.Delete(ctx, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}
