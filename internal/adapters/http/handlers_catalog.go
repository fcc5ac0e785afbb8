package web

import (
	"errors"
	"net/http"
	"time"

	"stayfit/internal/adapters/http/middleware"
	"stayfit/internal/adapters/storage"
	reviewStore "stayfit/internal/adapters/storage/review"
	domainCoupon "stayfit/internal/domain/coupon"
	"stayfit/internal/domain/i18n"
	"stayfit/internal/domain/policy"
	domainReview "stayfit/internal/domain/review"
	domainService "stayfit/internal/domain/service"
)

// reviewInput is the create and update body. Published is honoured for admins only.
type reviewInput struct {
	ClientID  string             `json:"clientId"`
	Rating    int                `json:"rating"`
	Comment   i18n.LocalizedText `json:"comment"`
	Published *bool              `json:"published"`
}

// handleReviews handles GET/POST/PUT/DELETE for /api/review
func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.URL.Query().Get("id")
	caller := middleware.CallerFromContext(ctx)

	switch r.Method {
	case http.MethodGet:
		if id != "" {
			rv, err := s.stores.ReviewStore.GetByID(ctx, id)
			if err != nil {
				writeError(w, r, err)
				return
			}
			// Unpublished reviews are visible to their author and admins.
			if !rv.Published && !caller.IsAdmin() && caller.UserID != rv.ClientID {
				writeError(w, r, storage.ErrNotFound)
				return
			}
			writeJSON(w, http.StatusOK, rv)
			return
		}
		if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindReview}, policy.ActionList); !ok {
			return
		}
		filter := reviewStore.ListFilter{ClientID: r.URL.Query().Get("clientId"), PublishedOnly: !caller.IsAdmin()}
		list, err := s.stores.ReviewStore.List(ctx, filter)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pageOf(w, r, list))

	case http.MethodPost:
		if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindReview}, policy.ActionCreate); !ok {
			return
		}
		var in reviewInput
		if err := strictDecode(w, r, &in); err != nil {
			badRequest(w, "invalid JSON")
			return
		}
		rv := domainReview.Review{
			ID:        s.generateID(),
			ClientID:  caller.UserID,
			Rating:    in.Rating,
			Comment:   in.Comment,
			CreatedAt: s.now().UTC(),
		}
		if caller.IsAdmin() {
			if in.ClientID != "" {
				rv.ClientID = in.ClientID
			}
			if in.Published != nil {
				rv.Published = *in.Published
			}
		}
		if err := rv.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.stores.ReviewStore.Create(ctx, rv); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, rv)

	case http.MethodPut, http.MethodPatch:
		if id == "" {
			badRequest(w, "id is required")
			return
		}
		rv, err := s.stores.ReviewStore.GetByID(ctx, id)
		if err != nil {
			lookupFailed(w, r, err)
			return
		}
		if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindReview, OwnerID: rv.ClientID}, policy.ActionUpdate); !ok {
			return
		}
		var in reviewInput
		if err := strictDecode(w, r, &in); err != nil {
			badRequest(w, "invalid JSON")
			return
		}
		if in.Rating != 0 {
			rv.Rating = in.Rating
		}
		if !in.Comment.IsEmpty() {
			rv.Comment = in.Comment
		}
		if in.Published != nil {
			if !caller.IsAdmin() {
				writeError(w, r, policy.ErrForbidden)
				return
			}
			rv.Published = *in.Published
		}
		if err := rv.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.stores.ReviewStore.Update(ctx, rv); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rv)

	case http.MethodDelete:
		if id == "" {
			badRequest(w, "id is required")
			return
		}
		rv, err := s.stores.ReviewStore.GetByID(ctx, id)
		if err != nil {
			lookupFailed(w, r, err)
			return
		}
		if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindReview, OwnerID: rv.ClientID}, policy.ActionDelete); !ok {
			return
		}
		if err := s.stores.ReviewStore.Delete(ctx, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

// couponInput is the create and update body.
type couponInput struct {
	Code       string    `json:"code"`
	Percentage int       `json:"percentage"`
	ExpiryDate time.Time `json:"expiryDate"`
	Status     string    `json:"status"`
}

// couponCheck is what a signed-in buyer learns about a code.
type couponCheck struct {
	Code       string `json:"code"`
	Percentage int    `json:"percentage"`
}

// handleCoupons handles GET/POST/PUT/DELETE for /api/coupon
func (s *Server) handleCoupons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	res := policy.Resource{Kind: policy.KindCoupon}

	switch r.Method {
	case http.MethodGet:
		if code := q.Get("code"); code != "" {
			if _, ok := authorize(w, r, res, policy.ActionRead); !ok {
				return
			}
			c, err := s.stores.CouponStore.GetByCode(ctx, domainCoupon.NormalizeCode(code))
			if errors.Is(err, storage.ErrNotFound) || (err == nil && !c.Applicable(s.now())) {
				writeError(w, r, domainCoupon.ErrNotApplicable)
				return
			}
			if err != nil {
				internalError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, couponCheck{Code: c.Code, Percentage: c.Percentage})
			return
		}
		if _, ok := authorize(w, r, res, policy.ActionList); !ok {
			return
		}
		if id := q.Get("id"); id != "" {
			c, err := s.stores.CouponStore.GetByID(ctx, id)
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, c)
			return
		}
		list, err := s.stores.CouponStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pageOf(w, r, list))

	case http.MethodPost:
		if _, ok := authorize(w, r, res, policy.ActionCreate); !ok {
			return
		}
		var in couponInput
		if err := strictDecode(w, r, &in); err != nil {
			badRequest(w, "invalid JSON")
			return
		}
		c := domainCoupon.Coupon{
			ID:         s.generateID(),
			Code:       in.Code,
			Percentage: in.Percentage,
			ExpiryDate: in.ExpiryDate.UTC(),
			Status:     in.Status,
			CreatedAt:  s.now().UTC(),
		}
		if c.Status == "" {
			c.Status = domainCoupon.StatusActive
		}
		if err := c.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.stores.CouponStore.Create(ctx, c); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)

	case http.MethodPut, http.MethodPatch:
		if _, ok := authorize(w, r, res, policy.ActionUpdate); !ok {
			return
		}
		id := q.Get("id")
		if id == "" {
			badRequest(w, "id is required")
			return
		}
		c, err := s.stores.CouponStore.GetByID(ctx, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var in couponInput
		if err := strictDecode(w, r, &in); err != nil {
			badRequest(w, "invalid JSON")
			return
		}
		if in.Code != "" {
			c.Code = in.Code
		}
		if in.Percentage != 0 {
			c.Percentage = in.Percentage
		}
		if !in.ExpiryDate.IsZero() {
			c.ExpiryDate = in.ExpiryDate.UTC()
		}
		if in.Status != "" {
			c.Status = in.Status
		}
		if err := c.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.stores.CouponStore.Update(ctx, c); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)

	case http.MethodDelete:
		if _, ok := authorize(w, r, res, policy.ActionDelete); !ok {
			return
		}
		id := q.Get("id")
		if id == "" {
			badRequest(w, "id is required")
			return
		}
		if err := s.stores.CouponStore.Delete(ctx, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

// serviceInput is the create and replace body.
type serviceInput struct {
	Title       i18n.LocalizedText `json:"title"`
	Description i18n.LocalizedText `json:"description"`
	ImageURL    string             `json:"imageUrl"`
	Order       int                `json:"order"`
}

// handleServices handles GET/POST/PUT/DELETE for /api/services
func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.URL.Query().Get("id")
	res := policy.Resource{Kind: policy.KindService}

	switch r.Method {
	case http.MethodGet:
		if _, ok := authorize(w, r, res, policy.ActionList); !ok {
			return
		}
		if id != "" {
			svc, err := s.stores.ServiceStore.GetByID(ctx, id)
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, svc)
			return
		}
		list, err := s.stores.ServiceStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pageOf(w, r, list))

	case http.MethodPost, http.MethodPut:
		action := policy.ActionCreate
		if r.Method == http.MethodPut {
			action = policy.ActionUpdate
		}
		if _, ok := authorize(w, r, res, action); !ok {
			return
		}
		var in serviceInput
		if err := strictDecode(w, r, &in); err != nil {
			badRequest(w, "invalid JSON")
			return
		}
		svc := domainService.Service{
			Title:       in.Title,
			Description: in.Description,
			ImageURL:    in.ImageURL,
			Order:       in.Order,
		}
		if r.Method == http.MethodPut {
			if id == "" {
				badRequest(w, "id is required")
				return
			}
			existing, err := s.stores.ServiceStore.GetByID(ctx, id)
			if err != nil {
				writeError(w, r, err)
				return
			}
			svc.ID, svc.CreatedAt = existing.ID, existing.CreatedAt
		} else {
			svc.ID, svc.CreatedAt = s.generateID(), s.now().UTC()
		}
		if err := svc.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		var err error
		status := http.StatusOK
		if r.Method == http.MethodPut {
			err = s.stores.ServiceStore.Update(ctx, svc)
		} else {
			err = s.stores.ServiceStore.Create(ctx, svc)
			status = http.StatusCreated
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, status, svc)

	case http.MethodDelete:
		if _, ok := authorize(w, r, res, policy.ActionDelete); !ok {
			return
		}
		if id == "" {
			badRequest(w, "id is required")
			return
		}
		if err := s.stores.ServiceStore.Delete(ctx, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}
