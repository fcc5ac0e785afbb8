package web

import (
	"net/http"
	"strings"

	"stayfit/internal/adapters/http/middleware"
	sessionStore "stayfit/internal/adapters/storage/session"
	"stayfit/internal/application/orchestrators"
	"stayfit/internal/application/projections"
	"stayfit/internal/domain/policy"
	domainSession "stayfit/internal/domain/session"
)

// sessionInput is the booking body.
type sessionInput struct {
	ClientID     string `json:"clientId"`
	CoachID      string `json:"coachId"`
	ClientPackID string `json:"clientPackId"`
	SessionDate  string `json:"sessionDate"`
	SessionTime  string `json:"sessionTime"`
	Duration     int    `json:"duration"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
}

// sessionPatch is the update body; nil fields are left unchanged.
type sessionPatch struct {
	Status      *string `json:"status"`
	SessionDate *string `json:"sessionDate"`
	SessionTime *string `json:"sessionTime"`
	Duration    *int    `json:"duration"`
	Location    *string `json:"location"`
	Notes       *string `json:"notes"`
}

// onlyCancels reports whether the patch is the single-field cancellation clients may send.
func (p sessionPatch) onlyCancels() bool {
	return p.Status != nil && *p.Status == domainSession.StatusCancelled &&
		p.SessionDate == nil && p.SessionTime == nil && p.Duration == nil && p.Location == nil && p.Notes == nil
}

func (p sessionPatch) editsFields() bool {
	return p.SessionDate != nil || p.SessionTime != nil || p.Duration != nil || p.Location != nil || p.Notes != nil
}

func sessionResource(s domainSession.Session) policy.Resource {
	return policy.Resource{Kind: policy.KindSession, OwnerID: s.ClientID, CoachID: s.CoachID}
}

// handleSession handles GET/POST/PUT/PATCH/DELETE for /api/session
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getSessions(w, r)
	case http.MethodPost:
		s.bookSession(w, r)
	case http.MethodPut, http.MethodPatch:
		s.updateSession(w, r)
	case http.MethodDelete:
		s.deleteSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) getSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if id := q.Get("id"); id != "" {
		sess, err := s.stores.SessionStore.GetByID(ctx, id)
		if err != nil {
			lookupFailed(w, r, err)
			return
		}
		if _, ok := authorize(w, r, sessionResource(sess), policy.ActionRead); !ok {
			return
		}
		views, err := projections.PopulateSessions(ctx, []domainSession.Session{sess}, s.populateDeps())
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, views[0])
		return
	}

	filter := sessionStore.ListFilter{ClientID: q.Get("clientId"), CoachID: q.Get("coachId"), Status: q.Get("status")}
	if filter.Status != "" && !domainSession.IsValidStatus(filter.Status) {
		badRequest(w, domainSession.ErrInvalidStatus.Error())
		return
	}
	res := policy.Resource{Kind: policy.KindSession, OwnerID: filter.ClientID, CoachID: filter.CoachID}
	if _, ok := authorize(w, r, res, policy.ActionList); !ok {
		return
	}
	list, err := s.stores.SessionStore.List(ctx, filter)
	if err != nil {
		internalError(w, err)
		return
	}
	list = pageOf(w, r, list)
	views, err := projections.PopulateSessions(ctx, list, s.populateDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) bookSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in sessionInput
	if err := strictDecode(w, r, &in); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	caller := middleware.CallerFromContext(ctx)
	if strings.TrimSpace(in.CoachID) == "" && !caller.IsAdmin() {
		in.CoachID = caller.UserID
	}
	res := policy.Resource{Kind: policy.KindSession, OwnerID: in.ClientID, CoachID: in.CoachID}
	if _, ok := authorize(w, r, res, policy.ActionCreate); !ok {
		return
	}

	sess, err := orchestrators.ExecuteBookSession(ctx, orchestrators.BookSessionInput{
		ClientID:     in.ClientID,
		CoachID:      in.CoachID,
		ClientPackID: in.ClientPackID,
		SessionDate:  in.SessionDate,
		SessionTime:  in.SessionTime,
		Duration:     in.Duration,
		Location:     in.Location,
		Notes:        in.Notes,
	}, orchestrators.BookSessionDeps{
		SessionStore:    s.stores.SessionStore,
		ClientPackStore: s.stores.ClientPackStore,
		UserStore:       s.stores.UserStore,
		GenerateID:      s.generateID,
		Now:             s.now,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := projections.PopulateSessions(ctx, []domainSession.Session{sess}, s.populateDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, views[0])
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.URL.Query().Get("id")
	if id == "" {
		badRequest(w, "id is required")
		return
	}
	sess, err := s.stores.SessionStore.GetByID(ctx, id)
	if err != nil {
		lookupFailed(w, r, err)
		return
	}
	var patch sessionPatch
	if err := strictDecode(w, r, &patch); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	action := policy.ActionUpdate
	if patch.onlyCancels() {
		action = policy.ActionCancel
	}
	if _, ok := authorize(w, r, sessionResource(sess), action); !ok {
		return
	}

	if patch.Status != nil && *patch.Status != sess.Status && !patch.editsFields() {
		switch *patch.Status {
		case domainSession.StatusCancelled:
			s.cancelSession(w, r, id)
		case domainSession.StatusCompleted:
			s.completeSession(w, r, id)
		default:
			writeError(w, r, domainSession.ErrInvalidStatus)
		}
		return
	}
	if patch.Status != nil && *patch.Status != sess.Status {
		badRequest(w, "status changes cannot be combined with other fields")
		return
	}
	if !patch.editsFields() {
		writeJSON(w, http.StatusOK, sess)
		return
	}
	if sess.Status != domainSession.StatusScheduled {
		writeError(w, r, domainSession.ErrAlreadyClosed)
		return
	}

	if patch.SessionDate != nil {
		d, err := domainSession.ParseDate(*patch.SessionDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		sess.SessionDate = d
	}
	if patch.SessionTime != nil {
		sess.SessionTime = strings.TrimSpace(*patch.SessionTime)
	}
	if patch.Duration != nil {
		sess.Duration = *patch.Duration
	}
	if patch.Location != nil {
		sess.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.Notes != nil {
		sess.Notes = *patch.Notes
	}
	sess.UpdatedAt = s.now().UTC()
	if err := sess.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.stores.SessionStore.Update(ctx, sess); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// cancelSession runs the cancellation flow after the caller has been authorized.
func (s *Server) cancelSession(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := s.executeCancel(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) executeCancel(r *http.Request, id string) (domainSession.Session, error) {
	return orchestrators.ExecuteCancelSession(r.Context(), orchestrators.CancelSessionInput{
		SessionID: id,
		Locale:    middleware.LocaleFromContext(r.Context()),
	}, orchestrators.CancelSessionDeps{
		SessionStore: s.stores.SessionStore,
		UserStore:    s.stores.UserStore,
		OutboxStore:  s.stores.OutboxStore,
		GenerateID:   s.generateID,
		Now:          s.now,
	})
}

// completeSession runs the completion flow after the caller has been authorized.
func (s *Server) completeSession(w http.ResponseWriter, r *http.Request, id string) {
	result, err := orchestrators.ExecuteCompleteSession(r.Context(), id, orchestrators.CompleteSessionDeps{
		SessionStore:    s.stores.SessionStore,
		ClientPackStore: s.stores.ClientPackStore,
		Now:             s.now,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.URL.Query().Get("id")
	if id == "" {
		badRequest(w, "id is required")
		return
	}
	sess, err := s.stores.SessionStore.GetByID(ctx, id)
	if err != nil {
		lookupFailed(w, r, err)
		return
	}
	if _, ok := authorize(w, r, sessionResource(sess), policy.ActionDelete); !ok {
		return
	}
	if err := s.stores.SessionStore.Delete(ctx, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
