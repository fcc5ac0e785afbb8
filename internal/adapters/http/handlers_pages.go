package web

import (
	"log/slog"
	"net/http"

	"stayfit/internal/adapters/http/middleware"
	"stayfit/internal/application/projections"
	"stayfit/internal/domain/policy"
	domainUser "stayfit/internal/domain/user"
)

func (s *Server) homeDeps() projections.GetHomeDeps {
	return projections.GetHomeDeps{
		ServiceStore: s.stores.ServiceStore,
		ReviewStore:  s.stores.ReviewStore,
		UserStore:    s.stores.UserStore,
		PackStore:    s.stores.PackStore,
	}
}

// handleHome serves GET / and 404s every unmatched path.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.renderError(w, r, http.StatusNotFound, "not found")
		return
	}
	s.renderPublicPage(w, r, "home.html", "home.title", http.StatusOK, "")
}

func (s *Server) handleCoaches(w http.ResponseWriter, r *http.Request) {
	s.renderPublicPage(w, r, "coaches.html", "coaches.title", http.StatusOK, "")
}

// handlePricing serves GET /pricing and hands POST to the buy flow.
func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderPricing(w, r, http.StatusOK, "")
	case http.MethodPost:
		s.handlePricingBuy(w, r)
	default:
		s.renderError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) renderPricing(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.renderPublicPage(w, r, "pricing.html", "pricing.title", status, msg)
}

func (s *Server) renderPublicPage(w http.ResponseWriter, r *http.Request, tmpl, title string, status int, msg string) {
	home, err := projections.QueryGetHome(r.Context(), s.homeDeps())
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.renderTemplate(w, r, status, tmpl, pageData{Title: title, Data: home, Error: msg})
}

// handleDashboard sends each role to its own dashboard.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	http.Redirect(w, r, dashboardPath(caller.Role), http.StatusSeeOther)
}

func (s *Server) adminOverviewDeps() projections.GetAdminOverviewDeps {
	return projections.GetAdminOverviewDeps{
		UserStore:       s.stores.UserStore,
		ClientPackStore: s.stores.ClientPackStore,
		OutboxStore:     s.stores.OutboxStore,
	}
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := projections.QueryGetAdminOverview(r.Context(), s.adminOverviewDeps())
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.renderTemplate(w, r, http.StatusOK, "dashboard_admin.html", pageData{Title: "dashboard.admin", Data: overview})
}

// handleAdminOverview handles GET /api/admin/overview.
func (s *Server) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if !caller.IsAdmin() {
		if !caller.Authenticated() {
			writeError(w, r, policy.ErrUnauthenticated)
			return
		}
		writeError(w, r, policy.ErrForbidden)
		return
	}
	overview, err := projections.QueryGetAdminOverview(r.Context(), s.adminOverviewDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) coachWeek(r *http.Request, coachID string, offset int) (projections.GetCoachWeekResult, error) {
	return projections.QueryGetCoachWeek(r.Context(), projections.GetCoachWeekQuery{
		CoachID: coachID,
		Date:    r.URL.Query().Get("date"),
		Offset:  offset,
	}, projections.GetCoachWeekDeps{
		SessionStore: s.stores.SessionStore,
		UserStore:    s.stores.UserStore,
		PackStore:    s.stores.PackStore,
		Now:          s.now,
	})
}

// handleCoachWeek handles GET /api/coach/week?coachId=&date=&offset=
func (s *Server) handleCoachWeek(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	coachID := r.URL.Query().Get("coachId")
	if coachID == "" && caller.Role == domainUser.RoleCoach {
		coachID = caller.UserID
	}
	if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindCoachWeek, CoachID: coachID}, policy.ActionRead); !ok {
		return
	}
	if coachID == "" {
		badRequest(w, "coachId is required")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	week, err := s.coachWeek(r, coachID, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, week)
}

// handleCoachDashboard renders the weekly calendar. Admins pick a coach with ?coachId=.
func (s *Server) handleCoachDashboard(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	coachID := caller.UserID
	if caller.IsAdmin() && r.URL.Query().Get("coachId") != "" {
		coachID = r.URL.Query().Get("coachId")
	}
	if err := policy.Evaluate(caller, policy.Resource{Kind: policy.KindCoachWeek, CoachID: coachID}, policy.ActionRead); err != nil {
		s.pageError(w, r, err)
		return
	}
	offset, err := queryInt(r, "week", 0)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	week, err := s.coachWeek(r, coachID, offset)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.renderTemplate(w, r, http.StatusOK, "dashboard_coach.html", pageData{Title: "dashboard.coach", Data: week})
}

func (s *Server) handleClientDashboard(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	dash, err := projections.QueryGetClientDashboard(r.Context(), projections.GetClientDashboardQuery{ClientID: caller.UserID},
		projections.GetClientDashboardDeps{
			ClientPackStore: s.stores.ClientPackStore,
			SessionStore:    s.stores.SessionStore,
			UserStore:       s.stores.UserStore,
			PackStore:       s.stores.PackStore,
			Now:             s.now,
		})
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.renderTemplate(w, r, http.StatusOK, "dashboard_client.html", pageData{Title: "dashboard.client", Data: dash})
}

// handleClientCancel handles POST /dashboard/client/cancel from the upcoming sessions list.
func (s *Server) handleClientCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.renderError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	id := r.PostFormValue("id")
	sess, err := s.stores.SessionStore.GetByID(r.Context(), id)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	if err := policy.Evaluate(middleware.CallerFromContext(r.Context()), sessionResource(sess), policy.ActionCancel); err != nil {
		s.pageError(w, r, err)
		return
	}
	if _, err := s.executeCancel(r, id); err != nil {
		s.pageError(w, r, err)
		return
	}
	slog.Info("session_event", "event", "cancelled_from_dashboard", "session_id", id)
	http.Redirect(w, r, "/dashboard/client", http.StatusSeeOther)
}
