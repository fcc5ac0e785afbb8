package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"stayfit/internal/adapters/http/middleware"
	"stayfit/internal/adapters/identity"
	"stayfit/internal/application/orchestrators"
	domainUser "stayfit/internal/domain/user"
)

// signIn verifies a provider code, mirrors the identity and sets the session cookie.
// POST: on success the response carries the session cookie and the user exists in the store
func (s *Server) signIn(ctx context.Context, w http.ResponseWriter, code string) (domainUser.User, error) {
	id, err := s.identity.Verify(ctx, code)
	if err != nil {
		return domainUser.User{}, err
	}
	cookie, err := s.identity.CreateSession(ctx, code, identity.SessionTTL)
	if err != nil {
		return domainUser.User{}, err
	}
	result, err := orchestrators.ExecuteSyncIdentity(ctx, orchestrators.SyncIdentityInput{
		Identity:   id,
		AdminEmail: s.adminEmail,
	}, orchestrators.SyncIdentityDeps{
		UserStore:  s.stores.UserStore,
		GenerateID: s.generateID,
		Now:        s.now,
	})
	if err != nil {
		return domainUser.User{}, err
	}
	middleware.SetSessionCookie(w, cookie, identity.SessionTTL, s.secure)
	slog.Info("identity_event", "event", "signed_in", "user_id", result.User.ID, "role", result.User.Role, "created", result.Created)
	return result.User, nil
}

type callbackRequest struct {
	Code string `json:"code"`
}

type callbackResponse struct {
	User     domainUser.User `json:"user"`
	Redirect string          `json:"redirect"`
}

// handleAPIAuthCallback handles POST /api/auth/callback with {"code": "<id token>"}.
func (s *Server) handleAPIAuthCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var in callbackRequest
	if err := strictDecode(w, r, &in); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if strings.TrimSpace(in.Code) == "" {
		badRequest(w, "code is required")
		return
	}
	u, err := s.signIn(r.Context(), w, in.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, callbackResponse{User: u, Redirect: dashboardPath(u.Role)})
}

// handleAuthCallback handles GET /auth/callback?code= for redirect-based sign-in.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		s.renderError(w, r, http.StatusBadRequest, "code is required")
		return
	}
	u, err := s.signIn(r.Context(), w, code)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	http.Redirect(w, r, dashboardPath(u.Role), http.StatusSeeOther)
}

// signOut revokes the provider session when there is one and clears the cookie.
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok && sess.Identity.UID != "" {
		if err := s.identity.Revoke(r.Context(), sess.Identity.UID); err != nil {
			slog.Error("identity_event", "event", "revoke_failed", "uid", sess.Identity.UID, "error", err)
		}
		slog.Info("identity_event", "event", "signed_out", "user_id", sess.User.ID)
	}
	middleware.ClearSessionCookie(w, s.secure)
}

// handleAPILogout handles POST /api/auth/logout.
func (s *Server) handleAPILogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.signOut(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// handleLogout handles POST /logout from the navigation form.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.renderError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.signOut(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loginPage is what login.html renders.
type loginPage struct {
	Firebase  FirebaseWebConfig
	LocalForm bool
}

// handleLogin handles GET/POST for /login. POST is only served by providers that issue their own codes.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	issuer, local := s.identity.(identity.CodeIssuer)
	page := loginPage{Firebase: s.firebase, LocalForm: local}

	switch r.Method {
	case http.MethodGet:
		if caller := middleware.CallerFromContext(r.Context()); caller.Authenticated() {
			http.Redirect(w, r, dashboardPath(caller.Role), http.StatusSeeOther)
			return
		}
		s.renderTemplate(w, r, http.StatusOK, "login.html", pageData{Title: "login.title", Data: page})

	case http.MethodPost:
		if !local {
			s.renderError(w, r, http.StatusNotFound, "not found")
			return
		}
		if err := r.ParseForm(); err != nil {
			s.renderError(w, r, http.StatusBadRequest, "invalid form")
			return
		}
		email := domainUser.NormalizeEmail(r.PostFormValue("email"))
		if !strings.Contains(email, "@") || len(email) > domainUser.MaxEmailLength {
			s.renderTemplate(w, r, http.StatusBadRequest, "login.html", pageData{
				Title: "login.title",
				Data:  page,
				Error: domainUser.ErrInvalidEmail.Error(),
			})
			return
		}
		code, err := issuer.IssueCode(email, strings.TrimSpace(r.PostFormValue("name")))
		if err != nil {
			s.pageError(w, r, err)
			return
		}
		u, err := s.signIn(r.Context(), w, code)
		if err != nil {
			s.pageError(w, r, err)
			return
		}
		http.Redirect(w, r, dashboardPath(u.Role), http.StatusSeeOther)

	default:
		s.renderError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type meResponse struct {
	UID   string           `json:"uid"`
	Email string           `json:"email"`
	User  *domainUser.User `json:"user"`
}

// handleMe handles GET /api/me: who the session cookie belongs to.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || sess.Identity.UID == "" {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	resp := meResponse{UID: sess.Identity.UID, Email: sess.Identity.Email}
	if sess.User.ID != "" {
		u := sess.User
		resp.User = &u
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
