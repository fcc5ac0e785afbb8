package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"stayfit/internal/adapters/identity"
	"stayfit/internal/adapters/storage"
	"stayfit/internal/domain/policy"
	domainUser "stayfit/internal/domain/user"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName is the cookie carrying the provider session.
const SessionCookieName = "stayfit_session"

// Session is the signed-in state resolved for one request.
// User is the zero value when the identity has no application user yet.
type Session struct {
	Identity identity.Identity
	User     domainUser.User
}

// Caller returns the policy subject for the session.
func (s Session) Caller() policy.Caller {
	return policy.Caller{UserID: s.User.ID, Role: s.User.Role}
}

// UserLookup resolves a provider uid to the application user.
type UserLookup interface {
	GetByExternalID(ctx context.Context, externalID string) (domainUser.User, error)
}

// Auth returns middleware that verifies the session cookie and sets the session in context.
// It does NOT block unauthenticated requests; handlers evaluate policy themselves.
func Auth(provider identity.Provider, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			id, err := provider.VerifySession(ctx, cookie.Value)
			if err != nil {
				slog.Debug("identity_event", "event", "session_rejected", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			sess := Session{Identity: id}
			u, err := users.GetByExternalID(ctx, id.UID)
			switch {
			case err == nil:
				sess.User = u
			case errors.Is(err, storage.ErrNotFound):
				slog.Warn("identity_event", "event", "session_without_user", "uid", id.UID)
			default:
				slog.Error("identity_event", "event", "user_lookup_failed", "uid", id.UID, "error", err)
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(ctx, sess)))
		})
	}
}

// RequireRole returns middleware that blocks requests from users without one of the specified roles.
// Visitors without an application user are sent to /login.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := CallerFromContext(r.Context())
			if !caller.Authenticated() {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if !roleSet[caller.Role] {
				slog.Warn("auth_denied", "path", r.URL.Path, "user_id", caller.UserID, "role", caller.Role)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// CallerFromContext returns the policy subject for the request; anonymous when signed out.
func CallerFromContext(ctx context.Context) policy.Caller {
	sess, ok := GetSessionFromContext(ctx)
	if !ok {
		return policy.Caller{}
	}
	return sess.Caller()
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, value string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode, // survives the redirect back from the payment gateway
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
