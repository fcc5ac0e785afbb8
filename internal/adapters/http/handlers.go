package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"stayfit/internal/adapters/http/middleware"
	"stayfit/internal/adapters/markdown"
	"stayfit/internal/adapters/storage"
	"stayfit/internal/application/listutil"
	"stayfit/internal/domain/calendar"
	"stayfit/internal/domain/i18n"
	"stayfit/internal/domain/policy"
	domainSession "stayfit/internal/domain/session"
	domainUser "stayfit/internal/domain/user"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err)
	}
}

// pageOf applies opt-in ?page=&per_page= paging to a list result.
// Totals travel in X-Total-Count and X-Total-Pages so the body stays a plain array.
func pageOf[T any](w http.ResponseWriter, r *http.Request, items []T) []T {
	items = storage.NonNil(items)
	p, ok := listutil.ParsePageParams(r.URL.Query())
	if !ok {
		return items
	}
	page, info := listutil.Paginate(items, p)
	w.Header().Set("X-Total-Count", strconv.Itoa(info.Total))
	w.Header().Set("X-Total-Pages", strconv.Itoa(info.TotalPages))
	return page
}

// writeJSONError writes the {"error": msg} body used by every API error.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusBadRequest, msg)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// authorize evaluates policy for the request's caller, writing the error response on denial.
func authorize(w http.ResponseWriter, r *http.Request, resource policy.Resource, action policy.Action) (policy.Caller, bool) {
	caller := middleware.CallerFromContext(r.Context())
	if err := policy.Evaluate(caller, resource, action); err != nil {
		slog.Warn("auth_denied",
			"path", r.URL.Path,
			"user_id", caller.UserID,
			"role", caller.Role,
			"resource", resource.Kind,
			"action", string(action),
		)
		writeJSONError(w, statusFor(err), err.Error())
		return caller, false
	}
	return caller, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

// dashboardPath is where each role lands after signing in.
func dashboardPath(role string) string {
	switch role {
	case domainUser.RoleAdmin:
		return "/dashboard/admin"
	case domainUser.RoleCoach:
		return "/dashboard/coach"
	}
	return "/dashboard/client"
}

// staticHandler serves the embedded stylesheet and scripts under /static/.
func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// pageData is what every template receives.
type pageData struct {
	Title string
	Data  any
	Error string
}

func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateName string, data pageData) {
	ctx := r.Context()
	loc := middleware.LocaleFromContext(ctx)
	sess, signedIn := middleware.GetSessionFromContext(ctx)

	funcMap := template.FuncMap{
		"t":            func(key string) string { return i18n.T(loc, key) },
		"tf":           func(key string, args ...any) string { return fmt.Sprintf(i18n.T(loc, key), args...) },
		"lang":         func() string { return string(loc) },
		"dir":          func() string { return loc.Dir() },
		"resolve":      func(t i18n.LocalizedText) string { return t.Resolve(loc) },
		"markdown":     func(t i18n.LocalizedText) template.HTML { return markdown.Safe(t.Resolve(loc)) },
		"csrfField":    func() template.HTML { return csrf.TemplateField(r) },
		"isLoggedIn":   func() bool { return signedIn && sess.User.ID != "" },
		"currentRole":  func() string { return sess.User.Role },
		"currentName":  func() string { return sess.User.FullName() },
		"currentEmail": func() string { return sess.Identity.Email },
		"dashboard":    func() string { return dashboardPath(sess.User.Role) },
		"money":        func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
		"date":         func(t time.Time) string { return t.UTC().Format(domainSession.DateLayout) },
		"weekday":      func(t time.Time) string { return t.UTC().Format("Mon 2 Jan") },
		"hour":         calendar.HourLabel,
		"status":       func(st string) string { return i18n.T(loc, "status."+st) },
		"switchLang": func() template.URL {
			q := url.Values{}
			for k, v := range r.URL.Query() {
				q[k] = v
			}
			other := i18n.Arabic
			if loc == i18n.Arabic {
				other = i18n.English
			}
			q.Set("lang", string(other))
			return template.URL(r.URL.Path + "?" + q.Encode())
		},
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templatesFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, fmt.Errorf("parse %s: %w", templateName, err))
		return
	}
	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", templateName, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, buf.String())
}

// renderError renders the error page with a status and message.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.renderTemplate(w, r, status, "error.html", pageData{Title: http.StatusText(status), Error: msg})
}

// lookupFailed answers a record lookup that failed before its policy check.
// Only admins learn that a record does not exist; everyone else gets the policy error.
func lookupFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		caller := middleware.CallerFromContext(r.Context())
		switch {
		case !caller.Authenticated():
			writeError(w, r, policy.ErrUnauthenticated)
			return
		case !caller.IsAdmin():
			writeError(w, r, policy.ErrForbidden)
			return
		}
	}
	writeError(w, r, err)
}
