package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayfit/internal/adapters/http/middleware"
	"stayfit/internal/adapters/identity"
	"stayfit/internal/adapters/payment"
	clientPackStore "stayfit/internal/adapters/storage/clientpack"
	couponStore "stayfit/internal/adapters/storage/coupon"
	outboxStore "stayfit/internal/adapters/storage/outbox"
	packStore "stayfit/internal/adapters/storage/pack"
	reviewStore "stayfit/internal/adapters/storage/review"
	serviceStore "stayfit/internal/adapters/storage/service"
	sessionStore "stayfit/internal/adapters/storage/session"
	userStore "stayfit/internal/adapters/storage/user"
	"stayfit/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	UserStore       userStore.Store
	PackStore       packStore.Store
	ClientPackStore clientPackStore.Store
	SessionStore    sessionStore.Store
	ReviewStore     reviewStore.Store
	CouponStore     couponStore.Store
	ServiceStore    serviceStore.Store
	OutboxStore     outboxStore.Store
}

// FirebaseWebConfig is handed to the login page's Firebase web SDK.
// An empty APIKey hides the hosted sign-in button.
type FirebaseWebConfig struct {
	APIKey     string
	AuthDomain string
	ProjectID  string
}

// Options configures the HTTP surface.
type Options struct {
	Stores      *Stores
	Identity    identity.Provider
	Gateway     payment.Gateway
	Outbox      *orchestrators.OutboxProcessor
	PublicURL   string // absolute base URL, used for the gateway callback
	AdminEmail  string
	CSRFKey     []byte // 32 bytes
	Secure      bool   // HTTPS-only cookies
	RateLimit   int    // requests per second per IP; 0 disables limiting
	SlowRequest time.Duration
	Firebase    FirebaseWebConfig

	// Now and GenerateID default to time.Now and uuid.NewString.
	Now        func() time.Time
	GenerateID func() string
}

// Server owns the routes and their dependencies.
type Server struct {
	stores     *Stores
	identity   identity.Provider
	gateway    payment.Gateway
	outbox     *orchestrators.OutboxProcessor
	publicURL  string
	adminEmail string
	secure     bool
	firebase   FirebaseWebConfig
	now        func() time.Time
	generateID func() string

	limiter *middleware.RateLimiter
	handler http.Handler
}

// NewServer wires HTTP handlers for the app.
// PRE: opts.Stores, opts.Identity and opts.Gateway are set; len(opts.CSRFKey) == 32
// POST: Handler serves every route behind the middleware chain; Close releases the rate limiter
func NewServer(opts Options) *Server {
	s := &Server{
		stores:     opts.Stores,
		identity:   opts.Identity,
		gateway:    opts.Gateway,
		outbox:     opts.Outbox,
		publicURL:  strings.TrimRight(opts.PublicURL, "/"),
		adminEmail: opts.AdminEmail,
		secure:     opts.Secure,
		firebase:   opts.Firebase,
		now:        opts.Now,
		generateID: opts.GenerateID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.generateID == nil {
		s.generateID = uuid.NewString
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	middlewares := []func(http.Handler) http.Handler{
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.Secure, trustedOrigins(s.publicURL)),
		middleware.Auth(s.identity, s.stores.UserStore),
		middleware.Locale(opts.Secure),
	}
	if opts.RateLimit > 0 {
		// Rate limiter: configurable requests per second per IP (OWASP A04)
		s.limiter = middleware.NewRateLimiter(opts.RateLimit, time.Second)
		middlewares = append(middlewares, middleware.RateLimit(s.limiter))
	}
	middlewares = append(middlewares, middleware.Recover, middleware.Timing(opts.SlowRequest))

	// Outermost last: Timing -> Recover -> RateLimit -> Locale -> Auth -> CSRF -> SecurityHeaders -> Mux
	s.handler = middleware.Chain(mux, middlewares...)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// trustedOrigins lists the public host for gorilla/csrf's origin check.
func trustedOrigins(publicURL string) []string {
	host := publicURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	host = strings.TrimRight(host, "/")
	if host == "" {
		return nil
	}
	return []string{host}
}
