package web

import (
	"net/http"

	"stayfit/internal/adapters/http/middleware"
	domainUser "stayfit/internal/domain/user"
)

func (s *Server) registerRoutes(mux *http.ServeMux) {
	signedIn := middleware.RequireRole(domainUser.ValidRoles...)
	adminOnly := middleware.RequireRole(domainUser.RoleAdmin)
	coachPages := middleware.RequireRole(domainUser.RoleCoach, domainUser.RoleAdmin)
	clientPages := middleware.RequireRole(domainUser.RoleClient, domainUser.RoleAdmin)

	// Pages
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/coaches", s.handleCoaches)
	mux.HandleFunc("/pricing", s.handlePricing)
	mux.Handle("/checkout", signedIn(http.HandlerFunc(s.handleCheckout)))
	mux.HandleFunc("/payment/callback", s.handlePaymentCallback)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/auth/callback", s.handleAuthCallback)
	mux.Handle("/dashboard", signedIn(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("/dashboard/admin", adminOnly(http.HandlerFunc(s.handleAdminDashboard)))
	mux.Handle("/dashboard/coach", coachPages(http.HandlerFunc(s.handleCoachDashboard)))
	mux.Handle("/dashboard/client", clientPages(http.HandlerFunc(s.handleClientDashboard)))
	mux.Handle("/dashboard/client/cancel", signedIn(http.HandlerFunc(s.handleClientCancel)))
	mux.Handle("/static/", staticHandler())
	mux.HandleFunc("/healthz", handleHealthz)

	// API
	mux.HandleFunc("/api/users", s.handleUsers)
	mux.HandleFunc("/api/packs", s.handlePacks)
	mux.HandleFunc("/api/client-pack", s.handleClientPack)
	mux.HandleFunc("/api/session", s.handleSession)
	mux.HandleFunc("/api/review", s.handleReviews)
	mux.HandleFunc("/api/coupon", s.handleCoupons)
	mux.HandleFunc("/api/services", s.handleServices)
	mux.HandleFunc("/api/coach/week", s.handleCoachWeek)
	mux.HandleFunc("/api/payment/status", s.handlePaymentStatus)
	mux.HandleFunc("/api/auth/callback", s.handleAPIAuthCallback)
	mux.HandleFunc("/api/auth/logout", s.handleAPILogout)
	mux.HandleFunc("/api/me", s.handleMe)
	mux.HandleFunc("/api/admin/overview", s.handleAdminOverview)
	mux.HandleFunc("/api/admin/outbox", s.handleAdminOutbox)
	mux.HandleFunc("/api/admin/outbox/", s.handleAdminOutbox)
}
