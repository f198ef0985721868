package main

import (
	"net/http"

	"github.com/rs/cors"
)

// newRouter builds the HTTP handler tree. Admin routes sit behind both the
// auth and admin guards; trader routes behind auth alone.
func newRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	auth := deps.AuthMiddleware
	protected := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(auth.RequireAdmin(h))
	}

	// Session
	mux.HandleFunc("POST /api/auth/register", deps.AuthHandler.Register)
	mux.HandleFunc("POST /api/auth/login", deps.AuthHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", deps.AuthHandler.Logout)

	// Trader surface
	mux.Handle("GET /api/profile", protected(deps.ProfileHandler.Me))
	mux.Handle("POST /api/onboarding", protected(deps.ProfileHandler.SubmitOnboarding))
	mux.Handle("GET /api/analytics", protected(deps.PerformanceHandler.List))
	mux.Handle("GET /api/analytics/export", protected(deps.PerformanceHandler.Export))
	mux.Handle("GET /api/notifications", protected(deps.NotificationHandler.List))
	mux.Handle("POST /api/notifications/read-all", protected(deps.NotificationHandler.MarkAllRead))
	mux.Handle("POST /api/withdrawals", protected(deps.WithdrawalHandler.Create))
	mux.Handle("GET /api/withdrawals", protected(deps.WithdrawalHandler.ListMine))

	// Admin surface
	mux.Handle("POST /api/admin/upload-excel", adminOnly(deps.IngestHandler.Upload))
	mux.Handle("GET /api/admin/analytics", adminOnly(deps.PerformanceHandler.ListAll))
	mux.Handle("GET /api/admin/profiles", adminOnly(deps.ProfileHandler.List))
	mux.Handle("GET /api/admin/onboarding", adminOnly(deps.ProfileHandler.ListOnboarding))
	mux.Handle("POST /api/admin/onboarding/{id}/review", adminOnly(deps.ProfileHandler.ReviewOnboarding))
	mux.Handle("GET /api/admin/withdrawals", adminOnly(deps.WithdrawalHandler.ListAll))
	mux.Handle("POST /api/admin/withdrawals/{id}/review", adminOnly(deps.WithdrawalHandler.Review))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{deps.Config.Server.BaseURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	limiter := newRateLimiter(deps.Config.Server.RateLimitPerSecond, deps.Config.Server.RateLimitBurst)

	return corsMiddleware.Handler(limiter.middleware(mux))
}
