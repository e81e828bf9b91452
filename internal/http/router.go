package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"studydash/internal/auth"
	"studydash/internal/config"
	"studydash/internal/http/csrf"
	"studydash/internal/http/ratelimit"
	"studydash/internal/metrics"
	"studydash/internal/store"
	"studydash/internal/ui"
)

// NewRouter wires the HTML pages, the JSON API and the operational
// endpoints.
func NewRouter(cfg *config.Config, st *store.Store, authService *auth.Service, uiHandler *ui.Handler) http.Handler {
	r := chi.NewRouter()

	// Auth endpoints: 5 requests per second, burst of 10
	authRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(5), 10, 5*time.Minute, cfg.TrustedProxies)
	// API endpoints: 20 requests per second, burst of 50 (the dashboard
	// fires several fetches per page load)
	apiRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(20), 50, 5*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := st.HealthCheck(ctx); err != nil {
			http.Error(w, "unready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	r.Route("/auth", func(r chi.Router) {
		r.Use(authRateLimiter.Middleware())
		r.Get("/google", authService.BeginOAuth)
		r.Get("/google/callback", authService.HandleOAuthCallback)
	})
	r.With(csrf.Middleware(cfg)).Post("/auth/logout", authService.Logout)

	r.With(csrf.Middleware(cfg)).Get("/", uiHandler.Index)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())
		r.Use(authService.RequireSession)
		r.Use(csrf.Middleware(cfg))

		r.Get("/me", uiHandler.Me)
		r.Get("/calendars", uiHandler.Calendars)
		r.Get("/summary", uiHandler.Summary)
		r.Get("/study-report", uiHandler.StudyReport)
		r.Get("/study-report/export.ics", uiHandler.ExportStudyReport)
		r.Get("/events-range", uiHandler.EventsRange)

		r.Post("/events", uiHandler.CreateEvent)
		r.Patch("/events", uiHandler.UpdateEvent)
		r.Delete("/events", uiHandler.DeleteEvent)
	})

	return r
}
