package ui

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"studydash/internal/auth"
	"studydash/internal/config"
	"studydash/internal/dashboard"
	"studydash/internal/gcal"
	"studydash/internal/http/csrf"
	"studydash/internal/http/errors"
	"studydash/internal/store"
)

// GatewayFactory builds a calendar gateway for one session. Separated
// from the handler so API tests can swap in a fake.
type GatewayFactory interface {
	ForSession(ctx context.Context, session *store.Session) (dashboard.Gateway, error)
}

type googleGatewayFactory struct {
	auth *auth.Service
}

func (f *googleGatewayFactory) ForSession(ctx context.Context, session *store.Session) (dashboard.Gateway, error) {
	client, err := gcal.NewClient(ctx, f.auth.TokenSource(ctx, session))
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Handler serves the HTML pages and the JSON API.
type Handler struct {
	cfg       *config.Config
	auth      *auth.Service
	dashboard *dashboard.Service
	gateways  GatewayFactory
	templates map[string]*template.Template
	loc       *time.Location
	now       func() time.Time
}

// NewHandler constructs the handler. now is injected so tests can pin
// the window anchor; nil means the wall clock.
func NewHandler(cfg *config.Config, authService *auth.Service, svc *dashboard.Service, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		cfg:       cfg,
		auth:      authService,
		dashboard: svc,
		gateways:  &googleGatewayFactory{auth: authService},
		templates: templates,
		loc:       cfg.Location,
		now:       now,
	}
}

// Index renders the dashboard for signed-in users and the login page
// for everyone else.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	session, err := h.auth.CurrentSession(r)
	if err != nil {
		errors.InternalError(w, r, err, "failed to load session")
		return
	}
	if session == nil {
		h.render(w, r, "login.html", map[string]any{
			"Title": "Sign in",
		})
		return
	}

	h.render(w, r, "dashboard.html", map[string]any{
		"Title":     "Study Dashboard",
		"User":      session,
		"CSRFToken": csrf.TokenFromContext(r.Context()),
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	tmpl, ok := h.templates[name]
	if !ok {
		errors.InternalError(w, r, fmt.Errorf("template not found"), fmt.Sprintf("template %q not found", name))
		return
	}

	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		errors.InternalError(w, r, err, fmt.Sprintf("template render error for %q", name))
	}
}
