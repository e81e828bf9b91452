package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	httperrors "studydash/internal/http/errors"
	"studydash/internal/store"
)

const googleIssuer = "https://accounts.google.com"

// CalendarScope grants read/write access to the user's calendars. The
// dashboard both reads study events and creates new ones, so the
// read-only scope is not enough.
const CalendarScope = "https://www.googleapis.com/auth/calendar"

// Service runs the Google sign-in flow and resolves browser cookies
// back to stored sessions.
type Service struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
	sessions *SessionManager
	store    *store.Store
	now      func() time.Time
}

func NewService(ctx context.Context, clientID, clientSecret, redirectURL string, sessions *SessionManager, st *store.Store) (*Service, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("discover google oidc provider: %w", err)
	}

	return &Service{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email", CalendarScope},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		sessions: sessions,
		store:    st,
		now:      time.Now,
	}, nil
}

// BeginOAuth sends the browser to Google's consent screen. Offline
// access plus prompt=consent makes Google return a refresh token even
// for repeat sign-ins.
func (s *Service) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	state, err := randomToken()
	if err != nil {
		httperrors.InternalError(w, r, err, "failed to start sign-in")
		return
	}
	if err := s.sessions.IssueState(w, state); err != nil {
		httperrors.InternalError(w, r, err, "failed to start sign-in")
		return
	}

	url := s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
	http.Redirect(w, r, url, http.StatusFound)
}

// HandleOAuthCallback exchanges the authorization code, verifies the ID
// token, and opens a new session.
func (s *Service) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	expectedState, ok := s.sessions.ReadState(r)
	s.sessions.ClearState(w)
	if !ok || r.URL.Query().Get("state") != expectedState {
		httperrors.JSONError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		httperrors.JSONError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	token, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		httperrors.InternalError(w, r, err, "failed to exchange authorization code")
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		httperrors.InternalError(w, r, errors.New("token response has no id_token"), "sign-in failed")
		return
	}
	idToken, err := s.verifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		httperrors.InternalError(w, r, err, "id token verification failed")
		return
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		httperrors.InternalError(w, r, err, "failed to parse id token claims")
		return
	}

	sessionID, err := randomToken()
	if err != nil {
		httperrors.InternalError(w, r, err, "sign-in failed")
		return
	}

	now := s.now()
	session := store.Session{
		ID:           sessionID,
		Subject:      idToken.Subject,
		Email:        claims.Email,
		DisplayName:  claims.Name,
		Picture:      claims.Picture,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
		CreatedAt:    now,
		ExpiresAt:    now.Add(sessionTTL),
	}
	if err := s.store.Sessions.Create(r.Context(), session); err != nil {
		httperrors.InternalError(w, r, err, "failed to create session")
		return
	}
	if err := s.sessions.Issue(w, sessionID); err != nil {
		httperrors.InternalError(w, r, err, "failed to set session cookie")
		return
	}

	httperrors.LogInfo(r, fmt.Sprintf("signed in: %s", claims.Email))
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout drops the server-side session and clears the cookie.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := s.sessions.Read(r); ok {
		if err := s.store.Sessions.Delete(r.Context(), sessionID); err != nil {
			httperrors.LogError(r, "failed to delete session", err)
		}
	}
	s.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// CurrentSession resolves the request's cookie to a live session, or
// nil when the request is not authenticated.
func (s *Service) CurrentSession(r *http.Request) (*store.Session, error) {
	sessionID, ok := s.sessions.Read(r)
	if !ok {
		return nil, nil
	}
	session, err := s.store.Sessions.Get(r.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, nil
	}
	return session, nil
}

// RequireSession rejects unauthenticated API requests with a 401 JSON
// payload and puts the session on the context for handlers downstream.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.CurrentSession(r)
		if err != nil {
			httperrors.InternalError(w, r, err, "failed to load session")
			return
		}
		if session == nil {
			httperrors.JSONError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if session.AccessToken == "" && session.RefreshToken == "" {
			httperrors.JSONError(w, http.StatusUnauthorized, "Missing OAuth tokens. Please sign in again.")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// TokenSource returns a refreshing source for the session's Google
// tokens. Refreshed tokens are written back to the sessions table so
// later requests skip the refresh round-trip.
func (s *Service) TokenSource(ctx context.Context, session *store.Session) oauth2.TokenSource {
	current := &oauth2.Token{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		Expiry:       session.TokenExpiry,
		TokenType:    "Bearer",
	}
	return &persistingTokenSource{
		ctx:       ctx,
		sessions:  s.store.Sessions,
		sessionID: session.ID,
		last:      current,
		base:      s.oauth.TokenSource(ctx, current),
	}
}

type persistingTokenSource struct {
	ctx       context.Context
	sessions  store.SessionRepository
	sessionID string
	last      *oauth2.Token
	base      oauth2.TokenSource
}

func (ts *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := ts.base.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != ts.last.AccessToken {
		if err := ts.sessions.UpdateTokens(ts.ctx, ts.sessionID, token.AccessToken, token.RefreshToken, token.Expiry); err != nil {
			// The refreshed token is still usable for this request.
			httperrors.LogErrorCtx(ts.ctx, "failed to persist refreshed tokens", err)
		}
		ts.last = token
	}
	return token, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
