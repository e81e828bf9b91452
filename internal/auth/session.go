package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	sessionCookieName = "studydash_session"
	stateCookieName   = "studydash_oauth_state"

	sessionTTL = 7 * 24 * time.Hour
	stateTTL   = 10 * time.Minute
)

// SessionManager signs and encrypts the browser cookies. The session
// cookie carries only the opaque session id; all token material stays
// server-side in the sessions table.
type SessionManager struct {
	codec  *securecookie.SecureCookie
	secure bool
}

func NewSessionManager(secret []byte, secureCookies bool) *SessionManager {
	hashKey := secret
	blockKey := secret[:32]
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(sessionTTL.Seconds()))
	return &SessionManager{codec: sc, secure: secureCookies}
}

func (m *SessionManager) Issue(w http.ResponseWriter, sessionID string) error {
	encoded, err := m.codec.Encode(sessionCookieName, sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) Read(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	var sessionID string
	if err := m.codec.Decode(sessionCookieName, c.Value, &sessionID); err != nil {
		return "", false
	}
	return sessionID, sessionID != ""
}

func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionManager) IssueState(w http.ResponseWriter, state string) error {
	encoded, err := m.codec.Encode(stateCookieName, state)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) ReadState(r *http.Request) (string, bool) {
	c, err := r.Cookie(stateCookieName)
	if err != nil {
		return "", false
	}
	var state string
	if err := m.codec.Decode(stateCookieName, c.Value, &state); err != nil {
		return "", false
	}
	return state, state != ""
}

func (m *SessionManager) ClearState(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
