package store

import "time"

// Session is one signed-in browser session together with the OAuth
// token pair it owns. Tokens live only here; the cookie carries just
// the session id.
type Session struct {
	ID          string
	Subject     string
	Email       string
	DisplayName string
	Picture     string

	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session itself (not the access token)
// has lapsed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
