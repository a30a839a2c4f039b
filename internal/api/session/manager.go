// Package session implements the signed-cookie session lifecycle. The cookie
// is the sole source of truth for session state: its value is an HS256-signed
// token carrying the user id, so no server-side session table is consulted.
package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/flywinger/bolt-user-auth/internal/metrics"
)

// CookieName is the session cookie set on every authenticated browser.
const CookieName = "bolt_session"

// DefaultTTL is the fixed session lifetime from issuance; there is no
// sliding renewal.
const DefaultTTL = 30 * 24 * time.Hour

// Session is a parsed session handle. The zero value is the empty session.
type Session struct {
	userID string
}

// UserID returns the authenticated user id, or false for an empty session.
func (s Session) UserID() (string, bool) {
	return s.userID, s.userID != ""
}

// Manager signs, reads, and clears session cookies.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewManager creates a Manager signing with secret. secure controls the
// cookie's Secure attribute and should be true in production. A ttl <= 0
// falls back to DefaultTTL.
func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Read parses and verifies the session cookie on the request. An absent,
// expired, corrupt, or forged cookie yields the empty session; signature
// failure degrades to "no session", never to an error.
func (m *Manager) Read(r *http.Request) Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		metrics.SessionReadsTotal.WithLabelValues("absent").Inc()
		return Session{}
	}

	claims := jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		metrics.SessionReadsTotal.WithLabelValues("invalid").Inc()
		return Session{}
	}

	metrics.SessionReadsTotal.WithLabelValues("ok").Inc()
	return Session{userID: claims.Subject}
}

// Issue commits userID into a freshly signed cookie on the response.
func (m *Manager) Issue(w http.ResponseWriter, userID string) error {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
	metrics.SessionsIssuedTotal.Inc()
	return nil
}

// Clear invalidates the session cookie on the response.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
	metrics.SessionsClearedTotal.Inc()
}
