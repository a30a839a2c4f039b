package domain

import "time"

// Session is the server-side session record for the token-table strategy.
// The signed-cookie flow carries the user id entirely inside the cookie and
// never touches this collection; the schema exists as reserved capacity for
// a revocable, server-tracked session variant.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
