package domain

import "time"

// User models an account in the credential store.
//
// ID is generated once at creation and never changes. Username is unique,
// case-sensitive as stored. PasswordHash is always a derived bcrypt hash and
// is never serialized.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login"`
}
