package domain

import "time"

// Auth event kinds recorded in the audit trail.
const (
	EventRegister      = "register"
	EventLogin         = "login"
	EventLoginFailed   = "login_failed"
	EventProfileUpdate = "profile_update"
	EventLogout        = "logout"
)

// AuthEvent is a single entry in the append-only auth audit trail. Recording
// is best-effort and never affects the outcome of the operation it describes.
type AuthEvent struct {
	Kind      string
	Username  string
	UserID    string // empty when the attempt never resolved to an account
	Timestamp time.Time
}
