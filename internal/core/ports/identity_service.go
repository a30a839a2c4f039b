package ports

import (
	"context"

	"github.com/flywinger/bolt-user-auth/internal/core/domain"
)

// RegisterInput carries the registration form fields. Validation tags drive
// the deterministic check order: presence, then length, then format.
type RegisterInput struct {
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=6"`
	Email    string `validate:"omitempty,email"`
}

// LoginInput carries the login form fields.
type LoginInput struct {
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=6"`
}

// ProfileUpdateInput carries the profile form fields. Empty strings mean the
// field was not submitted. If any of the three password fields is present,
// all three are required together.
type ProfileUpdateInput struct {
	Email           string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// IdentityService orchestrates the credential store, password hasher, and
// audit trail. It owns all business rules: validation, uniqueness
// enforcement, and last-login bookkeeping.
type IdentityService interface {
	// Register validates input, enforces username uniqueness, and persists
	// a new account. Rejections surface as domain.FieldErrors or
	// domain.ErrDuplicateUsername.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Login verifies credentials and updates LastLogin. Unknown usernames
	// and wrong passwords both yield domain.ErrInvalidCredentials.
	Login(ctx context.Context, in LoginInput) (*domain.User, error)

	// UpdateProfile applies accepted fields atomically; a rejected request
	// applies no changes at all.
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdateInput) (*domain.User, error)

	// GetUser resolves the account behind an authenticated session.
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}
