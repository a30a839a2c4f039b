package ports

import (
	"context"
	"time"

	"github.com/flywinger/bolt-user-auth/internal/core/domain"
)

// UserUpdate is a partial user mutation. Nil fields are left untouched.
// Password carries plaintext; the repository re-hashes it before persisting
// so a raw credential can never reach storage.
type UserUpdate struct {
	Email     *string
	Password  *string
	LastLogin *time.Time
}

// UserRepository defines the credential store contract.
//
// Username uniqueness is enforced by the store's unique index, which is also
// the sole guard against concurrent conflicting inserts. All mutations are
// durable before the call returns.
type UserRepository interface {
	// Create persists a new record with a freshly generated id and
	// CreatedAt = LastLogin = now. Returns domain.ErrDuplicateUsername if
	// the username is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername resolves through the by-username index; lookup cost is
	// independent of store size.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update merges the provided fields into the existing record in a
	// single atomic write and returns the updated record.
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)

	Delete(ctx context.Context, id string) error

	// ListAll enumerates every user. Administrative; no ordering guarantee.
	ListAll(ctx context.Context) ([]*domain.User, error)
}
