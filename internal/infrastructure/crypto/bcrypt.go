// Package crypto provides the bcrypt-backed password hasher. It is the only
// place in the codebase that touches golang.org/x/crypto/bcrypt; every
// password comparison routes through it.
package crypto

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/flywinger/bolt-user-auth/internal/metrics"
)

// DefaultCost mirrors the work factor the application has always used.
const DefaultCost = 10

// BcryptHasher implements ports.PasswordHasher with a configurable cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost. Costs outside
// bcrypt's supported range fall back to DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash derives a salted one-way hash of the plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. bcrypt's comparison is
// constant-time; a malformed stored hash simply fails verification.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
