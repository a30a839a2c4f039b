package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDuplicateUsername is returned when an insert collides with the
	// unique by-username index.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrUserNotFound is returned when a lookup, update, or delete by id
	// legitimately finds nothing.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials deliberately conflates "no such user" and
	// "wrong password" so login responses cannot be used to enumerate
	// usernames.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrStorageUnavailable indicates the persistence layer itself failed,
	// as opposed to an operation that found nothing.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// FieldErrors is a user-correctable validation failure, keyed by the form
// field that violated a rule. It satisfies error so services can return it
// through their normal error path.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
