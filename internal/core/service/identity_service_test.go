package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/flywinger/bolt-user-auth/internal/core/domain"
	"github.com/flywinger/bolt-user-auth/internal/core/ports"
	"github.com/flywinger/bolt-user-auth/internal/infrastructure/crypto"
)

// stubUserRepo is an in-memory UserRepository with a by-username index,
// mirroring the store contract including uniqueness under concurrency.
type stubUserRepo struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	byUsername map[string]string
	hasher     ports.PasswordHasher
	nextID     int

	failAll bool // simulate a storage outage
}

func newStubUserRepo(hasher ports.PasswordHasher) *stubUserRepo {
	return &stubUserRepo{
		users:      make(map[string]*domain.User),
		byUsername: make(map[string]string),
		hasher:     hasher,
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, domain.ErrStorageUnavailable
	}
	if _, exists := r.byUsername[user.Username]; exists {
		return nil, domain.ErrDuplicateUsername
	}
	r.nextID++
	now := time.Now().UTC()
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", r.nextID)
	created.CreatedAt = now
	created.LastLogin = now
	r.users[created.ID] = cloneUser(created)
	r.byUsername[created.Username] = created.ID
	return cloneUser(created), nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, domain.ErrStorageUnavailable
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, domain.ErrStorageUnavailable
	}
	id, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.users[id]), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, domain.ErrStorageUnavailable
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		hash, err := r.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if upd.LastLogin != nil {
		u.LastLogin = *upd.LastLogin
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byUsername, u.Username)
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func newTestService(t *testing.T) (ports.IdentityService, *stubUserRepo) {
	t.Helper()
	hasher := crypto.NewBcryptHasher(bcrypt.MinCost)
	repo := newStubUserRepo(hasher)
	return NewIdentityService(repo, hasher, nil, zerolog.Nop()), repo
}

func fieldError(t *testing.T, err error, field string) string {
	t.Helper()
	var ferr domain.FieldErrors
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	msg, ok := ferr[field]
	if !ok {
		t.Fatalf("expected error keyed by %q, got %v", field, ferr)
	}
	return msg
}

func TestIdentityService_Register_Success(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Password: "secret1",
		Email:    "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.CreatedAt.IsZero() || user.LastLogin.IsZero() {
		t.Fatalf("expected timestamps to be set: %+v", user)
	}
	if user.CreatedAt.After(user.LastLogin) {
		t.Fatalf("created_at after last_login: %+v", user)
	}
}

func TestIdentityService_Register_ShortUsername(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "ab", Password: "secret1"})
	if msg := fieldError(t, err, "username"); msg != "Username must be at least 3 characters" {
		t.Fatalf("unexpected message: %q", msg)
	}

	users, _ := repo.ListAll(context.Background())
	if len(users) != 0 {
		t.Fatalf("expected no record created, got %d", len(users))
	}
}

func TestIdentityService_Register_CheckOrder(t *testing.T) {
	svc, _ := newTestService(t)

	// Multiple rules violated at once: the first violated field wins,
	// username before password before email.
	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "", Password: "x", Email: "bogus"})
	fieldError(t, err, "username")

	_, err = svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Password: "x", Email: "bogus"})
	if msg := fieldError(t, err, "password"); msg != "Password must be at least 6 characters" {
		t.Fatalf("unexpected message: %q", msg)
	}

	_, err = svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Password: "secret1", Email: "bogus"})
	if msg := fieldError(t, err, "email"); msg != "Invalid email address" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestIdentityService_Register_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "secret1"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "other1"})
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestIdentityService_Register_EmailRequiresDottedDomain(t *testing.T) {
	svc, _ := newTestService(t)

	// A dotless host passes RFC-style validation but not the form rule.
	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "ivan", Password: "secret1", Email: "ivan@host"})
	if msg := fieldError(t, err, "email"); msg != "Invalid email address" {
		t.Fatalf("unexpected message: %q", msg)
	}

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "ivan", Password: "secret1", Email: "ivan@host.tld"}); err != nil {
		t.Fatalf("dotted domain rejected: %v", err)
	}

	created, _ := svc.Register(context.Background(), ports.RegisterInput{Username: "judy", Password: "secret1"})
	_, err = svc.UpdateProfile(context.Background(), created.ID, ports.ProfileUpdateInput{Email: "judy@host"})
	fieldError(t, err, "email")
}

func TestIdentityService_Register_ConcurrentDuplicate(t *testing.T) {
	svc, repo := newTestService(t)

	// Two simultaneous submissions of the same username: exactly one may win.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), ports.RegisterInput{Username: "race", Password: "secret1"})
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrDuplicateUsername):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("expected one winner and one duplicate, got %d/%d", won, lost)
	}

	users, _ := repo.ListAll(context.Background())
	if len(users) != 1 {
		t.Fatalf("expected a single record, got %d", len(users))
	}
}

func TestIdentityService_Login_Success_UpdatesLastLogin(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Register(context.Background(), ports.RegisterInput{Username: "carol", Password: "s3cret1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := svc.Login(context.Background(), ports.LoginInput{Username: "carol", Password: "s3cret1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.LastLogin.Before(created.LastLogin) {
		t.Fatalf("last_login not advanced: %v -> %v", created.LastLogin, user.LastLogin)
	}
}

func TestIdentityService_Login_GenericError(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "dave", Password: "secret1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Wrong password and unknown username must be indistinguishable.
	_, wrongPass := svc.Login(context.Background(), ports.LoginInput{Username: "dave", Password: "wrong99"})
	_, noUser := svc.Login(context.Background(), ports.LoginInput{Username: "nobody", Password: "wrong99"})

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPass)
	}
	if !errors.Is(noUser, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", noUser)
	}
	if wrongPass.Error() != noUser.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPass, noUser)
	}
}

func TestIdentityService_Login_StorageFailure(t *testing.T) {
	svc, repo := newTestService(t)
	repo.failAll = true

	_, err := svc.Login(context.Background(), ports.LoginInput{Username: "ghost1", Password: "secret1"})
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected storage error to propagate, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("storage failure must not masquerade as bad credentials")
	}
}

func TestIdentityService_UpdateProfile_Email(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Register(context.Background(), ports.RegisterInput{Username: "erin", Password: "secret1"})

	updated, err := svc.UpdateProfile(context.Background(), created.ID, ports.ProfileUpdateInput{Email: "erin@example.com"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Email != "erin@example.com" {
		t.Fatalf("email not applied: %+v", updated)
	}

	_, err = svc.UpdateProfile(context.Background(), created.ID, ports.ProfileUpdateInput{Email: "not-an-address"})
	fieldError(t, err, "email")
}

func TestIdentityService_UpdateProfile_PasswordFieldsRequiredTogether(t *testing.T) {
	svc, repo := newTestService(t)

	created, _ := svc.Register(context.Background(), ports.RegisterInput{Username: "frank", Password: "secret1"})
	before, _ := repo.GetByID(context.Background(), created.ID)

	_, err := svc.UpdateProfile(context.Background(), created.ID, ports.ProfileUpdateInput{NewPassword: "newpass1"})
	fieldError(t, err, "currentPassword")

	after, _ := repo.GetByID(context.Background(), created.ID)
	if after.PasswordHash != before.PasswordHash {
		t.Fatalf("password hash changed on rejected request")
	}
}

func TestIdentityService_UpdateProfile_PasswordChange(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Register(context.Background(), ports.RegisterInput{Username: "grace", Password: "secret1"})

	cases := []struct {
		name  string
		in    ports.ProfileUpdateInput
		field string
	}{
		{"wrong current", ports.ProfileUpdateInput{CurrentPassword: "nope99", NewPassword: "newpass1", ConfirmPassword: "newpass1"}, "currentPassword"},
		{"short new", ports.ProfileUpdateInput{CurrentPassword: "secret1", NewPassword: "abc", ConfirmPassword: "abc"}, "newPassword"},
		{"mismatched confirm", ports.ProfileUpdateInput{CurrentPassword: "secret1", NewPassword: "newpass1", ConfirmPassword: "newpass2"}, "confirmPassword"},
	}
	for _, tc := range cases {
		if _, err := svc.UpdateProfile(context.Background(), created.ID, tc.in); err == nil {
			t.Fatalf("%s: expected rejection", tc.name)
		} else {
			fieldError(t, err, tc.field)
		}
	}

	if _, err := svc.UpdateProfile(context.Background(), created.ID, ports.ProfileUpdateInput{
		CurrentPassword: "secret1",
		NewPassword:     "newpass1",
		ConfirmPassword: "newpass1",
	}); err != nil {
		t.Fatalf("password change failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), ports.LoginInput{Username: "grace", Password: "newpass1"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), ports.LoginInput{Username: "grace", Password: "secret1"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
}

func TestIdentityService_UpdateProfile_RejectionAppliesNothing(t *testing.T) {
	svc, repo := newTestService(t)

	created, _ := svc.Register(context.Background(), ports.RegisterInput{Username: "heidi", Password: "secret1"})

	// Valid email alongside an invalid password change: all-or-nothing.
	_, err := svc.UpdateProfile(context.Background(), created.ID, ports.ProfileUpdateInput{
		Email:           "heidi@example.com",
		CurrentPassword: "wrong99",
		NewPassword:     "newpass1",
		ConfirmPassword: "newpass1",
	})
	fieldError(t, err, "currentPassword")

	after, _ := repo.GetByID(context.Background(), created.ID)
	if after.Email != "" {
		t.Fatalf("email applied despite rejected request: %+v", after)
	}
}
