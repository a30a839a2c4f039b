package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/flywinger/bolt-user-auth/internal/core/domain"
	"github.com/flywinger/bolt-user-auth/internal/core/ports"
)

type identityService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	audit    ports.AuditSink
	validate *validator.Validate
	log      zerolog.Logger
}

// NewIdentityService returns an IdentityService implementation. The audit
// sink may be nil, in which case no events are recorded.
func NewIdentityService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	audit ports.AuditSink,
	log zerolog.Logger,
) ports.IdentityService {
	return &identityService{
		users:    users,
		hasher:   hasher,
		audit:    audit,
		validate: newValidator(),
		log:      log,
	}
}

// Register validates the form, enforces username uniqueness, hashes the
// password, and persists the account.
func (s *identityService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if err := checkStruct(s.validate, in); err != nil {
		return nil, err
	}

	// Pre-check keeps the common duplicate case on a clean field-error
	// path; the unique index remains the guard against concurrent inserts.
	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	s.record(domain.EventRegister, created.Username, created.ID)
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login verifies credentials and updates LastLogin. An unknown username and
// a wrong password are indistinguishable to the caller.
func (s *identityService) Login(ctx context.Context, in ports.LoginInput) (*domain.User, error) {
	if err := checkStruct(s.validate, in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.record(domain.EventLoginFailed, in.Username, "")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.record(domain.EventLoginFailed, user.Username, user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	updated, err := s.users.Update(ctx, user.ID, ports.UserUpdate{LastLogin: &now})
	if err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	s.record(domain.EventLogin, updated.Username, updated.ID)
	s.log.Info().Str("user_id", updated.ID).Msg("user logged in")
	return updated, nil
}

// UpdateProfile validates and applies email and password changes in a single
// store write. A rejected request applies no changes at all.
func (s *identityService) UpdateProfile(ctx context.Context, userID string, in ports.ProfileUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var upd ports.UserUpdate

	if in.Email != "" {
		if s.validate.Var(in.Email, "email") != nil {
			return nil, domain.FieldErrors{"email": "Invalid email address"}
		}
		upd.Email = &in.Email
	}

	// A password change requires all three fields together.
	if in.CurrentPassword != "" || in.NewPassword != "" || in.ConfirmPassword != "" {
		switch {
		case in.CurrentPassword == "":
			return nil, domain.FieldErrors{"currentPassword": "Current password is required"}
		case in.NewPassword == "":
			return nil, domain.FieldErrors{"newPassword": "New password is required"}
		case in.ConfirmPassword == "":
			return nil, domain.FieldErrors{"confirmPassword": "Please confirm your new password"}
		}
		if len(in.NewPassword) < 6 {
			return nil, domain.FieldErrors{"newPassword": "Password must be at least 6 characters"}
		}
		if in.NewPassword != in.ConfirmPassword {
			return nil, domain.FieldErrors{"confirmPassword": "Passwords do not match"}
		}
		if !s.hasher.Verify(in.CurrentPassword, user.PasswordHash) {
			return nil, domain.FieldErrors{"currentPassword": "Current password is incorrect"}
		}
		upd.Password = &in.NewPassword
	}

	if upd == (ports.UserUpdate{}) {
		return user, nil
	}

	updated, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		return nil, err
	}

	s.record(domain.EventProfileUpdate, updated.Username, updated.ID)
	return updated, nil
}

func (s *identityService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *identityService) record(kind, username, userID string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuthEvent{
		Kind:      kind,
		Username:  username,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	})
}
