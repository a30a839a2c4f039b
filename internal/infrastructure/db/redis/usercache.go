package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/flywinger/bolt-user-auth/internal/core/domain"
	"github.com/flywinger/bolt-user-auth/internal/core/ports"
)

const cacheTTL = 5 * time.Minute

// CachedUserRepository decorates a UserRepository with a Redis read-through
// cache on GetByID, the lookup every authenticated request performs. Writes
// go straight to the underlying store and invalidate the cached entry.
// Cache failures degrade to the store; they never surface to callers.
//
// The cached record includes the password hash, so entries are keyed per
// user and expire quickly; Redis is assumed to be private to the service.
type CachedUserRepository struct {
	ports.UserRepository

	client *redis.Client
	log    zerolog.Logger
}

func NewCachedUserRepository(repo ports.UserRepository, client *redis.Client, log zerolog.Logger) *CachedUserRepository {
	return &CachedUserRepository{UserRepository: repo, client: client, log: log}
}

type cachedUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
	LastLogin    int64  `json:"last_login"`
}

func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := r.lookup(ctx, id); ok {
		return user, nil
	}

	user, err := r.UserRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(ctx, user)
	return user, nil
}

func (r *CachedUserRepository) Update(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	user, err := r.UserRepository.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return user, nil
}

func (r *CachedUserRepository) Delete(ctx context.Context, id string) error {
	if err := r.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedUserRepository) lookup(ctx context.Context, id string) (*domain.User, bool) {
	raw, err := r.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Str("user_id", id).Msg("user cache read failed")
		}
		return nil, false
	}

	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		r.invalidate(ctx, id)
		return nil, false
	}

	return &domain.User{
		ID:           cu.ID,
		Username:     cu.Username,
		Email:        cu.Email,
		PasswordHash: cu.PasswordHash,
		CreatedAt:    time.Unix(cu.CreatedAt, 0).UTC(),
		LastLogin:    time.Unix(cu.LastLogin, 0).UTC(),
	}, true
}

func (r *CachedUserRepository) store(ctx context.Context, user *domain.User) {
	raw, err := json.Marshal(cachedUser{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.Unix(),
		LastLogin:    user.LastLogin.Unix(),
	})
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, userKey(user.ID), raw, cacheTTL).Err(); err != nil {
		r.log.Warn().Err(err).Str("user_id", user.ID).Msg("user cache write failed")
	}
}

func (r *CachedUserRepository) invalidate(ctx context.Context, id string) {
	if err := r.client.Del(ctx, userKey(id)).Err(); err != nil {
		r.log.Warn().Err(err).Str("user_id", id).Msg("user cache invalidation failed")
	}
}

func userKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}
