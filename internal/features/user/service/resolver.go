package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"agora-backend/internal/common/cache"
	"agora-backend/internal/common/logger"
	"agora-backend/internal/common/validation"
	authmodels "agora-backend/internal/features/auth/models"
	"agora-backend/internal/features/user/mapper"
	"agora-backend/internal/features/user/models"
	"agora-backend/internal/features/user/repository"
)

const identityKeyPrefix = "identity:"

// IdentityCache - кэш записей реестра. Промах - cache.ErrCacheMiss.
type IdentityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// PassThroughResolver переносит поля Telegram в личность приложения без хранилища
type PassThroughResolver struct{}

func NewPassThroughResolver() *PassThroughResolver {
	return &PassThroughResolver{}
}

func (PassThroughResolver) Resolve(_ context.Context, identity *authmodels.VerifiedIdentity) (*authmodels.ApplicationIdentity, error) {
	if identity == nil {
		return nil, authmodels.NewAuthError(authmodels.KindMalformedPayload, "identity is nil", nil)
	}
	return &authmodels.ApplicationIdentity{
		ID:           identity.TelegramID,
		FirstName:    identity.FirstName,
		LastName:     identity.LastName,
		Username:     identity.Username,
		LanguageCode: identity.LanguageCode,
		Role:         validation.RoleUser,
		Status:       validation.StatusActive,
	}, nil
}

// RegistryResolver сопоставляет пользователя Telegram с записью в реестре
type RegistryResolver struct {
	repo                repository.UserRepository
	cache               IdentityCache
	cacheTTL            time.Duration
	requireRegistration bool
	now                 func() time.Time
	log                 zerolog.Logger
}

type RegistryOption func(*RegistryResolver)

// WithCache включает кэширование записей. nil отключает кэш.
func WithCache(c IdentityCache, ttl time.Duration) RegistryOption {
	return func(r *RegistryResolver) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithRequireRegistration запрещает автоматическое создание пользователей
func WithRequireRegistration(require bool) RegistryOption {
	return func(r *RegistryResolver) {
		r.requireRegistration = require
	}
}

func WithClock(now func() time.Time) RegistryOption {
	return func(r *RegistryResolver) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRegistryResolver(repo repository.UserRepository, opts ...RegistryOption) *RegistryResolver {
	r := &RegistryResolver{
		repo: repo,
		now:  time.Now,
		log:  logger.Component("identity_resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RegistryResolver) Resolve(ctx context.Context, identity *authmodels.VerifiedIdentity) (*authmodels.ApplicationIdentity, error) {
	if identity == nil {
		return nil, authmodels.NewAuthError(authmodels.KindMalformedPayload, "identity is nil", nil)
	}

	candidate := mapper.FromVerified(identity, r.now())
	if err := validation.Struct(candidate); err != nil {
		return nil, authmodels.NewAuthError(authmodels.KindMalformedPayload, "identity fields rejected", err)
	}

	key := identityKeyPrefix + strconv.FormatInt(identity.TelegramID, 10)
	if cached := r.fromCache(ctx, key); cached != nil && !mapper.ProfileChanged(cached, identity) {
		return r.resolveCached(ctx, key, cached)
	}

	user, err := r.repo.GetByID(ctx, identity.TelegramID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		if r.requireRegistration {
			return nil, authmodels.NewAuthError(authmodels.KindUserNotFound, "user is not registered", nil)
		}
		if err := r.repo.Create(ctx, candidate); err != nil {
			return nil, fmt.Errorf("create user %d: %w", identity.TelegramID, err)
		}
		r.log.Info().Int64("user_id", candidate.ID).Msg("User registered")
		user = candidate
	case err != nil:
		return nil, fmt.Errorf("get user %d: %w", identity.TelegramID, err)
	}

	if err := user.CheckStored(); err != nil {
		return nil, fmt.Errorf("user %d: %w", identity.TelegramID, err)
	}

	if user.IsBanned() {
		r.dropCache(ctx, key)
		return nil, authmodels.NewAuthError(authmodels.KindUserNotFound, "user is banned", nil)
	}

	if mapper.ProfileChanged(user, identity) {
		user.Username = identity.Username
		user.FirstName = identity.FirstName
		user.LastName = identity.LastName
		user.LanguageCode = identity.LanguageCode
		if err := r.repo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("update user %d: %w", identity.TelegramID, err)
		}
	}

	r.toCache(ctx, key, user)

	return mapper.ToApplicationIdentity(user), nil
}

// resolveCached берет профиль из кэша, а статус всегда из хранилища
func (r *RegistryResolver) resolveCached(ctx context.Context, key string, cached *models.User) (*authmodels.ApplicationIdentity, error) {
	status, err := r.repo.GetStatus(ctx, cached.ID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		r.dropCache(ctx, key)
		if r.requireRegistration {
			return nil, authmodels.NewAuthError(authmodels.KindUserNotFound, "user is not registered", nil)
		}
		return nil, authmodels.NewAuthError(authmodels.KindUserNotFound, "user was removed", nil)
	case err != nil:
		return nil, fmt.Errorf("get user %d status: %w", cached.ID, err)
	}

	if err := validation.ValidateUserStatus(status); err != nil {
		return nil, fmt.Errorf("user %d: %w", cached.ID, err)
	}

	if status == validation.StatusBanned {
		r.dropCache(ctx, key)
		r.log.Debug().Int64("user_id", cached.ID).Msg("Cached identity dropped for banned user")
		return nil, authmodels.NewAuthError(authmodels.KindUserNotFound, "user is banned", nil)
	}

	cached.Status = status
	return mapper.ToApplicationIdentity(cached), nil
}

func (r *RegistryResolver) fromCache(ctx context.Context, key string) *models.User {
	if r.cache == nil {
		return nil
	}
	var user models.User
	if err := r.cache.Get(ctx, key, &user); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.log.Warn().Err(err).Str("key", key).Msg("Identity cache read failed")
		}
		return nil
	}
	if user.IsBanned() {
		return nil
	}
	return &user
}

func (r *RegistryResolver) toCache(ctx context.Context, key string, user *models.User) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, user, r.cacheTTL); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("Identity cache write failed")
	}
}

func (r *RegistryResolver) dropCache(ctx context.Context, key string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, key); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("Identity cache delete failed")
	}
}
