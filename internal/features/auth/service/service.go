package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "agora-backend/internal/common/errors"
	"agora-backend/internal/common/logger"
	"agora-backend/internal/features/auth/models"
	"agora-backend/internal/platform/monitoring"
)

const (
	EventAuthSuccess = "auth.success"
	EventAuthFailure = "auth.failure"
)

type authService struct {
	verifier      LaunchDataVerifier
	resolver      IdentityResolver
	issuer        TokenIssuer
	sink          monitoring.Sink
	lookupTimeout time.Duration
	log           zerolog.Logger
}

// NewAuthService собирает вход по initData. lookupTimeout ограничивает
// обращение к реестру пользователей, 0 - без ограничения.
func NewAuthService(verifier LaunchDataVerifier, resolver IdentityResolver, issuer TokenIssuer, sink monitoring.Sink, lookupTimeout time.Duration) AuthService {
	return &authService{
		verifier:      verifier,
		resolver:      resolver,
		issuer:        issuer,
		sink:          monitoring.Safe(sink),
		lookupTimeout: lookupTimeout,
		log:           logger.Component("auth_service"),
	}
}

func (s *authService) Login(ctx context.Context, rawLaunchData string) (*models.LoginResult, error) {
	verified, err := s.verifier.Verify(rawLaunchData)
	if err != nil {
		return nil, s.loginFailed("verify", 0, err)
	}

	resolveCtx := ctx
	if s.lookupTimeout > 0 {
		var cancel context.CancelFunc
		resolveCtx, cancel = context.WithTimeout(ctx, s.lookupTimeout)
		defer cancel()
	}

	identity, err := s.resolver.Resolve(resolveCtx, verified)
	if err != nil {
		return nil, s.loginFailed("resolve", verified.TelegramID, err)
	}

	accessToken, claims, err := s.issuer.Issue(identity, 0)
	if err != nil {
		return nil, s.loginFailed("issue", verified.TelegramID, err)
	}

	s.sink.LogEvent(EventAuthSuccess, map[string]interface{}{"user_id": identity.ID})

	return &models.LoginResult{
		AccessToken: accessToken,
		TokenType:   models.TokenTypeBearer,
		ExpiresIn:   int64(claims.ExpiresAt.Sub(claims.IssuedAt.Time) / time.Second),
	}, nil
}

// loginFailed скрывает причину отказа от клиента, оставляя ее в логе и в цепочке ошибок
func (s *authService) loginFailed(stage string, userID int64, err error) error {
	kind := "internal"
	evt := s.log.Error()
	if k, ok := models.KindOf(err); ok {
		kind = k.String()
		evt = s.log.Warn()
	}

	evt.Err(err).
		Str("stage", stage).
		Str("kind", kind).
		Int64("user_id", userID).
		Msg("Login rejected")

	s.sink.LogEvent(EventAuthFailure, map[string]interface{}{"stage": stage, "kind": kind})

	return apperrors.NewAuthFailedError(err).WithUserID(userID)
}

func (s *authService) CurrentUser(_ context.Context, accessToken string) (*models.ApplicationIdentity, error) {
	claims, err := s.issuer.Validate(strings.TrimSpace(accessToken))
	if err != nil {
		s.log.Debug().Err(err).Msg("Token rejected")
		if errors.Is(err, models.ErrTokenExpired) {
			return nil, apperrors.NewTokenExpiredError(err)
		}
		return nil, apperrors.NewTokenInvalidError(err)
	}

	identity := claims.UserInfo
	return &identity, nil
}
