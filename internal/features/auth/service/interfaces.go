package service

import (
	"context"
	"time"

	"agora-backend/internal/features/auth/models"
	"agora-backend/internal/features/auth/token"
)

// LaunchDataVerifier проверяет подпись и свежесть initData
type LaunchDataVerifier interface {
	Verify(raw string) (*models.VerifiedIdentity, error)
}

// IdentityResolver сопоставляет пользователя Telegram с пользователем платформы
type IdentityResolver interface {
	Resolve(ctx context.Context, identity *models.VerifiedIdentity) (*models.ApplicationIdentity, error)
}

type TokenIssuer interface {
	Issue(identity *models.ApplicationIdentity, ttl time.Duration) (string, *token.SessionClaims, error)
	Validate(tokenString string) (*token.SessionClaims, error)
}

type AuthService interface {
	Login(ctx context.Context, rawLaunchData string) (*models.LoginResult, error)
	CurrentUser(ctx context.Context, accessToken string) (*models.ApplicationIdentity, error)
}
