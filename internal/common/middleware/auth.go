package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"agora-backend/internal/common/errors"
	authmodels "agora-backend/internal/features/auth/models"
)

const IdentityKey = "identity"

// TokenAuthenticator проверяет bearer-токен и возвращает вшитую в него личность
type TokenAuthenticator interface {
	CurrentUser(ctx context.Context, token string) (*authmodels.ApplicationIdentity, error)
}

// RequireBearer пропускает запрос только с действительным bearer-токеном
func RequireBearer(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			RespondError(c, errors.NewTokenInvalidError(err))
			return
		}

		identity, err := auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			RespondError(c, err)
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(UserIDKey, identity.ID)
		c.Next()
	}
}

// CurrentIdentity возвращает личность, сохраненную RequireBearer
func CurrentIdentity(c *gin.Context) (*authmodels.ApplicationIdentity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*authmodels.ApplicationIdentity)
	return identity, ok
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("authorization header is missing")
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", fmt.Errorf("authorization scheme is not bearer")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("bearer token is empty")
	}
	return token, nil
}
