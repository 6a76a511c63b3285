package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"agora-backend/internal/features/auth/models"
)

const DefaultTTL = 24 * time.Hour

// SessionClaims - содержимое bearer-токена. Снимок личности фиксируется при
// выпуске и не обновляется до перевыпуска токена.
type SessionClaims struct {
	UserInfo models.ApplicationIdentity `json:"user_info"`
	jwt.RegisteredClaims
}

// Issuer выпускает и проверяет HS256-токены. Сервер не хранит сессий.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

type IssuerOption func(*Issuer)

func WithTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

func WithIssuer(name string) IssuerOption {
	return func(i *Issuer) {
		i.issuer = name
	}
}

func NewIssuer(secret []byte, opts ...IssuerOption) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret is empty")
	}

	i := &Issuer{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}

	// jwt/v5 считает токен истекшим уже при now == exp
	i.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(i.now),
	)

	return i, nil
}

// Issue подписывает снимок личности. ttl <= 0 означает время жизни по умолчанию.
func (i *Issuer) Issue(identity *models.ApplicationIdentity, ttl time.Duration) (string, *SessionClaims, error) {
	if identity == nil {
		return "", nil, errors.New("identity is nil")
	}
	if ttl <= 0 {
		ttl = i.ttl
	}

	issuedAt := i.now().Truncate(time.Second)
	claims := &SessionClaims{
		UserInfo: *identity,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(identity.ID, 10),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, claims, nil
}

// Validate проверяет подпись и срок действия токена.
func (i *Issuer) Validate(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := i.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.NewAuthError(models.KindTokenExpired, "token is expired", err)
		}
		return nil, models.NewAuthError(models.KindTokenInvalid, "token rejected", err)
	}
	if !parsed.Valid {
		return nil, models.NewAuthError(models.KindTokenInvalid, "token is not valid", nil)
	}

	if claims.Subject != strconv.FormatInt(claims.UserInfo.ID, 10) {
		return nil, models.NewAuthError(models.KindTokenInvalid, "subject does not match user_info", nil)
	}

	return claims, nil
}
