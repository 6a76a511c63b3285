package launchdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"

	"agora-backend/internal/features/auth/models"
)

const (
	DefaultMaxAge    = 24 * time.Hour
	DefaultClockSkew = time.Minute

	webAppDataKey = "WebAppData"
)

// Verifier проверяет подпись и свежесть initData. Не хранит изменяемого
// состояния и безопасен для конкурентного использования.
type Verifier struct {
	secret    []byte
	maxAge    time.Duration
	clockSkew time.Duration
	now       func() time.Time
}

type VerifierOption func(*Verifier)

func WithMaxAge(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		if d > 0 {
			v.maxAge = d
		}
	}
}

func WithClockSkew(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		if d >= 0 {
			v.clockSkew = d
		}
	}
}

func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

func NewVerifier(botToken string, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		secret:    deriveSecret(botToken),
		maxAge:    DefaultMaxAge,
		clockSkew: DefaultClockSkew,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify разбирает и проверяет initData, возвращая личность из подписанного поля user.
func (v *Verifier) Verify(raw string) (*models.VerifiedIdentity, error) {
	data, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	hash, ok := data.Get(FieldHash)
	if !ok || hash == "" {
		return nil, models.NewAuthError(models.KindInvalidSignature, "hash is missing", nil)
	}

	provided, err := hex.DecodeString(hash)
	if err != nil || len(provided) != sha256.Size {
		return nil, models.NewAuthError(models.KindInvalidSignature, "hash is malformed", err)
	}

	if !hmac.Equal(provided, v.sign(data.DataCheckString())) {
		return nil, models.NewAuthError(models.KindInvalidSignature, "hash mismatch", nil)
	}

	authDate, err := data.AuthDate()
	if err != nil {
		return nil, err
	}

	now := v.now()
	if now.Sub(authDate) > v.maxAge {
		return nil, models.NewAuthError(models.KindExpired, "auth_date is older than "+v.maxAge.String(), nil)
	}
	if authDate.Sub(now) > v.clockSkew {
		return nil, models.NewAuthError(models.KindExpired, "auth_date is in the future", nil)
	}

	if _, ok := data.Get(FieldUser); !ok {
		return nil, models.NewAuthError(models.KindMalformedPayload, "user is missing", nil)
	}

	parsed, err := initdata.Parse(raw)
	if err != nil {
		return nil, models.NewAuthError(models.KindMalformedPayload, "decode launch data", err)
	}
	if parsed.User.ID == 0 {
		return nil, models.NewAuthError(models.KindMalformedPayload, "user has no id", nil)
	}

	return &models.VerifiedIdentity{
		TelegramID:   parsed.User.ID,
		FirstName:    parsed.User.FirstName,
		LastName:     parsed.User.LastName,
		Username:     parsed.User.Username,
		LanguageCode: parsed.User.LanguageCode,
		IsPremium:    parsed.User.IsPremium,
		PhotoURL:     parsed.User.PhotoURL,
	}, nil
}

func (v *Verifier) sign(checkString string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(checkString))
	return mac.Sum(nil)
}

// Sign считает hex-подпись набора полей так же, как это делает Telegram.
// Поле hash, если оно есть, игнорируется.
func Sign(fields []Field, botToken string) string {
	mac := hmac.New(sha256.New, deriveSecret(botToken))
	mac.Write([]byte(dataCheckString(fields)))
	return hex.EncodeToString(mac.Sum(nil))
}

// deriveSecret: HMAC-SHA256 токена бота с ключом "WebAppData"
func deriveSecret(botToken string) []byte {
	mac := hmac.New(sha256.New, []byte(webAppDataKey))
	mac.Write([]byte(botToken))
	return mac.Sum(nil)
}
