package launchdata_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora-backend/internal/features/auth/launchdata"
	"agora-backend/internal/features/auth/launchdata/launchdatatest"
	"agora-backend/internal/features/auth/models"
)

var now = time.Unix(1700000000, 0)

func newVerifier() *launchdata.Verifier {
	return launchdata.NewVerifier(launchdatatest.BotToken, launchdata.WithClock(func() time.Time { return now }))
}

func TestVerifyValid(t *testing.T) {
	raw := launchdatatest.Signed(launchdatatest.DefaultUser(), now.Add(-time.Minute), launchdatatest.BotToken)

	identity, err := newVerifier().Verify(raw)
	require.NoError(t, err)

	assert.Equal(t, &models.VerifiedIdentity{
		TelegramID:   123456789,
		FirstName:    "Test",
		LastName:     "User",
		Username:     "testuser",
		LanguageCode: "en",
	}, identity)
}

func TestVerifyRejectsMissingHash(t *testing.T) {
	raw := launchdata.Encode(launchdatatest.Fields(launchdatatest.DefaultUser(), now))

	_, err := newVerifier().Verify(raw)
	assert.True(t, errors.Is(err, models.ErrInvalidSignature))
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	base := launchdata.Encode(launchdatatest.Fields(launchdatatest.DefaultUser(), now))

	for _, hash := range []string{"", "not-hex", "abcd", strings.Repeat("a", 63)} {
		_, err := newVerifier().Verify(base + "&hash=" + hash)
		assert.True(t, errors.Is(err, models.ErrInvalidSignature), hash)
	}
}

func TestVerifyRejectsWrongBotToken(t *testing.T) {
	raw := launchdatatest.Signed(launchdatatest.DefaultUser(), now, "987654321:other-bot")

	_, err := newVerifier().Verify(raw)
	assert.True(t, errors.Is(err, models.ErrInvalidSignature))
}

func TestVerifyDetectsTampering(t *testing.T) {
	fields := launchdatatest.Fields(launchdatatest.DefaultUser(), now)
	hash := launchdata.Sign(fields, launchdatatest.BotToken)

	tampered := map[string]string{
		"query_id":  "AAHdF6IQAAAAAN0XohDhrKZ",
		"user":      `{"id":1,"first_name":"Mallory"}`,
		"auth_date": "1700000001",
	}

	for key, value := range tampered {
		t.Run(key, func(t *testing.T) {
			altered := make([]launchdata.Field, len(fields))
			copy(altered, fields)
			for i := range altered {
				if altered[i].Key == key {
					altered[i].Value = value
				}
			}
			altered = append(altered, launchdata.Field{Key: launchdata.FieldHash, Value: hash})

			_, err := newVerifier().Verify(launchdata.Encode(altered))
			assert.True(t, errors.Is(err, models.ErrInvalidSignature))
		})
	}

	t.Run("extra field", func(t *testing.T) {
		altered := append(append([]launchdata.Field{}, fields...),
			launchdata.Field{Key: "start_param", Value: "injected"},
			launchdata.Field{Key: launchdata.FieldHash, Value: hash})

		_, err := newVerifier().Verify(launchdata.Encode(altered))
		assert.True(t, errors.Is(err, models.ErrInvalidSignature))
	})
}

func TestVerifyFreshness(t *testing.T) {
	cases := []struct {
		name     string
		authDate time.Time
		wantErr  error
	}{
		{name: "fresh", authDate: now.Add(-time.Hour)},
		{name: "at window boundary", authDate: now.Add(-24 * time.Hour)},
		{name: "25 hours old", authDate: now.Add(-25 * time.Hour), wantErr: models.ErrExpired},
		{name: "within clock skew", authDate: now.Add(30 * time.Second)},
		{name: "in the future", authDate: now.Add(2 * time.Minute), wantErr: models.ErrExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := launchdatatest.Signed(launchdatatest.DefaultUser(), tc.authDate, launchdatatest.BotToken)

			_, err := newVerifier().Verify(raw)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}

func TestVerifyCustomWindow(t *testing.T) {
	v := launchdata.NewVerifier(launchdatatest.BotToken,
		launchdata.WithClock(func() time.Time { return now }),
		launchdata.WithMaxAge(time.Hour),
		launchdata.WithClockSkew(0),
	)

	_, err := v.Verify(launchdatatest.Signed(launchdatatest.DefaultUser(), now.Add(-2*time.Hour), launchdatatest.BotToken))
	assert.True(t, errors.Is(err, models.ErrExpired))

	_, err = v.Verify(launchdatatest.Signed(launchdatatest.DefaultUser(), now.Add(time.Second), launchdatatest.BotToken))
	assert.True(t, errors.Is(err, models.ErrExpired))
}

func TestVerifyFieldOrderIndependence(t *testing.T) {
	fields := launchdatatest.Fields(launchdatatest.DefaultUser(), now)
	reversed := make([]launchdata.Field, 0, len(fields))
	for i := len(fields) - 1; i >= 0; i-- {
		reversed = append(reversed, fields[i])
	}

	v := newVerifier()
	first, err := v.Verify(launchdatatest.SignFields(fields, launchdatatest.BotToken))
	require.NoError(t, err)
	second, err := v.Verify(launchdatatest.SignFields(reversed, launchdatatest.BotToken))
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// hash may also appear first
	hashFirst := append([]launchdata.Field{{Key: launchdata.FieldHash, Value: launchdata.Sign(fields, launchdatatest.BotToken)}}, fields...)
	_, err = v.Verify(launchdata.Encode(hashFirst))
	assert.NoError(t, err)
}

func TestVerifyValueContainingEquals(t *testing.T) {
	fields := append(launchdatatest.Fields(launchdatatest.DefaultUser(), now),
		launchdata.Field{Key: "start_param", Value: "ref=abc"})
	hash := launchdata.Sign(fields, launchdatatest.BotToken)

	raw := launchdata.Encode(fields[:len(fields)-1]) + "&start_param=ref=abc&hash=" + hash

	identity, err := newVerifier().Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), identity.TelegramID)
}

func TestVerifyMalformedUser(t *testing.T) {
	authDate := []launchdata.Field{{Key: "auth_date", Value: "1700000000"}}

	cases := map[string][]launchdata.Field{
		"missing user":    authDate,
		"invalid json":    append([]launchdata.Field{{Key: "user", Value: "{not json"}}, authDate...),
		"user without id": append([]launchdata.Field{{Key: "user", Value: `{"first_name":"Nobody"}`}}, authDate...),
	}

	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			raw := launchdatatest.SignFields(fields, launchdatatest.BotToken)

			_, err := newVerifier().Verify(raw)
			assert.True(t, errors.Is(err, models.ErrMalformedPayload), "got %v", err)
		})
	}
}

func TestVerifyMissingAuthDate(t *testing.T) {
	raw := launchdatatest.SignFields([]launchdata.Field{
		{Key: "user", Value: `{"id":123456789}`},
	}, launchdatatest.BotToken)

	_, err := newVerifier().Verify(raw)
	assert.True(t, errors.Is(err, models.ErrMalformedPayload))
}

func TestVerifyUnsignedOriginalSample(t *testing.T) {
	raw := "query_id=AAHdF6IQAAAAAN0XohDhrKY&user=%7B%22id%22%3A123456789%2C%22first_name%22%3A%22Test%22%7D&auth_date=1663224242&hash=c8a3b9e3d8e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0"

	_, err := newVerifier().Verify(raw)
	assert.True(t, errors.Is(err, models.ErrInvalidSignature))
}
