package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora-backend/internal/common/middleware"
	"agora-backend/internal/features/auth/launchdata"
	"agora-backend/internal/features/auth/launchdata/launchdatatest"
	"agora-backend/internal/features/auth/models"
	"agora-backend/internal/features/auth/service"
	"agora-backend/internal/features/auth/token"
	userservice "agora-backend/internal/features/user/service"
	"agora-backend/internal/platform/monitoring"
)

var now = time.Unix(1700000000, 0)

func setupRouter(t *testing.T, loginRPS float64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := func() time.Time { return now }
	issuer, err := token.NewIssuer([]byte("0123456789abcdef0123456789abcdef"), token.WithClock(clock))
	require.NoError(t, err)

	svc := service.NewAuthService(
		launchdata.NewVerifier(launchdatatest.BotToken, launchdata.WithClock(clock)),
		userservice.NewPassThroughResolver(),
		issuer,
		monitoring.Nop{},
		time.Second,
	)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.ErrorHandler())
	r.NoRoute(middleware.NotFound())
	NewAuthHandler(svc, loginRPS, 1).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func loginBody(t *testing.T, initData string) string {
	t.Helper()
	data, err := json.Marshal(models.LoginRequest{InitData: initData})
	require.NoError(t, err)
	return string(data)
}

func getMe(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLoginAndMe(t *testing.T) {
	r := setupRouter(t, 0)
	raw := launchdatatest.Signed(launchdatatest.DefaultUser(), now.Add(-time.Minute), launchdatatest.BotToken)

	rec := postLogin(r, loginBody(t, raw))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "bearer", result.TokenType)
	assert.Equal(t, int64(86400), result.ExpiresIn)
	require.NotEmpty(t, result.AccessToken)

	rec = getMe(r, "Bearer "+result.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var identity models.ApplicationIdentity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &identity))
	assert.Equal(t, int64(123456789), identity.ID)
	assert.Equal(t, "Test", identity.FirstName)
	assert.Equal(t, "testuser", identity.Username)
}

func TestLoginUnsigned(t *testing.T) {
	r := setupRouter(t, 0)
	raw := "query_id=AAHdF6IQAAAAAN0XohDhrKY&user=%7B%22id%22%3A123456789%2C%22first_name%22%3A%22Test%22%7D&auth_date=1700000000&hash=c8a3b9e3d8e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0"

	rec := postLogin(r, loginBody(t, raw))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Ошибка аутентификации"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "access_token")
}

func TestLoginExpiredLooksLikeAnyFailure(t *testing.T) {
	r := setupRouter(t, 0)
	raw := launchdatatest.Signed(launchdatatest.DefaultUser(), now.Add(-25*time.Hour), launchdatatest.BotToken)

	rec := postLogin(r, loginBody(t, raw))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Ошибка аутентификации"}`, rec.Body.String())
}

func TestLoginValidation(t *testing.T) {
	r := setupRouter(t, 0)

	for name, body := range map[string]string{
		"empty object": `{}`,
		"empty value":  `{"init_data":""}`,
		"wrong type":   `{"init_data":42}`,
		"not json":     `init_data=abc`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := postLogin(r, body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.JSONEq(t, `{"detail":"Ошибка валидации данных"}`, rec.Body.String())
		})
	}
}

func TestLoginRateLimited(t *testing.T) {
	r := setupRouter(t, 0.001)
	body := loginBody(t, "hash=00")

	first := postLogin(r, body)
	assert.Equal(t, http.StatusUnauthorized, first.Code)

	second := postLogin(r, body)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"detail":"Слишком много запросов"}`, second.Body.String())
}

func TestMeRejectsBadTokens(t *testing.T) {
	r := setupRouter(t, 0)

	for _, header := range []string{"", "Bearer not-a-token", "Basic abc"} {
		rec := getMe(r, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"detail":"Невалидный токен"}`, rec.Body.String())
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	}
}

func TestMeExpiredToken(t *testing.T) {
	issuer, err := token.NewIssuer([]byte("0123456789abcdef0123456789abcdef"),
		token.WithClock(func() time.Time { return now.Add(-48 * time.Hour) }))
	require.NoError(t, err)
	old, _, err := issuer.Issue(&models.ApplicationIdentity{ID: 123456789}, 0)
	require.NoError(t, err)

	rec := getMe(setupRouter(t, 0), "Bearer "+old)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Токен истек"}`, rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	setupRouter(t, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/unknown", bytes.NewReader(nil)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Ресурс не найден"}`, rec.Body.String())
}
