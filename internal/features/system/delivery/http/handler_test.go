package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora-backend/internal/platform/monitoring"
)

func serve(t *testing.T, h *SystemHandler, path string) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestRootAndLive(t *testing.T) {
	h := NewSystemHandler("agora-backend", "1.0.0", nil)

	code, body := serve(t, h, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "/health", body["health"])

	code, body = serve(t, h, "/health/live")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alive", body["status"])
}

func TestHealthReportsUptime(t *testing.T) {
	h := NewSystemHandler("agora-backend", "1.0.0", nil)
	h.startedAt = time.Unix(1700000000, 0)
	h.now = func() time.Time { return h.startedAt.Add(90 * time.Second) }

	code, body := serve(t, h, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, 90.0, body["uptime"])
	assert.Equal(t, 1700000090.0, body["timestamp"])
}

func TestReady(t *testing.T) {
	ok := HealthCheckFunc(func(context.Context) error { return nil })
	down := HealthCheckFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	code, body := serve(t, NewSystemHandler("a", "1", map[string]HealthChecker{"postgres": ok}), "/health/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, map[string]interface{}{"postgres": "ok"}, body["checks"])

	code, body = serve(t, NewSystemHandler("a", "1", map[string]HealthChecker{"postgres": ok, "redis": down}), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, map[string]interface{}{"postgres": "ok", "redis": "unavailable"}, body["checks"])
}

func TestInfoListsAreas(t *testing.T) {
	code, body := serve(t, NewSystemHandler("agora-backend", "1.0.0", nil), "/api/v1/info")
	assert.Equal(t, http.StatusOK, code)

	endpoints, ok := body["endpoints"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/api/v1/auth", endpoints["auth"])
	assert.Len(t, endpoints, 8)
}

type staticMetrics struct {
	summary monitoring.Summary
	err     error
}

func (s staticMetrics) Summary() (monitoring.Summary, error) {
	return s.summary, s.err
}

func TestMetricsSummary(t *testing.T) {
	expectedKeys := []string{"requests_total", "errors_total", "active_users", "active_negotiations", "successful_matches"}

	code, body := serve(t, NewSystemHandler("a", "1", nil), "/api/v1/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body, len(expectedKeys))
	for _, key := range expectedKeys {
		assert.Equal(t, 0.0, body[key], key)
	}

	h := NewSystemHandler("a", "1", nil).WithMetrics(staticMetrics{
		summary: monitoring.Summary{RequestsTotal: 12, ErrorsTotal: 2, ActiveUsers: 3},
	})
	code, body = serve(t, h, "/api/v1/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 12.0, body["requests_total"])
	assert.Equal(t, 2.0, body["errors_total"])
	assert.Equal(t, 3.0, body["active_users"])
	assert.Equal(t, 0.0, body["active_negotiations"])
	assert.Equal(t, 0.0, body["successful_matches"])
}

func TestMetricsSummaryFailure(t *testing.T) {
	h := NewSystemHandler("a", "1", nil).WithMetrics(staticMetrics{err: errors.New("gather failed")})

	code, body := serve(t, h, "/api/v1/metrics")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, map[string]interface{}{"detail": "Внутренняя ошибка сервера"}, body)
}
