package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"agora-backend/internal/common/middleware"
	"agora-backend/internal/platform/monitoring"
)

const readinessTimeout = 2 * time.Second

// HealthChecker - зависимость, готовность которой проверяет /health/ready
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) HealthCheck(ctx context.Context) error {
	return f(ctx)
}

// MetricsSource отдает сводку счетчиков для /api/v1/metrics
type MetricsSource interface {
	Summary() (monitoring.Summary, error)
}

type SystemHandler struct {
	name      string
	version   string
	startedAt time.Time
	checks    map[string]HealthChecker
	metrics   MetricsSource
	now       func() time.Time
}

func NewSystemHandler(name, version string, checks map[string]HealthChecker) *SystemHandler {
	if checks == nil {
		checks = map[string]HealthChecker{}
	}
	return &SystemHandler{
		name:      name,
		version:   version,
		startedAt: time.Now(),
		checks:    checks,
		now:       time.Now,
	}
}

// WithMetrics подключает источник сводки. Без него /api/v1/metrics отдает нули.
func (h *SystemHandler) WithMetrics(src MetricsSource) *SystemHandler {
	h.metrics = src
	return h
}

// RegisterRoutes регистрирует служебные маршруты на корне и /api/v1
func (h *SystemHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.root)
	router.GET("/health", h.health)
	router.GET("/health/live", h.live)
	router.GET("/health/ready", h.ready)
	router.GET("/api/v1/info", h.info)
	router.GET("/api/v1/metrics", h.metricsSummary)
}

// @Summary Корневой эндпоинт
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *SystemHandler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": h.name + " is running",
		"version": h.version,
		"docs":    "/docs/index.html",
		"health":  "/health",
	})
}

// @Summary Состояние сервиса
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *SystemHandler) health(c *gin.Context) {
	now := h.now()
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": float64(now.Unix()) + float64(now.Nanosecond())/1e9,
		"uptime":    now.Sub(h.startedAt).Seconds(),
	})
}

// @Summary Проверка, что процесс жив
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *SystemHandler) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// @Summary Готовность к работе
// @Description Проверяет доступность подключенных хранилищ
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (h *SystemHandler) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name].HealthCheck(ctx); err != nil {
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	body := gin.H{"status": "ready", "checks": results}
	if status != http.StatusOK {
		body["status"] = "not ready"
	}
	c.JSON(status, body)
}

// @Summary Информация об API
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/info [get]
func (h *SystemHandler) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        h.name,
		"version":     h.version,
		"description": "Платформа B2B-сотрудничества",
		"endpoints": gin.H{
			"auth":       "/api/v1/auth",
			"profile":    "/api/v1/profile",
			"match":      "/api/v1/match",
			"logistics":  "/api/v1/logistics",
			"contract":   "/api/v1/contract",
			"ai":         "/api/v1/ai",
			"reputation": "/api/v1/reputation",
			"blockchain": "/api/v1/blockchain",
		},
	})
}

// @Summary Базовые метрики приложения
// @Tags system
// @Produce json
// @Success 200 {object} monitoring.Summary
// @Failure 500 {object} middleware.ErrorResponse
// @Router /api/v1/metrics [get]
func (h *SystemHandler) metricsSummary(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusOK, monitoring.Summary{})
		return
	}

	summary, err := h.metrics.Summary()
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
