package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agora-backend/internal/common/errors"
	"agora-backend/internal/common/middleware"
	"agora-backend/internal/features/auth/models"
	"agora-backend/internal/features/auth/service"
)

type AuthHandler struct {
	service    service.AuthService
	loginLimit gin.HandlerFunc
}

// NewAuthHandler создает обработчик. loginRPS <= 0 отключает лимит на вход.
func NewAuthHandler(svc service.AuthService, loginRPS float64, loginBurst int) *AuthHandler {
	return &AuthHandler{
		service:    svc,
		loginLimit: middleware.RateLimit(loginRPS, loginBurst),
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.loginLimit, h.login)
		auth.GET("/me", middleware.RequireBearer(h.service), h.me)
	}
}

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer-токен из /auth/login в формате "Bearer <token>"

// @Summary Вход через Telegram Mini App
// @Description Проверяет подпись initData и выдает bearer-токен
// @Tags auth
// @Accept json
// @Produce json
// @Param input body models.LoginRequest true "initData из Telegram.WebApp"
// @Success 200 {object} models.LoginResult
// @Failure 401 {object} middleware.ErrorResponse "Ошибка аутентификации"
// @Failure 422 {object} middleware.ErrorResponse "Ошибка валидации данных"
// @Failure 429 {object} middleware.ErrorResponse "Слишком много запросов"
// @Router /auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("init_data", err.Error()))
		return
	}

	result, err := h.service.Login(c.Request.Context(), input.InitData)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Текущий пользователь
// @Description Возвращает пользователя, вшитого в bearer-токен
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ApplicationIdentity
// @Failure 401 {object} middleware.ErrorResponse "Невалидный токен"
// @Router /auth/me [get]
func (h *AuthHandler) me(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		_ = c.Error(errors.NewTokenInvalidError(nil))
		return
	}

	c.JSON(http.StatusOK, identity)
}
