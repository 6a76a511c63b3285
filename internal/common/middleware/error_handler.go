package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agora-backend/internal/common/errors"
)

const (
	HeaderRequestID = "X-Request-ID"

	RequestIDKey = "request_id"
	UserIDKey    = "user_id"
)

// ErrorResponse - тело любой ошибки API
type ErrorResponse struct {
	Detail string `json:"detail" example:"Ошибка аутентификации"`
}

// RequestID middleware для добавления ID запроса
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// Recovery превращает панику обработчика в 500 без деталей для клиента
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		appErr := errors.NewInternalError(fmt.Errorf("panic: %v", recovered)).WithStack()

		log.Error().
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Strs("stack", appErr.Stack).
			Msg("Panic recovered")

		RespondError(c, appErr)
	})
}

// ErrorHandler отправляет последнюю ошибку из c.Errors, если обработчик сам ничего не ответил
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		RespondError(c, c.Errors.Last().Err)
	}
}

// NotFound - обработчик для неизвестных маршрутов
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		RespondError(c, errors.NewNotFoundError(c.Request.URL.Path))
	}
}

// RespondError отправляет {"detail": ...} со статусом по коду ошибки.
// Ошибки не из пакета errors считаются внутренними.
func RespondError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.NewInternalError(err)
	}

	appErr.WithRequestID(getRequestID(c)).
		WithContext("path", c.Request.URL.Path).
		WithContext("method", c.Request.Method)

	logError(c, appErr)

	if appErr.Code == errors.ErrCodeTokenExpired || appErr.Code == errors.ErrCodeTokenInvalid {
		c.Header("WWW-Authenticate", "Bearer")
	}

	c.AbortWithStatusJSON(getHTTPStatusCode(appErr), ErrorResponse{Detail: appErr.Message})
}

// getHTTPStatusCode возвращает HTTP статус код для ошибки
func getHTTPStatusCode(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeBadRequest:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized, errors.ErrCodeTokenExpired, errors.ErrCodeTokenInvalid:
		return http.StatusUnauthorized
	case errors.ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// logError логирует ошибку с контекстом
func logError(c *gin.Context, appErr *errors.AppError) {
	evt := log.Error()
	msg := "Application error occurred"
	switch {
	case appErr.IsInternal():
		msg = "Internal error occurred"
	case appErr.IsUnauthorized():
		evt, msg = log.Warn(), "Unauthorized access attempt"
	case appErr.Code == errors.ErrCodeValidation:
		evt, msg = log.Info(), "Validation error"
	case appErr.Code == errors.ErrCodeNotFound:
		evt, msg = log.Info(), "Resource not found"
	case appErr.Code == errors.ErrCodeTooManyRequests:
		evt, msg = log.Warn(), "Rate limit exceeded"
	}

	evt = evt.
		Str("request_id", appErr.RequestID).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code))

	if userID := getUserID(c); userID != 0 {
		evt = evt.Int64("user_id", userID)
	} else if appErr.UserID != 0 {
		evt = evt.Int64("user_id", appErr.UserID)
	}
	if len(appErr.Details) > 0 {
		evt = evt.Interface("details", appErr.Details)
	}
	if appErr.Cause != nil {
		evt = evt.Err(appErr.Cause)
	}

	evt.Msg(msg)
}

// getRequestID получает ID запроса из контекста
func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}

// getUserID получает ID пользователя из контекста
func getUserID(c *gin.Context) int64 {
	if userID, exists := c.Get(UserIDKey); exists {
		if id, ok := userID.(int64); ok {
			return id
		}
	}
	return 0
}
