package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode представляет код ошибки
type ErrorCode string

const (
	// Общие ошибки
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeUnavailable     ErrorCode = "SERVICE_UNAVAILABLE"

	// Ошибки аутентификации
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid ErrorCode = "TOKEN_INVALID"

	// Ошибки хранилищ
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeCacheError    ErrorCode = "CACHE_ERROR"
)

// Сообщения, которые видит клиент
const (
	MsgAuthFailed      = "Ошибка аутентификации"
	MsgTokenExpired    = "Токен истек"
	MsgTokenInvalid    = "Невалидный токен"
	MsgValidation      = "Ошибка валидации данных"
	MsgNotFound        = "Ресурс не найден"
	MsgTooManyRequests = "Слишком много запросов"
	MsgInternal        = "Внутренняя ошибка сервера"
)

// AppError представляет типизированную ошибку приложения.
// Message уходит клиенту, всё остальное - только в лог.
type AppError struct {
	Code      ErrorCode
	Message   string
	Details   map[string]interface{}
	Context   map[string]string
	Stack     []string
	Timestamp time.Time
	RequestID string
	UserID    int64
	Cause     error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsUnauthorized проверяет, является ли ошибка ошибкой аутентификации
func (e *AppError) IsUnauthorized() bool {
	return e.Code == ErrCodeUnauthorized ||
		e.Code == ErrCodeTokenExpired ||
		e.Code == ErrCodeTokenInvalid
}

// IsInternal проверяет, является ли ошибка внутренней ошибкой
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal ||
		e.Code == ErrCodeDatabaseError ||
		e.Code == ErrCodeCacheError ||
		e.Code == ErrCodeUnavailable
}

func (e *AppError) WithContext(key, value string) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

func (e *AppError) WithUserID(userID int64) *AppError {
	e.UserID = userID
	return e
}

// WithStack добавляет стек вызовов к ошибке
func (e *AppError) WithStack() *AppError {
	e.Stack = getStackTrace()
	return e
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

func getStackTrace() []string {
	var stack []string
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		if strings.Contains(fn.Name(), "internal/common/errors") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		if len(stack) >= 10 {
			break
		}
	}
	return stack
}

// Конструкторы для часто используемых ошибок

func NewAuthFailedError(cause error) *AppError {
	return Wrap(cause, ErrCodeUnauthorized, MsgAuthFailed)
}

func NewTokenExpiredError(cause error) *AppError {
	return Wrap(cause, ErrCodeTokenExpired, MsgTokenExpired)
}

func NewTokenInvalidError(cause error) *AppError {
	return Wrap(cause, ErrCodeTokenInvalid, MsgTokenInvalid)
}

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, MsgValidation).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewNotFoundError(path string) *AppError {
	return New(ErrCodeNotFound, MsgNotFound).WithDetail("path", path)
}

func NewRateLimitError(key string, retryAfter time.Duration) *AppError {
	return New(ErrCodeTooManyRequests, MsgTooManyRequests).
		WithDetail("key", key).
		WithDetail("retry_after", retryAfter.String())
}

func NewInternalError(cause error) *AppError {
	return Wrap(cause, ErrCodeInternal, MsgInternal)
}

func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, MsgInternal).
		WithDetail("operation", operation)
}

// AsAppError ищет AppError в цепочке ошибок
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
