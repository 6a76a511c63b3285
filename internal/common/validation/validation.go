package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	// Границы длин полей профиля Telegram
	MinUsernameLength     = 4
	MaxUsernameLength     = 32
	MaxFirstNameLength    = 64
	MaxLastNameLength     = 64
	MaxLanguageCodeLength = 35

	StatusActive = "active"
	StatusBanned = "banned"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Telegram username: буквы, цифры, подчеркивания. Коллекционные имена бывают из 4 символов.
var telegramUsernameRegex = regexp.MustCompile(
	fmt.Sprintf(`^[a-zA-Z0-9_]{%d,%d}$`, MinUsernameLength, MaxUsernameLength))

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("tgusername", func(fl validator.FieldLevel) bool {
			return IsValidUsername(fl.Field().String())
		})
		_ = validate.RegisterValidation("tgfirstname", maxRunes(MaxFirstNameLength))
		_ = validate.RegisterValidation("tglastname", maxRunes(MaxLastNameLength))
		_ = validate.RegisterValidation("tglanguage", maxRunes(MaxLanguageCodeLength))
	})
	return validate
}

func maxRunes(limit int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) <= limit
	}
}

// Struct проверяет структуру по тегам `validate` и возвращает читаемую ошибку
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed '%s=%s'", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed '%s'", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// IsValidUsername проверяет Telegram username
func IsValidUsername(username string) bool {
	return telegramUsernameRegex.MatchString(username)
}

// ValidateUserStatus проверяет статус пользователя
func ValidateUserStatus(status string) error {
	switch status {
	case StatusActive, StatusBanned:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (allowed: %s, %s)", status, StatusActive, StatusBanned)
	}
}

// ValidateUserRole проверяет роль пользователя
func ValidateUserRole(role string) error {
	switch role {
	case RoleUser, RoleAdmin:
		return nil
	default:
		return fmt.Errorf("invalid role: %s (allowed: %s, %s)", role, RoleUser, RoleAdmin)
	}
}
