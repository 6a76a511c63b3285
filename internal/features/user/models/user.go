package models

import (
	"time"

	"agora-backend/internal/common/validation"
)

// User представляет запись реестра пользователей платформы
// @Description Пользователь платформы
type User struct {
	ID           int64     `json:"id" example:"123456789" validate:"required,gt=0"`
	Username     string    `json:"username" example:"johndoe" validate:"omitempty,tgusername"`
	FirstName    string    `json:"first_name" example:"John" validate:"tgfirstname"`
	LastName     string    `json:"last_name" example:"Doe" validate:"tglastname"`
	LanguageCode string    `json:"language_code" example:"en" validate:"tglanguage"`
	Role         string    `json:"role" example:"user" enums:"user,admin" validate:"oneof=user admin"`
	Status       string    `json:"status" example:"active" enums:"active,banned" validate:"oneof=active banned"`
	CreatedAt    time.Time `json:"created_at" example:"2024-03-15T14:30:00Z"`
	UpdatedAt    time.Time `json:"updated_at" example:"2024-03-15T14:30:00Z"`
}

// IsBanned возвращает true, если пользователь заблокирован
func (u *User) IsBanned() bool {
	return u.Status == validation.StatusBanned
}

// CheckStored проверяет роль и статус записи, прочитанной из хранилища
func (u *User) CheckStored() error {
	if err := validation.ValidateUserRole(u.Role); err != nil {
		return err
	}
	return validation.ValidateUserStatus(u.Status)
}
