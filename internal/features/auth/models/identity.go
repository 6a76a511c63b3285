package models

// VerifiedIdentity - личность пользователя Telegram, извлеченная из подписанного
// поля user. Создается только верификатором initData.
type VerifiedIdentity struct {
	TelegramID   int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// ApplicationIdentity представляет пользователя платформы
// @Description Пользователь платформы, вшитый в bearer-токен
type ApplicationIdentity struct {
	ID           int64  `json:"id" example:"123456789"`
	FirstName    string `json:"first_name" example:"Test"`
	LastName     string `json:"last_name" example:"User"`
	Username     string `json:"username" example:"testuser"`
	LanguageCode string `json:"language_code" example:"en"`
	Role         string `json:"role,omitempty" example:"user" enums:"user,admin"`
	Status       string `json:"status,omitempty" example:"active" enums:"active,banned"`
}
