package models

const TokenTypeBearer = "bearer"

// LoginRequest представляет тело запроса на вход
// @Description Сырая строка initData из Telegram.WebApp.initData
type LoginRequest struct {
	InitData string `json:"init_data" binding:"required" example:"query_id=AAHdF6IQAAAAAN0XohDhrKY&user=%7B%22id%22%3A123456789%7D&auth_date=1663224242&hash=..."`
}

// LoginResult представляет ответ при успешном входе
// @Description Bearer-токен доступа
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"86400"`
}
