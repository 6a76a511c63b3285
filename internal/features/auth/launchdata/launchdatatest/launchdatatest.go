// Package launchdatatest builds correctly signed launch data for tests.
package launchdatatest

import (
	"encoding/json"
	"strconv"
	"time"

	"agora-backend/internal/features/auth/launchdata"
)

const BotToken = "123456789:AAF-test-bot-token-for-unit-tests"

type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

func DefaultUser() User {
	return User{
		ID:           123456789,
		FirstName:    "Test",
		LastName:     "User",
		Username:     "testuser",
		LanguageCode: "en",
	}
}

// Fields возвращает неподписанные поля initData для пользователя и времени авторизации
func Fields(u User, authDate time.Time) []launchdata.Field {
	userJSON, err := json.Marshal(u)
	if err != nil {
		panic(err)
	}
	return []launchdata.Field{
		{Key: "query_id", Value: "AAHdF6IQAAAAAN0XohDhrKY"},
		{Key: "user", Value: string(userJSON)},
		{Key: "auth_date", Value: strconv.FormatInt(authDate.Unix(), 10)},
	}
}

// SignFields добавляет к полям hash и кодирует их в строку initData
func SignFields(fields []launchdata.Field, botToken string) string {
	signed := append(append([]launchdata.Field{}, fields...), launchdata.Field{
		Key:   launchdata.FieldHash,
		Value: launchdata.Sign(fields, botToken),
	})
	return launchdata.Encode(signed)
}

// Signed возвращает подписанную строку initData
func Signed(u User, authDate time.Time, botToken string) string {
	return SignFields(Fields(u, authDate), botToken)
}
