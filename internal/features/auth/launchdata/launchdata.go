// Package launchdata parses and verifies Telegram Mini App launch data
// (window.Telegram.WebApp.initData).
package launchdata

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"agora-backend/internal/features/auth/models"
)

const (
	FieldHash     = "hash"
	FieldAuthDate = "auth_date"
	FieldUser     = "user"
)

// Field - одна пара key=value в порядке появления в строке.
type Field struct {
	Key   string
	Value string
}

// LaunchData - упорядоченный набор декодированных полей initData.
type LaunchData struct {
	fields []Field
}

// Parse разбирает строку вида k1=v1&k2=v2. Каждая пара делится только по первому
// '=', поэтому значения могут содержать '='. Пустые сегменты пропускаются.
func Parse(raw string) (*LaunchData, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, models.NewAuthError(models.KindMalformedPayload, "launch data is empty", nil)
	}

	segments := strings.Split(raw, "&")
	fields := make([]Field, 0, len(segments))
	seen := make(map[string]struct{}, len(segments))

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		rawKey, rawValue, _ := strings.Cut(segment, "=")

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, models.NewAuthError(models.KindMalformedPayload, "invalid key encoding", err)
		}
		if key == "" {
			return nil, models.NewAuthError(models.KindMalformedPayload, "empty key", nil)
		}
		if _, dup := seen[key]; dup {
			return nil, models.NewAuthError(models.KindMalformedPayload, "duplicate key "+strconv.Quote(key), nil)
		}

		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, models.NewAuthError(models.KindMalformedPayload, "invalid value encoding for "+strconv.Quote(key), err)
		}

		seen[key] = struct{}{}
		fields = append(fields, Field{Key: key, Value: value})
	}

	if len(fields) == 0 {
		return nil, models.NewAuthError(models.KindMalformedPayload, "launch data has no fields", nil)
	}

	return &LaunchData{fields: fields}, nil
}

// Get возвращает декодированное значение поля
func (d *LaunchData) Get(key string) (string, bool) {
	for _, f := range d.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Fields возвращает копию полей в исходном порядке
func (d *LaunchData) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// DataCheckString собирает строку проверки: все поля кроме hash,
// отсортированные по ключу, в виде key=value через '\n'.
func (d *LaunchData) DataCheckString() string {
	return dataCheckString(d.fields)
}

// AuthDate возвращает момент авторизации из поля auth_date (Unix, секунды)
func (d *LaunchData) AuthDate() (time.Time, error) {
	raw, ok := d.Get(FieldAuthDate)
	if !ok || raw == "" {
		return time.Time{}, models.NewAuthError(models.KindMalformedPayload, "auth_date is missing", nil)
	}

	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}, models.NewAuthError(models.KindMalformedPayload, "auth_date is not a unix timestamp", err)
	}

	return time.Unix(sec, 0), nil
}

func dataCheckString(fields []Field) string {
	pairs := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Key == FieldHash {
			continue
		}
		pairs = append(pairs, f)
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Key < pairs[j].Key
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// Encode собирает строку initData из полей в заданном порядке
func Encode(fields []Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, url.QueryEscape(f.Key)+"="+url.QueryEscape(f.Value))
	}
	return strings.Join(parts, "&")
}
