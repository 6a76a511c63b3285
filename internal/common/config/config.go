package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"agora-backend/internal/common/validation"
)

const (
	IdentityStorePassThrough = "passthrough"
	IdentityStorePostgres    = "postgres"
)

type Config struct {
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"agora-backend"`
	Version     string `env:"SERVICE_VERSION" envDefault:"1.0.0"`

	Server struct {
		Port            int           `env:"PORT" envDefault:"8000" validate:"min=1,max=65535"`
		Origin          string        `env:"ORIGIN" envDefault:"*"`
		ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}

	Auth struct {
		// Секрет подписи bearer-токенов (HS256)
		JWTSecret string        `env:"JWT_SECRET,required" validate:"min=32"`
		TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h" validate:"gt=0"`
		Issuer    string        `env:"TOKEN_ISSUER" envDefault:"agora-backend"`

		// Окно свежести initData и допустимый сдвиг часов
		InitDataMaxAge    time.Duration `env:"INIT_DATA_MAX_AGE" envDefault:"24h" validate:"gt=0"`
		InitDataClockSkew time.Duration `env:"INIT_DATA_CLOCK_SKEW" envDefault:"1m" validate:"gte=0"`
	}

	Telegram struct {
		BotToken string `env:"BOT_TOKEN,required" validate:"required"`
	}

	Identity struct {
		Store               string        `env:"IDENTITY_STORE" envDefault:"passthrough" validate:"oneof=passthrough postgres"`
		RequireRegistration bool          `env:"REQUIRE_REGISTRATION" envDefault:"false"`
		CacheTTL            time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"10m"`
		LookupTimeout       time.Duration `env:"IDENTITY_LOOKUP_TIMEOUT" envDefault:"3s" validate:"gt=0"`
	}

	Postgres struct {
		Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
		Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
		User            string        `env:"POSTGRES_USER" envDefault:"postgres"`
		Password        string        `env:"POSTGRES_PASSWORD" envDefault:""`
		Database        string        `env:"POSTGRES_DB" envDefault:"agora"`
		SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
		MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"25"`
		MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
		ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"5m"`
		Migrate         bool          `env:"POSTGRES_MIGRATE" envDefault:"true"`
	}

	Redis struct {
		Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	RateLimit struct {
		LoginRPS   float64 `env:"LOGIN_RATE_LIMIT_RPS" envDefault:"5"`
		LoginBurst int     `env:"LOGIN_RATE_LIMIT_BURST" envDefault:"10"`
	}
}

// GetDSN собирает строку подключения к PostgreSQL
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host, c.Postgres.Port, c.Postgres.User, c.Postgres.Password, c.Postgres.Database, c.Postgres.SSLMode)
}

// RedisAddr возвращает адрес Redis в формате host:port
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Load читает конфигурацию из окружения. Отсутствие секретов - фатальная ошибка запуска.
func Load() (*Config, error) {
	// .env может отсутствовать: в production переменные задаются напрямую
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
