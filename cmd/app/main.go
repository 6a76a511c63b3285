package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"agora-backend/docs"
	"agora-backend/internal/common/cache"
	"agora-backend/internal/common/config"
	"agora-backend/internal/common/logger"
	"agora-backend/internal/common/middleware"
	authhttp "agora-backend/internal/features/auth/delivery/http"
	"agora-backend/internal/features/auth/launchdata"
	authservice "agora-backend/internal/features/auth/service"
	"agora-backend/internal/features/auth/token"
	systemhttp "agora-backend/internal/features/system/delivery/http"
	userrepo "agora-backend/internal/features/user/repository/postgres"
	userservice "agora-backend/internal/features/user/service"
	"agora-backend/internal/platform/monitoring"
	"agora-backend/internal/platform/postgres"
	"agora-backend/internal/platform/redis"
)

// @title           Agora API
// @version         1.0
// @description     Telegram Mini App authentication for the Agora B2B platform.

// @BasePath  /api/v1

// @tag.name auth
// @tag.description Вход по initData и текущий пользователь

// @tag.name system
// @tag.description Служебные эндпоинты

// dependencies - внешние ресурсы, открытые при старте
type dependencies struct {
	postgres *postgres.Client
	redis    *redis.Client
}

func (d *dependencies) Close() {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close Redis")
		}
	}
	if d.postgres != nil {
		if err := d.postgres.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database")
		}
	}
}

func (d *dependencies) healthChecks() map[string]systemhttp.HealthChecker {
	checks := map[string]systemhttp.HealthChecker{}
	if d.postgres != nil {
		checks["database"] = d.postgres
	}
	if d.redis != nil {
		checks["cache"] = d.redis
	}
	return checks
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.ServiceName, cfg.Debug)
	logger.Info().
		Str("version", cfg.Version).
		Bool("debug", cfg.Debug).
		Str("identity_store", cfg.Identity.Store).
		Msg("Starting Agora backend")

	sink := monitoring.NewPrometheusSink("agora")

	ctx := context.Background()
	deps, err := openDependencies(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize dependencies")
	}
	defer deps.Close()

	authSvc, err := newAuthService(cfg, deps, sink)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize auth service")
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, authSvc, sink, deps.healthChecks())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	sink.LogEvent("app.startup", map[string]interface{}{"version": cfg.Version})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	sink.LogEvent("app.shutdown", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

// openDependencies подключает хранилища, которые нужны выбранной конфигурации
func openDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	deps := &dependencies{}

	if cfg.Identity.Store == config.IdentityStorePostgres {
		client, err := postgres.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		deps.postgres = client

		if cfg.Postgres.Migrate {
			if err := client.Migrate(); err != nil {
				deps.Close()
				return nil, err
			}
		}
	}

	if cfg.Redis.Enabled {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		client, err := redis.Open(pingCtx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.redis = client
		logger.Info().Str("addr", cfg.RedisAddr()).Msg("Redis client initialized")
	}

	return deps, nil
}

func newResolver(cfg *config.Config, deps *dependencies) authservice.IdentityResolver {
	if deps.postgres == nil {
		return userservice.NewPassThroughResolver()
	}

	opts := []userservice.RegistryOption{
		userservice.WithRequireRegistration(cfg.Identity.RequireRegistration),
	}
	if deps.redis != nil && cfg.Identity.CacheTTL > 0 {
		opts = append(opts, userservice.WithCache(cache.NewCacheService(deps.redis, cfg.ServiceName), cfg.Identity.CacheTTL))
	}

	return userservice.NewRegistryResolver(userrepo.NewPostgresRepository(deps.postgres.GetDB()), opts...)
}

func newAuthService(cfg *config.Config, deps *dependencies, sink monitoring.Sink) (authservice.AuthService, error) {
	issuer, err := token.NewIssuer([]byte(cfg.Auth.JWTSecret),
		token.WithTTL(cfg.Auth.TokenTTL),
		token.WithIssuer(cfg.Auth.Issuer),
	)
	if err != nil {
		return nil, err
	}

	verifier := launchdata.NewVerifier(cfg.Telegram.BotToken,
		launchdata.WithMaxAge(cfg.Auth.InitDataMaxAge),
		launchdata.WithClockSkew(cfg.Auth.InitDataClockSkew),
	)

	return authservice.NewAuthService(verifier, newResolver(cfg, deps), issuer, sink, cfg.Identity.LookupTimeout), nil
}

func newRouter(cfg *config.Config, authSvc authservice.AuthService, sink *monitoring.PrometheusSink, checks map[string]systemhttp.HealthChecker) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(sink))
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	if cfg.Server.Origin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.Server.Origin}
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", middleware.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{middleware.HeaderRequestID, middleware.HeaderProcessTime}
	router.Use(cors.New(corsConfig))

	router.NoRoute(middleware.NotFound())

	systemhttp.NewSystemHandler(cfg.ServiceName, cfg.Version, checks).
		WithMetrics(sink).
		RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	authhttp.NewAuthHandler(authSvc, cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst).RegisterRoutes(v1)

	router.GET("/metrics", gin.WrapH(sink.Handler()))

	docs.SwaggerInfo.Version = cfg.Version
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}
