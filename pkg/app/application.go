package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/internal/metrics"
	"github.com/OpreaAngel-Freelance/oil/internal/middleware"
	"github.com/OpreaAngel-Freelance/oil/internal/providers"
	"github.com/OpreaAngel-Freelance/oil/internal/ratelimit"
	"github.com/OpreaAngel-Freelance/oil/internal/repository"
	"github.com/OpreaAngel-Freelance/oil/internal/services"
	"github.com/OpreaAngel-Freelance/oil/internal/storage"
	"github.com/OpreaAngel-Freelance/oil/internal/tracing"
	"github.com/OpreaAngel-Freelance/oil/pkg/auth"
	"github.com/OpreaAngel-Freelance/oil/pkg/config"

	// Validator providers register themselves on import.
	_ "github.com/OpreaAngel-Freelance/oil/pkg/auth/jwks"
	_ "github.com/OpreaAngel-Freelance/oil/pkg/auth/static"
)

type Application struct {
	Config      *config.Config
	Engine      *gin.Engine
	Oil         services.OilService
	Repo        repository.OilRepository
	Storage     storage.Client
	Logger      *slog.Logger
	Validator   auth.Validator
	RateLimiter ratelimit.Limiter

	TracingShutdown func(context.Context) error
}

// ApplicationOption configures the Application before defaults are applied.
type ApplicationOption func(*Application) error

// WithValidator overrides the token validator built from config.
func WithValidator(validator auth.Validator) ApplicationOption {
	return func(app *Application) error {
		app.Validator = validator
		return nil
	}
}

// WithRepository overrides the repository built from config.
func WithRepository(repo repository.OilRepository) ApplicationOption {
	return func(app *Application) error {
		app.Repo = repo
		return nil
	}
}

// WithStorage overrides the object-storage client built from config.
func WithStorage(store storage.Client) ApplicationOption {
	return func(app *Application) error {
		app.Storage = store
		return nil
	}
}

func NewApplication(ctx context.Context, cfg *config.Config, opts ...ApplicationOption) (*Application, error) {
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	redisClient := providers.NewRedisProvider(cfg.RedisAddr, cfg.RedisPassword)
	limiter := ratelimit.NewTokenBucketLimiter(redisClient)

	tracingShutdown, err := tracing.Setup(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  "oil",
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		OTLPInsecure: cfg.Tracing.OTLPInsecure,
		SampleRatio:  cfg.Tracing.SampleRatio,
	}, logger)
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(logger),
		middleware.TracingMiddleware("oil"),
		middleware.MetricsMiddleware(),
	)

	app := &Application{
		Config:      cfg,
		Engine:      engine,
		Logger:      logger,
		RateLimiter: limiter,

		TracingShutdown: tracingShutdown,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.Validator == nil {
		providerType, providerCfg, err := cfg.AuthProviderConfig()
		if err != nil {
			return nil, err
		}
		validator, err := auth.NewValidator(auth.ProviderConfig{Type: providerType, Config: providerCfg})
		if err != nil {
			return nil, err
		}
		app.Validator = validator
	}

	if app.Repo == nil {
		if cfg.DatabaseURL != "" {
			repo, err := repository.NewPostgresOilRepository(ctx, cfg.DatabaseURL)
			if err != nil {
				return nil, err
			}
			if err := repo.Migrate(ctx); err != nil {
				repo.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			metrics.RegisterPoolCollector(repo.Pool())
			app.Repo = repo
		} else {
			logger.Warn("no database configured; using in-memory repository")
			app.Repo = repository.NewMemoryOilRepository()
		}
	}

	if app.Storage == nil && cfg.R2.Enabled() {
		store, err := storage.NewR2Client(ctx, cfg.R2, logger)
		if err != nil {
			return nil, err
		}
		app.Storage = store
	}

	app.Oil = services.NewOilService(app.Repo, app.Storage, logger, cfg.PageDefaultLimit, cfg.PageMaxLimit)
	return app, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := new(slog.LevelVar)
	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler).With("service", "oil", "env", cfg.Env)
}
