// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"

	planapp "github.com/planforge/v1/internal/application/plan"
	"github.com/planforge/v1/internal/application/rules"
	userapp "github.com/planforge/v1/internal/application/user"
	"github.com/planforge/v1/internal/infrastructure/ai/openai"
	"github.com/planforge/v1/internal/infrastructure/config"
	"github.com/planforge/v1/internal/infrastructure/http/server"
	"github.com/planforge/v1/internal/infrastructure/images"
	gormRepo "github.com/planforge/v1/internal/infrastructure/persistence/gorm"
	"github.com/planforge/v1/internal/infrastructure/persistence/memory"
	redisCache "github.com/planforge/v1/internal/infrastructure/persistence/redis"
	"github.com/planforge/v1/internal/infrastructure/persistence/sqlite"
	"github.com/planforge/v1/internal/ports/inbound"
	"github.com/planforge/v1/internal/ports/outbound"
	"github.com/planforge/v1/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	RepositoryModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides the GORM connection, migrated and optionally seeded.
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		logLevel := gormLogger.Silent
		if cfg.App.Debug {
			logLevel = gormLogger.Info
		}

		db, err := sqlite.SetupDatabase(cfg.Database.Driver, cfg.GetDSN(), logLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to setup database: %w", err)
		}

		if cfg.Database.Seed {
			if err := sqlite.SeedDatabase(db); err != nil {
				log.Warn("Failed to seed database", zap.Error(err))
			}
		}

		log.Info("Connected to database",
			zap.String("driver", cfg.Database.Driver),
			zap.String("dsn", cfg.GetDSN()),
		)

		return db, nil
	},
)

// CacheModule provides caching. Redis when enabled, in-process otherwise.
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, error) {
		if cfg.Redis.Enabled {
			return redisCache.NewCacheRepository(
				cfg.RedisAddr(),
				cfg.Redis.Password,
				cfg.Redis.Database,
				log,
			)
		}
		log.Info("Using in-memory cache")
		return memory.NewCacheRepository(), nil
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewCatalogRepository,
	gormRepo.NewSubstitutionRuleRepository,
	gormRepo.NewSavedPlanRepository,
	gormRepo.NewUserRepository,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	// Chat-completions client, bound to both AI ports.
	func(cfg *config.Config, log *zap.Logger) *openai.Client {
		return openai.NewClient(openai.Config{
			APIKey:      cfg.AI.OpenAIKey,
			BaseURL:     cfg.AI.BaseURL,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		}, log)
	},
	func(client *openai.Client) outbound.PlanGenerationService { return client },
	func(client *openai.Client) outbound.AISuggestionService { return client },

	func() outbound.ImageResolver {
		return images.NewMatcher()
	},

	rules.NewEngine,

	fx.Annotate(
		planapp.NewPlanService,
		fx.As(new(inbound.PlanService)),
	),

	func(
		userRepo outbound.UserRepository,
		cache outbound.CacheRepository,
		cfg *config.Config,
		log *zap.Logger,
	) *userapp.UserService {
		return userapp.NewUserService(userRepo, cache, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration, log)
	},
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	server.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting application",
				zap.String("name", cfg.App.Name),
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("Failed to start HTTP server", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down application")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			sqlDB, err := db.DB()
			if err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("Failed to close database connection", zap.Error(err))
				}
			}

			_ = log.Sync()

			return nil
		},
	})
}
