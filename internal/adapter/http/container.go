package http

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"tasklist/internal/adapter/cache/memory"
	"tasklist/internal/adapter/cache/noop"
	"tasklist/internal/adapter/cache/redis"
	"tasklist/internal/adapter/database/postgres"
	pgrepository "tasklist/internal/adapter/database/postgres/repository"
	"tasklist/internal/adapter/database/sqlite"
	sqliterepository "tasklist/internal/adapter/database/sqlite/repository"
	"tasklist/internal/adapter/http/handler"
	"tasklist/internal/adapter/http/validation"
	"tasklist/internal/core/port"
	"tasklist/internal/core/service"
	"tasklist/internal/core/telemetry"
	"tasklist/internal/core/util"
	"tasklist/pkg/auth"
	"tasklist/pkg/config"
	"tasklist/pkg/logger"
)

type Container struct {
	UserRepo port.UserRepository
	TaskRepo port.TaskRepository
	Cache    port.CacheRepository

	UserService port.UserService
	TaskService port.TaskService
	AuthService port.AuthService

	JWT *auth.JWT

	UserHandler   *handler.UserHandler
	TaskHandler   *handler.TaskHandler
	AuthHandler   *handler.AuthHandler
	HealthHandler *handler.HealthHandler

	closers []func() error
}

// NewContainer opens the configured store and cache and builds every service
// and handler on top of them.
func NewContainer(ctx context.Context, cfg *config.AppConfig, log *logger.LokiLogger, metrics *telemetry.AppMetrics, probe port.Telemetry) (*Container, error) {
	if log == nil {
		log = logger.NewNop()
	}

	c := &Container{}

	ping, err := c.openStore(ctx, cfg, probe, metrics)

	if err != nil {
		return nil, err
	}

	if err := c.openCache(ctx, cfg); err != nil {
		_ = c.Close()
		return nil, err
	}

	zapLogger := log.Zap()
	validator := validation.New()

	c.JWT = &auth.JWT{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL}

	taskSvc := service.NewTaskService(c.TaskRepo, validator, util.NewCursorCodec(cfg.CursorSecretKey), probe).
		WithCache(c.Cache, cfg.CacheTTL).
		WithMetrics(metrics).
		WithLogger(zapLogger)

	userSvc := service.NewUserService(c.UserRepo).
		WithCache(c.Cache).
		WithMetrics(metrics).
		WithLogger(zapLogger)

	authSvc := service.NewAuthService(c.UserRepo).
		WithMetrics(metrics).
		WithLogger(zapLogger)

	c.TaskService = taskSvc
	c.UserService = userSvc
	c.AuthService = authSvc

	c.TaskHandler = handler.NewTaskHandler(taskSvc, log)
	c.UserHandler = handler.NewUserHandler(userSvc, log)
	c.AuthHandler = handler.NewAuthHandler(authSvc, c.JWT, validator, log)
	c.HealthHandler = handler.NewHealthHandler(ping, cfg.ServiceName)

	zapLogger.Info("Container ready",
		zap.String("db_driver", cfg.DBDriver),
		zap.String("cache_driver", cfg.CacheDriver))

	return c, nil
}

func (c *Container) openStore(ctx context.Context, cfg *config.AppConfig, probe port.Telemetry, metrics *telemetry.AppMetrics) (handler.PingFunc, error) {
	migrations := cfg.MigrationsPath
	if migrations == "" {
		migrations = filepath.Join("db", "migrations", cfg.DBDriver)
	}

	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.NewDB(ctx, postgres.Options{URL: cfg.DatabaseURL, MigrationsPath: migrations})

		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}

		c.closers = append(c.closers, func() error { db.Close(); return nil })
		c.UserRepo = pgrepository.NewUserRepository(db, probe)
		c.TaskRepo = pgrepository.NewTaskRepository(db, probe)

		return db.Ping, nil
	case "sqlite":
		db, err := sqlite.NewDB(sqlite.Options{Path: cfg.DatabasePath, MigrationsPath: migrations, LogQueries: cfg.LogQueries})

		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}

		c.closers = append(c.closers, db.Close)

		if metrics != nil {
			if err := metrics.RegisterDBStats(db.DB, "sqlite"); err != nil {
				_ = c.Close()
				return nil, fmt.Errorf("register db stats: %w", err)
			}
		}

		c.UserRepo = sqliterepository.NewUserRepository(db, probe)
		c.TaskRepo = sqliterepository.NewTaskRepository(db, probe)

		return db.PingContext, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func (c *Container) openCache(ctx context.Context, cfg *config.AppConfig) error {
	switch cfg.CacheDriver {
	case "redis":
		cache, err := redis.NewCacheRepository(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		if err != nil {
			return err
		}

		c.Cache = cache
	case "memory":
		c.Cache = memory.NewCacheRepository(cfg.CacheTTL)
	default:
		c.Cache = noop.NewCacheRepository()
	}

	c.closers = append(c.closers, c.Cache.Close)

	return nil
}

// Close releases the cache and the database, in reverse order of opening.
func (c *Container) Close() error {
	var firstErr error

	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	c.closers = nil

	return firstErr
}
