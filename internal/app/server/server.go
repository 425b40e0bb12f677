// Package server собирает приложение из конфигурации: хранилище, аллокатор,
// кэши, сервисы, хендлеры и HTTP-сервер.
package server

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aseptimu/bijective-shortener/internal/app/bimap"
	"github.com/aseptimu/bijective-shortener/internal/app/cache"
	"github.com/aseptimu/bijective-shortener/internal/app/config"
	handlers "github.com/aseptimu/bijective-shortener/internal/app/handlers/http"
	"github.com/aseptimu/bijective-shortener/internal/app/metrics"
	"github.com/aseptimu/bijective-shortener/internal/app/service"
	httpserver "github.com/aseptimu/bijective-shortener/internal/app/server/http"
	"github.com/aseptimu/bijective-shortener/internal/app/store"
	"github.com/aseptimu/bijective-shortener/internal/app/token"
)

// Run собирает приложение и обслуживает запросы до отмены ctx.
func Run(ctx context.Context, cfg *config.ConfigType, logger *zap.SugaredLogger) error {
	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.server.Run(ctx)
}

type app struct {
	allocator *bimap.Store
	server    *httpserver.Server
	closers   []func() error
	logger    *zap.SugaredLogger
}

func newApp(ctx context.Context, cfg *config.ConfigType, logger *zap.SugaredLogger) (*app, error) {
	backend, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &app{logger: logger}
	a.closers = append(a.closers, backend.Close)

	gen := token.NewGenerator(cfg.TokenBytes)
	m := metrics.New()
	a.allocator = bimap.New(backend, gen,
		bimap.WithLogger(logger),
		bimap.WithObserver(m),
		bimap.WithRetryPolicy(bimap.RetryPolicy{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
		}),
	)
	if err := a.allocator.Verify(ctx); err != nil {
		logger.Warnw("Index audit failed", "error", err)
	}

	resolveCache, closeCache := newCache(ctx, cfg, logger)
	a.closers = append(a.closers, closeCache)

	urlService := service.NewURLService(a.allocator, resolveCache, cfg.BatchWorkers, logger)
	urlGetService := service.NewGetURLService(a.allocator, resolveCache, gen)

	h := handlers.New(cfg, urlService, urlGetService, backend, m.Handler(), logger)
	a.server = httpserver.NewServer(cfg.ServerAddress, logger, h, m.Middleware())
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warnw("Error closing resource", "error", err)
		}
	}
}

// newBackend выбирает хранилище: PostgreSQL, SQLite, файл, память - в этом порядке.
func newBackend(ctx context.Context, cfg *config.ConfigType, logger *zap.SugaredLogger) (store.Store, error) {
	switch {
	case cfg.DSN != "":
		logger.Debugw("Database mode enabled, running migrations")
		if err := store.MigrateDB(cfg.DSN, logger); err != nil {
			return nil, fmt.Errorf("database migration failed: %w", err)
		}
		return store.NewDB(ctx, cfg.DSN, logger)
	case cfg.SQLitePath != "":
		logger.Debugw("SQLite mode enabled", "path", cfg.SQLitePath)
		return store.NewSQLiteStore(cfg.SQLitePath, logger)
	case cfg.FileStoragePath != "":
		logger.Debugw("File storage mode enabled", "storagePath", cfg.FileStoragePath)
		return store.NewFileStore(cfg.FileStoragePath, logger)
	default:
		logger.Infow("No persistent storage configured, keeping mappings in memory")
		return store.NewStore(), nil
	}
}

// newCache собирает цепочку кэшей: локальный (если CacheTTL > 0), затем Redis.
// Redis переживает процесс, поэтому подключается только поверх PostgreSQL:
// остальные хранилища принадлежат одному процессу, и общий кэш отдавал бы
// токены, которых в их индексе нет.
func newCache(ctx context.Context, cfg *config.ConfigType, logger *zap.SugaredLogger) (cache.Cache, func() error) {
	var chain cache.Chain
	closeFn := func() error { return nil }

	if cfg.CacheTTL > 0 {
		chain = append(chain, cache.NewLocal(cfg.CacheTTL))
	}
	switch {
	case cfg.RedisAddress == "":
	case cfg.DSN == "":
		logger.Warnw("Redis cache requires PostgreSQL storage, skipping it", "addr", cfg.RedisAddress)
	default:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		pingCtx, cancel := context.WithTimeout(ctx, config.DBTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warnw("Redis is unreachable, lookups will fall through to storage", "addr", cfg.RedisAddress, "error", err)
		}
		chain = append(chain, cache.NewRedis(client, cfg.RedisTTL, logger))
		closeFn = client.Close
	}

	if len(chain) == 0 {
		return cache.Nop{}, closeFn
	}
	return chain, closeFn
}
