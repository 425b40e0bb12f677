// Package cache кэширует разрешение токенов. Пары токен/URL неизменяемы,
// поэтому инвалидация не нужна; кэшируются только найденные значения.
package cache

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Cache interface {
	Get(ctx context.Context, token string) (string, bool)
	Set(ctx context.Context, token, longValue string)
}

// Nop ничего не хранит.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool) { return "", false }
func (Nop) Set(context.Context, string, string)        {}

// Local - кэш в памяти процесса на go-cache.
type Local struct {
	c *gocache.Cache
}

func NewLocal(ttl time.Duration) *Local {
	return &Local{c: gocache.New(ttl, 2*ttl)}
}

func (l *Local) Get(_ context.Context, token string) (string, bool) {
	v, ok := l.c.Get(token)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (l *Local) Set(_ context.Context, token, longValue string) {
	l.c.SetDefault(token, longValue)
}

// Redis хранит пары в Redis под ключами short:<token>. Ошибки Redis
// логируются и считаются промахом.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// DefaultRedisTTL подставляется вместо неположительного ttl: ключ без срока
// жизни пережил бы хранилище, из которого взят.
const DefaultRedisTTL = time.Hour

func NewRedis(client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *Redis {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func key(token string) string {
	return "short:" + token
}

func (r *Redis) Get(ctx context.Context, token string) (string, bool) {
	val, err := r.client.Get(ctx, key(token)).Result()
	if err == nil {
		r.logger.Debugw("Cache hit", "token", token)
		return val, true
	}
	if !errors.Is(err, redis.Nil) {
		r.logger.Warnw("Redis get failed", "token", token, "error", err)
	}
	return "", false
}

func (r *Redis) Set(ctx context.Context, token, longValue string) {
	if err := r.client.Set(ctx, key(token), longValue, r.ttl).Err(); err != nil {
		r.logger.Warnw("Failed to cache long URL", "token", token, "error", err)
	}
}

// Chain опрашивает кэши по порядку и заполняет пропустившие уровни.
type Chain []Cache

func (c Chain) Get(ctx context.Context, token string) (string, bool) {
	for i, layer := range c {
		if v, ok := layer.Get(ctx, token); ok {
			for _, upper := range c[:i] {
				upper.Set(ctx, token, v)
			}
			return v, true
		}
	}
	return "", false
}

func (c Chain) Set(ctx context.Context, token, longValue string) {
	for _, layer := range c {
		layer.Set(ctx, token, longValue)
	}
}
