package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/authgate/internal/models"
)

// ProfileCache - контракт кэша публичных профилей пользователей.
// Хэш пароля в кэш не попадает никогда.
type ProfileCache interface {
	// Get возвращает профиль и признак его наличия в кэше.
	Get(ctx context.Context, id uuid.UUID) (*models.User, bool, error)
	// Set сохраняет публичную часть профиля на ttl.
	Set(ctx context.Context, u *models.User) error
	// Close закрывает клиент Redis.
	Close() error
}

var errCorrupted = errors.New("cached profile corrupted")

type redisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой - используется "authgate:user:".
func NewRedisCache(ctx context.Context, redisURL, prefix string, ttl time.Duration) (ProfileCache, error) {
	const op = "cache.NewRedisCache"

	if prefix == "" {
		prefix = "authgate:user:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &redisCache{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (c *redisCache) key(id uuid.UUID) string { return c.prefix + id.String() }

// Храним как Redis Hash с полями: email, name, created (unix nano).
func (c *redisCache) Get(ctx context.Context, id uuid.UUID) (*models.User, bool, error) {
	const op = "cache.Get"

	m, err := c.rdb.HGetAll(ctx, c.key(id)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	if len(m) == 0 {
		return nil, false, nil
	}

	u, err := decodeProfile(id, m)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	return u, true, nil
}

func (c *redisCache) Set(ctx context.Context, u *models.User) error {
	const op = "cache.Set"

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, c.key(u.ID), encodeProfile(u))
	pipe.Expire(ctx, c.key(u.ID), c.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *redisCache) Close() error { return c.rdb.Close() }
