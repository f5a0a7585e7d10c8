// Package cache кэширует роли пользователей в Redis.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
	"github.com/Freeeeeet/coach_scheduler/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix  = "coach_scheduler:role:"
	defaultTTL = 5 * time.Minute
)

// Client подмножество *redis.Client, которое нужно кэшу
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RoleCache UserDirectory поверх другого каталога с кэшем ролей в Redis.
//
// Роль пользователя не меняется, поэтому кэшируются только найденные роли.
// Ошибки Redis не ломают запрос: роль берётся из основного каталога.
type RoleCache struct {
	inner  service.UserDirectory
	client Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRoleCache(inner service.UserDirectory, client Client, ttl time.Duration, logger *zap.Logger) *RoleCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

// ResolveRole возвращает роль из кэша или из основного каталога
func (c *RoleCache) ResolveRole(ctx context.Context, id int64) (model.Role, error) {
	key := keyPrefix + strconv.FormatInt(id, 10)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if role := model.Role(cached); role.Valid() {
			return role, nil
		}
		c.logger.Warn("Invalid cached role", zap.String("key", key), zap.String("value", cached))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("Role cache read failed", zap.Int64("user_id", id), zap.Error(err))
	}

	role, err := c.inner.ResolveRole(ctx, id)
	if err != nil {
		return "", err
	}
	if role == "" {
		return role, nil
	}

	if err := c.client.Set(ctx, key, string(role), c.ttl).Err(); err != nil {
		c.logger.Warn("Role cache write failed", zap.Int64("user_id", id), zap.Error(err))
	}
	return role, nil
}
