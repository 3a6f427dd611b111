// Package cache puts a Redis read-through cache in front of the user
// lookups done on every task assignment and user detail request.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"scrum/internal/models"
	"scrum/internal/storage/sqlite"
)

type backend interface {
	UserByIdentity(ctx context.Context, field models.IdentityField, value string) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Cache wraps a Store, caching users by identity value.
type Cache struct {
	*sqlite.Store
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// New creates a caching wrapper using the provided Redis client and TTL.
func New(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("cache.New: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}

	c := &Cache{
		base:  base,
		redis: client,
		ttl:   ttl,
	}
	if s, ok := base.(*sqlite.Store); ok {
		c.Store = s
	}
	return c
}

func (c *Cache) UserByIdentity(ctx context.Context, field models.IdentityField, value string) (models.User, error) {
	if u, ok := c.load(ctx, userCacheKey(field, value)); ok {
		return u, nil
	}

	u, err := c.base.UserByIdentity(ctx, field, value)
	if err != nil {
		return models.User{}, err
	}

	c.store(ctx, userCacheKey(field, value), u)
	return u, nil
}

func (c *Cache) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	previous, err := c.base.GetUser(ctx, u.ID)
	if err != nil {
		return models.User{}, err
	}
	updated, err := c.base.UpdateUser(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	c.evict(ctx, previous)
	return updated, nil
}

func (c *Cache) DeleteUser(ctx context.Context, id int64) error {
	previous, err := c.base.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := c.base.DeleteUser(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, previous)
	return nil
}

func (c *Cache) load(ctx context.Context, key string) (models.User, bool) {
	if c.redis == nil {
		return models.User{}, false
	}
	// Any read error, a miss included, falls back to the backing storage.
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return models.User{}, false
	}
	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return models.User{}, false
	}
	return u, true
}

func (c *Cache) store(ctx context.Context, key string, u models.User) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(u)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, u models.User) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx,
		userCacheKey(models.IdentityUsername, u.Username),
		userCacheKey(models.IdentityEmail, u.Email),
	).Result()
}

func userCacheKey(field models.IdentityField, value string) string {
	return "user:" + string(field) + ":" + value
}
