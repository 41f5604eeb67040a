package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/accounts/internal/domain"
	"github.com/utafrali/accounts/internal/repository"
)

const keyPrefix = "user:profile:"

// ProfileCache implements repository.ProfileCache using Redis. Entries are
// the public JSON form of a user, so the password hash and role are never
// written to Redis.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache creates a new Redis-backed profile cache.
func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		client: client,
		ttl:    ttl,
	}
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// Get returns the cached profile or repository.ErrCacheMiss.
func (c *ProfileCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	data, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get profile: %w", err)
	}

	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}

	return &u, nil
}

// Set stores a profile with the configured TTL.
func (c *ProfileCache) Set(ctx context.Context, u *domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	if err := c.client.Set(ctx, key(u.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set profile: %w", err)
	}

	return nil
}

// Delete evicts a profile.
func (c *ProfileCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("redis del profile: %w", err)
	}
	return nil
}
