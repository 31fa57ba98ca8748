// Package dedupe drops webhook deliveries Twilio has already sent once.
package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

const keyPrefix = "sbsbs:sms:"

// Guard remembers message ids for a limited time
type Guard interface {
	// FirstSeen records id and reports whether it had not been seen within the TTL
	FirstSeen(ctx context.Context, id string) (bool, error)
	// Forget removes id so a later delivery is processed again
	Forget(ctx context.Context, id string) error
}

// RedisGuard keeps message ids in redis so several hub instances share them
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard connects to redis and verifies the connection
func NewRedisGuard(ctx context.Context, opts *redis.Options, ttl time.Duration) (*RedisGuard, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error connecting to redis at %s: %w", opts.Addr, err)
	}
	nuts.L.Infof("[Dedupe] Using redis at %s (ttl %s)", opts.Addr, ttl)
	return &RedisGuard{client: client, ttl: ttl}, nil
}

func (g *RedisGuard) FirstSeen(ctx context.Context, id string) (bool, error) {
	ok, err := g.client.SetNX(ctx, keyPrefix+id, time.Now().Unix(), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", id, err)
	}
	return ok, nil
}

func (g *RedisGuard) Forget(ctx context.Context, id string) error {
	if err := g.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", id, err)
	}
	return nil
}

// Close releases the redis connection pool
func (g *RedisGuard) Close() error {
	return g.client.Close()
}

// MemoryGuard keeps message ids in process memory
type MemoryGuard struct {
	ids *cache.Cache
}

// NewMemoryGuard returns a guard whose entries expire after ttl
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{ids: cache.New(ttl, 2*ttl)}
}

func (g *MemoryGuard) FirstSeen(_ context.Context, id string) (bool, error) {
	// Add fails when a live entry exists, which makes check-and-set atomic
	if err := g.ids.Add(id, struct{}{}, cache.DefaultExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (g *MemoryGuard) Forget(_ context.Context, id string) error {
	g.ids.Delete(id)
	return nil
}
