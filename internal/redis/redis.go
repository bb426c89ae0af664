package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lease only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisClient struct {
	Client *redis.Client
}

func New(ctx context.Context, address string, password string) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       0,
	})

	return &RedisClient{Client: rdb}, nil
}

func (v *RedisClient) HealthCheck(ctx context.Context) error {
	err := v.Client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (v *RedisClient) Close() error {
	return v.Client.Close()
}

// Lease is a named, expiring lock held by at most one worker instance.
type Lease struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  string
}

func (v *RedisClient) Lease(name string, ttl time.Duration) *Lease {
	return &Lease{
		client: v.Client,
		key:    "lease:" + name,
		ttl:    ttl,
		token:  uuid.NewString(),
	}
}

// Acquire reports whether this holder now owns the lease.
func (l *Lease) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease %s: %w", l.key, err)
	}
	return ok, nil
}

func (l *Lease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release lease %s: %w", l.key, err)
	}
	return nil
}
