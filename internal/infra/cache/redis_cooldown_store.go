package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const cooldownKeyPrefix = "vaccine_notifier:last_notified"

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// RedisCooldownStore keeps the cooldown record under a single key. The key
// has no TTL: expiry is decided by the tracker, not by Redis.
type RedisCooldownStore struct {
	client *redis.Client
	key    string
}

func NewRedisCooldownStore(client *redis.Client, namespace string) *RedisCooldownStore {
	key := cooldownKeyPrefix
	if namespace != "" {
		key = cooldownKeyPrefix + ":" + namespace
	}
	return &RedisCooldownStore{client: client, key: key}
}

func (s *RedisCooldownStore) LoadLastNotified(ctx context.Context) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error reading %s: %w", s.key, err)
	}
	return value, true, nil
}

func (s *RedisCooldownStore) SaveLastNotified(ctx context.Context, value string) error {
	if err := s.client.Set(ctx, s.key, value, 0).Err(); err != nil {
		return fmt.Errorf("error writing %s: %w", s.key, err)
	}
	return nil
}
