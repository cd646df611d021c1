package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"MyFinance/config"
	"MyFinance/internal/contracts"
	"MyFinance/internal/logger"

	"github.com/go-redis/redis/v8"
)

const (
	idempotencyPrefix = "idempotency:"
	pendingMarker     = "pending"
)

// RedisIdempotencyStore remembers idempotency keys per user. A key is first reserved
// with a pending marker, then completed with the response or released on failure.
type RedisIdempotencyStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info().Str("addr", cfg.Addr).Msg("Redis connection established")
	return client, nil
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisIdempotencyStore{Client: client, TTL: ttl}
}

// Reserve reports whether the key was free and is now held by the caller.
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	return s.Client.SetNX(ctx, idempotencyPrefix+key, pendingMarker, s.TTL).Result()
}

// Load returns the stored response for key. found is true for a pending key as well,
// in which case the response is nil.
func (s *RedisIdempotencyStore) Load(ctx context.Context, key string) (resp *contracts.IdempotentResponse, found bool, err error) {
	raw, err := s.Client.Get(ctx, idempotencyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if raw == pendingMarker {
		return nil, true, nil
	}

	var stored contracts.IdempotentResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, false, err
	}
	return &stored, true, nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, resp *contracts.IdempotentResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, idempotencyPrefix+key, string(payload), s.TTL).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.Client.Del(ctx, idempotencyPrefix+key).Err()
}
