package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultRedisKey = "irabot:languages"

// hashClient is the part of the Redis client used by the store.
type hashClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
}

// Redis keeps language preferences in one hash, field user ID and value language code.
type Redis struct {
	client hashClient
	key    string
	close  func() error
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// NewRedis connects to Redis and checks the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	log.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("connected to redis")

	r := newRedis(client, cfg.Key)
	r.close = client.Close

	return r, nil
}

func newRedis(client hashClient, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}

	return &Redis{client: client, key: key}
}

func (r *Redis) ReadAll(ctx context.Context) (map[int64]string, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}

	out := make(map[int64]string, len(raw))
	for field, code := range raw {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			log.Warn().Str("field", field).Msg("skipping preference with invalid user id")
			continue
		}
		out[id] = code
	}

	return out, nil
}

func (r *Redis) Write(ctx context.Context, userID int64, code string) error {
	if err := r.client.HSet(ctx, r.key, strconv.FormatInt(userID, 10), code).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}

	return nil
}

func (r *Redis) Close() error {
	if r.close == nil {
		return nil
	}

	return r.close()
}
