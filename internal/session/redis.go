package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/kewo/kewo-rechner/internal/calculator"
)

const (
	redisKeyPrefix   = "kewo:session:"
	redisMaxAttempts = 5
)

// RedisStore keeps each session under its own key; Redis expires idle
// sessions through the key TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects lazily to the Redis server at addr.
func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStore{client: rdb, ttl: ttl}
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close releases the client connections.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Load(ctx context.Context, id string) (calculator.Inputs, error) {
	return r.get(ctx, r.client, id)
}

// Update retries the optimistic transaction when another writer changes
// the same session between WATCH and EXEC.
func (r *RedisStore) Update(ctx context.Context, id string, fn UpdateFunc) (calculator.Inputs, error) {
	key := redisKey(id)

	var result calculator.Inputs
	txf := func(tx *redis.Tx) error {
		in, err := r.get(ctx, tx, id)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := fn(&in); err != nil {
			return err
		}

		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode session inputs: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = in
		return nil
	}

	for attempt := 0; attempt < redisMaxAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return calculator.Inputs{}, err
	}
	return calculator.Inputs{}, fmt.Errorf("update session %s: too many concurrent writers", id)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) get(ctx context.Context, c redisGetter, id string) (calculator.Inputs, error) {
	raw, err := c.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return calculator.Inputs{}, ErrNotFound
	}
	if err != nil {
		return calculator.Inputs{}, fmt.Errorf("get session: %w", err)
	}

	var in calculator.Inputs
	if err := json.Unmarshal(raw, &in); err != nil {
		return calculator.Inputs{}, fmt.Errorf("decode session inputs: %w", err)
	}
	return in, nil
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}
