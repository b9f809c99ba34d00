package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/oncology-cds-engine/internal/domain"
)

const clearBatchSize = 100

// cachedOutput is the JSON envelope stored in Redis.
type cachedOutput struct {
	Data      *domain.DecisionOutput `json:"data"`
	CachedAt  time.Time              `json:"cached_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// RedisTier shares cached recommendations between engine instances. Every Redis call
// goes through a circuit breaker; an open breaker or any Redis error is treated as a
// miss so that the engine keeps computing locally.
type RedisTier struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	prefix  string
	timeout time.Duration
	logger  *logrus.Logger
}

// NewRedisTier connects to Redis using the cache configuration.
func NewRedisTier(config domain.CacheConfig, logger *logrus.Logger) (*RedisTier, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	opts.MaxRetries = config.MaxRetries

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTierFromClient(client, config.KeyPrefix, logger), nil
}

// NewRedisTierFromClient wraps an existing client without checking connectivity.
func NewRedisTierFromClient(client *redis.Client, prefix string, logger *logrus.Logger) *RedisTier {
	if prefix == "" {
		prefix = "oncocds:recommendation:"
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-result-cache",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &RedisTier{
		client:  client,
		breaker: breaker,
		prefix:  prefix,
		timeout: 500 * time.Millisecond,
		logger:  logger,
	}
}

// Get returns the cached output for key, or a miss on any failure.
func (r *RedisTier) Get(ctx context.Context, key string) (*domain.DecisionOutput, bool) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		val, err := r.client.Get(ctx, r.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return val, err
	})
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("Redis cache read failed")
		return nil, false
	}
	if result == nil {
		return nil, false
	}

	var cached cachedOutput
	if err := json.Unmarshal(result.([]byte), &cached); err != nil {
		r.Delete(ctx, key)
		return nil, false
	}
	if time.Now().After(cached.ExpiresAt) || cached.Data == nil {
		r.Delete(ctx, key)
		return nil, false
	}

	return cached.Data, true
}

// Set stores output under key with the given ttl. Failures are logged and dropped.
func (r *RedisTier) Set(ctx context.Context, key string, output *domain.DecisionOutput, ttl time.Duration) {
	now := time.Now()
	data, err := json.Marshal(cachedOutput{
		Data:      output,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		r.logger.WithError(err).Warn("Failed to marshal recommendation for Redis")
		return
	}

	_, err = r.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return nil, r.client.Set(ctx, r.prefix+key, data, ttl).Err()
	})
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("Redis cache write failed")
	}
}

// Delete removes key. Failures are ignored.
func (r *RedisTier) Delete(ctx context.Context, key string) {
	_, _ = r.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return nil, r.client.Del(ctx, r.prefix+key).Err()
	})
}

// Clear deletes every key under the tier's prefix.
func (r *RedisTier) Clear(ctx context.Context) error {
	removed, err := r.breaker.Execute(func() (interface{}, error) {
		var removed int64
		iter := r.client.Scan(ctx, 0, r.prefix+"*", clearBatchSize).Iterator()
		batch := make([]string, 0, clearBatchSize)
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
			if len(batch) == clearBatchSize {
				n, err := r.client.Del(ctx, batch...).Result()
				if err != nil {
					return removed, err
				}
				removed += n
				batch = batch[:0]
			}
		}
		if err := iter.Err(); err != nil {
			return removed, err
		}
		if len(batch) > 0 {
			n, err := r.client.Del(ctx, batch...).Result()
			if err != nil {
				return removed, err
			}
			removed += n
		}
		return removed, nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear Redis cache: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"prefix":  r.prefix,
		"removed": removed,
	}).Info("Cleared Redis result cache")
	return nil
}

// State reports the circuit breaker state.
func (r *RedisTier) State() gobreaker.State {
	return r.breaker.State()
}

// Close closes the Redis client.
func (r *RedisTier) Close() error {
	return r.client.Close()
}
