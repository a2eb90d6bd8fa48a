package cartstore

import (
	"context"
	"time"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	redisCartField      = "cart"
	redisConnectRetries = 30
	redisMaxBackoff     = 30 * time.Second
)

// RedisCartStore is a slot store backed by Redis.
// Each slot is a hash keyed by the slot key with the payload in the "cart" field.
type RedisCartStore struct {
	client *redis.Client
	log    logrus.FieldLogger

	maxAttempts int
	baseBackoff time.Duration
}

// NewRedisCartStore accepts a Redis connection string ("hostname:port" or a
// redis:// URL) and returns a store instance.
func NewRedisCartStore(redisAddr string, log logrus.FieldLogger) (*RedisCartStore, error) {
	if redisAddr == "" {
		return nil, errors.New("redis address is required")
	}
	opts, err := redis.ParseURL(redisAddr)
	if err != nil {
		// Not in "redis://..." format, use it as a plain Addr.
		opts = &redis.Options{
			Addr:         redisAddr,
			MinIdleConns: 1,
			MaxRetries:   3,
			DialTimeout:  30 * time.Second,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			PoolSize:     10,
			PoolTimeout:  4 * time.Second,
			IdleTimeout:  180 * time.Second,
		}
	}

	client := redis.NewClient(opts)
	client.AddHook(redisotel.NewTracingHook())

	return &RedisCartStore{
		client:      client,
		log:         log,
		maxAttempts: redisConnectRetries,
		baseBackoff: time.Second,
	}, nil
}

// Initialize checks the Redis connection, retrying with capped exponential backoff.
func (r *RedisCartStore) Initialize(ctx context.Context) error {
	r.log.Info("RedisCartStore: initializing connection...")

	for i := 0; i < r.maxAttempts; i++ {
		if r.Ping(ctx) {
			r.log.WithField("attempt", i+1).Info("RedisCartStore initialized successfully")
			return nil
		}

		backoff := r.baseBackoff * time.Duration(1<<uint(i))
		if backoff > redisMaxBackoff || backoff < 0 {
			backoff = redisMaxBackoff
		}
		r.log.WithFields(logrus.Fields{
			"attempt": i + 1,
			"backoff": backoff,
		}).Warn("RedisCartStore: ping failed, waiting before next attempt")

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "redis initialization cancelled")
		case <-time.After(backoff):
		}
	}

	return errors.Errorf("failed to connect to Redis after %d attempts", r.maxAttempts)
}

// Load reads the slot payload.
func (r *RedisCartStore) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.HGet(ctx, key, redisCartField).Bytes()
	if err == redis.Nil {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis HGet %s", key)
	}
	return val, nil
}

// Save overwrites the slot payload.
func (r *RedisCartStore) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.HSet(ctx, key, redisCartField, data).Err(); err != nil {
		return errors.Wrapf(err, "redis HSet %s", key)
	}
	return nil
}

// Ping checks if Redis is alive.
func (r *RedisCartStore) Ping(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		r.log.WithError(err).Debug("RedisCartStore: Ping failed")
		return false
	}
	return true
}

// Close releases the client connections.
func (r *RedisCartStore) Close() error {
	return r.client.Close()
}
