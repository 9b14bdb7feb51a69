package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNotInitialized is returned by every operation on a nil or disconnected client
var ErrNotInitialized = errors.New("redis client not initialized")

// ErrLockHeld means another holder owns the lock
var ErrLockHeld = errors.New("lock already held")

// releaseScript deletes the lock only when the caller still owns it
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisClient wraps redis.Client
type RedisClient struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisClient creates a new Redis client. It returns nil when Redis is unreachable;
// callers treat a nil client as "no cache".
func NewRedisClient(host, port, password string, logger *zap.Logger) *RedisClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	addr := fmt.Sprintf("%s:%s", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // use default DB
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("failed to connect to redis", zap.String("addr", addr), zap.Error(err))
		_ = client.Close()
		return nil
	}

	logger.Info("connected to redis", zap.String("addr", addr))
	return &RedisClient{client: client, logger: logger}
}

func (r *RedisClient) ready() bool {
	return r != nil && r.client != nil
}

// Set stores a JSON-encoded value with expiration
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !r.ready() {
		return ErrNotInitialized
	}

	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("Set %s: %w", key, err)
	}

	return r.client.Set(ctx, key, jsonBytes, expiration).Err()
}

// Get decodes a stored value into dest. A missing key returns redis.Nil.
func (r *RedisClient) Get(ctx context.Context, key string, dest interface{}) error {
	if !r.ready() {
		return ErrNotInitialized
	}

	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(val, dest)
}

// Delete removes keys
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if !r.ready() {
		return ErrNotInitialized
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Exists checks if a key exists
func (r *RedisClient) Exists(ctx context.Context, key string) bool {
	if !r.ready() {
		return false
	}

	result, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false
	}

	return result > 0
}

// Ping checks the connection
func (r *RedisClient) Ping(ctx context.Context) error {
	if !r.ready() {
		return ErrNotInitialized
	}
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	if r.ready() {
		return r.client.Close()
	}
	return nil
}

// Lock is an owned SET NX key
type Lock struct {
	key   string
	token string
	redis *RedisClient
}

// Key returns the locked key
func (l *Lock) Key() string {
	if l == nil {
		return ""
	}
	return l.key
}

// AcquireLock takes key for ttl. It returns ErrLockHeld when someone else owns it.
func (r *RedisClient) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	if !r.ready() {
		return nil, ErrNotInitialized
	}

	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("AcquireLock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{key: key, token: token, redis: r}, nil
}

// Release frees the lock if it is still owned by this holder
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || !l.redis.ready() {
		return nil
	}
	if err := releaseScript.Run(ctx, l.redis.client, []string{l.key}, l.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("Release %s: %w", l.key, err)
	}
	return nil
}
