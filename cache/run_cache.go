package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	keyPrefix      = "dailypick"
	latestPickKey  = keyPrefix + ":pick:latest"
	defaultRunTTL  = 36 * time.Hour
	defaultPickTTL = 15 * time.Minute
	dateKeyLayout  = "2006-01-02"
)

// RunCache stores ranking run summaries and the latest pick, and guards one run per day
type RunCache struct {
	redis   *RedisClient
	RunTTL  time.Duration
	PickTTL time.Duration
}

// NewRunCache creates a run cache; a nil client disables caching and locking
func NewRunCache(redis *RedisClient) *RunCache {
	return &RunCache{
		redis:   redis,
		RunTTL:  defaultRunTTL,
		PickTTL: defaultPickTTL,
	}
}

// Enabled reports whether a Redis connection backs the cache
func (c *RunCache) Enabled() bool {
	return c != nil && c.redis.ready()
}

// RunLockKey is the lock key for the run on date
func RunLockKey(date time.Time) string {
	return fmt.Sprintf("%s:lock:rank:%s", keyPrefix, date.UTC().Format(dateKeyLayout))
}

// LastRunKey is the key of the cached run summary for date
func LastRunKey(date time.Time) string {
	return fmt.Sprintf("%s:run:%s", keyPrefix, date.UTC().Format(dateKeyLayout))
}

// LockRun takes the per-day run lock. Without Redis it returns a nil lock and no error.
func (c *RunCache) LockRun(ctx context.Context, date time.Time, ttl time.Duration) (*Lock, error) {
	if !c.Enabled() {
		return nil, nil
	}
	return c.redis.AcquireLock(ctx, RunLockKey(date), ttl)
}

// SetLastRun caches the run summary for date and drops the cached latest pick
func (c *RunCache) SetLastRun(ctx context.Context, date time.Time, run interface{}) error {
	if !c.Enabled() {
		return ErrNotInitialized
	}
	if err := c.redis.Set(ctx, LastRunKey(date), run, c.RunTTL); err != nil {
		return err
	}
	return c.redis.Delete(ctx, latestPickKey)
}

// GetLastRun decodes the cached run summary for date into dest
func (c *RunCache) GetLastRun(ctx context.Context, date time.Time, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}
	return c.redis.Get(ctx, LastRunKey(date), dest) == nil
}

// GetLatestPick decodes the cached latest pick into dest
func (c *RunCache) GetLatestPick(ctx context.Context, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}
	return c.redis.Get(ctx, latestPickKey, dest) == nil
}

// SetLatestPick caches the latest pick for PickTTL
func (c *RunCache) SetLatestPick(ctx context.Context, pick interface{}) error {
	if !c.Enabled() {
		return ErrNotInitialized
	}
	return c.redis.Set(ctx, latestPickKey, pick, c.PickTTL)
}
