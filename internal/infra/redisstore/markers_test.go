package redisstore

import (
	"context"
	"testing"
	"time"

	"subscription_tracker/internal/infra/config"
	"subscription_tracker/internal/infra/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestMarkerKey(t *testing.T) {
	renewal := time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "reminders:notified:sub-1:2026-10-24", markerKey("sub-1", renewal))
}

func TestNewMarkerStore_DefaultTTL(t *testing.T) {
	store := NewMarkerStore(unreachableClient(t), 0)
	assert.Equal(t, DefaultMarkerTTL, store.ttl)
	assert.Greater(t, DefaultMarkerTTL, 30*24*time.Hour)
}

func TestMarkerStore_ErrorsWhenRedisIsDown(t *testing.T) {
	store := NewMarkerStore(unreachableClient(t), time.Hour)
	renewal := time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC)

	_, err := store.IsNotified(context.Background(), "sub-1", renewal)
	assert.Error(t, err)
	assert.Error(t, store.MarkNotified(context.Background(), "sub-1", renewal))
}

func TestRunLock_ErrorsWhenRedisIsDown(t *testing.T) {
	lock := NewRunLock(unreachableClient(t), time.Minute, logger.Discard())

	release, acquired, err := lock.TryAcquire(context.Background())
	assert.Error(t, err)
	assert.False(t, acquired)
	assert.Nil(t, release)
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClient(config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
