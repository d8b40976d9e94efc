package redisstore

import (
	"context"
	"fmt"
	"time"

	"subscription_tracker/internal/domain/reminder"

	"github.com/redis/go-redis/v9"
)

const markerPrefix = "reminders:notified:"

// DefaultMarkerTTL outlives the longest lead window, so a marker survives until its renewal date passes.
const DefaultMarkerTTL = time.Duration(reminder.MaxLeadDays+7) * 24 * time.Hour

// MarkerStore keeps "already reminded" markers in Redis, one key per subscription renewal.
type MarkerStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewMarkerStore(rdb redis.Cmdable, ttl time.Duration) *MarkerStore {
	if ttl <= 0 {
		ttl = DefaultMarkerTTL
	}
	return &MarkerStore{rdb: rdb, ttl: ttl}
}

func markerKey(subscriptionID string, renewalDate time.Time) string {
	return markerPrefix + reminder.MarkerKey(subscriptionID, renewalDate)
}

func (m *MarkerStore) IsNotified(ctx context.Context, subscriptionID string, renewalDate time.Time) (bool, error) {
	n, err := m.rdb.Exists(ctx, markerKey(subscriptionID, renewalDate)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check reminder marker: %w", err)
	}
	return n > 0, nil
}

func (m *MarkerStore) MarkNotified(ctx context.Context, subscriptionID string, renewalDate time.Time) error {
	if err := m.rdb.Set(ctx, markerKey(subscriptionID, renewalDate), 1, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store reminder marker: %w", err)
	}
	return nil
}
