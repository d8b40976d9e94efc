package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MarkerStore remembers which renewal dates already had a reminder sent.
type MarkerStore interface {
	IsNotified(ctx context.Context, subscriptionID string, renewalDate time.Time) (bool, error)
	MarkNotified(ctx context.Context, subscriptionID string, renewalDate time.Time) error
}

// MarkerKey identifies one renewal cycle of a subscription.
func MarkerKey(subscriptionID string, renewalDate time.Time) string {
	return fmt.Sprintf("%s:%s", subscriptionID, renewalDate.Format(DateLayout))
}

// MemoryMarkerStore is a process-local MarkerStore. Markers are lost on restart.
type MemoryMarkerStore struct {
	mu      sync.Mutex
	entries map[string]struct{}
}

func NewMemoryMarkerStore() *MemoryMarkerStore {
	return &MemoryMarkerStore{entries: make(map[string]struct{})}
}

func (m *MemoryMarkerStore) IsNotified(_ context.Context, subscriptionID string, renewalDate time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[MarkerKey(subscriptionID, renewalDate)]
	return ok, nil
}

func (m *MemoryMarkerStore) MarkNotified(_ context.Context, subscriptionID string, renewalDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[MarkerKey(subscriptionID, renewalDate)] = struct{}{}
	return nil
}
