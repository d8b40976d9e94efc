package subscription

import (
	"context"
	"time"
)

// Filter selects subscriptions by equality and date-range predicates.
// Zero values mean "no constraint".
type Filter struct {
	OwnerID             string
	ActiveOnly          bool
	ReminderEnabledOnly bool
	RenewalFrom         time.Time // inclusive, calendar date
	RenewalTo           time.Time // inclusive, calendar date
}

// Repository defines the operations for persisting and retrieving Subscription records.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, ownerID, id string) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, filter Filter) ([]*Subscription, error) // Ordered by renewal date, then ID
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}
