package app

import (
	"context"
	"sort"
	"sync"

	"subscription_tracker/internal/domain/identity"
	"subscription_tracker/internal/domain/reminder"
	"subscription_tracker/internal/domain/settings"
	"subscription_tracker/internal/domain/subscription"
	idb "subscription_tracker/internal/infra/database"

	"github.com/stretchr/testify/mock"
)

// fakeSubscriptionRepo keeps subscriptions in memory and applies Filter the way
// the PostgreSQL repository does. Rows whose date does not parse are returned
// as-is, like a store holding unchecked text.
type fakeSubscriptionRepo struct {
	mu      sync.Mutex
	subs    map[string]*subscription.Subscription
	listErr error
	lists   int
}

func newFakeSubscriptionRepo(subs ...*subscription.Subscription) *fakeSubscriptionRepo {
	r := &fakeSubscriptionRepo{subs: make(map[string]*subscription.Subscription)}
	for _, s := range subs {
		r.subs[s.ID] = s
	}
	return r
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, s *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[s.ID]; ok {
		return idb.ErrDuplicateSubscription
	}
	cp := *s
	r.subs[s.ID] = &cp
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(_ context.Context, ownerID, id string) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok || s.OwnerID != ownerID {
		return nil, idb.ErrSubscriptionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubscriptionRepo) Update(_ context.Context, s *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.subs[s.ID]
	if !ok || existing.OwnerID != s.OwnerID {
		return idb.ErrSubscriptionNotFound
	}
	cp := *s
	r.subs[s.ID] = &cp
	return nil
}

func (r *fakeSubscriptionRepo) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok || s.OwnerID != ownerID {
		return idb.ErrSubscriptionNotFound
	}
	delete(r.subs, id)
	return nil
}

func (r *fakeSubscriptionRepo) List(_ context.Context, f subscription.Filter) ([]*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}

	out := make([]*subscription.Subscription, 0)
	for _, s := range r.subs {
		if f.OwnerID != "" && s.OwnerID != f.OwnerID {
			continue
		}
		if f.ActiveOnly && !s.IsActive {
			continue
		}
		if f.ReminderEnabledOnly && !s.ReminderEnabled {
			continue
		}
		if d, err := reminder.ParseRenewalDate(s.NextRenewalDate); err == nil {
			if !f.RenewalFrom.IsZero() && d.Before(f.RenewalFrom) {
				continue
			}
			if !f.RenewalTo.IsZero() && d.After(f.RenewalTo) {
				continue
			}
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NextRenewalDate != out[j].NextRenewalDate {
			return out[i].NextRenewalDate < out[j].NextRenewalDate
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeSubscriptionRepo) CountByOwner(_ context.Context, ownerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.subs {
		if s.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, ownerID string) (*identity.Identity, error) {
	args := m.Called(ctx, ownerID)
	ident, _ := args.Get(0).(*identity.Identity)
	return ident, args.Error(1)
}

type sentMessage struct {
	To, Subject, Plain, Rich string
}

// recordingDispatcher records every message and reports ok for each.
type recordingDispatcher struct {
	mu   sync.Mutex
	ok   bool
	sent []sentMessage
}

func (d *recordingDispatcher) Send(_ context.Context, to, subject, plain, rich string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentMessage{To: to, Subject: subject, Plain: plain, Rich: rich})
	return d.ok
}

type fakeSettingsRepo struct {
	settings  map[string]*settings.UserSettings
	createErr error
	updates   int
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[string]*settings.UserSettings)}
}

func (r *fakeSettingsRepo) GetByOwner(_ context.Context, ownerID string) (*settings.UserSettings, error) {
	s, ok := r.settings[ownerID]
	if !ok {
		return nil, idb.ErrSettingsNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSettingsRepo) Create(_ context.Context, s *settings.UserSettings) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.settings[s.OwnerID]; ok {
		return idb.ErrSettingsAlreadyExist
	}
	cp := *s
	r.settings[s.OwnerID] = &cp
	return nil
}

func (r *fakeSettingsRepo) Update(_ context.Context, s *settings.UserSettings) error {
	if _, ok := r.settings[s.OwnerID]; !ok {
		return idb.ErrSettingsNotFound
	}
	r.updates++
	cp := *s
	r.settings[s.OwnerID] = &cp
	return nil
}
