package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"subscription_tracker/internal/domain/plan"
	"subscription_tracker/internal/domain/subscription"
	idb "subscription_tracker/internal/infra/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubscriptionService(repo *fakeSubscriptionRepo) *SubscriptionService {
	svc := NewSubscriptionService(repo, time.UTC)
	svc.now = fixedClock
	return svc
}

func validCreateInput() CreateSubscriptionInput {
	return CreateSubscriptionInput{
		Name:            "Spotify",
		Amount:          9.99,
		BillingCycle:    "monthly",
		NextRenewalDate: "2026-11-01",
		Category:        "Music",
	}
}

func TestCreateSubscription_Defaults(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := newTestSubscriptionService(repo)

	sub, err := svc.CreateSubscription(context.Background(), "owner-1", plan.TierPro, validCreateInput())
	require.NoError(t, err)

	_, err = uuid.Parse(sub.ID)
	assert.NoError(t, err)
	assert.Equal(t, "owner-1", sub.OwnerID)
	assert.Equal(t, "USD", sub.Currency)
	assert.Equal(t, 7, sub.ReminderDaysBefore)
	assert.True(t, sub.IsActive)
	assert.True(t, sub.ReminderEnabled)
	assert.Equal(t, "2026-11-01", sub.NextRenewalDate)
	assert.Len(t, repo.subs, 1)
}

func TestCreateSubscription_NormalizesDates(t *testing.T) {
	svc := newTestSubscriptionService(newFakeSubscriptionRepo())
	in := validCreateInput()
	in.NextRenewalDate = " 2026-11-01T10:00:00Z "
	in.TrialEndDate = "   "

	sub, err := svc.CreateSubscription(context.Background(), "owner-1", plan.TierPro, in)
	require.NoError(t, err)
	assert.Equal(t, "2026-11-01", sub.NextRenewalDate)
	assert.Empty(t, sub.TrialEndDate)
}

func TestCreateSubscription_Validation(t *testing.T) {
	zero, tooLong := 0, 31
	tests := []struct {
		name    string
		mutate  func(*CreateSubscriptionInput)
		wantErr error
	}{
		{"empty renewal date", func(in *CreateSubscriptionInput) { in.NextRenewalDate = "  " }, ErrRenewalDateRequired},
		{"bad renewal date", func(in *CreateSubscriptionInput) { in.NextRenewalDate = "soon" }, ErrInvalidRenewalDate},
		{"bad trial end", func(in *CreateSubscriptionInput) { in.TrialEndDate = "2026-13-01" }, ErrInvalidRenewalDate},
		{"zero lead days", func(in *CreateSubscriptionInput) { in.ReminderDaysBefore = &zero }, ErrInvalidLeadDays},
		{"lead days beyond scan window", func(in *CreateSubscriptionInput) { in.ReminderDaysBefore = &tooLong }, ErrInvalidLeadDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeSubscriptionRepo()
			in := validCreateInput()
			tt.mutate(&in)

			_, err := newTestSubscriptionService(repo).CreateSubscription(context.Background(), "owner-1", plan.TierPro, in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.subs)
		})
	}
}

func TestCreateSubscription_PlanLimit(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	for i := 0; i < 5; i++ {
		s := newTestSub(fmt.Sprintf("sub-%d", i), "owner-1", 10, 7)
		repo.subs[s.ID] = s
	}
	svc := newTestSubscriptionService(repo)

	_, err := svc.CreateSubscription(context.Background(), "owner-1", plan.TierFree, validCreateInput())
	assert.ErrorIs(t, err, ErrSubscriptionLimitReached)

	_, err = svc.CreateSubscription(context.Background(), "owner-1", plan.TierPersonal, validCreateInput())
	assert.ErrorIs(t, err, ErrSubscriptionLimitReached)

	_, err = svc.CreateSubscription(context.Background(), "owner-1", plan.TierFamily, validCreateInput())
	assert.NoError(t, err)

	// Another owner's quota is independent.
	_, err = svc.CreateSubscription(context.Background(), "owner-2", plan.TierFree, validCreateInput())
	assert.NoError(t, err)
}

func TestUpdateSubscription_Partial(t *testing.T) {
	repo := newFakeSubscriptionRepo(newTestSub("sub-1", "owner-1", 10, 7))
	svc := newTestSubscriptionService(repo)
	amount, lead, enabled := 17.49, 3, false

	sub, err := svc.UpdateSubscription(context.Background(), "owner-1", "sub-1", UpdateSubscriptionInput{
		Amount:             &amount,
		ReminderDaysBefore: &lead,
		ReminderEnabled:    &enabled,
	})
	require.NoError(t, err)

	assert.Equal(t, 17.49, sub.Amount)
	assert.Equal(t, 3, sub.ReminderDaysBefore)
	assert.False(t, sub.ReminderEnabled)
	assert.Equal(t, "Netflix", sub.Name)
	assert.Equal(t, dueIn(10), repo.subs["sub-1"].NextRenewalDate)
	assert.Equal(t, 17.49, repo.subs["sub-1"].Amount)
}

func TestUpdateSubscription_EmptyRenewalDateRejected(t *testing.T) {
	repo := newFakeSubscriptionRepo(newTestSub("sub-1", "owner-1", 10, 7))
	empty := ""

	_, err := newTestSubscriptionService(repo).UpdateSubscription(context.Background(), "owner-1", "sub-1", UpdateSubscriptionInput{
		NextRenewalDate: &empty,
	})
	assert.ErrorIs(t, err, ErrRenewalDateRequired)
	assert.Equal(t, dueIn(10), repo.subs["sub-1"].NextRenewalDate)
}

func TestUpdateSubscription_ClearsTrialEnd(t *testing.T) {
	existing := newTestSub("sub-1", "owner-1", 10, 7)
	existing.IsTrial = true
	existing.TrialEndDate = "2026-10-30"
	repo := newFakeSubscriptionRepo(existing)
	empty, notTrial := "", false

	sub, err := newTestSubscriptionService(repo).UpdateSubscription(context.Background(), "owner-1", "sub-1", UpdateSubscriptionInput{
		TrialEndDate: &empty,
		IsTrial:      &notTrial,
	})
	require.NoError(t, err)
	assert.Empty(t, sub.TrialEndDate)
	assert.False(t, sub.IsTrial)
}

func TestSubscriptionOwnership(t *testing.T) {
	repo := newFakeSubscriptionRepo(newTestSub("sub-1", "owner-1", 10, 7))
	svc := newTestSubscriptionService(repo)
	ctx := context.Background()
	name := "Hijacked"

	_, err := svc.GetSubscription(ctx, "owner-2", "sub-1")
	assert.ErrorIs(t, err, idb.ErrSubscriptionNotFound)

	_, err = svc.UpdateSubscription(ctx, "owner-2", "sub-1", UpdateSubscriptionInput{Name: &name})
	assert.ErrorIs(t, err, idb.ErrSubscriptionNotFound)

	err = svc.DeleteSubscription(ctx, "owner-2", "sub-1")
	assert.ErrorIs(t, err, idb.ErrSubscriptionNotFound)

	require.NoError(t, svc.DeleteSubscription(ctx, "owner-1", "sub-1"))
	assert.Empty(t, repo.subs)
}

func TestUpcomingRenewals(t *testing.T) {
	inactive := newTestSub("sub-3", "owner-1", 2, 7)
	inactive.IsActive = false
	repo := newFakeSubscriptionRepo(
		newTestSub("sub-1", "owner-1", 6, 7),
		newTestSub("sub-2", "owner-1", 2, 30),
		inactive,
		newTestSub("sub-4", "owner-1", 8, 7),
	)
	svc := newTestSubscriptionService(repo)

	subs, err := svc.UpcomingRenewals(context.Background(), "owner-1", 7)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "sub-2", subs[0].ID)
	assert.Equal(t, "sub-1", subs[1].ID)

	_, err = svc.UpcomingRenewals(context.Background(), "owner-1", -3)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestListSubscriptions_OrderedByRenewal(t *testing.T) {
	repo := newFakeSubscriptionRepo(
		newTestSub("b", "owner-1", 20, 7),
		newTestSub("a", "owner-1", 5, 7),
		newTestSub("c", "owner-2", 1, 7),
	)

	subs, err := newTestSubscriptionService(repo).ListSubscriptions(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, []string{"a", "b"}, []string{subs[0].ID, subs[1].ID})
	assert.Equal(t, subscription.BillingCycleMonthly, subs[0].BillingCycle)
}
