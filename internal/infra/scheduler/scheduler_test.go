package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"subscription_tracker/internal/domain/reminder"
	"subscription_tracker/internal/domain/subscription"
	"subscription_tracker/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReminderService blocks each run until release is closed, when set.
type stubReminderService struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	summary *reminder.Summary
	err     error

	deadline    time.Time
	hasDeadline bool
}

func (s *stubReminderService) RunReminderCheck(ctx context.Context) (*reminder.Summary, error) {
	s.mu.Lock()
	s.calls++
	s.deadline, s.hasDeadline = ctx.Deadline()
	s.mu.Unlock()
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.summary != nil {
		return s.summary, nil
	}
	return reminder.NewSummary(), nil
}

func (s *stubReminderService) GetUpcomingReminders(_ context.Context, _ string, _ int) ([]*subscription.Subscription, error) {
	return nil, nil
}

func (s *stubReminderService) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingReporter struct {
	mu       sync.Mutex
	triggers []string
	errs     []error
}

func (r *recordingReporter) ReportRun(_ context.Context, trigger string, _ *reminder.Summary, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, trigger)
	r.errs = append(r.errs, err)
}

type stubLock struct {
	acquired bool
	err      error
	released int
}

func (l *stubLock) TryAcquire(_ context.Context) (func(), bool, error) {
	if l.err != nil || !l.acquired {
		return nil, false, l.err
	}
	return func() { l.released++ }, true, nil
}

func newTestScheduler(svc *stubReminderService, opts ...Option) *ReminderScheduler {
	return NewReminderScheduler(svc, logger.Discard(), "0 9 * * *", time.UTC, opts...)
}

func TestStartStop_Idempotent(t *testing.T) {
	s := newTestScheduler(&stubReminderService{})

	s.Stop() // stopped already, no-op
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Len(t, s.cronEngine.Entries(), 1)

	s.Stop()
	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestStart_RestartDoesNotDuplicateJob(t *testing.T) {
	s := newTestScheduler(&stubReminderService{})

	require.NoError(t, s.Start())
	s.Stop()
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.cronEngine.Entries(), 1)
	assert.False(t, s.NextRun().IsZero())
}

func TestRegisterJob_ReplacesByName(t *testing.T) {
	s := newTestScheduler(&stubReminderService{})

	require.NoError(t, s.RegisterJob(ReminderJobName, "0 9 * * *", func() {}))
	require.NoError(t, s.RegisterJob(ReminderJobName, "30 8 * * *", func() {}))
	require.NoError(t, s.RegisterJob("other", "@hourly", func() {}))

	assert.Len(t, s.cronEngine.Entries(), 2)
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewReminderScheduler(&stubReminderService{}, logger.Discard(), "every morning", time.UTC)

	err := s.Start()
	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestTriggerManualCheck_ReturnsSummaryAndReports(t *testing.T) {
	want := &reminder.Summary{Checked: 3, Sent: 1, Errors: []string{}}
	svc := &stubReminderService{summary: want}
	reporter := &recordingReporter{}
	s := newTestScheduler(svc, WithReporters(reporter))

	got, err := s.TriggerManualCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []string{TriggerManual}, reporter.triggers)
}

func TestTriggerManualCheck_FailsFastWhileRunning(t *testing.T) {
	svc := &stubReminderService{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := newTestScheduler(svc)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.runScheduled()
	}()
	<-svc.started

	_, err := s.TriggerManualCheck(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(svc.release)
	<-done
	assert.Equal(t, 1, svc.Calls())

	// Guard is released after the run.
	_, err = s.TriggerManualCheck(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, svc.Calls())
}

func TestRunScheduled_SkipsWhileRunning(t *testing.T) {
	svc := &stubReminderService{started: make(chan struct{}, 1), release: make(chan struct{})}
	reporter := &recordingReporter{}
	s := newTestScheduler(svc, WithReporters(reporter))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.TriggerManualCheck(context.Background())
	}()
	<-svc.started

	s.runScheduled() // returns immediately
	close(svc.release)
	<-done

	assert.Equal(t, 1, svc.Calls())
	assert.Equal(t, []string{TriggerManual}, reporter.triggers)
}

func TestRun_FatalErrorIsReported(t *testing.T) {
	svc := &stubReminderService{err: errors.New("query failed")}
	reporter := &recordingReporter{}
	s := newTestScheduler(svc, WithReporters(reporter))

	summary, err := s.TriggerManualCheck(context.Background())
	assert.Nil(t, summary)
	assert.ErrorContains(t, err, "query failed")
	require.Len(t, reporter.errs, 1)
	assert.Error(t, reporter.errs[0])

	// The scheduled path swallows it.
	s.runScheduled()
	assert.Equal(t, 2, svc.Calls())
}

func TestRun_DistributedLock(t *testing.T) {
	t.Run("held elsewhere", func(t *testing.T) {
		svc := &stubReminderService{}
		s := newTestScheduler(svc, WithRunLock(&stubLock{acquired: false}))

		_, err := s.TriggerManualCheck(context.Background())
		assert.ErrorIs(t, err, ErrRunLockHeld)
		assert.ErrorIs(t, err, ErrRunInProgress)
		assert.Equal(t, 0, svc.Calls())

		s.runScheduled()
		assert.Equal(t, 0, svc.Calls())
	})

	t.Run("acquired and released", func(t *testing.T) {
		svc := &stubReminderService{}
		lock := &stubLock{acquired: true}
		s := newTestScheduler(svc, WithRunLock(lock))

		_, err := s.TriggerManualCheck(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, svc.Calls())
		assert.Equal(t, 1, lock.released)
	})

	t.Run("lock backend down", func(t *testing.T) {
		svc := &stubReminderService{}
		s := newTestScheduler(svc, WithRunLock(&stubLock{err: errors.New("redis: connection refused")}))

		_, err := s.TriggerManualCheck(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, svc.Calls())
	})
}

func TestRun_EveryTriggerIsBounded(t *testing.T) {
	svc := &stubReminderService{}
	s := newTestScheduler(svc, WithRunTimeout(time.Minute))

	before := time.Now()
	_, err := s.TriggerManualCheck(context.WithoutCancel(context.Background()))
	require.NoError(t, err)
	require.True(t, svc.hasDeadline)
	assert.WithinDuration(t, before.Add(time.Minute), svc.deadline, 5*time.Second)

	svc.hasDeadline = false
	s.runScheduled()
	assert.True(t, svc.hasDeadline)
}

func TestLockTTL_OutlivesRunTimeout(t *testing.T) {
	assert.Greater(t, LockTTL(DefaultRunTimeout), DefaultRunTimeout)
	assert.Equal(t, time.Minute+RunLockMargin, LockTTL(time.Minute))
}
