package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"subscription_tracker/internal/app" // For ReminderService interface
	"subscription_tracker/internal/domain/reminder"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderJobName identifies the daily reminder job. Registering it again replaces the old entry.
const ReminderJobName = "daily_reminder_check"

// DefaultRunTimeout bounds every reminder run, scheduled or manual.
const DefaultRunTimeout = 10 * time.Minute

// RunLockMargin is added to the run timeout to size the distributed lock TTL,
// so the lock outlives any run that holds it.
const RunLockMargin = 5 * time.Minute

const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

var ErrRunInProgress = errors.New("a reminder check is already in progress")

// ErrRunLockHeld is returned when another instance holds the distributed run lock.
// It matches ErrRunInProgress under errors.Is.
var ErrRunLockHeld = fmt.Errorf("%w on another instance", ErrRunInProgress)

// RunReporter receives the outcome of every reminder run. summary is nil when err is set.
type RunReporter interface {
	ReportRun(ctx context.Context, trigger string, summary *reminder.Summary, duration time.Duration, err error)
}

// RunLock guards runs across processes. acquired is false when another holder has it.
type RunLock interface {
	TryAcquire(ctx context.Context) (release func(), acquired bool, err error)
}

type Option func(*ReminderScheduler)

func WithReporters(reporters ...RunReporter) Option {
	return func(s *ReminderScheduler) { s.reporters = append(s.reporters, reporters...) }
}

func WithRunLock(lock RunLock) Option {
	return func(s *ReminderScheduler) { s.lock = lock }
}

// LockTTL returns the distributed lock TTL for a run timeout.
func LockTTL(runTimeout time.Duration) time.Duration {
	return runTimeout + RunLockMargin
}

func WithRunTimeout(d time.Duration) Option {
	return func(s *ReminderScheduler) { s.runTimeout = d }
}

type ReminderScheduler struct {
	cronEngine      *cron.Cron
	reminderService app.ReminderService // Using the interface
	logger          *logrus.Entry
	cronSpec        string
	reporters       []RunReporter
	lock            RunLock
	runTimeout      time.Duration

	mu      sync.Mutex // guards running and jobs
	running bool
	jobs    map[string]cron.EntryID

	runMu sync.Mutex // held for the duration of one reminder run
}

func NewReminderScheduler(
	reminderService app.ReminderService,
	logger *logrus.Entry,
	cronSpec string, // e.g., "0 9 * * *" (9 AM daily)
	location *time.Location,
	opts ...Option,
) *ReminderScheduler {
	if location == nil {
		location = time.Local
	}
	cronLogger := cron.PrintfLogger(logger.WithField("source", "cron"))
	s := &ReminderScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger)),
		),
		reminderService: reminderService,
		logger:          logger,
		cronSpec:        cronSpec,
		runTimeout:      DefaultRunTimeout,
		jobs:            make(map[string]cron.EntryID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the daily job and starts the cron engine. Calling it while running is a no-op.
func (s *ReminderScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("Reminder scheduler is already running")
		return nil
	}

	s.logger.WithField("cron_spec", s.cronSpec).Info("Starting reminder scheduler...")
	if err := s.registerJobLocked(ReminderJobName, s.cronSpec, s.runScheduled); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.running = true
	s.logger.Info("Reminder scheduler started")
	return nil
}

// Stop stops the cron engine and waits for a running job. Safe to call when stopped.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped")
}

func (s *ReminderScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RegisterJob adds a named job, replacing any job registered under the same name.
func (s *ReminderScheduler) RegisterJob(name, spec string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerJobLocked(name, spec, fn)
}

func (s *ReminderScheduler) registerJobLocked(name, spec string, fn func()) error {
	if id, ok := s.jobs[name]; ok {
		s.cronEngine.Remove(id)
		delete(s.jobs, name)
		s.logger.WithField("job", name).Info("Replacing existing job registration")
	}
	id, err := s.cronEngine.AddFunc(spec, fn)
	if err != nil {
		return fmt.Errorf("could not add %s cron job: %w", name, err)
	}
	s.jobs[name] = id
	return nil
}

// NextRun returns the next activation time of the reminder job, zero if it is not registered.
func (s *ReminderScheduler) NextRun() time.Time {
	s.mu.Lock()
	id, ok := s.jobs[ReminderJobName]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cronEngine.Entry(id).Next
}

func (s *ReminderScheduler) runScheduled() {
	s.logger.Info("Cron job triggered for daily reminder check")

	_, err := s.run(context.Background(), TriggerScheduled)
	switch {
	case errors.Is(err, ErrRunLockHeld):
		s.logger.Info("Reminder check is running on another instance, skipping this trigger")
	case errors.Is(err, ErrRunInProgress):
		s.logger.Warn("Previous reminder check still in progress, skipping this trigger")
	}
}

// TriggerManualCheck runs the reminder check now. It fails with ErrRunInProgress
// instead of waiting when another run holds the guard.
func (s *ReminderScheduler) TriggerManualCheck(ctx context.Context) (*reminder.Summary, error) {
	s.logger.Info("Manual reminder check requested")
	return s.run(ctx, TriggerManual)
}

func (s *ReminderScheduler) run(ctx context.Context, trigger string) (*reminder.Summary, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	log := s.logger.WithField("trigger", trigger)

	if s.lock != nil {
		release, acquired, err := s.lock.TryAcquire(ctx)
		switch {
		case err != nil:
			log.WithError(err).Warn("Distributed run lock unavailable, relying on the local guard")
		case !acquired:
			log.Info("Another instance holds the reminder run lock")
			return nil, ErrRunLockHeld
		default:
			defer release()
		}
	}

	start := time.Now()
	summary, err := s.reminderService.RunReminderCheck(ctx)
	duration := time.Since(start)

	if err != nil {
		log.WithError(err).Error("Reminder check failed")
	} else {
		log.WithFields(logrus.Fields{
			"checked":     summary.Checked,
			"sent":        summary.Sent,
			"failed":      summary.Failed,
			"skipped":     summary.Skipped,
			"duration_ms": duration.Milliseconds(),
		}).Info("Reminder check completed")
		for _, e := range summary.Errors {
			log.Error(e)
		}
	}

	for _, r := range s.reporters {
		r.ReportRun(ctx, trigger, summary, duration, err)
	}
	return summary, err
}
