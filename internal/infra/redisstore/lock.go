package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RunLockKey is shared by every replica running the reminder scheduler.
const RunLockKey = "reminders:run-lock"

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock is a single-holder lock over SET NX PX with a per-acquisition token.
type RunLock struct {
	rdb    redis.Cmdable
	key    string
	ttl    time.Duration
	logger *logrus.Entry
}

// NewRunLock returns a lock held for at most ttl, which should exceed the longest run.
func NewRunLock(rdb redis.Cmdable, ttl time.Duration, logger *logrus.Entry) *RunLock {
	return &RunLock{rdb: rdb, key: RunLockKey, ttl: ttl, logger: logger}
}

func (l *RunLock) TryAcquire(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()
	acquired, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func() {
		// The run context may already be cancelled; release on a fresh one.
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err(); err != nil {
			l.logger.WithError(err).Warn("Failed to release reminder run lock")
		}
	}
	return release, true, nil
}
