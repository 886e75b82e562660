package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned when another turn holds the session lock past the wait budget
var ErrLockNotAcquired = errors.New("session lock not acquired")

// releaseScript deletes the lock only if it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TurnLock is a Redis lease that serializes turns for one session across instances
type TurnLock struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewTurnLock creates a lock whose lease expires after ttl and whose Lock gives up after wait
func NewTurnLock(client *redis.Client, ttl, wait time.Duration) *TurnLock {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if wait <= 0 {
		wait = 30 * time.Second
	}
	return &TurnLock{client: client, ttl: ttl, wait: wait, retry: 50 * time.Millisecond}
}

func (l *TurnLock) key(sessionID string) string {
	return fmt.Sprintf("interview:lock:%s", sessionID)
}

// Lock blocks until the session lease is acquired, ctx ends, or the wait budget is spent
func (l *TurnLock) Lock(ctx context.Context, sessionID string) (func(), error) {
	token := uuid.NewString()
	key := l.key(sessionID)
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("cache: lock %s: %w", sessionID, err)
		}
		if ok {
			return func() {
				// Release with a fresh context so a cancelled request still frees the lease.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				releaseScript.Run(releaseCtx, l.client, []string{key}, token)
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockNotAcquired, sessionID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
