package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Attempt-limiter tuning. The first freeAttempts tries per key cost nothing;
// beyond that each failure doubles the cooldown up to maxBackoff. Counters
// live in redis with a 24 h TTL so limits survive restarts and are shared
// across instances.
const (
	freeAttempts = 3
	baseBackoff  = 2 * time.Second
	maxBackoff   = 10 * time.Minute
	attemptTTL   = 24 * time.Hour
)

// AttemptLimiter throttles verification attempts keyed by
// (code id, device fingerprint).
type AttemptLimiter struct {
	client *redis.Client
	now    func() time.Time
}

// NewAttemptLimiter wraps the shared redis client.
func NewAttemptLimiter(client *redis.Client) *AttemptLimiter {
	return &AttemptLimiter{client: client, now: time.Now}
}

func attemptKey(codeID, fingerprint string) string {
	return "attempts:" + codeID + ":" + fingerprint
}

// Allow reports whether another attempt may proceed now, and if not, how long
// the caller must wait.
func (l *AttemptLimiter) Allow(ctx context.Context, codeID, fingerprint string) (bool, time.Duration, error) {
	key := attemptKey(codeID, fingerprint)
	vals, err := l.client.HGetAll(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("read attempt counter: %w", err)
	}
	if len(vals) == 0 {
		return true, 0, nil
	}

	var count int64
	var lastUnix int64
	fmt.Sscan(vals["count"], &count)
	fmt.Sscan(vals["last"], &lastUnix)

	wait := BackoffDelay(count)
	if wait == 0 {
		return true, 0, nil
	}
	elapsed := l.now().Sub(time.Unix(lastUnix, 0))
	if elapsed >= wait {
		return true, 0, nil
	}
	return false, wait - elapsed, nil
}

// Record registers one attempt against the key and refreshes its 24 h expiry.
func (l *AttemptLimiter) Record(ctx context.Context, codeID, fingerprint string) error {
	key := attemptKey(codeID, fingerprint)
	pipe := l.client.TxPipeline()
	pipe.HIncrBy(ctx, key, "count", 1)
	pipe.HSet(ctx, key, "last", l.now().Unix())
	pipe.Expire(ctx, key, attemptTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful verification.
func (l *AttemptLimiter) Reset(ctx context.Context, codeID, fingerprint string) error {
	return l.client.Del(ctx, attemptKey(codeID, fingerprint)).Err()
}

// BackoffDelay is the cooldown required after n recorded attempts: zero
// within the free allowance, then doubling from baseBackoff, capped.
func BackoffDelay(n int64) time.Duration {
	if n < freeAttempts {
		return 0
	}
	over := n - freeAttempts
	if over > 62 {
		return maxBackoff
	}
	d := baseBackoff << uint(over)
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}
