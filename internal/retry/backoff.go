package retry

import "time"

const (
	baseDelay = 60 * time.Second
	maxDelay  = 300 * time.Second
)

// Backoff returns the delay before the next attempt for a ticket holding
// the given attempt count: 60s doubling per attempt, capped at 300s.
func Backoff(attemptCount int) time.Duration {
	if attemptCount < 0 {
		attemptCount = 0
	}
	if attemptCount > 8 {
		return maxDelay
	}
	delay := baseDelay << uint(attemptCount)
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}
