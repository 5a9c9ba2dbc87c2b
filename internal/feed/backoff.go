package feed

import "time"

const (
	baseDelay = 1 * time.Second
	maxDelay  = 60 * time.Second
)

// backoffDelay returns the exponential reconnect delay for a given
// retry count: baseDelay * 2^retry, capped at maxDelay.
func backoffDelay(retry int) time.Duration {
	if retry < 0 {
		return baseDelay
	}
	// 2^30 seconds is already far past the cap
	if retry > 30 {
		return maxDelay
	}

	delay := baseDelay * time.Duration(1<<retry)
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}
