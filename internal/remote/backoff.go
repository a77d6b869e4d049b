package remote

import "time"

// MaxBackoff caps reconnect delays.
const MaxBackoff = 30 * time.Second

// Backoff returns the delay before retrying after the given number of
// consecutive failures: base doubled per failure, capped at MaxBackoff.
func Backoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	if failures > 16 {
		return MaxBackoff
	}
	delay := base * time.Duration(1<<uint(failures))
	if delay <= 0 || delay > MaxBackoff {
		return MaxBackoff
	}
	return delay
}
