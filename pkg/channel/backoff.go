package channel

import (
	"math/rand"
	"time"
)

const (
	DefaultReconnectBase = 500 * time.Millisecond
	DefaultReconnectMax  = 4 * time.Second

	// maxJitter bounds the random stretch applied to a delay.
	maxJitter = 0.2
)

// Backoff computes reconnect delays. The schedule doubles from Base and
// saturates at Max: delay(n) = min(Base * 2^n, Max). A Jitter above zero
// stretches each delay by a random factor in [1-Jitter, 1+Jitter] and
// clamps the result to Max again, so the cap holds either way. Jitter
// values above 0.2 are treated as 0.2. With Jitter zero the schedule is
// fully deterministic.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

// Delay returns the wait before connection attempt number attempt,
// counting failures since the last success from zero.
func (b Backoff) Delay(attempt int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = DefaultReconnectBase
	}
	limit := b.Max
	if limit <= 0 {
		limit = DefaultReconnectMax
	}
	delay := limit
	// shifting beyond 62 bits would wrap around
	if attempt >= 0 && attempt < 63 {
		if shifted := base << attempt; shifted > 0 && shifted < limit {
			delay = shifted
		}
	}
	if b.Jitter > 0 {
		jitter := min(b.Jitter, maxJitter)
		factor := 1 + jitter*(2*rand.Float64()-1) //nolint:gosec // not crypto
		delay = time.Duration(float64(delay) * factor)
		if delay > limit {
			delay = limit
		}
	}
	return delay
}
