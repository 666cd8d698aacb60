package feed

import (
	rand "math/rand/v2"
	"time"
)

// jitterBackoff implements decorrelated jitter backoff ("Full Jitter" variant)
// with a cap.
// See: https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
//
// Given the previous delay, the next delay is base plus a random amount drawn
// from up to prev*mult-base, clamped to capDur.
//
// Behavior:
//   - If prev <= 0, start from base
//   - mult < 1.0 falls back to 1.0 (no growth)
//   - capDur <= base returns capDur
func jitterBackoff(prev, base time.Duration, mult float64, capDur time.Duration) time.Duration {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	if mult < 1.0 {
		mult = 1.0
	}
	if capDur > 0 && capDur < base {
		return capDur
	}

	if prev <= 0 {
		if capDur > 0 && base > capDur {
			return capDur
		}

		return base
	}

	maxDelay := time.Duration(float64(prev)*mult) - base
	if maxDelay <= 0 {
		maxDelay = base
	}
	next := base + time.Duration(rand.Int64N(int64(maxDelay))) //nolint:gosec // non-crypto backoff jitter
	if capDur > 0 && next > capDur {
		return capDur
	}

	return next
}
