package lwa

import "time"

// backoff implements the retry delay policy: start at a floor, grow
// multiplicatively per consecutive failure up to a cap, reset to the floor
// on any success. Not safe for concurrent use; only the refresh goroutine
// touches it.
type backoff struct {
	floor  time.Duration
	cap    time.Duration
	factor float64

	next time.Duration
}

func newBackoff(floor, cap time.Duration, factor float64) *backoff {
	return &backoff{floor: floor, cap: cap, factor: factor, next: floor}
}

// Next returns the delay to wait before the upcoming retry and advances the
// policy for the one after it.
func (b *backoff) Next() time.Duration {
	d := b.next

	grown := time.Duration(float64(b.next) * b.factor)
	if grown > b.cap {
		grown = b.cap
	}
	b.next = grown

	return d
}

// Reset returns the policy to its floor delay.
func (b *backoff) Reset() {
	b.next = b.floor
}
