package client

import "time"

// Backoff schedules reconnect attempts: Base*2^attempt, capped at Max, for at
// most MaxAttempts attempts.
type Backoff struct {
	Base        time.Duration
	Max         time.Duration
	MaxAttempts int

	attempt int
}

func NewBackoff(base, maxDelay time.Duration, maxAttempts int) *Backoff {
	return &Backoff{Base: base, Max: maxDelay, MaxAttempts: maxAttempts}
}

// Next returns the delay before the next attempt and counts it. ok is false
// once the attempts are used up.
func (b *Backoff) Next() (delay time.Duration, ok bool) {
	if b.attempt >= b.MaxAttempts {
		return 0, false
	}
	delay = b.Max
	if b.attempt < 32 {
		if d := b.Base << uint(b.attempt); d > 0 && d < b.Max {
			delay = d
		}
	}
	b.attempt++
	return delay, true
}

func (b *Backoff) Attempt() int {
	return b.attempt
}

func (b *Backoff) Reset() {
	b.attempt = 0
}
