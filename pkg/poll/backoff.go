package poll

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Backoff pacing constants.
const (
	// InitialBackoff is the delay after the first failed poll.
	InitialBackoff = 1 * time.Second

	// MaxBackoff is the maximum delay between polls of an unreachable
	// receiver.
	MaxBackoff = 60 * time.Second

	// BackoffMultiplier is the factor by which the delay increases.
	BackoffMultiplier = 2.0

	// JitterFactor is the maximum jitter as a fraction of the base
	// delay.
	JitterFactor = 0.25
)

// BackoffConfig customizes the backoff schedule.
type BackoffConfig struct {
	// Initial is the delay after the first failure.
	Initial time.Duration

	// Max caps the delay.
	Max time.Duration

	// Multiplier grows the delay per consecutive failure.
	Multiplier float64

	// Jitter is the maximum random addition as a fraction of the base
	// delay. Zero disables jitter.
	Jitter float64
}

// Backoff produces the wait schedule for an unreachable receiver: the
// base delay doubles per consecutive failed poll up to a cap, with
// random jitter on top so several drivers polling the same dead host
// do not fall into lockstep.
type Backoff struct {
	mu       sync.Mutex
	cfg      BackoffConfig
	attempts int
}

// NewBackoff creates a Backoff with the default schedule
// (1s, 2s, 4s, ... capped at 60s, up to 25% jitter).
func NewBackoff() *Backoff {
	return NewBackoffWithConfig(BackoffConfig{Jitter: JitterFactor})
}

// NewBackoffWithConfig creates a Backoff with a custom schedule.
// Non-positive Initial, Max and Multiplier fall back to the defaults;
// a negative Jitter disables jitter.
func NewBackoffWithConfig(cfg BackoffConfig) *Backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = InitialBackoff
	}
	if cfg.Max <= 0 {
		cfg.Max = MaxBackoff
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = BackoffMultiplier
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}
	return &Backoff{cfg: cfg}
}

// Next returns the delay to wait before the next poll and records the
// failed attempt.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.jittered(b.base())
	b.attempts++
	return delay
}

// Peek returns the delay Next would return, without recording an
// attempt.
func (b *Backoff) Peek() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jittered(b.base())
}

// Reset clears the failure count. Call after a successful poll.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = 0
}

// Attempts returns the number of failed attempts since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Current returns the base delay for the next wait, without jitter.
func (b *Backoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.base()
}

// base derives the delay from the attempt count. Pow overflowing to
// +Inf still lands on the cap.
func (b *Backoff) base() time.Duration {
	d := float64(b.cfg.Initial) * math.Pow(b.cfg.Multiplier, float64(b.attempts))
	if d >= float64(b.cfg.Max) {
		return b.cfg.Max
	}
	return time.Duration(d)
}

func (b *Backoff) jittered(d time.Duration) time.Duration {
	if b.cfg.Jitter <= 0 {
		return d
	}
	return d + time.Duration(b.cfg.Jitter*rand.Float64()*float64(d))
}
