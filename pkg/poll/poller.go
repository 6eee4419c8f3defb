package poll

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the pause between successful poll cycles.
const DefaultInterval = 5 * time.Second

// Target is anything that refreshes its state on demand and reports
// whether the refresh reached the device. *avr.Device satisfies it.
type Target interface {
	Poll(ctx context.Context) bool
}

// Poller drives one Target: a cycle every Interval while the target is
// reachable, the backoff schedule while it is not. The loop runs the
// target from a single goroutine, so cycles never overlap.
type Poller struct {
	target   Target
	interval time.Duration
	backoff  *Backoff

	mu        sync.Mutex
	onResult  func(ok bool)
	onBackoff func(attempt int, delay time.Duration)
}

// New creates a Poller for target. A non-positive interval means
// DefaultInterval.
func New(target Target, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		target:   target,
		interval: interval,
		backoff:  NewBackoff(),
	}
}

// NewWithBackoff creates a Poller with a custom backoff schedule.
func NewWithBackoff(target Target, interval time.Duration, backoff *Backoff) *Poller {
	p := New(target, interval)
	if backoff != nil {
		p.backoff = backoff
	}
	return p
}

// OnResult sets a callback invoked after every cycle.
func (p *Poller) OnResult(fn func(ok bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onResult = fn
}

// OnBackoff sets a callback invoked before each backoff wait.
func (p *Poller) OnBackoff(fn func(attempt int, delay time.Duration)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onBackoff = fn
}

// Run polls until ctx is cancelled. The first cycle starts immediately;
// each wait is measured from the end of the previous cycle.
func (p *Poller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ok := p.target.Poll(ctx)
		p.notifyResult(ok)

		var delay time.Duration
		if ok {
			p.backoff.Reset()
			delay = p.interval
		} else {
			delay = p.backoff.Next()
			p.notifyBackoff(p.backoff.Attempts(), delay)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (p *Poller) notifyResult(ok bool) {
	p.mu.Lock()
	fn := p.onResult
	p.mu.Unlock()
	if fn != nil {
		fn(ok)
	}
}

func (p *Poller) notifyBackoff(attempt int, delay time.Duration) {
	p.mu.Lock()
	fn := p.onBackoff
	p.mu.Unlock()
	if fn != nil {
		fn(attempt, delay)
	}
}
