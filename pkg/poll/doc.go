// Package poll paces repeated state refreshes against a receiver.
//
// This package handles:
//   - Fixed-interval polling while the receiver is reachable
//   - Exponential backoff while it is not
//   - Jitter to spread probes from multiple pollers
//
// # Pacing
//
// While polls succeed, cycles run every Interval (measured from the end
// of one cycle to the start of the next). A failed poll switches the
// wait to the backoff schedule:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds
//  4. Continue at 60s until a poll succeeds
//  5. Reset to 1s after the next success
//
// # Jitter
//
// Waits get a random addition of up to 25% of the base delay:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// # Overlap
//
// A Poller runs its target from a single loop, so polls for one target
// never overlap. Targets for other zones get their own Poller.
package poll
