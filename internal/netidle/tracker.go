// Package netidle decides when a page navigation is complete based on a
// quiet period in network activity rather than a DOM event.
//
// The policy matches Chrome's "network almost idle" lifecycle signal: the
// page is considered loaded once no more than MaxInflight requests have
// been pending for QuietPeriod.
package netidle

import (
	"context"
	"sync"
	"time"
)

// Idle-detection policy.
const (
	MaxInflight = 2
	QuietPeriod = 500 * time.Millisecond
)

// FailureFunc receives requests that failed at the network layer.
type FailureFunc func(url, reason string)

// Tracker counts in-flight requests reported by a browser event stream.
// All methods are safe for concurrent use.
type Tracker struct {
	quiet       time.Duration
	maxInflight int

	mu        sync.Mutex
	inflight  map[string]string // request ID -> URL
	urls      map[string]string // every request seen, for failure lookup
	idleSince time.Time         // zero while busy
	onFailure FailureFunc

	changed chan struct{}
	now     func() time.Time
}

// New returns a Tracker using the default policy.
func New() *Tracker {
	return NewWithPolicy(QuietPeriod, MaxInflight)
}

// NewWithPolicy returns a Tracker with a custom quiet period and in-flight
// threshold.
func NewWithPolicy(quiet time.Duration, maxInflight int) *Tracker {
	if maxInflight < 0 {
		maxInflight = 0
	}
	t := &Tracker{
		quiet:       quiet,
		maxInflight: maxInflight,
		inflight:    make(map[string]string),
		urls:        make(map[string]string),
		changed:     make(chan struct{}, 1),
		now:         time.Now,
	}
	t.idleSince = t.now()
	return t
}

// OnFailure registers the observer for failed requests. Passing nil removes it.
func (t *Tracker) OnFailure(fn FailureFunc) {
	t.mu.Lock()
	t.onFailure = fn
	t.mu.Unlock()
}

// Started records a request leaving the page.
func (t *Tracker) Started(id, url string) {
	t.mu.Lock()
	wasIdle := t.isIdleLocked()
	t.inflight[id] = url
	t.urls[id] = url
	if wasIdle && !t.isIdleLocked() {
		t.idleSince = time.Time{}
	}
	t.mu.Unlock()
	t.notify()
}

// Finished records a request that completed.
func (t *Tracker) Finished(id string) {
	t.mu.Lock()
	t.removeLocked(id)
	t.mu.Unlock()
	t.notify()
}

// Failed records a request that failed and reports it to the observer.
// The observer is called outside the lock.
func (t *Tracker) Failed(id, reason string) {
	t.mu.Lock()
	url, ok := t.urls[id]
	if !ok {
		url = id
	}
	t.removeLocked(id)
	fn := t.onFailure
	t.mu.Unlock()
	t.notify()

	if fn != nil {
		fn(url, reason)
	}
}

// Restart begins a fresh quiet period if the network is idle now. Call it
// once navigation returns so activity during page load cannot count toward
// the quiet period.
func (t *Tracker) Restart() {
	t.mu.Lock()
	if t.isIdleLocked() {
		t.idleSince = t.now()
	}
	t.mu.Unlock()
	t.notify()
}

// Inflight returns the number of pending requests.
func (t *Tracker) Inflight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}

// Wait blocks until the idle policy is satisfied or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	for {
		t.mu.Lock()
		idle := t.isIdleLocked()
		since := t.idleSince
		t.mu.Unlock()

		var timer *time.Timer
		var fire <-chan time.Time
		if idle {
			remaining := t.quiet - t.now().Sub(since)
			if remaining <= 0 {
				return nil
			}
			timer = time.NewTimer(remaining)
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return ctx.Err()
		case <-t.changed:
			stopTimer(timer)
		case <-fire:
		}
	}
}

func (t *Tracker) removeLocked(id string) {
	if _, ok := t.inflight[id]; !ok {
		return
	}
	wasIdle := t.isIdleLocked()
	delete(t.inflight, id)
	if !wasIdle && t.isIdleLocked() {
		t.idleSince = t.now()
	}
}

func (t *Tracker) isIdleLocked() bool {
	return len(t.inflight) <= t.maxInflight
}

// notify wakes a pending Wait without blocking.
func (t *Tracker) notify() {
	select {
	case t.changed <- struct{}{}:
	default:
	}
}

func stopTimer(timer *time.Timer) {
	if timer != nil {
		timer.Stop()
	}
}
