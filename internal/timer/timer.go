// Package timer provides the dashboard's refresh clock: a handle that is
// started and stopped explicitly by whoever owns it.
package timer

import (
	"sync"
	"time"
)

type Timer struct {
	mu       sync.RWMutex
	elapsed  time.Duration
	running  bool
	interval time.Duration
	tick     time.Duration
	fired    chan struct{}
	stopChan chan struct{}
}

// New returns a stopped timer that fires every interval once started.
func New(interval time.Duration) *Timer {
	tick := time.Second
	if interval < tick {
		tick = interval
	}
	return &Timer{
		interval: interval,
		tick:     tick,
		fired:    make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}

	t.running = true
	t.elapsed = 0
	// A value left from the previous run must not fire this one.
	select {
	case <-t.fired:
	default:
	}
	t.stopChan = make(chan struct{})
	stop := t.stopChan

	go func() {
		ticker := time.NewTicker(t.tick)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.mu.Lock()
				if !t.running {
					t.mu.Unlock()
					return
				}
				t.elapsed += t.tick
				due := t.elapsed >= t.interval
				if due {
					t.elapsed = 0
				}
				t.mu.Unlock()

				if due {
					// A refresh that is still pending absorbs this one.
					select {
					case t.fired <- struct{}{}:
					default:
					}
				}
			}
		}
	}()
}

func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}

	t.running = false
	close(t.stopChan)
}

// Reset restarts the countdown, as after a manual refresh.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.elapsed = 0
}

// Fired delivers one value per elapsed interval.
func (t *Timer) Fired() <-chan struct{} {
	return t.fired
}

// Done is closed when the current run is stopped.
func (t *Timer) Done() <-chan struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stopChan
}

func (t *Timer) Remaining() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.elapsed >= t.interval {
		return 0
	}
	return t.interval - t.elapsed
}

func (t *Timer) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}
