// Package frame provides a fixed-rate tick source.
//
// An [Interval] calls its callback at a steady rate measured against
// absolute deadlines (start + n*period), so a slow callback delays only the
// tick it overran instead of shifting every later one. Deadlines missed
// entirely are dropped rather than replayed in a burst.
//
// Intervals are value-like: changing the rate means stopping the old one and
// building a new one. There is no in-place reconfiguration.
package frame

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// MaxRate caps the tick rate; faster requests run at MaxRate.
const MaxRate = 1000.0

// Interval invokes a callback at a fixed rate. The zero value is not usable;
// construct with New.
type Interval struct {
	period time.Duration
	onTick func()

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	ticks atomic.Uint64
}

// New returns an idle interval ticking rate times per second. A rate that is
// not a positive finite number yields an interval that never ticks.
func New(rate float64, onTick func()) *Interval {
	return &Interval{period: periodFor(rate), onTick: onTick}
}

func periodFor(rate float64) time.Duration {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0
	}
	if rate > MaxRate {
		rate = MaxRate
	}
	return time.Duration(float64(time.Second) / rate)
}

// Period is the time between ticks, or 0 for an interval that never ticks.
func (iv *Interval) Period() time.Duration { return iv.period }

// Ticks reports how many callbacks have completed since construction.
func (iv *Interval) Ticks() uint64 { return iv.ticks.Load() }

// Running reports whether the interval is started.
func (iv *Interval) Running() bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.running
}

// Start begins ticking. It is a no-op when already running, when the rate
// was not positive, or when there is no callback. The first tick fires one
// period after Start.
func (iv *Interval) Start() {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.running || iv.period <= 0 || iv.onTick == nil {
		return
	}
	iv.running = true
	iv.stop = make(chan struct{})
	iv.done = make(chan struct{})
	go iv.loop(iv.stop, iv.done)
}

// Stop halts ticking and waits for a callback in progress to return. When
// Stop returns no callback is running and none will start. Stopping an idle
// interval is a no-op. Stop must not be called from the callback itself.
func (iv *Interval) Stop() {
	iv.mu.Lock()
	done := iv.done
	if iv.running {
		iv.running = false
		close(iv.stop)
	}
	iv.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (iv *Interval) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	next := time.Now().Add(iv.period)
	timer := time.NewTimer(iv.period)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		// Stop may have raced the timer.
		select {
		case <-stop:
			return
		default:
		}

		iv.onTick()
		iv.ticks.Add(1)

		now := time.Now()
		next = next.Add(iv.period)
		if !next.After(now) {
			missed := now.Sub(next)/iv.period + 1
			next = next.Add(missed * iv.period)
		}
		timer.Reset(next.Sub(now))
	}
}
