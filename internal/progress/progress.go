// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress emits a cosmetic upload progress value.
//
// The value advances on a timer and has no relation to bytes actually
// transferred. The upload controller forces it to 100 when the transport
// settles, whatever the reporter has reached by then.
package progress

import (
	"sync"
	"time"
)

const (
	// Step is the fixed increment applied on every tick.
	Step = 10
	// Max is the terminal progress value; the reporter stops on reaching it.
	Max = 100
)

// Reporter emits Step-sized progress ticks at a fixed interval until it
// reaches Max or is stopped. The zero value is not usable; use New.
type Reporter struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// New returns a Reporter ticking every interval.
func New(interval time.Duration) *Reporter {
	return &Reporter{interval: interval}
}

// Start begins a new emission run from 0, cancelling any run in progress.
// onTick is called from a separate goroutine with each new value.
func (r *Reporter) Start(onTick func(value int)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stop != nil {
		close(r.stop)
	}
	stop := make(chan struct{})
	r.stop = stop

	go r.run(stop, onTick)
}

// Stop cancels the current run. It is safe to call at any time, any
// number of times, and never blocks. A tick already being delivered when
// Stop is called may still arrive after it returns; no later tick is
// started. Callers that must ignore such a tick tag it with their run.
func (r *Reporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
}

func (r *Reporter) run(stop chan struct{}, onTick func(int)) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	value := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		// Both channels may be ready at once; stop wins.
		select {
		case <-stop:
			return
		default:
		}

		value = min(value+Step, Max)
		onTick(value)
		if value >= Max {
			r.finish(stop)
			return
		}
	}
}

// finish forgets the stop channel of a completed run if it is still current.
func (r *Reporter) finish(stop chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop == stop {
		r.stop = nil
	}
}
