// Package scheduler drives periodic pipeline runs for `jobpilot full --every`.
package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on every tick until ctx is cancelled.
// A tick that fires while the previous run is still going is skipped: pipeline
// runs pace themselves with long sleeps, and overlapping them would double up
// on session and quota accounting.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	var busy atomic.Bool

	run := func() {
		if !busy.CompareAndSwap(false, true) {
			log.Printf("[%s] previous run still in progress, skipping tick", name)
			return
		}
		defer busy.Store(false)
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
			return
		}
		log.Printf("[%s] run finished in %s", name, time.Since(start).Round(time.Second))
	}

	go run()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			go run()
		}
	}
}
