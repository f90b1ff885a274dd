// Package pool keeps reusable timers for the completion poll loops, which
// wait the same short interval many times per motion.
package pool

import (
	"sync"
	"time"
)

var timers = sync.Pool{
	New: func() any {
		t := time.NewTimer(time.Hour)
		t.Stop()

		return t
	},
}

// GetTimer returns a stopped-and-drained pooled timer armed for d.
// Hand it back with PutTimer once it is no longer read.
func GetTimer(d time.Duration) *time.Timer {
	t, _ := timers.Get().(*time.Timer)
	drain(t)
	t.Reset(d)

	return t
}

// PutTimer stops t and returns it to the pool.
func PutTimer(t *time.Timer) {
	drain(t)
	timers.Put(t)
}

// Sleep blocks for d using a pooled timer. It returns at once when d <= 0.
func Sleep(d time.Duration) {
	if d <= 0 {
		return
	}

	t := GetTimer(d)
	<-t.C
	timers.Put(t)
}

func drain(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
