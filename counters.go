package freqsketch

import "sync/atomic"

// counters are cumulative and atomic so the telemetry loop can sample them
// from its own goroutine while the sketch itself stays unsynchronized.
type counters struct {
	increments atomic.Int64
	saturated  atomic.Int64
	agings     atomic.Int64
	resizes    atomic.Int64
	allowed    atomic.Int64
	rejected   atomic.Int64
}

func newCounters() *counters {
	return &counters{}
}
