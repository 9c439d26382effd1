package freqsketch

import (
	"context"
	"log/slog"

	"github.com/Borislavv/go-freq-sketch/config"
	"github.com/Borislavv/go-freq-sketch/internal/admission"
	"github.com/Borislavv/go-freq-sketch/internal/telemetry"
)

// Admitter is a TinyLFU admission policy built on the frequency sketch:
// a doorkeeper absorbs first-sight noise and Allow compares candidate and
// victim frequency estimates. With a nil admission config section every
// candidate is admitted unconditionally.
//
// Same concurrency contract as Sketch: externally synchronized.
type Admitter[T any] struct {
	hash  Hasher[T]
	ctl   admission.Control
	stats *counters
	logs  telemetry.Logger
	cls   context.CancelFunc
}

// NewAdmitter builds an admission controller from cfg.
func NewAdmitter[T any](
	ctx context.Context,
	cfg *config.Sketch,
	hash Hasher[T],
	logger *slog.Logger,
) (*Admitter[T], error) {
	cfg.AdjustConfig()

	ctl, err := admission.New(cfg.Admission, cfg.Capacity, cfg.SampleMultiplier)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	a := &Admitter[T]{hash: hash, ctl: ctl, stats: newCounters(), cls: cancel}
	a.logs = telemetry.New(ctx, cfg.Telemetry, logger, a)

	return a, nil
}

// Record observes one access to v.
func (a *Admitter[T]) Record(v T) {
	a.ctl.Record(a.hash(v))
}

// Allow reports whether candidate is hot enough to displace victim.
func (a *Admitter[T]) Allow(candidate, victim T) bool {
	ok := a.ctl.Allow(a.hash(candidate), a.hash(victim))
	if ok {
		a.stats.allowed.Add(1)
	} else {
		a.stats.rejected.Add(1)
	}
	return ok
}

// Estimate returns the candidate's frequency estimate (for diagnostics).
func (a *Admitter[T]) Estimate(v T) int {
	return a.ctl.Estimate(a.hash(v))
}

// Reset forces an aging pass and clears the doorkeeper.
func (a *Admitter[T]) Reset() {
	a.ctl.Reset()
}

// Stats samples the cumulative admission counters.
func (a *Admitter[T]) Stats() telemetry.Stats {
	return telemetry.Stats{
		Allowed:  a.stats.allowed.Load(),
		Rejected: a.stats.rejected.Load(),
	}
}

// Close stops the telemetry loop, if any.
func (a *Admitter[T]) Close() error {
	if a.logs != nil {
		_ = a.logs.Close()
	}
	a.cls()
	return nil
}
