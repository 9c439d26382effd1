package freqsketch

import (
	"context"
	"log/slog"

	"github.com/Borislavv/go-freq-sketch/config"
	"github.com/Borislavv/go-freq-sketch/internal/dump"
	"github.com/Borislavv/go-freq-sketch/internal/freq"
	"github.com/Borislavv/go-freq-sketch/internal/telemetry"
)

// Re-exported sentinels so callers don't need the internal packages.
var (
	ErrInvalidCapacity = freq.ErrInvalidCapacity
	ErrDumpNotEnabled  = dump.ErrDumpNotEnabled
)

// Sketch estimates, approximately and with bounded memory, how frequently
// each distinct element has been observed recently, without storing the
// elements themselves. Estimates are biased high (Count-Min property): the
// true frequency never exceeds the estimate, and counters decay over time
// through periodic halving, so the estimate reflects recent access patterns.
//
// Not safe for concurrent use: callers provide external mutual exclusion
// (typically the lock already guarding the cache the sketch serves).
type Sketch[T any] struct {
	hash   Hasher[T]
	table  *freq.Table
	stats  *counters
	dumper dump.Dumper
	logs   telemetry.Logger
	cls    context.CancelFunc
}

// New builds a sketch dimensioned for capacity distinct elements.
// Fails with ErrInvalidCapacity when capacity <= 0.
func New[T any](capacity int, hash Hasher[T]) (*Sketch[T], error) {
	return newSketch(capacity, 0, hash)
}

// NewString is New with the xxh3 string hasher.
func NewString(capacity int) (*Sketch[string], error) {
	return New(capacity, StringHasher)
}

// NewBytes is New with the xxh3 byte-slice hasher.
func NewBytes(capacity int) (*Sketch[[]byte], error) {
	return New(capacity, BytesHasher)
}

// NewFromConfig builds a sketch with the optional subsystems wired in:
// dump persistence and the periodic telemetry logger, each active only when
// its config section is present.
func NewFromConfig[T any](
	ctx context.Context,
	cfg *config.Sketch,
	hash Hasher[T],
	logger *slog.Logger,
) (*Sketch[T], error) {
	cfg.AdjustConfig()

	s, err := newSketch(cfg.Capacity, cfg.SampleMultiplier, hash)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cls = cancel

	if cfg.Dump.Enabled() {
		s.dumper = dump.New(cfg.Dump, s.table)
	}
	s.logs = telemetry.New(ctx, cfg.Telemetry, logger, s)

	return s, nil
}

func newSketch[T any](capacity, sampleMultiplier int, hash Hasher[T]) (*Sketch[T], error) {
	table, err := freq.NewTable(capacity, sampleMultiplier)
	if err != nil {
		return nil, err
	}
	return &Sketch[T]{hash: hash, table: table, stats: newCounters()}, nil
}

// RecordAccess observes one access to v: each of the element's four counters
// is bumped unless already saturated at 15. Crossing the sampling window
// halves every counter in the table.
func (s *Sketch[T]) RecordAccess(v T) {
	added, aged := s.table.Increment(s.hash(v))
	if added {
		s.stats.increments.Add(1)
	} else {
		s.stats.saturated.Add(1)
	}
	if aged {
		s.stats.agings.Add(1)
	}
}

// Frequency returns the estimated access count of v in the current window,
// in the range 0..15. Pure query; never fails.
func (s *Sketch[T]) Frequency(v T) int {
	return s.table.Estimate(s.hash(v))
}

// Has reports whether v has a non-zero frequency estimate.
func (s *Sketch[T]) Has(v T) bool {
	return s.table.Contains(s.hash(v))
}

// ChangeCapacity resizes the counter table to the next power of two >=
// capacity, dropping all recorded frequencies. Fails with
// ErrInvalidCapacity when capacity <= 0.
func (s *Sketch[T]) ChangeCapacity(capacity int) error {
	if err := s.table.ChangeCapacity(capacity); err != nil {
		return err
	}
	s.stats.resizes.Add(1)
	return nil
}

// Dump persists the current table state (NewFromConfig with a dump section).
func (s *Sketch[T]) Dump(ctx context.Context) error {
	if s.dumper == nil {
		return ErrDumpNotEnabled
	}
	return s.dumper.Dump(ctx)
}

// Load restores a previously dumped table state wholesale.
func (s *Sketch[T]) Load(ctx context.Context) error {
	if s.dumper == nil {
		return ErrDumpNotEnabled
	}
	return s.dumper.Load(ctx)
}

// Stats samples the cumulative activity counters.
func (s *Sketch[T]) Stats() telemetry.Stats {
	return telemetry.Stats{
		Increments: s.stats.increments.Load(),
		Saturated:  s.stats.saturated.Load(),
		Agings:     s.stats.agings.Load(),
		Resizes:    s.stats.resizes.Load(),
		TableLen:   s.table.Len(),
		MemBytes:   s.table.MemBytes(),
	}
}

// Close stops the telemetry loop, if any.
func (s *Sketch[T]) Close() error {
	if s.logs != nil {
		_ = s.logs.Close()
	}
	if s.cls != nil {
		s.cls()
	}
	return nil
}
