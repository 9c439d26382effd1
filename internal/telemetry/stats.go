package telemetry

// Stats holds cumulative counters (monotonic) sampled from a sketch or an
// admission controller.
type Stats struct {
	// Increments is the number of record calls that moved at least one counter.
	Increments int64
	// Saturated is the number of record calls where all four counters were
	// already at their 4-bit maximum.
	Saturated int64
	// Agings counts completed halving passes.
	Agings int64
	// Resizes counts capacity changes (each drops all counters).
	Resizes int64

	// Allowed / Rejected count admission decisions; both stay zero when the
	// source has no admission controller attached.
	Allowed  int64
	Rejected int64

	// TableLen is the current table length in 64-bit slots.
	TableLen int
	// MemBytes is the size of the counter storage.
	MemBytes uint64
}

// deltaStats converts cumulative snapshots to per-interval deltas.
// If counters reset (cur < prev), it treats cur as the delta.
func deltaStats(prev, cur Stats) Stats {
	return Stats{
		Increments: delta(prev.Increments, cur.Increments),
		Saturated:  delta(prev.Saturated, cur.Saturated),
		Agings:     delta(prev.Agings, cur.Agings),
		Resizes:    delta(prev.Resizes, cur.Resizes),
		Allowed:    delta(prev.Allowed, cur.Allowed),
		Rejected:   delta(prev.Rejected, cur.Rejected),
		TableLen:   cur.TableLen,
		MemBytes:   cur.MemBytes,
	}
}

func delta(prev, cur int64) int64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
