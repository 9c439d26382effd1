package admission

import (
	"github.com/Borislavv/go-freq-sketch/config"
	"github.com/Borislavv/go-freq-sketch/internal/freq"
)

// Control decides whether a candidate element is hot enough to displace a
// victim, based on approximate access frequencies.
type Control interface {
	Record(hash uint32)
	Allow(candidate, victim uint32) bool
	Estimate(hash uint32) int
	Reset()
}

// New builds an admission controller from the config section. A nil section
// yields a NoOp controller (candidates are admitted unconditionally).
func New(cfg *config.AdmissionCfg, capacity, sampleMultiplier int) (Control, error) {
	if cfg.Enabled() {
		return newAdmitter(cfg, capacity, sampleMultiplier)
	}
	return newNoOp(), nil
}

// Admitter is a TinyLFU admission controller: a doorkeeper gates first-sight
// noise, repeat sights reach the frequency table, and Allow compares the
// candidate's estimate against the victim's.
type Admitter struct {
	table *freq.Table
	door  doorkeeper
}

func newAdmitter(cfg *config.AdmissionCfg, capacity, sampleMultiplier int) (*Admitter, error) {
	table, err := freq.NewTable(capacity, sampleMultiplier)
	if err != nil {
		return nil, err
	}

	bits := cfg.DoorBitsPerCounter
	if bits <= 0 {
		bits = 8
	}

	a := &Admitter{table: table}
	a.door.init(table.Len() * bits)
	return a, nil
}

// Record observes an element access. First sight -> set doorkeeper bits only.
// Second (or FP) sight -> increment the frequency table. The doorkeeper is
// cleared whenever the table crosses its aging window, so both structures
// track the same decaying interval.
func (a *Admitter) Record(hash uint32) {
	if a.door.seenOrAdd(hash) {
		if _, aged := a.table.Increment(hash); aged {
			a.door.reset()
		}
	}
}

// Allow returns true if the candidate should replace the victim.
// Unseen candidates are rejected early; otherwise the candidate must be
// strictly more frequent than the victim (reject-on-tie keeps eviction
// stable and avoids churn).
func (a *Admitter) Allow(candidate, victim uint32) bool {
	if candidate == victim {
		// Same entry: no replacement needed, but "allow" is safe.
		return true
	}

	if !a.door.probablySeen(candidate) {
		return false
	}

	return a.table.Estimate(candidate) > a.table.Estimate(victim)
}

// Estimate exposes the frequency estimate (for metrics/diagnostics).
func (a *Admitter) Estimate(hash uint32) int {
	return a.table.Estimate(hash)
}

// Reset forces aging now (useful for tests or ops hooks). Also clears the
// doorkeeper.
func (a *Admitter) Reset() {
	a.table.Age()
	a.door.reset()
}
