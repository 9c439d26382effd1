package freq

import (
	"errors"

	"github.com/Borislavv/go-freq-sketch/internal/shared/pow2"
)

var (
	// ErrInvalidCapacity is returned when a requested capacity is not positive.
	ErrInvalidCapacity = errors.New("freq: capacity must be larger than 0")

	// ErrInvalidSnapshot is returned by Restore when the snapshot shape is off
	// (slot count not a power of two, or a tally outside the aging window).
	ErrInvalidSnapshot = errors.New("freq: malformed table snapshot")
)

const (
	nibbleMask    = 0xF                // one 4-bit lane mask; counters saturate at 15
	maskNibbles64 = 0x7777777777777777 // keeps nibble boundaries after right-shift

	// defaultSampleMultiplier sizes the aging window when the caller passes 0:
	// threshold = len(slots) * multiplier.
	defaultSampleMultiplier = 10

	counterWidth = 4 // counters per element (min-of-4 scheme)
)

// seeds are the per-counter multipliers used to derive a slot index from a
// single 32-bit element hash. Four odd 64-bit constants, one per counter.
var seeds = [counterWidth]uint64{
	0xc3a5c85c97cb3127,
	0xb492b66fbe98f273,
	0x9ae16a3b2f90404f,
	0xcbf29ce484222325,
}

// Table is a Count-Min style frequency table with 4-bit (nibble) counters.
// Each uint64 slot holds 16 packed nibbles, partitioned into four 16-bit
// sub-blocks; the four counters of one element always land in the same
// sub-block position (chosen by the two low hash bits) of up to four
// different slots (chosen by the four seeds). Aging halves every counter
// when the tally of successful increments reaches len(slots)*multiplier.
//
// Not safe for concurrent use: the table lives behind whatever lock already
// guards its consumer.
type Table struct {
	// slots holds packed 4-bit counters: 16 counters per uint64.
	slots []uint64

	// tally is the number of successful increments since the last aging pass.
	tally int

	// sampleMultiplier scales the aging window relative to the table length.
	sampleMultiplier int
}

// NewTable allocates a table sized to the next power of two >= capacity.
// A sampleMultiplier <= 0 falls back to the default of 10.
func NewTable(capacity, sampleMultiplier int) (*Table, error) {
	if sampleMultiplier <= 0 {
		sampleMultiplier = defaultSampleMultiplier
	}
	t := &Table{sampleMultiplier: sampleMultiplier}
	if err := t.ChangeCapacity(capacity); err != nil {
		return nil, err
	}
	return t, nil
}

// ChangeCapacity reallocates the table at the next power of two >= capacity,
// dropping all recorded frequencies and the increment tally.
func (t *Table) ChangeCapacity(capacity int) error {
	if capacity <= 0 {
		return ErrInvalidCapacity
	}
	t.slots = make([]uint64, pow2.Next(capacity))
	t.tally = 0
	return nil
}

// Len returns the table length in 64-bit slots.
func (t *Table) Len() int { return len(t.slots) }

// SampleMultiplier returns the aging window scale (threshold = Len * multiplier).
func (t *Table) SampleMultiplier() int { return t.sampleMultiplier }

// MemBytes returns the size of the counter storage.
func (t *Table) MemBytes() uint64 { return uint64(len(t.slots)) * 8 }

// Increment bumps the element's 4 counters, each saturating at 15.
// added reports whether at least one counter actually moved (a fully
// saturated element does not advance the tally); aged reports whether this
// call crossed the sampling threshold and ran an aging pass.
func (t *Table) Increment(hash uint32) (added, aged bool) {
	for i := 0; i < counterWidth; i++ {
		if t.tryIncrementAt(hash, i) {
			added = true
		}
	}
	if !added {
		return false, false
	}
	t.tally++
	if t.tally == t.samplingSize() {
		t.Age()
		return true, true
	}
	return true, false
}

// Estimate returns the min of the element's 4 counters (range 0..15).
// True frequency never exceeds the estimate within one aging window.
func (t *Table) Estimate(hash uint32) int {
	frequency := nibbleMask
	for i := 0; i < counterWidth; i++ {
		if c := t.countAt(hash, i); c < frequency {
			frequency = c
		}
	}
	return frequency
}

// Contains reports whether the element has a non-zero frequency estimate.
func (t *Table) Contains(hash uint32) bool { return t.Estimate(hash) > 0 }

// Age halves every 4-bit lane in one pass: new = (old >> 1) & maskNibbles64.
// The mask clears the bit that would otherwise leak from one nibble into its
// neighbour after the shift. The tally is halved with it.
func (t *Table) Age() {
	for i := range t.slots {
		t.slots[i] = (t.slots[i] >> 1) & maskNibbles64
	}
	t.tally /= 2
}

// Snapshot returns a copy of the packed slots and the current tally.
func (t *Table) Snapshot() ([]uint64, int) {
	out := make([]uint64, len(t.slots))
	copy(out, t.slots)
	return out, t.tally
}

// Restore replaces the table contents wholesale (dump/load path).
// The slot count must be a power of two and the tally must sit inside the
// aging window implied by it.
func (t *Table) Restore(slots []uint64, tally int) error {
	n := len(slots)
	if n == 0 || n&(n-1) != 0 {
		return ErrInvalidSnapshot
	}
	if tally < 0 || tally >= n*t.sampleMultiplier {
		return ErrInvalidSnapshot
	}
	t.slots = make([]uint64, n)
	copy(t.slots, slots)
	t.tally = tally
	return nil
}

// slotIndex maps (hash, counter) to a slot. Multiplying by the counter's
// seed and folding the high half back in spreads the 32-bit hash over the
// full 64 bits before masking (len is a power of two, so mask == modulo).
func (t *Table) slotIndex(hash uint32, counter int) int {
	h := seeds[counter] * uint64(hash)
	h += h >> 32
	return int(h & uint64(len(t.slots)-1))
}

// counterOffset returns the bit offset of the counter inside its slot.
// The two least significant hash bits pick one of the four 16-bit
// sub-blocks (offset multiplier 0, 4, 8 or 12 nibbles); the counter index
// picks the nibble inside it. Result is in [0, 60] and a multiple of 4.
func counterOffset(hash uint32, counter int) uint {
	return uint((int(hash&3)<<2 + counter) << 2)
}

func (t *Table) countAt(hash uint32, counter int) int {
	idx := t.slotIndex(hash, counter)
	off := counterOffset(hash, counter)
	return int((t.slots[idx] >> off) & nibbleMask)
}

// tryIncrementAt bumps one nibble unless it already sits at 15.
func (t *Table) tryIncrementAt(hash uint32, counter int) bool {
	idx := t.slotIndex(hash, counter)
	off := counterOffset(hash, counter)
	mask := uint64(nibbleMask) << off
	if t.slots[idx]&mask == mask {
		return false // saturated
	}
	t.slots[idx] += 1 << off
	return true
}

func (t *Table) samplingSize() int { return len(t.slots) * t.sampleMultiplier }
