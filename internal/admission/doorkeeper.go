package admission

import (
	"github.com/Borislavv/go-freq-sketch/internal/shared/hashmix"
	"github.com/Borislavv/go-freq-sketch/internal/shared/pow2"
)

// doorkeeper is a lightweight, Bloom-like admission filter.
// It tracks "probably seen" elements using k=3 independent bit positions per
// element and is cleared on every sketch aging window to keep the false
// positive rate bounded under churn.
//
// Like the counter table, it assumes externally synchronized access.
type doorkeeper struct {
	bits []uint64 // packed bit-array (64 bits per word)
	mask uint32   // index mask: (numBitsRoundedToPow2 - 1)
}

// init prepares a bit-array sized to the next power of two, so we can
// index with a cheap bitmask (h & mask). totalBits may be any positive value.
func (d *doorkeeper) init(totalBits int) {
	if totalBits <= 0 {
		totalBits = 1 // keep structure valid; pow2.Next(1) == 1
	}
	n := pow2.Next(totalBits)
	wordCount := (n + 63) / 64 // 64 bits per uint64 word
	d.bits = make([]uint64, wordCount)
	d.mask = uint32(n - 1)
}

// reset clears all bits. This is O(len(bits)) and runs on aging window
// boundaries only.
func (d *doorkeeper) reset() {
	for i := range d.bits {
		d.bits[i] = 0
	}
}

// probablySeen returns true if all 3 probed bits are set. Read-only.
func (d *doorkeeper) probablySeen(hash uint32) bool {
	h := uint64(hash)
	i0 := uint32(h) & d.mask
	h = hashmix.Mix64(h)
	i1 := uint32(h) & d.mask
	h = hashmix.Mix64(h)
	i2 := uint32(h) & d.mask
	return d.get(i0) && d.get(i1) && d.get(i2)
}

// seenOrAdd returns true if the element was probably seen already. Otherwise,
// it sets the 3 bits and returns false. This is the common admission path.
func (d *doorkeeper) seenOrAdd(hash uint32) bool {
	h := uint64(hash)
	i0 := uint32(h) & d.mask
	h = hashmix.Mix64(h)
	i1 := uint32(h) & d.mask
	h = hashmix.Mix64(h)
	i2 := uint32(h) & d.mask

	if d.get(i0) && d.get(i1) && d.get(i2) {
		return true
	}
	d.set(i0)
	d.set(i1)
	d.set(i2)
	return false
}

// wordBit maps a flat bit index to (wordIndex, bitMask) within d.bits.
func (d *doorkeeper) wordBit(i uint32) (uint32, uint64) {
	w := i >> 6                // i / 64
	b := uint64(1) << (i & 63) // 1 << (i % 64)
	return w, b
}

func (d *doorkeeper) get(i uint32) bool {
	w, b := d.wordBit(i)
	return d.bits[w]&b != 0
}

func (d *doorkeeper) set(i uint32) {
	w, b := d.wordBit(i)
	d.bits[w] |= b
}
