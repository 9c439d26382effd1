package freqsketch

import (
	"github.com/Borislavv/go-freq-sketch/internal/shared/hashmix"
	"github.com/zeebo/xxh3"
)

// Hasher deterministically produces a 32-bit hash for an element. It must be
// stable within a single sketch's lifetime (changing hash behavior between
// calls invalidates frequency estimates). Collisions are expected and
// tolerated.
type Hasher[T any] func(T) uint32

// StringHasher hashes a string with xxh3, truncated to 32 bits.
func StringHasher(s string) uint32 { return uint32(xxh3.HashString(s)) }

// BytesHasher hashes a byte slice with xxh3, truncated to 32 bits.
func BytesHasher(b []byte) uint32 { return uint32(xxh3.Hash(b)) }

// Uint64Hasher finalizes an integer key with SplitMix64 so that nearby keys
// land far apart in the table, then truncates to 32 bits.
func Uint64Hasher(v uint64) uint32 { return uint32(hashmix.Mix64(v)) }
