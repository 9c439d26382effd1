package pow2

// Next returns the smallest power-of-two >= x.
// Inputs <= 1 round up to 1 (the smallest valid table length).
func Next(x int) int {
	if x <= 1 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	return x + 1
}
