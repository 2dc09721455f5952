package transpose

import "math/bits"

// BitScan writes the positions of the set bits of v into dst in ascending
// order and returns their number. dst must hold at least bits.OnesCount64(v)
// entries; 64 is always enough.
func BitScan(v uint64, dst []uint8) int {
	n := 0
	for v != 0 {
		dst[n] = uint8(bits.TrailingZeros64(v))
		n++
		v &= v - 1
	}
	return n
}

// BitScanReverse returns the index of the highest set bit of v, or 0 when v
// is zero.
func BitScanReverse(v uint64) int {
	if v == 0 {
		return 0
	}
	return bits.Len64(v) - 1
}
