package filler

import (
	"math"
	"math/rand/v2"
)

// digitChance is the probability that a generated character is a digit.
const digitChance = 0.1

// RandomString returns n characters drawn from [0-9A-Za-z]. Letters dominate;
// roughly one character in ten is a digit. n <= 0 yields "".
func RandomString(r *rand.Rand, n int) string {
	if n <= 0 {
		return ""
	}

	buf := make([]byte, 0, n)
	for len(buf) < n {
		if r.Float64() < digitChance {
			buf = append(buf, byte('0'+r.IntN(10)))
			continue
		}

		base := byte('a')
		if r.IntN(2) == 0 {
			base = 'A'
		}
		buf = append(buf, base+byte(r.IntN(26)))
	}
	return string(buf)
}

// RandomInt returns a uniformly distributed integer in [lo, hi].
// The caller guarantees lo <= hi. Any such range works, including
// [math.MinInt, math.MaxInt].
func RandomInt(r *rand.Rand, lo, hi int) int {
	// The span is computed in uint64 so it cannot overflow.
	span := uint64(hi) - uint64(lo)
	if span == math.MaxUint64 {
		return int(r.Uint64())
	}
	return int(uint64(lo) + r.Uint64N(span+1))
}

// randomDigits returns an n-digit numeric string without a leading zero.
func randomDigits(r *rand.Rand, n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	buf[0] = byte('1' + r.IntN(9))
	for i := 1; i < n; i++ {
		buf[i] = byte('0' + r.IntN(10))
	}
	return string(buf)
}
