package generator

import (
	"math/rand"
	"time"
)

// Source is a deterministic pseudo-random source (mulberry32). Two sources
// built from the same seed and stepped the same number of times yield
// identical sequences, which is what makes compiled papers reproducible.
type Source struct {
	state uint32
}

func NewSource(seed int64) *Source {
	return &Source{state: uint32(seed)}
}

// Next returns the next value in [0, 1). Exactly one state advance per call.
func (s *Source) Next() float64 {
	s.state += 0x6D2B79F5
	z := s.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return float64(z^(z>>14)) / 4294967296.0
}

// IntBetween returns an integer in [lo, hi], consuming exactly one draw.
func (s *Source) IntBetween(lo, hi int64) int64 {
	if hi < lo {
		hi = lo
	}
	return lo + int64(s.Next()*float64(hi-lo+1))
}

// DigitNumber returns a number with exactly the given digit count, consuming
// one draw. The domain is [10^(d-1), 10^d - 1]; for d=1 it is [1, 9], so a
// zero operand (and thus a zero divisor or multiplier) is never produced.
func (s *Source) DigitNumber(digits int64) int64 {
	if digits < 1 {
		digits = 1
	}
	lo := pow10(digits - 1)
	hi := pow10(digits) - 1
	if digits == 1 {
		lo = 1
	}
	return s.IntBetween(lo, hi)
}

func pow10(n int64) int64 {
	v := int64(1)
	for i := int64(0); i < n; i++ {
		v *= 10
	}
	return v
}

// RandomSeed picks a seed for a brand-new paper. This is the only place
// ambient randomness is allowed; reproducing a paper always goes through
// NewSource with a stored seed. Kept within int31 range like the original
// paper records.
func RandomSeed() int64 {
	seed := time.Now().UnixMilli()%(1<<31) + rand.Int63n(1_000_000)
	return seed % (1 << 31)
}
