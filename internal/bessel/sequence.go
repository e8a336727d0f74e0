package bessel

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Sequence holds j_0(x) … j_lmax(x); entry l approximates j_l(x).
// Its length is always l_max+1.
type Sequence []float64

// LMax returns the highest order held by the sequence.
func (s Sequence) LMax() int {
	return len(s) - 1
}

// At returns the value of order l, or NaN when l is outside 0..LMax.
func (s Sequence) At(l int) float64 {
	if l < 0 || l >= len(s) {
		return math.NaN()
	}
	return s[l]
}

// Clone returns an independent copy.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	c := make(Sequence, len(s))
	copy(c, s)
	return c
}

// Finite reports whether every entry is finite. The upward walk overflows
// for l ≫ x; that is the instability, not an error.
func (s Sequence) Finite() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaxAbs returns the largest magnitude in the sequence.
func (s Sequence) MaxAbs() float64 {
	if len(s) == 0 {
		return 0
	}
	return math.Max(floats.Max(s), -floats.Min(s))
}
