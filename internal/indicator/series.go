// Package indicator provides pure technical indicator math over daily price
// series. Every function returns a series aligned to its input; positions
// inside the warm-up window are undefined (NaN), never zero, and callers must
// check Defined before comparing values.
package indicator

import "math"

// Series is a derived value sequence aligned to the source bar index.
type Series []float64

// Undefined returns a fully undefined series of length n.
func Undefined(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// Defined reports whether the value at i exists and is usable.
func (s Series) Defined(i int) bool {
	return i >= 0 && i < len(s) && !math.IsNaN(s[i])
}

// At returns the value at i and whether it is defined.
func (s Series) At(i int) (float64, bool) {
	if !s.Defined(i) {
		return 0, false
	}
	return s[i], true
}

// Last returns the most recent value and whether it is defined.
func (s Series) Last() (float64, bool) {
	return s.At(len(s) - 1)
}

// Prev returns the value offset positions before the end.
func (s Series) Prev(offset int) (float64, bool) {
	return s.At(len(s) - 1 - offset)
}

// firstDefined returns the index of the first defined value, or -1.
func (s Series) firstDefined() int {
	for i := range s {
		if !math.IsNaN(s[i]) {
			return i
		}
	}
	return -1
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStddev matches the rolling stddev used for Bollinger bands
// (denominator n-1).
func sampleStddev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - m
		sum2 += d * d
	}
	v := sum2 / float64(n-1)
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}
