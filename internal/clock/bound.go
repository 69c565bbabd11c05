package clock

import (
	"fmt"
	"math"
)

const epsilon = 1e-9

// Bound is a closed interval; infinite ends are unbounded.
type Bound struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Unbounded returns (-inf, +inf).
func Unbounded() Bound {
	return Bound{Low: math.Inf(-1), High: math.Inf(1)}
}

// Contains reports whether v lies within the bound.
func (b Bound) Contains(v float64) bool {
	return v >= b.Low-epsilon && v <= b.High+epsilon
}

// Empty reports whether the bound has crossed.
func (b Bound) Empty() bool {
	return b.Low > b.High+epsilon
}

// Intersect returns the tighter of both bounds on each side.
func (b Bound) Intersect(o Bound) Bound {
	return Bound{Low: math.Max(b.Low, o.Low), High: math.Min(b.High, o.High)}
}

// Pin chooses an offset within the bound: the midpoint when both ends are finite,
// zero when allowed, otherwise the end nearer to zero.
func (b Bound) Pin() float64 {
	lowFinite, highFinite := !math.IsInf(b.Low, 0), !math.IsInf(b.High, 0)
	switch {
	case lowFinite && highFinite:
		return (b.Low + b.High) / 2
	case b.Contains(0):
		return 0
	case b.Low > 0:
		return b.Low
	default:
		return b.High
	}
}

func (b Bound) String() string {
	return fmt.Sprintf("[%g, %g]", b.Low, b.High)
}
