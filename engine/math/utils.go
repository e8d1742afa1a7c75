package math

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// VerticalFOV converts a horizontal field of view into the value handed to
// NewMat4Perspective: atan(tan(hfov/2) / aspect). The result is passed through
// as is, without doubling.
func VerticalFOV(hfovRadians, aspect float32) float32 {
	return math32.Atan(math32.Tan(hfovRadians*0.5) / aspect)
}
