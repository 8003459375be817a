package fx

import "math"

// InterpolationShape selects how an effect parameter moves from its
// starting value to its ending value over the span of an FX interval.
type InterpolationShape int

const (
	Linear InterpolationShape = iota
	Logarithmic
	Smooth
)

// Interpolate returns the parameter value at v (0..1 progress through the
// interval) given the shape, start and end values.
//
// Smooth uses the quintic smoothstep polynomial v*v*v*(v*(6v-15)+10),
// which has zero first and second derivative at both endpoints so an
// effect eases in and out instead of snapping.
func Interpolate(shape InterpolationShape, v, start, end float64) float64 {
	if v <= 0 {
		return start
	}
	if v >= 1 {
		return end
	}
	switch shape {
	case Logarithmic:
		if start <= 0 || end <= 0 {
			return start + (end-start)*v
		}
		logStart, logEnd := math.Log(start), math.Log(end)
		return math.Exp(logStart + (logEnd-logStart)*v)
	case Smooth:
		w := end - start
		return start + (v*v*v*(v*(6*v-15)+10))*w
	default:
		return start + (end-start)*v
	}
}
