package smoothing

import "math"

// Vector2 smooths a stream of 2-D samples (used for the closest-edge
// vector, which is aggregated over a 10-tick ring per spec).
type Vector2 struct {
	x *Scalar
	y *Scalar
}

// NewVector2 creates a Vector2 ring with capacity n.
func NewVector2(n int) *Vector2 {
	return &Vector2{x: NewScalar(n), y: NewScalar(n)}
}

// Push records one (x, y) sample.
func (v *Vector2) Push(x, y float64) {
	v.x.Push(x)
	v.y.Push(y)
}

// Len reports how many samples are currently held.
func (v *Vector2) Len() int {
	return v.x.Len()
}

// Mean returns the mean (x, y) over the held samples.
func (v *Vector2) Mean() (x, y float64) {
	return v.x.Mean(), v.y.Mean()
}

// UnitAndLength returns the unit vector and length of the mean sample.
// ok is false when the ring is empty (undefined direction).
func (v *Vector2) UnitAndLength() (ux, uy, length float64, ok bool) {
	if v.Len() == 0 {
		return 0, 0, 0, false
	}
	mx, my := v.Mean()
	length = math.Sqrt(mx*mx + my*my)
	if length < 1e-9 {
		return 0, 0, 0, true
	}
	return mx / length, my / length, length, true
}
