// Package perception holds the latest recognition snapshot and the
// per-tick derived values (closest edge, own/target goal, alignment and
// hazard flags) the behavior state machine and maneuver library read from.
package perception

import (
	"math"

	"github.com/Garsondee/fieldbrain/internal/geometry"
)

// GoalColor is the two colors a goal is tagged with.
type GoalColor int

const (
	GoalBlue GoalColor = iota
	GoalYellow
)

// Ball is one recognized ball this tick.
type Ball struct {
	Point      geometry.PolarPoint
	Suspicious bool
}

// Goal is one recognized goal this tick.
type Goal struct {
	Point geometry.PolarPoint
	Color GoalColor
}

// Snapshot is a single recognition event, delivered atomically and
// consumed exactly once per tick. It replaces the previous snapshot
// wholesale — there is no incremental merge.
type Snapshot struct {
	// Balls is ordered by ascending distance.
	Balls       []Ball
	GoalBlue    *Goal
	GoalYellow  *Goal
	ClosestEdge *EdgeVector // robot-frame (x, y) meters toward nearest field edge
	AngleAdjust *float64    // calibration offset, degrees
}

// EdgeVector is a single nearest-field-edge sample.
type EdgeVector struct {
	X, Y float64
}

// Length returns the Euclidean length of the edge vector.
func (e EdgeVector) Length() float64 {
	return math.Sqrt(e.X*e.X + e.Y*e.Y)
}
