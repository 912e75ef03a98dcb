// Package maneuver computes motion vectors from perception + tracker
// state (kicker speed calibration lives in internal/kicker). Every function here is pure given its
// explicit inputs and returns ok=false (no actuation) when a required
// input is absent, never a sentinel numeric.
package maneuver

import (
	"math"

	"github.com/Garsondee/fieldbrain/internal/geometry"
)

// XYW is the actuator velocity triple: strafe x, forward y, rotation w,
// each meant to land in [-1, 1] (callers clamp before actuating).
type XYW struct {
	X, Y, W float64
}

// Rotate implements rotate(degrees) -> (0, 0, -degrees/360).
func Rotate(degrees float64) XYW {
	return XYW{X: 0, Y: 0, W: -degrees / 360}
}

// RotationForGoal implements rotation_for_goal(): restoring torque toward
// a centered target goal angle.
func RotationForGoal(targetGoalAngleDeg float64) float64 {
	a := math.Min(targetGoalAngleDeg, 50)
	f := math.Abs(math.Tanh(a / 40))
	r := -a * f / 50
	return geometry.ClampAbsFloor(r, 0.01)
}

// AlignToGoal implements align_to_goal(factor).
func AlignToGoal(targetGoalAngleDeg float64, factor float64) XYW {
	w := geometry.Clamp(RotationForGoal(targetGoalAngleDeg), -0.4, 0.4) * factor
	return XYW{X: 0, Y: 0.02, W: w}
}

// DriveTowardTargetGoal implements drive_toward_target_goal(backtrack, speedFactor).
func DriveTowardTargetGoal(targetGoalAngleDeg float64, backtrack bool, speedFactor float64) XYW {
	a := targetGoalAngleDeg
	f := math.Min(math.Abs(math.Tanh(a/40)), 0.4)
	r := RotationForGoal(a)
	if math.Abs(a) > 7 && backtrack {
		return XYW{X: 0, Y: -0.08*speedFactor - f/6, W: r * f * 2}
	}
	return XYW{X: 0, Y: 0.16*speedFactor - f/6, W: r}
}

// DriveToBall implements the ball-vector-based drive-to-ball maneuver,
// scaling up a short ball position vector so slow drift never stalls
// completely.
func DriveToBall(avgClosestBall geometry.PolarPoint) XYW {
	x, y := avgClosestBall.X(), avgClosestBall.Y()
	const minSpeed = 0.3
	maxComp := math.Max(math.Abs(x), math.Abs(y))
	if maxComp > 0 && maxComp < minSpeed {
		scale := minSpeed / maxComp
		x *= scale
		y *= scale
	}
	w := -avgClosestBall.AngleDeg() / 180
	return XYW{X: x, Y: y, W: w}
}

// DriveToFieldCenter implements drive_to_field_center() from the closest
// edge unit vector.
func DriveToFieldCenter(edgeUX, edgeUY float64) XYW {
	return XYW{X: -edgeUY, Y: -edgeUX, W: 0}
}

// DriveAwayFromGoal implements drive_away_from_goal(): pick the farther of
// own/target as reference, negating direction when too close.
func DriveAwayFromGoal(own, target geometry.PolarPoint, haveOwn, haveTarget bool) (XYW, bool) {
	var ref geometry.PolarPoint
	switch {
	case haveOwn && haveTarget:
		if own.Dist >= target.Dist {
			ref = own
		} else {
			ref = target
		}
	case haveOwn:
		ref = own
	case haveTarget:
		ref = target
	default:
		return XYW{}, false
	}

	x, y := ref.X(), ref.Y()
	if ref.Dist < 1.5 {
		x, y = -x, -y
	}
	return XYW{X: y, Y: x, W: 0.5}, true
}

// GoalToBallAngle implements goal_to_ball_angle: normalize(ball.angle_deg
// - target_goal_angle) into (-180, 180].
func GoalToBallAngle(ballAngleDeg, targetGoalAngleDeg float64) float64 {
	return geometry.NormalizeDeg(ballAngleDeg - targetGoalAngleDeg)
}

// Flank implements the flanking maneuver around the committed ball. ball
// is the committed ball's point (for the rotate-around-ball branch);
// targetGoalAngleDeg is absent (haveGoal=false) when no target goal is
// visible.
func Flank(movementFactor float64, targetGoalAngleDeg float64, haveGoal bool, ball geometry.PolarPoint, haveBall bool) (XYW, bool) {
	if !haveGoal {
		return XYW{X: 0, Y: 0, W: 0.05}, true
	}
	g := targetGoalAngleDeg

	if !haveBall {
		// goal_to_ball_angle is undefined without a ball; still allow the
		// rotate-in-place branch since it only needs g.
		s := 0.0
		if math.Abs(g) > math.Max(math.Abs(3*s), 10) {
			return XYW{X: 0, Y: 0, W: RotationForGoal(g)}, true
		}
		return XYW{}, false
	}

	s := GoalToBallAngle(ball.AngleDeg(), g)
	if math.Abs(g) > math.Max(math.Abs(3*s), 10) {
		return XYW{X: 0, Y: 0, W: RotationForGoal(g)}, true
	}

	bx, by := ball.X(), ball.Y()
	blen := math.Sqrt(bx*bx + by*by)
	var ux, uy float64
	if blen > 1e-9 {
		ux, uy = bx/blen, by/blen
	}

	var x, y float64
	if ball.Dist > 0.53 {
		x, y = 0.6*ux, 0.6*uy
	} else {
		angle := ball.AngleDeg()
		absAngle := math.Abs(angle)
		delta := absAngle*1.7 + 10 + absAngle*math.Abs(math.Tanh(angle/15))
		if delta > 80 {
			delta = 80
		}
		if angle < 0 {
			delta = -delta
		}
		rad := delta * math.Pi / 180
		rux := ux*math.Cos(rad) - uy*math.Sin(rad)
		ruy := ux*math.Sin(rad) + uy*math.Cos(rad)
		scale := (math.Abs(math.Tanh(angle/60)) + 0.2) * 0.8
		x, y = rux*scale, ruy*scale
	}

	w := RotationForGoal(g) / 1.4 * math.Abs(math.Tanh(math.Min(g, 50)/1.5))
	return XYW{X: y * movementFactor, Y: x * movementFactor, W: w}, true
}
