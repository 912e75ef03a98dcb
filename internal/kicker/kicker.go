// Package kicker implements kicker RPM calibration and the
// continue-to-kick timing window.
package kicker

import (
	"math"
	"time"

	"github.com/Garsondee/fieldbrain/internal/smoothing"
)

const (
	maxRPM       = 11000.0
	floorRPM     = 4650.0
	fallbackRPM  = 5500.0
	kickWindow   = 1 * time.Second
	speedRingCap = 3
)

// Calibrator tracks the 3-entry desired-speed ring and the continue-to-kick
// timing window. One Calibrator lives for the lifetime of the Gameplay
// instance.
type Calibrator struct {
	curve   *Curve
	ring    *smoothing.Scalar
	lastKick time.Time
	hasKicked bool
}

// NewCalibrator creates a Calibrator backed by the given calibration curve.
func NewCalibrator(curve *Curve) *Calibrator {
	return &Calibrator{curve: curve, ring: smoothing.NewScalar(speedRingCap)}
}

// DesiredSpeed computes the desired kicker RPM for this tick.
// realDistanceCm wins over targetGoalDistCm when present; angleAdjustDeg
// is the calibration offset (0 if absent). hasDistance is
// false when neither distance is available, in which case the fallback
// 5500 RPM is reported without touching the ring (so resuming a real
// distance afterward isn't skewed by phantom fallback samples).
func (c *Calibrator) DesiredSpeed(realDistanceCm *float64, targetGoalDistCm *float64, angleAdjustDeg float64) float64 {
	var distCm float64
	hasDistance := false
	if realDistanceCm != nil {
		distCm = *realDistanceCm
		hasDistance = true
	} else if targetGoalDistCm != nil {
		distCm = *targetGoalDistCm
		hasDistance = true
	}

	if !hasDistance || math.IsNaN(distCm) {
		return fallbackRPM
	}

	distCm = round2(distCm)
	speed := math.Abs(c.curve.DistToRPM(distCm))
	speed = math.Min(maxRPM, speed)
	speed -= 150 * math.Min(math.Abs(angleAdjustDeg)/1.4, 2)

	mean := c.ring.Push(speed)
	return math.Max(mean, floorRPM)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ContinueToKick reports whether now is strictly less than 1s after the
// most recent Kick call.
func (c *Calibrator) ContinueToKick(now time.Time) bool {
	if !c.hasKicked {
		return false
	}
	return now.Sub(c.lastKick) < kickWindow
}

// Kick resets the 1-second continue-to-kick window and returns the speed
// to actuate. Because the window is reset before it is checked, the
// window check always passes for the call that reset it; (0, false) is
// returned only when the desired speed is not positive (caller must then
// issue no set_thrower call this tick).
func (c *Calibrator) Kick(now time.Time, realDistanceCm *float64, targetGoalDistCm *float64, angleAdjustDeg float64) (float64, bool) {
	c.lastKick = now
	c.hasKicked = true
	speed := c.DesiredSpeed(realDistanceCm, targetGoalDistCm, angleAdjustDeg)
	if speed <= 0 {
		return 0, false
	}
	if !c.ContinueToKick(now) {
		return 0, false
	}
	return speed, true
}
