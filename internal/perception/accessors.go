package perception

import "github.com/Garsondee/fieldbrain/internal/smoothing"

// TargetColor selects which recognized goal color is the target, read from
// configuration ("target goal color": "blue" or "purple" meaning "not
// blue" i.e. yellow is the target).
type TargetColor int

const (
	TargetBlue TargetColor = iota
	TargetYellow
)

// Model wraps the current Snapshot with the smoothers that carry state
// across ticks: the 10-sample closest-edge ring and the 4-sample
// too-close ring. One Model lives for the lifetime of the Gameplay
// instance; Update is called once per tick with the freshly consumed
// snapshot.
type Model struct {
	snap *Snapshot

	edgeRing     *smoothing.Vector2
	tooCloseRing *smoothing.Scalar

	target TargetColor
}

// NewModel creates a Model configured for the given target goal color.
func NewModel(target TargetColor) *Model {
	return &Model{
		edgeRing:     smoothing.NewVector2(10),
		tooCloseRing: smoothing.NewScalar(4),
		target:       target,
	}
}

// SetTarget updates which goal color is the target (config is read-only
// per tick but may change between ticks via live config reload).
func (m *Model) SetTarget(t TargetColor) {
	m.target = t
}

// Update consumes a new snapshot. The snapshot becomes the model's sole
// source of truth for this tick; the edge smoother is refreshed from it.
// The too-close ring is refreshed separately via UpdateTooClose, once the
// caller has folded this tick's target goal distance into its own
// smoothing window.
func (m *Model) Update(s *Snapshot) {
	m.snap = s
	if s != nil && s.ClosestEdge != nil {
		m.edgeRing.Push(s.ClosestEdge.X, s.ClosestEdge.Y)
	}
}

// UpdateTooClose pushes one sample into the too-close ring: the minimum
// of the smoothed target goal distance and the raw own goal distance,
// each defaulting to capM (meters) when absent, and capped at capM. It
// always pushes, so the ring relaxes back toward "far" within a few
// samples once both goals drop out of view instead of sticking at a
// stale reading.
func (m *Model) UpdateTooClose(smoothedTargetDistCm float64, haveSmoothedTarget bool, capM float64) {
	target := capM
	if haveSmoothedTarget {
		target = smoothedTargetDistCm / 100
	}
	own := capM
	if od, ok := m.OwnGoalDistM(); ok {
		own = od
	}
	best := target
	if own < best {
		best = own
	}
	if best > capM {
		best = capM
	}
	m.tooCloseRing.Push(best)
}

// Snapshot returns the current (read-only) snapshot, or nil if none has
// been consumed yet.
func (m *Model) Snapshot() *Snapshot {
	return m.snap
}

// Balls returns the balls visible this tick, or nil if no snapshot.
func (m *Model) Balls() []Ball {
	if m.snap == nil {
		return nil
	}
	return m.snap.Balls
}

// OwnGoal returns the goal complementary to the configured target color.
func (m *Model) OwnGoal() (Goal, bool) {
	if m.snap == nil {
		return Goal{}, false
	}
	if m.target == TargetBlue {
		if m.snap.GoalYellow != nil {
			return *m.snap.GoalYellow, true
		}
	} else if m.snap.GoalBlue != nil {
		return *m.snap.GoalBlue, true
	}
	return Goal{}, false
}

// TargetGoal returns the goal matching the configured target color.
func (m *Model) TargetGoal() (Goal, bool) {
	if m.snap == nil {
		return Goal{}, false
	}
	if m.target == TargetBlue {
		if m.snap.GoalBlue != nil {
			return *m.snap.GoalBlue, true
		}
	} else if m.snap.GoalYellow != nil {
		return *m.snap.GoalYellow, true
	}
	return Goal{}, false
}

// TargetGoalAngleDeg returns the target goal's angle in degrees.
func (m *Model) TargetGoalAngleDeg() (float64, bool) {
	g, ok := m.TargetGoal()
	if !ok {
		return 0, false
	}
	return g.Point.AngleDeg(), true
}

// TargetGoalDistCm returns the target goal's distance in centimeters.
func (m *Model) TargetGoalDistCm() (float64, bool) {
	g, ok := m.TargetGoal()
	if !ok {
		return 0, false
	}
	return g.Point.Dist * 100, true
}

// OwnGoalDistM returns the own goal's distance in meters.
func (m *Model) OwnGoalDistM() (float64, bool) {
	g, ok := m.OwnGoal()
	if !ok {
		return 0, false
	}
	return g.Point.Dist, true
}

// ClosestEdge returns the unit vector and length of the mean over up to
// 10 recent closest-edge samples. ok is false if there are no samples.
func (m *Model) ClosestEdge() (ux, uy, length float64, ok bool) {
	return m.edgeRing.UnitAndLength()
}

// Alligned reports whether the target goal is centered closely enough to
// shoot: |angle| <= 2 deg when distance > 300cm, else <= 3 deg. False
// (conservative) when the target goal is absent.
func (m *Model) Alligned() bool {
	angle, aok := m.TargetGoalAngleDeg()
	dist, dok := m.TargetGoalDistCm()
	if !aok || !dok {
		return false
	}
	limit := 3.0
	if dist > 300 {
		limit = 2.0
	}
	a := angle
	if a < 0 {
		a = -a
	}
	return a <= limit
}

// TooClose reports whether the 4-tick mean of min(target, own, 400cm)
// goal distance is under 55cm. False (conservative) when no ring samples
// exist yet.
func (m *Model) TooClose() bool {
	if m.tooCloseRing.Len() == 0 {
		return false
	}
	return m.tooCloseRing.Mean() < 0.55
}

// TooCloseToEdge reports whether the smoothed edge length is under 0.4m.
func (m *Model) TooCloseToEdge() bool {
	_, _, length, ok := m.ClosestEdge()
	if !ok {
		return false
	}
	return length < 0.4
}

// DangerZone reports whether the smoothed edge length is under 1.1m, or
// the nearest goal (own or target) is under 1.0m away.
func (m *Model) DangerZone() bool {
	_, _, length, ok := m.ClosestEdge()
	if ok && length < 1.1 {
		return true
	}
	td, tok := m.TargetGoalDistCm()
	od, ook := m.OwnGoalDistM()
	if tok && td/100 < 1.0 {
		return true
	}
	if ook && od < 1.0 {
		return true
	}
	return false
}

// BlindSpotForShoot reports whether the own goal is missing or farther
// than 3m AND the smoothed edge length is under 1.2m.
func (m *Model) BlindSpotForShoot() bool {
	od, ook := m.OwnGoalDistM()
	ownFarOrMissing := !ook || od > 3.0
	_, _, length, eok := m.ClosestEdge()
	edgeClose := eok && length < 1.2
	return ownFarOrMissing && edgeClose
}

// AngleAdjust returns the snapshot's calibration offset, if present.
func (m *Model) AngleAdjust() (float64, bool) {
	if m.snap == nil || m.snap.AngleAdjust == nil {
		return 0, false
	}
	return *m.snap.AngleAdjust, true
}
