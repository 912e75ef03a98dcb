package behavior

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Garsondee/fieldbrain/internal/geometry"
	"github.com/Garsondee/fieldbrain/internal/kicker"
	"github.com/Garsondee/fieldbrain/internal/perception"
)

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}

type fakeConfig struct {
	enabled bool
	target  perception.TargetColor
}

func (f fakeConfig) GameplayEnabled() bool                   { return f.enabled }
func (f fakeConfig) TargetGoalColor() perception.TargetColor { return f.target }
func (f fakeConfig) FieldID() string                         { return "test" }
func (f fakeConfig) RobotID() string                         { return "test" }

type recordingActuator struct {
	xywCalls   int
	throwCalls int
	applyCalls int
	startCalls int
	lastRPM    int
	lastXYW    struct{ X, Y, W float64 }
}

func (r *recordingActuator) SetXYW(x, y, w float64) error {
	r.xywCalls++
	r.lastXYW.X, r.lastXYW.Y, r.lastXYW.W = x, y, w
	return nil
}
func (r *recordingActuator) SetThrower(rpm int) error {
	r.throwCalls++
	r.lastRPM = rpm
	return nil
}
func (r *recordingActuator) Apply() error { r.applyCalls++; return nil }
func (r *recordingActuator) Start() error { r.startCalls++; return nil }

func testCurve() *kicker.Curve {
	return kicker.NewCurve([]kicker.ControlPoint{
		{DistanceCm: 20, RPM: 4650},
		{DistanceCm: 500, RPM: 11000},
	})
}

func edgeFar() *perception.EdgeVector {
	return &perception.EdgeVector{X: 0, Y: 3}
}

// newStartedGameplay constructs a Gameplay and forces it into kind without
// going through ForceCenter's real entry guard, for tests that want to
// exercise one state in isolation.
func newStartedGameplay(t *testing.T, act *recordingActuator, enabled bool, kind Kind, now time.Time) *Gameplay {
	t.Helper()
	g := New(fakeConfig{enabled: enabled, target: perception.TargetBlue}, act, testCurve(), nil)
	assert.NoError(t, g.Start(now))
	g.enter(kind, now, "test-setup")
	return g
}

func TestInitialStateIsForceCenter(t *testing.T) {
	act := &recordingActuator{}
	g := New(fakeConfig{enabled: true, target: perception.TargetBlue}, act, testCurve(), nil)
	now := time.Now()
	assert.NoError(t, g.Step(now, &perception.Snapshot{ClosestEdge: edgeFar()}))
	assert.Equal(t, KindForceCenter, g.State().Kind)
	assert.Equal(t, 1, act.startCalls)
}

func TestForceCenterTimesOutToFlank(t *testing.T) {
	act := &recordingActuator{}
	g := New(fakeConfig{enabled: true, target: perception.TargetBlue}, act, testCurve(), nil)
	now := time.Now()
	assert.NoError(t, g.Step(now, &perception.Snapshot{ClosestEdge: edgeFar()}))
	assert.Equal(t, KindForceCenter, g.State().Kind)

	later := now.Add(2100 * time.Millisecond)
	assert.NoError(t, g.Step(later, &perception.Snapshot{ClosestEdge: edgeFar()}))
	assert.Equal(t, KindFlank, g.State().Kind)
}

func TestDisabledGameplayConsumesSnapshotButDoesNotTick(t *testing.T) {
	act := &recordingActuator{}
	g := New(fakeConfig{enabled: false, target: perception.TargetBlue}, act, testCurve(), nil)
	now := time.Now()
	assert.NoError(t, g.Step(now, &perception.Snapshot{ClosestEdge: edgeFar()}))
	assert.Equal(t, 0, act.xywCalls, "disabled gameplay must not actuate")
	assert.Equal(t, 0, act.applyCalls)
}

func TestMissingSnapshotIsNoop(t *testing.T) {
	act := &recordingActuator{}
	g := New(fakeConfig{enabled: true, target: perception.TargetBlue}, act, testCurve(), nil)
	assert.NoError(t, g.Step(time.Now(), nil))
	assert.Equal(t, 0, act.startCalls, "Start should not run before the first real snapshot")
}

func TestFlankShootsWhenBallCommittedAndAligned(t *testing.T) {
	act := &recordingActuator{}
	now := time.Now()
	g := newStartedGameplay(t, act, true, KindFlank, now)

	closeBall := perception.Ball{Point: geometry.PolarPoint{Angle: 0, Dist: 0.1}}
	snap := &perception.Snapshot{
		Balls:       []perception.Ball{closeBall},
		GoalBlue:    &perception.Goal{Point: geometry.PolarPoint{Angle: 0, Dist: 2}, Color: perception.GoalBlue},
		ClosestEdge: edgeFar(),
	}
	assert.NoError(t, g.Step(now.Add(time.Millisecond), snap))
	assert.Equal(t, KindShoot, g.State().Kind, "close, centered, committed ball should trigger SHOULD_SHOOT -> Shoot")
}

func TestFlankSuperShootsFarFromTargetGoal(t *testing.T) {
	act := &recordingActuator{}
	now := time.Now()
	g := newStartedGameplay(t, act, true, KindFlank, now)

	closeBall := perception.Ball{Point: geometry.PolarPoint{Angle: 0, Dist: 0.1}}
	snap := &perception.Snapshot{
		Balls:       []perception.Ball{closeBall},
		GoalBlue:    &perception.Goal{Point: geometry.PolarPoint{Angle: 0, Dist: 4.5}, Color: perception.GoalBlue},
		ClosestEdge: edgeFar(),
	}
	assert.NoError(t, g.Step(now.Add(time.Millisecond), snap))
	assert.Equal(t, KindSuperShoot, g.State().Kind)
}

func TestFlankNoBallsReturnsToPatrol(t *testing.T) {
	act := &recordingActuator{}
	now := time.Now()
	g := newStartedGameplay(t, act, true, KindFlank, now)

	snap := &perception.Snapshot{ClosestEdge: edgeFar()}
	assert.NoError(t, g.Step(now.Add(time.Millisecond), snap))
	assert.Equal(t, KindPatrol, g.State().Kind)
}

func TestShootReturnsToFlankAfterTimeout(t *testing.T) {
	act := &recordingActuator{}
	now := time.Now()
	g := newStartedGameplay(t, act, true, KindShoot, now)

	snap := &perception.Snapshot{
		GoalBlue:    &perception.Goal{Point: geometry.PolarPoint{Angle: 0, Dist: 2}, Color: perception.GoalBlue},
		ClosestEdge: edgeFar(),
	}
	assert.NoError(t, g.Step(now.Add(1900*time.Millisecond), snap))
	assert.Equal(t, KindFlank, g.State().Kind)
}

func TestShootAnimatesAndKicksBeforeTimeout(t *testing.T) {
	act := &recordingActuator{}
	now := time.Now()
	g := newStartedGameplay(t, act, true, KindShoot, now)

	snap := &perception.Snapshot{
		GoalBlue:    &perception.Goal{Point: geometry.PolarPoint{Angle: 0, Dist: 2}, Color: perception.GoalBlue},
		ClosestEdge: edgeFar(),
	}
	assert.NoError(t, g.Step(now.Add(time.Millisecond), snap))
	assert.Equal(t, KindShoot, g.State().Kind)
	assert.GreaterOrEqual(t, act.throwCalls, 1, "Shoot.animate should kick")
	assert.GreaterOrEqual(t, act.xywCalls, 1, "Shoot.animate should drive toward the target goal")
}

func TestRecoveryCounterIncrementsAndDecays(t *testing.T) {
	act := &recordingActuator{}
	now := time.Now()
	g := newStartedGameplay(t, act, true, KindOutOfBounds, now)
	assert.Equal(t, 1, g.recoveryCounter)

	// Leave the recovery state; after 10 uninterrupted seconds the counter
	// should decay by exactly one.
	g.enter(KindPatrol, now, "test-transition")
	g.decayRecoveryCounter(now.Add(10100 * time.Millisecond))
	assert.Equal(t, 0, g.recoveryCounter)
}

func TestForcedRecoveryWindowBlocksEarlyExit(t *testing.T) {
	act := &recordingActuator{}
	now := time.Now()
	g := newStartedGameplay(t, act, true, KindOutOfBounds, now)
	g.recoveryCounter = 4 // forces a 2s window (min(4*0.5,5))
	g.current.EnteredAt = now

	snap := &perception.Snapshot{ClosestEdge: &perception.EdgeVector{X: 0, Y: 5}}
	assert.NoError(t, g.Step(now.Add(500*time.Millisecond), snap))
	assert.Equal(t, KindOutOfBounds, g.State().Kind, "forced recovery window should suppress the edge-clear guard")
}

func TestKickerSpeedWithinCalibratedRange(t *testing.T) {
	act := &recordingActuator{}
	now := time.Now()
	g := newStartedGameplay(t, act, true, KindShoot, now)

	snap := &perception.Snapshot{
		GoalBlue:    &perception.Goal{Point: geometry.PolarPoint{Angle: 0, Dist: 2}, Color: perception.GoalBlue},
		ClosestEdge: edgeFar(),
	}
	assert.NoError(t, g.Step(now.Add(time.Millisecond), snap))
	assert.GreaterOrEqual(t, act.lastRPM, 4650)
	assert.LessOrEqual(t, act.lastRPM, 11000)
}

func TestKickerUsesSmoothedTargetGoalDistance(t *testing.T) {
	act := &recordingActuator{}
	now := time.Now()
	g := newStartedGameplay(t, act, true, KindShoot, now)

	// Feed a burst of far readings (400cm) followed by one near reading
	// (100cm); the kicker should fire off the smoothed mean, not the raw
	// most-recent sample, so the reported speed sits well above what a
	// 100cm-only calibration would produce.
	far := &perception.Snapshot{
		GoalBlue:    &perception.Goal{Point: geometry.PolarPoint{Angle: 0, Dist: 4}, Color: perception.GoalBlue},
		ClosestEdge: edgeFar(),
	}
	for i := 0; i < 10; i++ {
		g.model.SetTarget(perception.TargetBlue)
		g.model.Update(far)
		g.recentTargetGoalDist = append(g.recentTargetGoalDist, 400)
	}

	near := &perception.Snapshot{
		GoalBlue:    &perception.Goal{Point: geometry.PolarPoint{Angle: 0, Dist: 1}, Color: perception.GoalBlue},
		ClosestEdge: edgeFar(),
	}
	assert.NoError(t, g.Step(now.Add(time.Millisecond), near))

	smoothed, ok := g.targetGoalDistanceSmoothedCm()
	assert.True(t, ok)
	assert.Greater(t, smoothed, 300.0, "mean of ten 400cm samples plus one 100cm sample should stay well above 300cm")
	assert.Greater(t, act.lastRPM, 6000, "kick speed should follow the smoothed ~373cm distance, not the raw 100cm reading (~5708 RPM)")
}

func TestTargetGoalAnimateBacktracksWhenFarOffAngle(t *testing.T) {
	act := &recordingActuator{}
	now := time.Now()
	g := newStartedGameplay(t, act, true, KindTargetGoal, now)

	// 30deg off-angle, well past the 7deg backtrack threshold: the
	// backtrack branch of drive_toward_target_goal should fire, which
	// drives backward (negative Y) rather than forward.
	snap := &perception.Snapshot{
		GoalBlue:    &perception.Goal{Point: geometry.PolarPoint{Angle: degToRad(30), Dist: 2}, Color: perception.GoalBlue},
		ClosestEdge: edgeFar(),
	}
	g.model.SetTarget(perception.TargetBlue)
	g.model.Update(snap)
	animateTargetGoal(g, now)
	assert.Less(t, act.lastXYW.Y, 0.0, "30deg off-angle should trigger the backtrack branch (negative Y)")
}

func TestTooCloseRingUsesSmoothedTargetDistance(t *testing.T) {
	act := &recordingActuator{}
	now := time.Now()
	g := newStartedGameplay(t, act, true, KindFlank, now)

	closeSnap := &perception.Snapshot{
		GoalBlue:    &perception.Goal{Point: geometry.PolarPoint{Angle: 0, Dist: 0.2}, Color: perception.GoalBlue},
		ClosestEdge: edgeFar(),
	}
	for i := 0; i < 4; i++ {
		assert.NoError(t, g.Step(now.Add(time.Duration(i+1)*time.Millisecond), closeSnap))
	}
	assert.True(t, g.model.TooClose(), "four consecutive 20cm readings should register as too-close")
}
