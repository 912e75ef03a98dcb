package behavior

import (
	"math"
	"time"

	"github.com/Garsondee/fieldbrain/internal/actuator"
	"github.com/Garsondee/fieldbrain/internal/decisionlog"
	"github.com/Garsondee/fieldbrain/internal/geometry"
	"github.com/Garsondee/fieldbrain/internal/kicker"
	"github.com/Garsondee/fieldbrain/internal/maneuver"
	"github.com/Garsondee/fieldbrain/internal/perception"
	"github.com/Garsondee/fieldbrain/internal/tracker"
)

// Config is the subset of the read-only configuration accessor gameplay
// consults each tick. Defined here, not imported from internal/config,
// so this package has no dependency on viper.
type Config interface {
	GameplayEnabled() bool
	TargetGoalColor() perception.TargetColor
	FieldID() string
	RobotID() string
}

const safeDistanceToGoals = 1.4 // meters, Penalty's ENOUGH_FAR threshold

// maxRecentTargetGoalDistances bounds the recent-distances history used
// by Flank's LOST_GOAL guard to 11 samples.
const maxRecentTargetGoalDistances = 11

// Gameplay is the single owner of tracker state, smoothers, and the
// current gameplay state. Exactly one driver goroutine calls Step once
// per recognition event.
type Gameplay struct {
	cfg  Config
	act  actuator.Actuator
	log  *decisionlog.Log
	curv *kicker.Curve

	model   *perception.Model
	track   *tracker.Tracker
	kick    *kicker.Calibrator
	current State

	recoveryCounter        int
	nonRecoveryClockStart  time.Time
	recentTargetGoalDist   []float64
	targetGoalVisits       []time.Time
	lastCommandedRPM       float64
	realDistanceCm         *float64
	tick                   int
	started                bool
	stepErr                error
}

// New creates a Gameplay instance wired to the given config, actuator,
// calibration curve, and decision log. Step calls Start on the first
// snapshot if Start has not been called yet.
func New(cfg Config, act actuator.Actuator, curve *kicker.Curve, log *decisionlog.Log) *Gameplay {
	if log == nil {
		log = decisionlog.New(false)
	}
	g := &Gameplay{
		cfg:  cfg,
		act:  act,
		log:  log,
		curv: curve,
	}
	g.model = perception.NewModel(cfg.TargetGoalColor())
	g.track = tracker.New()
	g.kick = kicker.NewCalibrator(curve)
	return g
}

// Start performs one-time actuator bring-up and enters the initial
// state, ForceCenter.
func (g *Gameplay) Start(now time.Time) error {
	if err := g.act.Start(); err != nil {
		return err
	}
	g.current = State{Kind: KindForceCenter, EnteredAt: now}
	g.nonRecoveryClockStart = now
	g.started = true
	g.log.Add(g.tick, "state", "start", KindForceCenter.String(), 0)
	return nil
}

// SetRealDistance overrides the kicker calibration's distance input with
// a direct range-sensor reading, if the platform provides one. Pass nil
// to fall back to the target goal distance.
func (g *Gameplay) SetRealDistance(cm *float64) {
	g.realDistanceCm = cm
}

// State returns the current gameplay state.
func (g *Gameplay) State() State {
	return g.current
}

// DecisionLog returns the gameplay instance's decision log.
func (g *Gameplay) DecisionLog() *decisionlog.Log {
	return g.log
}

// Step consumes one recognition snapshot: perception and tracker state
// are always refreshed from the snapshot (even when gameplay is
// disabled); the state machine only ticks, and an actuation is only
// emitted, when the snapshot is present and gameplay is enabled.
func (g *Gameplay) Step(now time.Time, snap *perception.Snapshot) error {
	if snap == nil {
		return nil
	}
	if !g.started {
		if err := g.Start(now); err != nil {
			return err
		}
	}
	g.tick++

	g.model.SetTarget(g.cfg.TargetGoalColor())
	g.model.Update(snap)
	g.track.Refresh(g.model.Balls(), now)
	ball, _, hasBall := g.track.ClosestBall(g.model.Balls(), now)
	g.track.UpdateAverageClosestBall(ball, hasBall)

	if dist, ok := g.model.TargetGoalDistCm(); ok {
		g.recentTargetGoalDist = append(g.recentTargetGoalDist, dist)
		if len(g.recentTargetGoalDist) > maxRecentTargetGoalDistances {
			g.recentTargetGoalDist = g.recentTargetGoalDist[len(g.recentTargetGoalDist)-maxRecentTargetGoalDistances:]
		}
	}
	smoothedDist, haveSmoothedDist := g.targetGoalDistanceSmoothedCm()
	g.model.UpdateTooClose(smoothedDist, haveSmoothedDist, 4)

	if !g.cfg.GameplayEnabled() {
		return nil
	}

	g.stepErr = nil
	g.decayRecoveryCounter(now)
	g.advance(now)
	if g.stepErr != nil {
		return g.stepErr
	}

	return g.act.Apply()
}

// advance runs the current state's guards (unless it should stick),
// transitions on the first match, or otherwise animates in place.
func (g *Gameplay) advance(now time.Time) {
	def := stateDefs[g.current.Kind]

	if def.shouldStick != nil && def.shouldStick(g, now) {
		def.animate(g, now)
		return
	}

	for _, guard := range def.guards {
		if next, ok := guard.check(g, now); ok {
			g.enter(next, now, guard.name)
			return
		}
	}
	def.animate(g, now)
}

func (g *Gameplay) enter(kind Kind, now time.Time, guardName string) {
	prev := g.current.Kind
	g.current = State{Kind: kind, EnteredAt: now}
	if kind.IsRecovery() {
		g.recoveryCounter++
		g.nonRecoveryClockStart = now
	}
	if kind == KindTargetGoal {
		g.targetGoalVisits = append(g.targetGoalVisits, now)
		g.pruneTargetGoalVisits(now)
	}
	g.log.Add(g.tick, "state", guardName, prev.String()+" -> "+kind.String(), 0)
}

func (g *Gameplay) pruneTargetGoalVisits(now time.Time) {
	out := g.targetGoalVisits[:0]
	for _, t := range g.targetGoalVisits {
		if now.Sub(t) <= 500*time.Millisecond {
			out = append(out, t)
		}
	}
	g.targetGoalVisits = out
}

// decayRecoveryCounter decrements recovery_counter by 1 (floor 0) after
// 10 seconds of uninterrupted dwell outside any recovery state.
func (g *Gameplay) decayRecoveryCounter(now time.Time) {
	if g.current.Kind.IsRecovery() {
		g.nonRecoveryClockStart = now
		return
	}
	if g.recoveryCounter == 0 {
		return
	}
	if now.Sub(g.nonRecoveryClockStart) >= 10*time.Second {
		g.recoveryCounter--
		g.nonRecoveryClockStart = now
	}
}

// forcedRecoveryWindow reports whether the current recovery state must
// stay entered a little longer: now < entry_time + min(recovery_counter
// * 0.5, 5) seconds.
func (g *Gameplay) forcedRecoveryWindow(now time.Time) bool {
	factor := math.Min(float64(g.recoveryCounter)*0.5, 5)
	deadline := g.current.EnteredAt.Add(time.Duration(factor * float64(time.Second)))
	return now.Before(deadline)
}

// superShootZone reports whether the target goal is far enough, or the
// own goal close enough, to prefer the longer super-shoot kick.
func (g *Gameplay) superShootZone() bool {
	if td, ok := g.model.TargetGoalDistCm(); ok && td > 400 {
		return true
	}
	if od, ok := g.model.OwnGoalDistM(); ok && od < 0.75 {
		return true
	}
	return false
}

// kickerSpeedDifference is lastCommandedRPM minus the currently desired
// speed. There is no RPM telemetry interface available; lastCommandedRPM
// starts at 0 and is only updated when kick() actually issues a command,
// so a cold kicker reads as "already at or below the desired speed"
// rather than blocking a first shot.
func (g *Gameplay) kickerSpeedDifference() float64 {
	return g.lastCommandedRPM - g.desiredKickerSpeed()
}

func (g *Gameplay) desiredKickerSpeed() float64 {
	var target *float64
	if td, ok := g.targetGoalDistanceSmoothedCm(); ok {
		target = &td
	}
	adjust, _ := g.model.AngleAdjust()
	return g.kick.DesiredSpeed(g.realDistanceCm, target, adjust)
}

// targetGoalDistanceSmoothedCm returns the mean of the last (up to) 11
// per-tick target goal distances, in centimeters. ok is false before the
// first sample has been recorded.
func (g *Gameplay) targetGoalDistanceSmoothedCm() (float64, bool) {
	if len(g.recentTargetGoalDist) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, d := range g.recentTargetGoalDist {
		sum += d
	}
	return sum / float64(len(g.recentTargetGoalDist)), true
}

// doKick invokes the kicker calibrator's Kick and forwards the result to
// the actuator.
func (g *Gameplay) doKick(now time.Time) {
	var target *float64
	if td, ok := g.targetGoalDistanceSmoothedCm(); ok {
		target = &td
	}
	adjust, _ := g.model.AngleAdjust()
	speed, ok := g.kick.Kick(now, g.realDistanceCm, target, adjust)
	if !ok {
		return
	}
	g.lastCommandedRPM = speed
	if err := g.act.SetThrower(int(math.Round(speed))); err != nil {
		g.stepErr = err
	}
	g.log.Add(g.tick, "kicker", "set_thrower", "", speed)
}

// goalToBallAngle computes the angle between the target goal and the
// committed ball, using the tracker's raw committed ball rather than the
// smoothed average.
func (g *Gameplay) goalToBallAngle(now time.Time) (float64, bool) {
	targetAngle, ok := g.model.TargetGoalAngleDeg()
	if !ok {
		return 0, false
	}
	ball, _, ok := g.track.ClosestBall(g.model.Balls(), now)
	if !ok {
		return 0, false
	}
	return maneuver.GoalToBallAngle(ball.AngleDeg(), targetAngle), true
}

func (g *Gameplay) emit(now time.Time, v maneuver.XYW) {
	x := geometry.Clamp(v.X, -1, 1)
	y := geometry.Clamp(v.Y, -1, 1)
	w := geometry.Clamp(v.W, -1, 1)
	if err := g.act.SetXYW(x, y, w); err != nil {
		g.stepErr = err
	}
	g.log.AddVerbose(g.tick, "maneuver", g.current.Kind.String(), "", 0)
}
