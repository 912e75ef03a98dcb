package behavior

import (
	"math"
	"time"

	"github.com/Garsondee/fieldbrain/internal/maneuver"
)

// guard is one (name, predicate) pair. The predicate reports the
// successor Kind and true if it fires; guards within a stateDef are
// checked in order and the first match wins.
type guard struct {
	name  string
	check func(g *Gameplay, now time.Time) (Kind, bool)
}

// stateDef bundles one state's animate body with its ordered guards and
// an optional "stick" override that suppresses guard evaluation for a
// fixed dwell after entry (only Patrol uses this).
type stateDef struct {
	animate     func(g *Gameplay, now time.Time)
	guards      []guard
	shouldStick func(g *Gameplay, now time.Time) bool
}

var stateDefs [12]stateDef

func init() {
	stateDefs[KindForceCenter] = stateDef{
		animate: animateDriveToFieldCenter,
		guards: []guard{
			{"elapsed>2s", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindFlank, g.current.Elapsed(now) > 2*time.Second
			}},
		},
	}

	stateDefs[KindPatrol] = stateDef{
		animate: animateDriveToFieldCenter,
		shouldStick: func(g *Gameplay, now time.Time) bool {
			return g.current.Elapsed(now) < 1*time.Second
		},
		guards: []guard{
			{"balls_visible_clear_path", func(g *Gameplay, now time.Time) (Kind, bool) {
				_, targetOK := g.model.TargetGoal()
				if len(g.model.Balls()) > 0 && !g.model.DangerZone() && targetOK {
					return KindFlank, true
				}
				return 0, false
			}},
			{"elapsed>8s", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindForceCenter, g.current.Elapsed(now) > 8*time.Second
			}},
		},
	}

	stateDefs[KindFlank] = stateDef{
		animate: animateFlank,
		guards: []guard{
			{"SHOULD_SHOOT", func(g *Gameplay, now time.Time) (Kind, bool) {
				ball, _, ok := g.track.ClosestBall(g.model.Balls(), now)
				if !ok {
					return 0, false
				}
				if ball.AngleDegAbs() >= 6 || ball.Dist >= 0.20 {
					return 0, false
				}
				if g.kickerSpeedDifference() > 200 {
					return 0, false
				}
				if g.superShootZone() {
					return KindSuperShoot, true
				}
				return KindShoot, true
			}},
			{"TOO_CLOSE", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindForceCenter, g.model.TooClose()
			}},
			{"NO_FLANK", func(g *Gameplay, now time.Time) (Kind, bool) {
				_, ok := g.goalToBallAngle(now)
				return KindPatrol, !ok && g.current.Elapsed(now) > 1*time.Second
			}},
			{"NO_BALLS", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindPatrol, len(g.model.Balls()) == 0
			}},
			{"LOST_GOAL", func(g *Gameplay, now time.Time) (Kind, bool) {
				_, targetOK := g.model.TargetGoal()
				return KindPatrol, !targetOK && len(g.recentTargetGoalDist) == 0
			}},
		},
	}

	stateDefs[KindShoot] = stateDef{
		animate: animateShoot,
		guards: []guard{
			{"elapsed>1.8s", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindFlank, g.current.Elapsed(now) > 1800*time.Millisecond
			}},
		},
	}

	stateDefs[KindSuperShoot] = stateDef{
		animate: animateSuperShoot,
		guards: []guard{
			{"elapsed>0.7s", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindFlank, g.current.Elapsed(now) > 700*time.Millisecond
			}},
		},
	}

	stateDefs[KindDrive] = stateDef{
		animate: animateDrive,
		guards: []guard{
			{"ball_close_goal_visible", func(g *Gameplay, now time.Time) (Kind, bool) {
				avg, ok := g.track.AverageClosestBall()
				_, targetOK := g.model.TargetGoal()
				return KindFlank, ok && avg.Dist < 0.7 && targetOK
			}},
			{"elapsed>8s", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindForceCenter, g.current.Elapsed(now) > 8*time.Second
			}},
		},
	}

	stateDefs[KindFindGoal] = stateDef{
		animate: animateDriveToFieldCenter,
		guards: []guard{
			{"target_goal_present", func(g *Gameplay, now time.Time) (Kind, bool) {
				_, ok := g.model.TargetGoal()
				return KindTargetGoal, ok
			}},
			{"elapsed>0.75s", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindPatrol, g.current.Elapsed(now) > 750*time.Millisecond
			}},
		},
	}

	stateDefs[KindDriveToCenter] = stateDef{
		animate: animateDriveToFieldCenter,
		guards: []guard{
			{"elapsed>0.75s", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindPatrol, g.current.Elapsed(now) > 750*time.Millisecond
			}},
			{"sentinel<1.5s", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindTargetGoal, g.current.Elapsed(now) < 1500*time.Millisecond
			}},
		},
	}

	stateDefs[KindTargetGoal] = stateDef{
		animate: animateTargetGoal,
		guards: []guard{
			{"VISITS", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindDriveToCenter, g.targetGoalVisitsWithin(now, 500*time.Millisecond) > 4
			}},
			{"alligned", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindFocus, g.model.Alligned()
			}},
			{"elapsed>0.75s", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindPatrol, g.current.Elapsed(now) > 750*time.Millisecond
			}},
			{"no_target_goal", func(g *Gameplay, now time.Time) (Kind, bool) {
				_, ok := g.model.TargetGoal()
				return KindFindGoal, !ok
			}},
		},
	}

	stateDefs[KindFocus] = stateDef{
		animate: animateFocus,
		guards: []guard{
			{"not_alligned", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindTargetGoal, !g.model.Alligned()
			}},
			{"alligned", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindDrive, g.model.Alligned()
			}},
		},
	}

	stateDefs[KindOutOfBounds] = stateDef{
		animate: animateDriveToFieldCenter,
		guards: []guard{
			{"edge_clear", func(g *Gameplay, now time.Time) (Kind, bool) {
				_, _, length, ok := g.model.ClosestEdge()
				return KindPatrol, ok && length > 1.2 && !g.forcedRecoveryWindow(now)
			}},
		},
	}

	stateDefs[KindPenalty] = stateDef{
		animate: animatePenalty,
		guards: []guard{
			{"both_goals_safe", func(g *Gameplay, now time.Time) (Kind, bool) {
				od, ook := g.model.OwnGoalDistM()
				td, tok := g.model.TargetGoalDistCm()
				if !ook || !tok {
					return 0, false
				}
				safe := od >= safeDistanceToGoals && td/100 >= safeDistanceToGoals
				return KindPatrol, safe && !g.forcedRecoveryWindow(now)
			}},
			{"too_close_to_edge", func(g *Gameplay, now time.Time) (Kind, bool) {
				return KindOutOfBounds, g.model.TooCloseToEdge()
			}},
		},
	}
}

func (g *Gameplay) targetGoalVisitsWithin(now time.Time, window time.Duration) int {
	count := 0
	for _, t := range g.targetGoalVisits {
		if now.Sub(t) <= window {
			count++
		}
	}
	return count
}

func animateDriveToFieldCenter(g *Gameplay, now time.Time) {
	ux, uy, _, ok := g.model.ClosestEdge()
	if !ok {
		return
	}
	g.emit(now, maneuver.DriveToFieldCenter(ux, uy))
}

func animateFlank(g *Gameplay, now time.Time) {
	targetAngle, targetOK := g.model.TargetGoalAngleDeg()
	ball, _, ballOK := g.track.ClosestBall(g.model.Balls(), now)

	factor := 1.0
	if ballOK && ball.AngleDegAbs() > 9 && math.Abs(g.kickerSpeedDifference()) > 200 {
		factor = 0.3
	}

	v, ok := maneuver.Flank(factor, targetAngle, targetOK, ball, ballOK)
	if ok {
		g.emit(now, v)
	}
	g.doKick(now)
}

func animateShoot(g *Gameplay, now time.Time) {
	targetAngle, ok := g.model.TargetGoalAngleDeg()
	if ok {
		g.emit(now, maneuver.DriveTowardTargetGoal(targetAngle, false, 0.8))
	}
	g.doKick(now)
}

func animateSuperShoot(g *Gameplay, now time.Time) {
	targetAngle, ok := g.model.TargetGoalAngleDeg()
	if ok {
		g.emit(now, maneuver.DriveTowardTargetGoal(targetAngle, false, 1.7))
	}
	g.doKick(now)
}

func animateDrive(g *Gameplay, now time.Time) {
	avg, ok := g.track.AverageClosestBall()
	if !ok {
		return
	}
	g.emit(now, maneuver.DriveToBall(avg))
}

func animateTargetGoal(g *Gameplay, now time.Time) {
	targetAngle, ok := g.model.TargetGoalAngleDeg()
	if ok {
		g.emit(now, maneuver.DriveTowardTargetGoal(targetAngle, true, 0.8))
	}
	g.doKick(now)
}

func animateFocus(g *Gameplay, now time.Time) {
	g.emit(now, maneuver.XYW{})
	g.doKick(now)
}

func animatePenalty(g *Gameplay, now time.Time) {
	own, ownOK := g.model.OwnGoal()
	target, targetOK := g.model.TargetGoal()
	v, ok := maneuver.DriveAwayFromGoal(own.Point, target.Point, ownOK, targetOK)
	if ok {
		g.emit(now, v)
	}
}
