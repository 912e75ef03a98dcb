// Package tracker assigns stable identifiers to balls across recognition
// frames so the behavior state machine can commit to pursuing one ball
// instead of oscillating between near-equidistant detections.
package tracker

import (
	"fmt"
	"math"
	"time"

	"github.com/Garsondee/fieldbrain/internal/geometry"
	"github.com/Garsondee/fieldbrain/internal/perception"
)

// maxAge is the TTL after which a tracked identifier is dropped.
const maxAge = 200 * time.Millisecond

// Identifier is a single tracked ball: a stable id, the point it was last
// observed at, and the time of that sighting.
type Identifier struct {
	ID        string
	Point     geometry.PolarPoint
	Timestamp time.Time
}

// Age returns how long ago this identifier was last refreshed.
func (id Identifier) Age(now time.Time) time.Duration {
	return now.Sub(id.Timestamp)
}

// idSeq is a process-local monotonic counter used to mint readable,
// collision-free identifiers without pulling in a UUID dependency the
// teacher never needed either.
var idSeq uint64

func newID() string {
	idSeq++
	return fmt.Sprintf("ball-%d", idSeq)
}

// Tracker owns the id->Identifier map, the "committed ball" selection
// state, and the average-closest-ball ring.
type Tracker struct {
	byID       map[string]*Identifier
	lastBallID string
	lastChosen time.Time

	closeRing []geometry.PolarPoint // up to 5 "close, centered" samples
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{byID: map[string]*Identifier{}}
}

// Refresh advances identity continuity for one tick, given the balls
// visible this tick sorted by ascending distance.
func (t *Tracker) Refresh(balls []perception.Ball, now time.Time) {
	newMap := map[string]*Identifier{}

	// Iterate in reverse distance order (farthest first): farther balls
	// are matched first and get first claim on the previous map's
	// entries; closer balls can only claim identifiers the farther balls
	// didn't take.
	for i := len(balls) - 1; i >= 0; i-- {
		ball := balls[i]
		if ball.Suspicious {
			continue
		}
		bestID := ""
		bestDist := math.Inf(1)
		for id, prev := range t.byID {
			if _, taken := newMap[id]; taken {
				continue
			}
			d := geometry.Distance(prev.Point, ball.Point)
			if d < bestDist {
				bestDist = d
				bestID = id
			}
		}

		limit := 0.4 * ball.Point.Dist / 10
		var id string
		if bestID != "" && bestDist < 0.05 && bestDist < limit {
			id = bestID
		} else {
			id = newID()
		}

		entry := &Identifier{ID: id, Point: ball.Point, Timestamp: now}
		if entry.Age(now) > maxAge {
			// A stalled tick could in principle make a just-minted
			// entry already stale; drop it rather than keep it.
			continue
		}
		newMap[id] = entry
	}

	t.byID = newMap
}

// ClosestBall returns the committed current ball, given the refreshed
// tracker state and the raw visible balls (fallback).
func (t *Tracker) ClosestBall(balls []perception.Ball, now time.Time) (geometry.PolarPoint, string, bool) {
	if t.lastBallID != "" {
		if id, ok := t.byID[t.lastBallID]; ok {
			if now.Sub(t.lastChosen) < 2*time.Second {
				t.lastChosen = now
				return id.Point, id.ID, true
			}
		}
	}

	// Nearest ball in the refreshed tracker.
	var bestID string
	var bestPoint geometry.PolarPoint
	bestDist := math.Inf(1)
	for id, entry := range t.byID {
		if entry.Point.Dist < bestDist {
			bestDist = entry.Point.Dist
			bestID = id
			bestPoint = entry.Point
		}
	}
	if bestID != "" {
		t.lastBallID = bestID
		t.lastChosen = now
		return bestPoint, bestID, true
	}

	// Fall back to the nearest raw visible ball (tracker empty this tick).
	if len(balls) == 0 {
		return geometry.PolarPoint{}, "", false
	}
	nearest := balls[0]
	for _, b := range balls[1:] {
		if b.Point.Dist < nearest.Point.Dist {
			nearest = b
		}
	}
	return nearest.Point, "", true
}

// UpdateAverageClosestBall appends one sample to the close-centered ring
// when the committed closest ball qualifies (dist < 0.5m AND |angle| <
// 15deg), else shrinks the ring by one.
func (t *Tracker) UpdateAverageClosestBall(ball geometry.PolarPoint, hasBall bool) {
	const maxLen = 5
	qualifies := hasBall && ball.Dist < 0.5 && ball.AngleDegAbs() < 15
	if qualifies {
		t.closeRing = append(t.closeRing, ball)
		if len(t.closeRing) > maxLen {
			t.closeRing = t.closeRing[1:]
		}
		return
	}
	if len(t.closeRing) > 0 {
		t.closeRing = t.closeRing[1:]
	}
}

// AverageClosestBall returns the arithmetic mean angle/dist over the
// close-centered ring. ok is false when the ring is empty.
func (t *Tracker) AverageClosestBall() (geometry.PolarPoint, bool) {
	if len(t.closeRing) == 0 {
		return geometry.PolarPoint{}, false
	}
	var sumAngle, sumDist float64
	for _, p := range t.closeRing {
		sumAngle += p.Angle
		sumDist += p.Dist
	}
	n := float64(len(t.closeRing))
	return geometry.PolarPoint{Angle: sumAngle / n, Dist: sumDist / n}, true
}

// Len returns the number of currently tracked identifiers (bounded by the
// number of balls visible this tick; never stale after Refresh).
func (t *Tracker) Len() int {
	return len(t.byID)
}

// AllAges returns the ages of every currently tracked identifier, for
// bounding tracked ages under the expiry window.
func (t *Tracker) AllAges(now time.Time) []time.Duration {
	ages := make([]time.Duration, 0, len(t.byID))
	for _, id := range t.byID {
		ages = append(ages, id.Age(now))
	}
	return ages
}
