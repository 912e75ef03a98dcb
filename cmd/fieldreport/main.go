// Command fieldreport replays a recorded recognition trace through the
// decision core and prints aggregate behavioral statistics.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/Garsondee/fieldbrain/internal/behavior"
	"github.com/Garsondee/fieldbrain/internal/decisionlog"
	"github.com/Garsondee/fieldbrain/internal/kicker"
	"github.com/Garsondee/fieldbrain/internal/perception"
)

// traceFrame is one recorded recognition event: a timestamp offset in
// milliseconds from the start of the trace and a raw snapshot.
type traceFrame struct {
	OffsetMS int64               `json:"offset_ms"`
	Snapshot perception.Snapshot `json:"snapshot"`
}

type runStats struct {
	runIndex int
	frames   int

	stateTicks       map[string]int
	transitions      int
	transitionsByKey map[string]int
	kicksSent        int
	recoveryEntries  int
}

func newRunStats(runIndex int) runStats {
	return runStats{
		runIndex:         runIndex,
		stateTicks:       map[string]int{},
		transitionsByKey: map[string]int{},
	}
}

func main() {
	var tracePath string
	var targetColor string
	var verbose bool

	flag.StringVar(&tracePath, "trace", "", "path to a JSON recognition trace (array of frames)")
	flag.StringVar(&targetColor, "target-goal-color", "blue", "target goal color: blue or yellow")
	flag.BoolVar(&verbose, "verbose", false, "record per-tick maneuver entries in the decision log")
	flag.Parse()

	if tracePath == "" {
		fmt.Println("error: -trace is required")
		os.Exit(1)
	}

	frames, err := loadTrace(tracePath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Decision Core Replay Report ===\n")
	fmt.Printf("trace=%s frames=%d target_goal_color=%s\n\n", tracePath, len(frames), targetColor)

	stats := runTrace(1, frames, targetColor, verbose)
	printRun(stats)
}

func loadTrace(path string) ([]traceFrame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	var frames []traceFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return nil, fmt.Errorf("parsing trace: %w", err)
	}
	return frames, nil
}

// fixedConfig is a minimal behavior.Config for replay: gameplay is always
// enabled and the target goal color is fixed for the whole trace.
type fixedConfig struct {
	target perception.TargetColor
}

func (f fixedConfig) GameplayEnabled() bool                      { return true }
func (f fixedConfig) TargetGoalColor() perception.TargetColor    { return f.target }
func (f fixedConfig) FieldID() string                            { return "replay" }
func (f fixedConfig) RobotID() string                            { return "replay" }

// noopActuator records nothing and never fails; the replay only cares
// about the decision log's transition/kick trail.
type noopActuator struct{}

func (noopActuator) SetXYW(x, y, w float64) error { return nil }
func (noopActuator) SetThrower(rpm int) error     { return nil }
func (noopActuator) Apply() error                 { return nil }
func (noopActuator) Start() error                 { return nil }

func runTrace(runIndex int, frames []traceFrame, targetColor string, verbose bool) runStats {
	stats := newRunStats(runIndex)

	target := perception.TargetBlue
	if targetColor == "yellow" {
		target = perception.TargetYellow
	}

	curve := kicker.NewCurve([]kicker.ControlPoint{
		{DistanceCm: 20, RPM: 4650},
		{DistanceCm: 500, RPM: 11000},
	})
	log := decisionlog.New(verbose)
	g := behavior.New(fixedConfig{target: target}, noopActuator{}, curve, log)

	base := time.Unix(0, 0)
	for _, f := range frames {
		now := base.Add(time.Duration(f.OffsetMS) * time.Millisecond)
		snap := f.Snapshot
		if err := g.Step(now, &snap); err != nil {
			fmt.Printf("run %d: actuator error at offset %dms: %v\n", runIndex, f.OffsetMS, err)
			break
		}
		stats.frames++
		stats.stateTicks[g.State().Kind.String()]++
	}

	for _, e := range log.Filter("state", "") {
		if e.Key == "start" {
			continue
		}
		stats.transitions++
		stats.transitionsByKey[e.Key]++
	}
	for range log.Filter("kicker", "set_thrower") {
		stats.kicksSent++
	}

	return stats
}

func printRun(s runStats) {
	fmt.Printf("--- run %d ---\n", s.runIndex)
	fmt.Printf("frames=%d transitions=%d kicks=%d\n", s.frames, s.transitions, s.kicksSent)

	keys := make([]string, 0, len(s.stateTicks))
	for k := range s.stateTicks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println("ticks per state:")
	for _, k := range keys {
		fmt.Printf("  %-14s %d\n", k, s.stateTicks[k])
	}

	guardKeys := make([]string, 0, len(s.transitionsByKey))
	for k := range s.transitionsByKey {
		guardKeys = append(guardKeys, k)
	}
	sort.Strings(guardKeys)
	fmt.Println("transitions by guard:")
	for _, k := range guardKeys {
		fmt.Printf("  %-24s %d\n", k, s.transitionsByKey[k])
	}
}
