package config

import (
	"testing"

	"github.com/Garsondee/fieldbrain/internal/perception"
)

func TestDefaults(t *testing.T) {
	a, err := New("")
	if err != nil {
		t.Fatalf("New(\"\") returned error: %v", err)
	}
	if a.GameplayEnabled() {
		t.Error("gameplay should default to disabled")
	}
	if a.TargetGoalColor() != perception.TargetBlue {
		t.Error("target goal color should default to blue")
	}
	if a.FieldID() != "A" || a.RobotID() != "A" {
		t.Errorf("field/robot id defaults = %q/%q, want A/A", a.FieldID(), a.RobotID())
	}
}

func TestDefaultCalibrationCurveIsMonotone(t *testing.T) {
	a, _ := New("")
	curve := a.CalibrationCurve()
	prev := -1.0
	for _, d := range []float64{0, 20, 100, 250, 400, 600} {
		v := curve.DistToRPM(d)
		if v < prev {
			t.Errorf("calibration curve not monotone at d=%v: %v < %v", d, v, prev)
		}
		prev = v
	}
}
