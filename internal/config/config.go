// Package config provides the read-only configuration accessor the core
// consults between ticks. It wraps viper for live config reads from an
// optional config file and FIELDBRAIN_* environment variables, instead of
// command-line flags.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/Garsondee/fieldbrain/internal/kicker"
	"github.com/Garsondee/fieldbrain/internal/perception"
)

// Accessor is the read-only view gameplay code consults. A missing key
// never fails — it falls back to the documented default.
type Accessor struct {
	v *viper.Viper
}

// New creates an Accessor with the documented defaults registered, then
// merges in any config found at path (if non-empty) or from the
// environment (FIELDBRAIN_* prefix), matching viper's usual precedence.
func New(path string) (*Accessor, error) {
	v := viper.New()
	v.SetDefault("global.field_id", "A")
	v.SetDefault("global.robot_id", "A")
	v.SetDefault("global.target goal color", "blue")
	v.SetDefault("global.gameplay status", "disabled")
	v.SetDefault("kicker.calibration_curve", defaultCalibrationCurve())

	v.SetEnvPrefix("fieldbrain")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", " ", "_"))

	a := &Accessor{v: v}
	if path == "" {
		return a, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return a, nil
}

// FieldID is the read-only identifier string reported outward (log/report
// labeling only; never consulted by gameplay logic).
func (a *Accessor) FieldID() string {
	return a.v.GetString("global.field_id")
}

// RobotID is the read-only identifier string reported outward.
func (a *Accessor) RobotID() string {
	return a.v.GetString("global.robot_id")
}

// GameplayEnabled reports whether "gameplay status" == "enabled".
func (a *Accessor) GameplayEnabled() bool {
	return a.v.GetString("global.gameplay status") == "enabled"
}

// TargetGoalColor reports which recognized goal color is the target.
func (a *Accessor) TargetGoalColor() perception.TargetColor {
	if a.v.GetString("global.target goal color") == "blue" {
		return perception.TargetBlue
	}
	return perception.TargetYellow
}

// CalibrationCurve builds the kicker calibration curve from
// "kicker.calibration_curve", a list of {distance_cm, rpm} maps.
func (a *Accessor) CalibrationCurve() *kicker.Curve {
	var raw []map[string]interface{}
	if err := a.v.UnmarshalKey("kicker.calibration_curve", &raw); err != nil || len(raw) == 0 {
		return kicker.NewCurve(defaultCalibrationPoints())
	}
	points := make([]kicker.ControlPoint, 0, len(raw))
	for _, entry := range raw {
		d, ok1 := toFloat(entry["distance_cm"])
		r, ok2 := toFloat(entry["rpm"])
		if ok1 && ok2 {
			points = append(points, kicker.ControlPoint{DistanceCm: d, RPM: r})
		}
	}
	if len(points) == 0 {
		return kicker.NewCurve(defaultCalibrationPoints())
	}
	return kicker.NewCurve(points)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// defaultCalibrationCurve is the viper default value shape for
// "kicker.calibration_curve" — a monotone, roughly linear distance->rpm
// ramp typical of a spring-loaded kicker solenoid.
func defaultCalibrationCurve() []map[string]interface{} {
	pts := defaultCalibrationPoints()
	out := make([]map[string]interface{}, len(pts))
	for i, p := range pts {
		out[i] = map[string]interface{}{"distance_cm": p.DistanceCm, "rpm": p.RPM}
	}
	return out
}

func defaultCalibrationPoints() []kicker.ControlPoint {
	return []kicker.ControlPoint{
		{DistanceCm: 20, RPM: 4650},
		{DistanceCm: 100, RPM: 6200},
		{DistanceCm: 200, RPM: 8000},
		{DistanceCm: 300, RPM: 9600},
		{DistanceCm: 400, RPM: 10800},
		{DistanceCm: 500, RPM: 11000},
	}
}
