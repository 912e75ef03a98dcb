// Package actuator defines the narrow interface the decision core talks
// to motor/kicker hardware through. Drivers, transports, and hardware
// are out of scope here; only the contract lives in this package.
package actuator

// Actuator is the controller the behavior state machine drives. Errors
// are propagated to the caller, never swallowed inside the core.
type Actuator interface {
	// SetXYW requests an instantaneous body velocity; each component must
	// be in [-1, 1].
	SetXYW(x, y, w float64) error
	// SetThrower requests a kicker RPM; a non-negative integer <= 15000.
	SetThrower(rpm int) error
	// Apply flushes queued setpoints.
	Apply() error
	// Start performs one-time bring-up.
	Start() error
}
