// Package adaptive implements the load-estimation and self-adjusting
// control block (spec.md §4.7): coolStep current scaling, dcStep
// velocity derating, stallGuard stall detection, and relay-method PI
// auto-tuning. Names and thresholds are carried over algorithmically
// from Trinamic's TMC5160/TMC2209 feature set (grounded on
// scottfeldman-drivers/tmc5160 and tmc2209's register-level current
// scaling and CoolStep/StealthChop toggles) but reimplemented against
// measured (Iq, velocity) rather than driven by real SPI/UART register
// writes, since this design integrates the driver directly into the
// FOC loop instead of delegating to an external stepper IC.
package adaptive

// Status is the adaptive coroutine's public, single-writer state,
// consumed by telemetry and the protocol layer (spec.md §5).
type Status struct {
	LoadPercent   float32 // rolling estimate of |Iq|/IqMax, 0-100
	CurrentScale  float32 // coolStep output, multiplies IqRef before FOC
	VelocityScale float32 // dcStep output, caps commanded velocity
	Stalled       bool
	StallConfidence float32 // 0-1
}

// Config is the adaptive block's tuning, set at Configure time and
// replaced by ConfigureAdaptive.
type Config struct {
	IqMaxAmps float32

	CoolStepLowLoad, CoolStepHighLoad float32 // percent thresholds
	CoolStepMinScale, CoolStepMaxScale float32
	CoolStepStep float32 // per-evaluation scale increment

	DCStepVelThreshold float32 // rad/s above which derating may kick in
	DCStepMinScale     float32

	StallGuardThreshold float32 // load% sustained above this trips a stall
	StallGuardWindow    int     // evaluations the load must stay above threshold
}
