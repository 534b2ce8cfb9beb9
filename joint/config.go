// Package joint is the process-wide orchestrator: it owns the one
// foc.Loop, motion planner/interpolator/shaper, adaptive.Controller,
// calibration.FSM, irpc.Dispatcher, telemetry.Streamer and
// safety.FaultBus/CalibrationMonitor for a single joint, and wires them
// into the lifecycle command handlers and periodic task loops spec.md
// §2's data-flow diagram describes.
package joint

import (
	"encoding/json"

	"motorcore/adaptive"
	"motorcore/motion"
)

// Config is the joint's full static configuration (spec.md §3
// "Configuration"), matching the teacher's config.LoadConfig/
// applyDefaults split, and mirrored into the wire ConfigurePayload for
// remote reconfiguration (spec.md §6). LoadConfig decodes it from JSON;
// the entrypoints in cmd/ build it as a literal instead, and New applies
// the defaults.
type Config struct {
	PolePairs      int     `json:"pole_pairs"`
	EncoderZeroRad float32 `json:"encoder_zero_rad"`

	CurrentLimitA float32 `json:"current_limit_a"`
	VelocityLimit float32 `json:"velocity_limit"`
	PositionLimit float32 `json:"position_limit"`

	CurrentKp  float32 `json:"current_kp"`
	CurrentKi  float32 `json:"current_ki"`
	VelocityKp float32 `json:"velocity_kp"`
	VelocityKi float32 `json:"velocity_ki"`
	PositionKp float32 `json:"position_kp"`

	VelIntegralMax float32 `json:"vel_integral_max"`

	TorqueConstant float32       `json:"torque_constant"`
	InertiaKgM2    float32       `json:"inertia_kg_m2"` // identified by calibration (spec.md §4.8); 0 disables velocity-loop feedforward
	DefaultProfile motion.Profile `json:"default_profile"`

	SenseVoltsPerAmp float32 `json:"sense_volts_per_amp"`
	AdcRefVolts      float32 `json:"adc_ref_volts"`
	AdcMaxCount      uint16  `json:"adc_max_count"`
	ITripAmps        float32 `json:"itrip_amps"`
	VbusNominal      float32 `json:"vbus_nominal"`

	DeadlineMissBudget uint32 `json:"deadline_miss_budget"`
	DeadlineMissWindow uint32 `json:"deadline_miss_window"`

	HomePos float32 `json:"home_pos"`

	Adaptive adaptive.Config `json:"adaptive"`

	SelfID uint16 `json:"self_id"`
	HostID uint16 `json:"host_id"`
}

// LoadConfig parses a JSON configuration blob and applies defaults,
// matching the teacher's config.LoadConfig(jsonData) shape.
func LoadConfig(jsonData []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// applyDefaults fills in values a minimal JSON blob can leave zero,
// mirroring config.applyDefaults's "if field == 0, set a sensible
// default" style.
func applyDefaults(cfg *Config) {
	if cfg.SenseVoltsPerAmp == 0 {
		cfg.SenseVoltsPerAmp = 0.2 // V/A, spec.md §4.1 step 1
	}
	if cfg.AdcRefVolts == 0 {
		cfg.AdcRefVolts = 3.3
	}
	if cfg.AdcMaxCount == 0 {
		cfg.AdcMaxCount = 4095
	}
	if cfg.VbusNominal == 0 {
		cfg.VbusNominal = 24
	}
	if cfg.DeadlineMissWindow == 0 {
		cfg.DeadlineMissWindow = 100
	}
	if cfg.VelIntegralMax == 0 {
		cfg.VelIntegralMax = cfg.CurrentLimitA
	}
	if cfg.Adaptive.IqMaxAmps == 0 {
		cfg.Adaptive.IqMaxAmps = cfg.CurrentLimitA
	}
	if cfg.Adaptive.CoolStepMaxScale == 0 {
		cfg.Adaptive.CoolStepMaxScale = 1
	}
	if cfg.Adaptive.StallGuardWindow == 0 {
		cfg.Adaptive.StallGuardWindow = 100 // 100ms at the 1kHz adaptive cadence (spec.md §4.7)
	}
	if cfg.HostID == 0 {
		cfg.HostID = 1
	}
}
