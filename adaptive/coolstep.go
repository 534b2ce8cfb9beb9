package adaptive

import "motorcore/internal/numeric"

// CoolStep rescales the commanded current toward the minimum that still
// holds the load, the algorithmic equivalent of TMC2209's CoolStep
// (scottfeldman-drivers/tmc2209/stealthchop.go's EnableCoolStep, which
// takes the same lower/upper load thresholds this evaluates against).
type CoolStep struct {
	cfg   Config
	scale float32
}

// NewCoolStep starts at full scale: coolStep only ever reduces current
// once load measurements justify it.
func NewCoolStep(cfg Config) *CoolStep {
	return &CoolStep{cfg: cfg, scale: 1.0}
}

// Evaluate takes one load% sample and returns the updated current
// scale. Runs at the adaptive coroutine's cadence (spec.md §4.7), not
// the FOC tick rate.
func (c *CoolStep) Evaluate(loadPercent float32) float32 {
	switch {
	case loadPercent > c.cfg.CoolStepHighLoad:
		c.scale += c.cfg.CoolStepStep
	case loadPercent < c.cfg.CoolStepLowLoad:
		c.scale -= c.cfg.CoolStepStep
	}
	c.scale = numeric.Clamp(c.scale, c.cfg.CoolStepMinScale, c.cfg.CoolStepMaxScale)
	return c.scale
}

// Scale returns the last computed scale without evaluating a new
// sample.
func (c *CoolStep) Scale() float32 {
	return c.scale
}
