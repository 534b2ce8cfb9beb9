package adaptive

// Controller ties the load estimator, coolStep, dcStep and stallGuard
// together into the single cooperative task the scheduler runs
// (spec.md §4.7, §5). One instance per joint.
type Controller struct {
	cfg   Config
	load  *LoadEstimator
	cool  *CoolStep
	dc    *DCStep
	stall *StallGuard
}

// NewController builds a Controller from cfg. alpha is the load
// estimator's smoothing constant.
func NewController(cfg Config, alpha float32) *Controller {
	return &Controller{
		cfg:   cfg,
		load:  NewLoadEstimator(cfg.IqMaxAmps, alpha),
		cool:  NewCoolStep(cfg),
		dc:    NewDCStep(cfg),
		stall: NewStallGuard(cfg),
	}
}

// Evaluate runs one adaptive-coroutine cycle from the latest FOC
// measurements and returns the published status.
func (c *Controller) Evaluate(iqMeas, velocity float32) Status {
	loadPct := c.load.Update(iqMeas)
	currentScale := c.cool.Evaluate(loadPct)

	var iqFraction float32
	if c.cfg.IqMaxAmps > 0 {
		iqFraction = iqMeas / c.cfg.IqMaxAmps
		if iqFraction < 0 {
			iqFraction = -iqFraction
		}
	}
	velScale := c.dc.Evaluate(velocity, iqFraction)

	stalled, confidence := c.stall.Evaluate(loadPct)

	return Status{
		LoadPercent:     loadPct,
		CurrentScale:    currentScale,
		VelocityScale:   velScale,
		Stalled:         stalled,
		StallConfidence: confidence,
	}
}

// ClearStall resets the stall-detection FSM; joint calls it on every
// successful Activate.
func (c *Controller) ClearStall() {
	c.stall.Clear()
}
