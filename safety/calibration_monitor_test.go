package safety

import (
	"testing"

	"motorcore/irpc"
)

func baseLimits() CalibrationLimits {
	return CalibrationLimits{
		HomePos: 0, PosRange: 1,
		VelCap: 2, CurrentCap: 3,
		PhaseTimeoutS: 10,
	}
}

func TestCalibrationMonitorPassesWithinEnvelope(t *testing.T) {
	m := NewCalibrationMonitor(baseLimits())
	if code := m.Check(0.5, 1, 2, 40, 0.1); code != irpc.ErrNone {
		t.Fatalf("Check() = %v, want ErrNone", code)
	}
}

func TestCalibrationMonitorPositionExcursion(t *testing.T) {
	m := NewCalibrationMonitor(baseLimits())
	if code := m.Check(2, 0, 0, 40, 0.1); code != irpc.ErrPositionLimit {
		t.Fatalf("Check() = %v, want ErrPositionLimit", code)
	}
}

func TestCalibrationMonitorVelocityMargin(t *testing.T) {
	m := NewCalibrationMonitor(baseLimits())
	// Just inside the 1.1x margin over VelCap=2 should pass.
	if code := m.Check(0, 2.1, 0, 40, 0.1); code != irpc.ErrNone {
		t.Fatalf("Check() within 1.1x margin = %v, want ErrNone", code)
	}
	if code := m.Check(0, 2.3, 0, 40, 0.1); code != irpc.ErrVelocityLimit {
		t.Fatalf("Check() past 1.1x margin = %v, want ErrVelocityLimit", code)
	}
}

func TestCalibrationMonitorCurrentMargin(t *testing.T) {
	m := NewCalibrationMonitor(baseLimits())
	if code := m.Check(0, 0, 3.5, 40, 0.1); code != irpc.ErrCurrentLimit {
		t.Fatalf("Check() = %v, want ErrCurrentLimit", code)
	}
}

func TestCalibrationMonitorTemperatureDefaultCap(t *testing.T) {
	m := NewCalibrationMonitor(baseLimits()) // TempCapC unset -> defaults to 80
	if code := m.Check(0, 0, 0, 81, 0.1); code != irpc.ErrTemperatureLimit {
		t.Fatalf("Check() = %v, want ErrTemperatureLimit", code)
	}
}

func TestCalibrationMonitorPhaseTimeout(t *testing.T) {
	m := NewCalibrationMonitor(baseLimits())
	for i := 0; i < 9; i++ {
		if code := m.Check(0, 0, 0, 40, 1); code != irpc.ErrNone {
			t.Fatalf("unexpected fault before timeout at tick %d: %v", i, code)
		}
	}
	if code := m.Check(0, 0, 0, 40, 2); code != irpc.ErrTimeout {
		t.Fatalf("Check() = %v, want ErrTimeout once phase exceeds %v s", code, baseLimits().PhaseTimeoutS)
	}
}

func TestCalibrationMonitorResetPhaseTimer(t *testing.T) {
	m := NewCalibrationMonitor(baseLimits())
	m.Check(0, 0, 0, 40, 9.5)
	m.ResetPhaseTimer()
	if code := m.Check(0, 0, 0, 40, 0.1); code != irpc.ErrNone {
		t.Fatalf("Check() after ResetPhaseTimer = %v, want ErrNone", code)
	}
}
