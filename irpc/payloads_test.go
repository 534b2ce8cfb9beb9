package irpc

import "testing"

// TestPayloadRoundTrip exercises every payload type's Encode/Decode
// pair directly against a Frame body (spec.md §8 "Round-trip ...
// preserves every field bit-for-bit for every payload type").
func TestPayloadRoundTrip(t *testing.T) {
	t.Run("Configure", func(t *testing.T) {
		want := ConfigurePayload{
			PolePairs: 50, EncoderZeroRad: 0.1, CurrentLimitA: 5, VelocityLimit: 20,
			PositionLimit: 3.14, CurrentKp: 0.5, CurrentKi: 0.1, VelocityKp: 0.3,
			VelocityKi: 0.05, PositionKp: 10, TorqueConstant: 0.15, DefaultProfile: 1,
		}
		var f Frame
		want.Encode(&f)
		got := DecodeConfigure(&f)
		if got != want {
			t.Fatalf("got %+v want %+v", got, want)
		}
	})

	t.Run("SetTargetV2", func(t *testing.T) {
		want := SetTargetV2Payload{
			Pos: 0.785, VMax: 2, AMax: 20, JMax: 100, Profile: 1,
			ShaperKind: 2, ShaperFreq: 15, ShaperZeta: 0.05, Flags: 0,
		}
		var f Frame
		want.Encode(&f)
		got := DecodeSetTargetV2(&f)
		if got != want {
			t.Fatalf("got %+v want %+v", got, want)
		}
	})

	t.Run("TelemetryStream", func(t *testing.T) {
		want := TelemetryStreamPayload{
			Pos: 1, Vel: 2, Acc: 3, Id: 4, Iq: 5, Vd: 6, Vq: 7,
			Torque: 8, Power: 9, LoadPct: 10, Temp: 11,
			FocLoopUs: 85, Warnings: 0x3, TrajActive: true, TsUs: 123456789,
		}
		var f Frame
		want.Encode(&f)
		if f.BodyLen > MaxBodyLen {
			t.Fatalf("telemetry body exceeds frame budget: %d > %d", f.BodyLen, MaxBodyLen)
		}
		got := DecodeTelemetryStream(&f)
		if got != want {
			t.Fatalf("got %+v want %+v", got, want)
		}
	})

	t.Run("AdaptiveStatus", func(t *testing.T) {
		want := AdaptiveStatusPayload{
			LoadPct: 42.5, CurrentScale: 0.8, VelocityScale: 1, EnergySavedWh: 0.003,
			StallStatus: 2, StallConfidence: 0.75, Flags: 0,
		}
		var f Frame
		want.Encode(&f)
		got := DecodeAdaptiveStatus(&f)
		if got != want {
			t.Fatalf("got %+v want %+v", got, want)
		}
	})

	t.Run("StartCalibration", func(t *testing.T) {
		want := StartCalibrationPayload{PhasesMask: 0b00011, IMax: 3, VMax: 4, PosRange: 3.14, PhaseTimeoutS: 60, ReturnHome: true}
		var f Frame
		want.Encode(&f)
		got := DecodeStartCalibration(&f)
		if got != want {
			t.Fatalf("got %+v want %+v", got, want)
		}
	})

	t.Run("CalibrationResult", func(t *testing.T) {
		want := CalibrationResultPayload{
			Success: true, InertiaKgM2: 1e-4, TorqueConstant: 0.15, DampingCoeff: 2e-5,
			FrictionCoulomb: 0.02, FrictionStribeckPeak: 0.03, FrictionStribeckVel: 0.5, FrictionViscous: 1e-4,
			ConfOverall: 0.8, ConfInertia: 0.9, ConfFriction: 0.85, ConfKt: 0.7, ConfValidationRMS: 0.01,
			TotalS: 45, ErrorCode: ErrNone,
		}
		var f Frame
		want.Encode(&f)
		if f.BodyLen > MaxBodyLen {
			t.Fatalf("calibration result exceeds frame budget: %d > %d", f.BodyLen, MaxBodyLen)
		}
		got := DecodeCalibrationResult(&f)
		if got != want {
			t.Fatalf("got %+v want %+v", got, want)
		}
	})

	t.Run("DictionaryResponse", func(t *testing.T) {
		want := DictionaryResponsePayload{
			FirmwareVersion: "0.1.0-core",
			PolePairs:       50,
			SupportedTags:   []Tag{TagConfigure, TagActivate, TagSetTargetV2},
		}
		var f Frame
		want.Encode(&f)
		scratch := make([]Tag, 0, maxStringLen)
		got := DecodeDictionaryResponse(&f, scratch)
		if got.FirmwareVersion != want.FirmwareVersion || got.PolePairs != want.PolePairs {
			t.Fatalf("got %+v want %+v", got, want)
		}
		if len(got.SupportedTags) != len(want.SupportedTags) {
			t.Fatalf("tag count mismatch: got %d want %d", len(got.SupportedTags), len(want.SupportedTags))
		}
		for i := range want.SupportedTags {
			if got.SupportedTags[i] != want.SupportedTags[i] {
				t.Fatalf("tag %d mismatch: got %v want %v", i, got.SupportedTags[i], want.SupportedTags[i])
			}
		}
	})
}

func TestNackCarriesErrorCode(t *testing.T) {
	var f Frame
	NackPayload{MsgID: 7, ErrorCode: ErrVelocityLimit}.Encode(&f)
	got := DecodeNack(&f)
	if got.MsgID != 7 || got.ErrorCode != ErrVelocityLimit {
		t.Fatalf("got %+v", got)
	}
}
