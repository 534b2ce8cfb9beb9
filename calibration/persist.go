package calibration

import (
	"encoding/binary"
	"math"

	"motorcore/internal/crc"
)

// PersistVersion is bumped whenever the on-flash record layout changes.
const PersistVersion = 1

// recordLen is the fixed size of the serialized record: version(1) +
// 11 float32 fields (44) + crc16(2).
const recordLen = 1 + 11*4 + 2

// ErrCorrupt is returned by Decode when the CRC or version does not match;
// the caller (joint) treats this as spec.md §6's "corruption -> Unconfigured".
var ErrCorrupt = corruptError{}

type corruptError struct{}

func (corruptError) Error() string { return "persisted calibration record: CRC or version mismatch" }

// Persisted is the flash-resident subset of Result plus the home offset
// and input-shaper settings ("Persisted parameters", spec.md §6). Motion
// and current-loop limits/gains live in joint.Config and are not part of
// this record; this type only carries what the calibration FSM itself
// identifies plus those shaper/home fields, to keep this
// package free of a joint import (matches motion/interpolator.go's
// "don't import the caller" discipline).
type Persisted struct {
	InertiaKgM2    float32
	Coulomb        float32
	Viscous        float32
	StribeckPeak   float32
	StribeckVel    float32
	TorqueConstant float32
	DampingCoeff   float32
	HomeOffset     float32

	ShaperFreq float32
	ShaperZeta float32
	ShaperKind float32 // stored as float32 to keep the record one uniform field type; cast on load
}

// FromResult copies the identified subset of r into a Persisted record.
func FromResult(r Result, homeOffset, shaperFreq, shaperZeta float32, shaperKind uint8) Persisted {
	return Persisted{
		InertiaKgM2:    r.InertiaKgM2,
		Coulomb:        r.Coulomb,
		Viscous:        r.Viscous,
		StribeckPeak:   r.StribeckPeak,
		StribeckVel:    r.StribeckVel,
		TorqueConstant: r.TorqueConstant,
		DampingCoeff:   r.DampingCoeff,
		HomeOffset:     homeOffset,
		ShaperFreq:     shaperFreq,
		ShaperZeta:     shaperZeta,
		ShaperKind:     float32(shaperKind),
	}
}

// Encode serializes p into a fixed-layout little-endian record with a
// trailing CRC16 (spec.md §6 "a versioned record ... and a CRC").
func (p Persisted) Encode() [recordLen]byte {
	var buf [recordLen]byte
	buf[0] = PersistVersion
	fields := []float32{
		p.InertiaKgM2, p.Coulomb, p.Viscous, p.StribeckPeak, p.StribeckVel,
		p.TorqueConstant, p.DampingCoeff, p.HomeOffset,
		p.ShaperFreq, p.ShaperZeta, p.ShaperKind,
	}
	off := 1
	for _, f := range fields {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
		off += 4
	}
	sum := crc.CRC16(buf[:off])
	binary.LittleEndian.PutUint16(buf[off:], sum)
	return buf
}

// Decode parses a record written by Encode, rejecting a version
// mismatch or CRC failure as corruption (spec.md §6: "Loaded at boot;
// corruption -> Unconfigured").
func Decode(buf []byte) (Persisted, error) {
	if len(buf) < recordLen {
		return Persisted{}, ErrCorrupt
	}
	if buf[0] != PersistVersion {
		return Persisted{}, ErrCorrupt
	}
	want := binary.LittleEndian.Uint16(buf[recordLen-2:])
	got := crc.CRC16(buf[:recordLen-2])
	if want != got {
		return Persisted{}, ErrCorrupt
	}

	var fields [11]float32
	off := 1
	for i := range fields {
		fields[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
	}
	return Persisted{
		InertiaKgM2:    fields[0],
		Coulomb:        fields[1],
		Viscous:        fields[2],
		StribeckPeak:   fields[3],
		StribeckVel:    fields[4],
		TorqueConstant: fields[5],
		DampingCoeff:   fields[6],
		HomeOffset:     fields[7],
		ShaperFreq:     fields[8],
		ShaperZeta:     fields[9],
		ShaperKind:     fields[10],
	}, nil
}
