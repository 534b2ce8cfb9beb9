package irpc

import (
	"encoding/binary"
	"math"
)

// wire.go holds the fixed-size little-endian field primitives every
// payload codec below is built from (spec.md §6: "Serialization is
// fixed little-endian; floats are IEEE-754 single precision; bounded
// strings are length-prefixed").

func putU8(b []byte, off int, v uint8) int {
	b[off] = v
	return off + 1
}

func getU8(b []byte, off int) (uint8, int) {
	return b[off], off + 1
}

func putBool(b []byte, off int, v bool) int {
	if v {
		return putU8(b, off, 1)
	}
	return putU8(b, off, 0)
}

func getBool(b []byte, off int) (bool, int) {
	v, next := getU8(b, off)
	return v != 0, next
}

func putU16(b []byte, off int, v uint16) int {
	binary.LittleEndian.PutUint16(b[off:], v)
	return off + 2
}

func getU16(b []byte, off int) (uint16, int) {
	return binary.LittleEndian.Uint16(b[off:]), off + 2
}

func putU32(b []byte, off int, v uint32) int {
	binary.LittleEndian.PutUint32(b[off:], v)
	return off + 4
}

func getU32(b []byte, off int) (uint32, int) {
	return binary.LittleEndian.Uint32(b[off:]), off + 4
}

func putU64(b []byte, off int, v uint64) int {
	binary.LittleEndian.PutUint64(b[off:], v)
	return off + 8
}

func getU64(b []byte, off int) (uint64, int) {
	return binary.LittleEndian.Uint64(b[off:]), off + 8
}

func putF32(b []byte, off int, v float32) int {
	return putU32(b, off, math.Float32bits(v))
}

func getF32(b []byte, off int) (float32, int) {
	bits, next := getU32(b, off)
	return math.Float32frombits(bits), next
}

// maxStringLen bounds the dictionary response's firmware version
// string, keeping every payload within MaxBodyLen without a
// general-purpose bounded sequence type.
const maxStringLen = 15

// maxTagListLen bounds the dictionary response's supported-tag list,
// the other variable-length field: 16+2+1+32 = 51 bytes at most, within
// MaxBodyLen.
const maxTagListLen = 32

func putString(b []byte, off int, s string) int {
	if len(s) > maxStringLen {
		s = s[:maxStringLen]
	}
	off = putU8(b, off, uint8(len(s)))
	off += copy(b[off:], s)
	return off
}

func getString(b []byte, off int) (string, int) {
	n, next := getU8(b, off)
	s := string(b[next : next+int(n)])
	return s, next + int(n)
}

func putTagList(b []byte, off int, tags []Tag) int {
	if len(tags) > maxTagListLen {
		tags = tags[:maxTagListLen]
	}
	off = putU8(b, off, uint8(len(tags)))
	for _, t := range tags {
		off = putU8(b, off, uint8(t))
	}
	return off
}

func getTagList(b []byte, off int, out []Tag) ([]Tag, int) {
	n, next := getU8(b, off)
	out = out[:0]
	for i := 0; i < int(n); i++ {
		var v uint8
		v, next = getU8(b, next)
		out = append(out, Tag(v))
	}
	return out, next
}
