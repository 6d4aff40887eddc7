// Package wire provides the primitive readers of the RowBinary encoding.
//
// Every reader takes the buffer and the offset to read from, and returns the
// decoded value, the offset of the next byte, and a boolean reporting whether
// the buffer held enough bytes. A false ok is not an error: it means the value
// is not complete yet and the read must be retried once more bytes arrived.
// Readers never retain the buffer: values that carry bytes are copies.
package wire

import (
	"encoding/binary"
	"math"
)

// MaxVarintLen is the maximum number of bytes consumed by Uvarint.
const MaxVarintLen = binary.MaxVarintLen64

// Uvarint reads an unsigned LEB128 integer.
//
// At most MaxVarintLen bytes are consumed; payload bits past the 64th are
// discarded, which is what the server does when reading its own varints.
func Uvarint(b []byte, off int) (uint64, int, bool) {
	var x uint64
	var s uint
	for i := 0; i < MaxVarintLen; i++ {
		if off+i >= len(b) {
			return 0, off, false
		}
		v := b[off+i]
		if v < 0x80 {
			return x | uint64(v)<<s, off + i + 1, true
		}
		x |= uint64(v&0x7f) << s
		s += 7
	}
	return x, off + MaxVarintLen, true
}

func fits(b []byte, off, n int) bool {
	return off >= 0 && n >= 0 && len(b)-off >= n
}

func Uint8(b []byte, off int) (uint8, int, bool) {
	if !fits(b, off, 1) {
		return 0, off, false
	}
	return b[off], off + 1, true
}

func Uint16(b []byte, off int) (uint16, int, bool) {
	if !fits(b, off, 2) {
		return 0, off, false
	}
	return binary.LittleEndian.Uint16(b[off:]), off + 2, true
}

func Uint32(b []byte, off int) (uint32, int, bool) {
	if !fits(b, off, 4) {
		return 0, off, false
	}
	return binary.LittleEndian.Uint32(b[off:]), off + 4, true
}

func Uint64(b []byte, off int) (uint64, int, bool) {
	if !fits(b, off, 8) {
		return 0, off, false
	}
	return binary.LittleEndian.Uint64(b[off:]), off + 8, true
}

// The signed readers below convert the unsigned value by subtracting the
// modulus when it is at least half the modulus. For widths up to 64 bits the
// Go conversion of the unsigned value to the signed type of the same width
// computes exactly that.

func Int8(b []byte, off int) (int8, int, bool) {
	u, next, ok := Uint8(b, off)
	return int8(u), next, ok
}

func Int16(b []byte, off int) (int16, int, bool) {
	u, next, ok := Uint16(b, off)
	return int16(u), next, ok
}

func Int32(b []byte, off int) (int32, int, bool) {
	u, next, ok := Uint32(b, off)
	return int32(u), next, ok
}

func Int64(b []byte, off int) (int64, int, bool) {
	u, next, ok := Uint64(b, off)
	return int64(u), next, ok
}

func Float32(b []byte, off int) (float32, int, bool) {
	u, next, ok := Uint32(b, off)
	return math.Float32frombits(u), next, ok
}

func Float64(b []byte, off int) (float64, int, bool) {
	u, next, ok := Uint64(b, off)
	return math.Float64frombits(u), next, ok
}

// Bool reads one byte; any non-zero value is true.
func Bool(b []byte, off int) (bool, int, bool) {
	u, next, ok := Uint8(b, off)
	return u != 0, next, ok
}

// Bytes returns a view of the n bytes at off. The returned slice shares the
// backing array of b and must be copied before b is reused.
func Bytes(b []byte, off, n int) ([]byte, int, bool) {
	if !fits(b, off, n) {
		return nil, off, false
	}
	return b[off : off+n : off+n], off + n, true
}

// FixedString reads n bytes as a string.
func FixedString(b []byte, off, n int) (string, int, bool) {
	v, next, ok := Bytes(b, off, n)
	if !ok {
		return "", off, false
	}
	return string(v), next, true
}

// String reads a LEB128 length followed by that many bytes.
func String(b []byte, off int) (string, int, bool) {
	n, next, ok := Uvarint(b, off)
	if !ok || n > uint64(len(b)) {
		return "", off, false
	}
	v, next, ok := Bytes(b, next, int(n))
	if !ok {
		return "", off, false
	}
	return string(v), next, true
}
