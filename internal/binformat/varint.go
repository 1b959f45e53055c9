// Package binformat decodes the little-endian binary primitives used by
// Bitcoin Core's on-disk block format: varints, fixed-width integers, and
// the block/transaction framing built on top of them.
package binformat

import (
	"encoding/binary"
	"fmt"
)

// ErrTruncated is returned when a varint's length prefix is present but the
// trailing bytes it promises are missing from the buffer.
type ErrTruncated struct {
	Want int
	Have int
}

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("binformat: truncated varint: want %d trailing bytes, have %d", e.Want, e.Have)
}

// ParseVarInt decodes a Bitcoin CompactSize varint from the start of buf.
// It returns the decoded value and the number of bytes consumed (1, 3, 5,
// or 9).
func ParseVarInt(buf []byte) (value uint64, consumed int, err error) {
	if len(buf) < 1 {
		return 0, 0, &ErrTruncated{Want: 1, Have: len(buf)}
	}
	switch prefix := buf[0]; {
	case prefix < 0xfd:
		return uint64(prefix), 1, nil
	case prefix == 0xfd:
		if len(buf) < 3 {
			return 0, 0, &ErrTruncated{Want: 3, Have: len(buf)}
		}
		return uint64(binary.LittleEndian.Uint16(buf[1:3])), 3, nil
	case prefix == 0xfe:
		if len(buf) < 5 {
			return 0, 0, &ErrTruncated{Want: 5, Have: len(buf)}
		}
		return uint64(binary.LittleEndian.Uint32(buf[1:5])), 5, nil
	default: // 0xff
		if len(buf) < 9 {
			return 0, 0, &ErrTruncated{Want: 9, Have: len(buf)}
		}
		return binary.LittleEndian.Uint64(buf[1:9]), 9, nil
	}
}

// PutVarInt appends the CompactSize encoding of v to buf and returns the
// extended slice. Used by round-trip tests (spec testable property #6).
func PutVarInt(buf []byte, v uint64) []byte {
	switch {
	case v < 0xfd:
		return append(buf, byte(v))
	case v <= 0xffff:
		buf = append(buf, 0xfd, 0, 0)
		binary.LittleEndian.PutUint16(buf[len(buf)-2:], uint16(v))
		return buf
	case v <= 0xffffffff:
		buf = append(buf, 0xfe, 0, 0, 0, 0)
		binary.LittleEndian.PutUint32(buf[len(buf)-4:], uint32(v))
		return buf
	default:
		buf = append(buf, 0xff, 0, 0, 0, 0, 0, 0, 0, 0)
		binary.LittleEndian.PutUint64(buf[len(buf)-8:], v)
		return buf
	}
}

// Uint32LE decodes a little-endian uint32 from the start of buf.
func Uint32LE(buf []byte) uint32 { return binary.LittleEndian.Uint32(buf) }

// Uint64LE decodes a little-endian uint64 from the start of buf.
func Uint64LE(buf []byte) uint64 { return binary.LittleEndian.Uint64(buf) }
