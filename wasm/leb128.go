package wasm

import "errors"

// LEB128 encoding/decoding utilities for WebAssembly binary format

var (
	// ErrOverflow is returned when a LEB128 value exceeds the maximum bit width.
	ErrOverflow = errors.New("leb128: integer representation too long")

	// ErrUnexpectedEOF is returned when input ends inside a LEB128 value.
	ErrUnexpectedEOF = errors.New("unexpected end")
)

// DecodeULEB128 decodes an unsigned 32-bit LEB128 value and returns it with
// the number of bytes consumed.
func DecodeULEB128(data []byte) (uint32, int, error) {
	v, n, err := decodeULEB(data, 32)
	return uint32(v), n, err
}

// DecodeULEB128u64 decodes an unsigned 64-bit LEB128 value.
func DecodeULEB128u64(data []byte) (uint64, int, error) {
	return decodeULEB(data, 64)
}

func decodeULEB(data []byte, bits uint) (uint64, int, error) {
	maxBytes := int((bits + 6) / 7)
	var result uint64
	var shift uint
	for i, b := range data {
		if i >= maxBytes {
			return 0, i, ErrOverflow
		}
		// Last permitted byte may only carry the remaining bits.
		if i == maxBytes-1 {
			if rem := bits - shift; rem < 7 && b>>rem != 0 {
				return 0, i + 1, ErrOverflow
			}
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, len(data), ErrUnexpectedEOF
}

// EncodeULEB128 encodes an unsigned value in LEB128 format.
func EncodeULEB128(v uint32) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		result = append(result, b)
		if v == 0 {
			break
		}
	}
	return result
}

// EncodeSLEB128 encodes a signed value in LEB128 format.
func EncodeSLEB128[T int32 | int64](v T) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			result = append(result, b)
			break
		}
		result = append(result, b|0x80)
	}
	return result
}

// appendName appends a length-prefixed name.
func appendName(dst []byte, name string) []byte {
	dst = append(dst, EncodeULEB128(uint32(len(name)))...)
	return append(dst, name...)
}
