package wasm

import (
	"errors"
	"testing"
)

func TestDecodeULEB128(t *testing.T) {
	tests := []struct {
		input    []byte
		expected uint32
		n        int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x7f}, 127, 1},
		{[]byte{0x80, 0x01}, 128, 2},
		{[]byte{0xe5, 0x8e, 0x26}, 624485, 3},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xffffffff, 5},
		{[]byte{0x80, 0x80, 0x00, 0xaa}, 0, 3}, // padded zero, trailing byte ignored
	}

	for _, tt := range tests {
		v, n, err := DecodeULEB128(tt.input)
		if err != nil {
			t.Errorf("DecodeULEB128(%x): unexpected error %v", tt.input, err)
			continue
		}
		if v != tt.expected || n != tt.n {
			t.Errorf("DecodeULEB128(%x) = (%d, %d), want (%d, %d)", tt.input, v, n, tt.expected, tt.n)
		}
	}
}

func TestDecodeULEB128_Errors(t *testing.T) {
	tests := []struct {
		err   error
		name  string
		input []byte
	}{
		{ErrUnexpectedEOF, "empty", nil},
		{ErrUnexpectedEOF, "truncated", []byte{0x80, 0x80}},
		{ErrOverflow, "unused bits set", []byte{0xff, 0xff, 0xff, 0xff, 0x1f}},
		{ErrOverflow, "too many bytes", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeULEB128(tt.input)
			if !errors.Is(err, tt.err) {
				t.Errorf("got %v, want %v", err, tt.err)
			}
		})
	}
}

func TestDecodeULEB128u64(t *testing.T) {
	max := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	v, n, err := DecodeULEB128u64(max)
	if err != nil || v != ^uint64(0) || n != 10 {
		t.Errorf("got (%d, %d, %v)", v, n, err)
	}

	max[9] = 0x03
	if _, _, err := DecodeULEB128u64(max); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected overflow, got %v", err)
	}
}

func TestEncodeULEB128_RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 255, 256, 1000, 10000, 100000, 0xFFFFFFFF}
	for _, v := range values {
		encoded := EncodeULEB128(v)
		decoded, n, err := DecodeULEB128(encoded)
		if err != nil || decoded != v || n != len(encoded) {
			t.Errorf("round trip failed for %d: got %d (%v)", v, decoded, err)
		}
	}
}

func TestEncodeSLEB128_Int32(t *testing.T) {
	tests := []struct {
		expected []byte
		input    int32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, -1},
		{[]byte{0x3f}, 63},
		{[]byte{0x40}, -64},
		{[]byte{0xc0, 0x00}, 64},
		{[]byte{0xbf, 0x7f}, -65},
	}

	for _, tt := range tests {
		result := EncodeSLEB128(tt.input)
		if string(result) != string(tt.expected) {
			t.Errorf("EncodeSLEB128(%d) = %x, want %x", tt.input, result, tt.expected)
		}
	}
}

func TestEncodeSLEB128_Int64(t *testing.T) {
	tests := []struct {
		expected []byte
		input    int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, -1},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x7f}, -1 << 63},
	}

	for _, tt := range tests {
		result := EncodeSLEB128(tt.input)
		if string(result) != string(tt.expected) {
			t.Errorf("EncodeSLEB128(%d) = %x, want %x", tt.input, result, tt.expected)
		}
	}
}
