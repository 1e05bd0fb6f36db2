package value

import (
	"fmt"
	"math"
	"strconv"
)

// Type is the kind tag of a test value.
type Type byte

const (
	TypeI32 Type = iota + 1
	TypeI64
	TypeF32
	TypeF64
)

// String returns the wasm text name of the type.
func (t Type) String() string {
	switch t {
	case TypeI32:
		return "i32"
	case TypeI64:
		return "i64"
	case TypeF32:
		return "f32"
	case TypeF64:
		return "f64"
	default:
		return fmt.Sprintf("type(%d)", byte(t))
	}
}

// IsFloat reports whether t is f32 or f64.
func (t Type) IsFloat() bool {
	return t == TypeF32 || t == TypeF64
}

// ParseType maps a wasm text type name to a Type.
func ParseType(s string) (Type, bool) {
	switch s {
	case "i32":
		return TypeI32, true
	case "i64":
		return TypeI64, true
	case "f32":
		return TypeF32, true
	case "f64":
		return TypeF64, true
	}
	return 0, false
}

// Value is a test literal. Bits holds the exact bit pattern: the low 32 bits
// for i32/f32, all 64 bits for i64/f64.
type Value struct {
	Bits uint64
	Type Type
}

// I32 creates an i32 value.
func I32(v int32) Value { return Value{Type: TypeI32, Bits: uint64(uint32(v))} }

// I64 creates an i64 value.
func I64(v int64) Value { return Value{Type: TypeI64, Bits: uint64(v)} }

// F32 creates an f32 value.
func F32(v float32) Value { return Value{Type: TypeF32, Bits: uint64(math.Float32bits(v))} }

// F64 creates an f64 value.
func F64(v float64) Value { return Value{Type: TypeF64, Bits: math.Float64bits(v)} }

// F32Bits creates an f32 value from its IEEE-754 bit pattern.
func F32Bits(b uint32) Value { return Value{Type: TypeF32, Bits: uint64(b)} }

// F64Bits creates an f64 value from its IEEE-754 bit pattern.
func F64Bits(b uint64) Value { return Value{Type: TypeF64, Bits: b} }

// I32 reinterprets the bits as a signed 32-bit integer.
func (v Value) I32() int32 { return int32(uint32(v.Bits)) }

// I64 reinterprets the bits as a signed 64-bit integer.
func (v Value) I64() int64 { return int64(v.Bits) }

// F32 reinterprets the low 32 bits as a float32.
func (v Value) F32() float32 { return math.Float32frombits(uint32(v.Bits)) }

// F64 reinterprets the bits as a float64.
func (v Value) F64() float64 { return math.Float64frombits(v.Bits) }

// IsNaN reports whether v is a floating point NaN of any payload.
func (v Value) IsNaN() bool { return IsNaN(v) }

// Equal compares type tags and exact bit patterns.
func (v Value) Equal(o Value) bool {
	return v.Type == o.Type && v.Bits == o.Bits
}

// String formats the value the way reports show it; floats print both the
// numeric value and the bit pattern since NaN payloads matter.
func (v Value) String() string {
	switch v.Type {
	case TypeI32:
		return fmt.Sprintf("i32:%d", v.I32())
	case TypeI64:
		return fmt.Sprintf("i64:%d", v.I64())
	case TypeF32:
		return fmt.Sprintf("f32:%v(0x%08x)", v.F32(), uint32(v.Bits))
	case TypeF64:
		return fmt.Sprintf("f64:%v(0x%016x)", v.F64(), v.Bits)
	default:
		return fmt.Sprintf("%s:0x%x", v.Type, v.Bits)
	}
}

// Parse decodes a wast2json literal: an unsigned decimal string holding the
// bit pattern of the value.
func Parse(t Type, s string) (Value, error) {
	switch t {
	case TypeI32, TypeF32:
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("parse %s %q: %w", t, s, err)
		}
		return Value{Type: t, Bits: n}, nil
	case TypeI64, TypeF64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("parse %s %q: %w", t, s, err)
		}
		return Value{Type: t, Bits: n}, nil
	default:
		return Value{}, fmt.Errorf("parse %q: unknown type %s", s, t)
	}
}
