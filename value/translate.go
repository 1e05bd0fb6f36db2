package value

import "fmt"

// ToEngine converts a test value to the engine's calling convention: a
// uint64 stack slot holding the exact bits, integers zero-extended as
// unsigned containers.
func ToEngine(v Value) uint64 {
	switch v.Type {
	case TypeI32, TypeF32:
		return uint64(uint32(v.Bits))
	default:
		return v.Bits
	}
}

// Args converts an argument list with ToEngine.
func Args(vals []Value) []uint64 {
	out := make([]uint64, len(vals))
	for i, v := range vals {
		out[i] = ToEngine(v)
	}
	return out
}

// Return is the untyped result of an engine call. Its interpretation is
// chosen by the caller, never inferred from the slot itself.
type Return struct {
	slots []uint64
}

// NewReturn wraps raw result slots.
func NewReturn(slots []uint64) Return {
	return Return{slots: slots}
}

// Len returns the number of result slots.
func (r Return) Len() int { return len(r.slots) }

// Raw returns the first result slot, or 0 when the call returned nothing.
func (r Return) Raw() uint64 {
	if len(r.slots) == 0 {
		return 0
	}
	return r.slots[0]
}

// As reinterprets the first slot as a value of type t.
func (r Return) As(t Type) Value {
	raw := r.Raw()
	switch t {
	case TypeI32, TypeF32:
		return Value{Type: t, Bits: uint64(uint32(raw))}
	default:
		return Value{Type: t, Bits: raw}
	}
}

func (r Return) AsI32() int32 { return r.As(TypeI32).I32() }
func (r Return) AsI64() int64 { return r.As(TypeI64).I64() }
func (r Return) AsF32() float32 { return r.As(TypeF32).F32() }
func (r Return) AsF64() float64 { return r.As(TypeF64).F64() }

// Match applies the return comparison rule: integers compare bit-exact,
// floats compare bit-exact unless either side is NaN.
func Match(expected Value, got Return) bool {
	actual := got.As(expected.Type)
	if expected.Type.IsFloat() && (IsNaN(expected) || IsNaN(actual)) {
		return true
	}
	return expected.Bits == actual.Bits
}

// Describe formats a comparison failure.
func Describe(expected Value, got Return) string {
	return fmt.Sprintf("expected %s, got %s", expected, got.As(expected.Type))
}
