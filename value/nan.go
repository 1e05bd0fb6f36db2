package value

// IEEE-754 masks for NaN classification.
const (
	f32ExponentMask  uint32 = 0x7f800000
	f32MantissaMask  uint32 = 0x007fffff
	f32QuietBit      uint32 = 0x00400000
	f32CanonicalBits uint32 = 0x7fc00000

	f64ExponentMask  uint64 = 0x7ff0000000000000
	f64MantissaMask  uint64 = 0x000fffffffffffff
	f64QuietBit      uint64 = 0x0008000000000000
	f64CanonicalBits uint64 = 0x7ff8000000000000
)

// Canonical NaN bit patterns with a positive sign.
const (
	F32CanonicalNaN = f32CanonicalBits
	F64CanonicalNaN = f64CanonicalBits
)

// NaNClass names a required class of NaN bit patterns.
type NaNClass int

const (
	NaNCanonical NaNClass = iota + 1
	NaNArithmetic
)

func (c NaNClass) String() string {
	switch c {
	case NaNCanonical:
		return "nan:canonical"
	case NaNArithmetic:
		return "nan:arithmetic"
	default:
		return "nan:unknown"
	}
}

// ParseNaNClass recognizes the wast2json expected-value markers.
func ParseNaNClass(s string) (NaNClass, bool) {
	switch s {
	case "nan:canonical":
		return NaNCanonical, true
	case "nan:arithmetic":
		return NaNArithmetic, true
	}
	return 0, false
}

// IsNaN reports whether v is a NaN of any payload. Integers are never NaN.
func IsNaN(v Value) bool {
	switch v.Type {
	case TypeF32:
		b := uint32(v.Bits)
		return b&f32ExponentMask == f32ExponentMask && b&f32MantissaMask != 0
	case TypeF64:
		return v.Bits&f64ExponentMask == f64ExponentMask && v.Bits&f64MantissaMask != 0
	}
	return false
}

// IsCanonicalNaN reports whether v is a canonical NaN of either sign.
func IsCanonicalNaN(v Value) bool {
	switch v.Type {
	case TypeF32:
		return uint32(v.Bits)&^(1<<31) == f32CanonicalBits
	case TypeF64:
		return v.Bits&^(1<<63) == f64CanonicalBits
	}
	return false
}

// IsArithmeticNaN reports whether v is a NaN with the quiet bit set.
func IsArithmeticNaN(v Value) bool {
	switch v.Type {
	case TypeF32:
		b := uint32(v.Bits)
		return b&f32ExponentMask == f32ExponentMask && b&f32QuietBit != 0
	case TypeF64:
		return v.Bits&f64ExponentMask == f64ExponentMask && v.Bits&f64QuietBit != 0
	}
	return false
}

// InClass reports whether v belongs to the NaN class c.
func InClass(v Value, c NaNClass) bool {
	switch c {
	case NaNCanonical:
		return IsCanonicalNaN(v)
	case NaNArithmetic:
		return IsArithmeticNaN(v)
	}
	return false
}
