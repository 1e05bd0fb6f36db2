package engine

import (
	"fmt"
	"testing"

	"github.com/tetratelabs/wazero/sys"

	"github.com/wippyai/wasm-spectest/errors"
)

func TestTrapKind(t *testing.T) {
	tests := []struct {
		msg  string
		want errors.TrapKind
	}{
		{"wasm error: stack overflow\nwasm stack trace:\n\t.f()", errors.TrapStackOverflow},
		{"wasm error: unreachable", errors.TrapUnreachable},
		{"wasm error: integer divide by zero", errors.TrapIntegerDivideByZero},
		{"wasm error: integer overflow", errors.TrapIntegerOverflow},
		{"wasm error: invalid conversion to integer", errors.TrapInvalidConversion},
		{"wasm error: out of bounds memory access", errors.TrapOutOfBoundsMemory},
		{"wasm error: invalid table access", errors.TrapInvalidTableAccess},
		{"wasm error: indirect call type mismatch", errors.TrapIndirectCallTypeMismatch},
		{"wasm error: unaligned atomic", errors.TrapUnalignedAtomic},
		{"wasm error: expected shared memory", errors.TrapExpectedSharedMemory},
		{"something else", errors.TrapUnknown},
	}

	for _, tt := range tests {
		if got := trapKind(tt.msg); got != tt.want {
			t.Errorf("trapKind(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestClassifyCompile(t *testing.T) {
	tests := []struct {
		err  error
		want errors.Kind
	}{
		{fmt.Errorf("section type: invalid byte for functype"), errors.KindDeserialization},
		{fmt.Errorf("invalid magic number"), errors.KindDeserialization},
		{fmt.Errorf("section code: unexpected EOF"), errors.KindDeserialization},
		{fmt.Errorf("section global: read value: overflows a 32-bit integer"), errors.KindDeserialization},
		{fmt.Errorf("section memory: min 2 pages (128 Ki) > max 1 pages (64 Ki)"), errors.KindValidation},
		{fmt.Errorf("section memory: max 65537 pages (4 Gi) outside range of 65536 pages (4 Gi)"), errors.KindValidation},
		{fmt.Errorf("section memory: at most one memory allowed in module, but read 2"), errors.KindValidation},
		{fmt.Errorf("section table: table size minimum must not be greater than maximum"), errors.KindValidation},
		{fmt.Errorf("invalid function[0]: type mismatch"), errors.KindValidation},
		{fmt.Errorf(`invalid function[0]: i32.extend8_s invalid as feature "sign-extension-ops" is disabled`), errors.KindUnsupportedFeature},
	}

	for _, tt := range tests {
		if got := classifyCompile(tt.err).Kind; got != tt.want {
			t.Errorf("classifyCompile(%q) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestClassifyInstantiate(t *testing.T) {
	tests := []struct {
		err  error
		kind errors.Kind
		trap errors.TrapKind
	}{
		{fmt.Errorf("import func[M.f]: signature mismatch: v_i32 != v_v"), errors.KindLink, errors.TrapNone},
		{fmt.Errorf(`"g" is not exported in module "M"`), errors.KindLink, errors.TrapNone},
		{fmt.Errorf("module[M] not instantiated"), errors.KindLink, errors.TrapNone},
		{fmt.Errorf("start function[0] failed: wasm error: unreachable"), errors.KindInstantiation, errors.TrapUnreachable},
		{fmt.Errorf("start function[0] failed: wasm error: indirect call type mismatch"), errors.KindInstantiation, errors.TrapIndirectCallTypeMismatch},
		{fmt.Errorf("data[0]: out of bounds memory access"), errors.KindInstantiation, errors.TrapOutOfBoundsMemory},
		{sys.NewExitError(sys.ExitCodeDeadlineExceeded), errors.KindTimeout, errors.TrapNone},
	}

	for _, tt := range tests {
		got := classifyInstantiate(tt.err)
		if got.Kind != tt.kind || got.Trap != tt.trap {
			t.Errorf("classifyInstantiate(%q) = %s/%s, want %s/%s", tt.err, got.Kind, got.Trap, tt.kind, tt.trap)
		}
	}
}

func TestClassifyCall(t *testing.T) {
	err := classifyCall("f", sys.NewExitError(sys.ExitCodeContextCanceled))
	if err.Kind != errors.KindTimeout {
		t.Errorf("expected timeout, got %s", err.Kind)
	}
	err = classifyCall("f", fmt.Errorf("wasm error: unreachable"))
	if err.Kind != errors.KindTrap || err.Trap != errors.TrapUnreachable {
		t.Errorf("got %s/%s", err.Kind, err.Trap)
	}
}
