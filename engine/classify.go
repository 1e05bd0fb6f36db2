package engine

import (
	stderrors "errors"
	"strings"

	"github.com/tetratelabs/wazero/sys"

	"github.com/wippyai/wasm-spectest/errors"
)

// trapMessages maps wazero runtime error text to trap kinds. Order matters
// where one message is a prefix of another.
var trapMessages = []struct {
	text string
	kind errors.TrapKind
}{
	{"stack overflow", errors.TrapStackOverflow},
	{"call stack exhausted", errors.TrapStackOverflow},
	{"unreachable", errors.TrapUnreachable},
	{"integer divide by zero", errors.TrapIntegerDivideByZero},
	{"integer overflow", errors.TrapIntegerOverflow},
	{"invalid conversion to integer", errors.TrapInvalidConversion},
	{"out of bounds memory access", errors.TrapOutOfBoundsMemory},
	{"invalid table access", errors.TrapInvalidTableAccess},
	{"out of bounds table access", errors.TrapInvalidTableAccess},
	{"indirect call type mismatch", errors.TrapIndirectCallTypeMismatch},
	{"unaligned atomic", errors.TrapUnalignedAtomic},
	{"expected shared memory", errors.TrapExpectedSharedMemory},
}

// linkMessages identify import resolution failures reported by
// InstantiateModule.
var linkMessages = []string{
	"not instantiated",
	"is not exported in module",
	"signature mismatch",
	"type mismatch",
	"minimum size mismatch",
	"maximum size mismatch",
	"incompatible import type",
}

// trapKind extracts the trap kind from an engine error message.
func trapKind(msg string) errors.TrapKind {
	for _, m := range trapMessages {
		if strings.Contains(msg, m.text) {
			return m.kind
		}
	}
	return errors.TrapUnknown
}

// isDisabledFeature reports whether a compile error names a feature that is
// turned off in the runtime configuration.
func isDisabledFeature(msg string) bool {
	return strings.Contains(msg, "is disabled") || strings.Contains(msg, "not supported")
}

// decodeMessages identify CompileModule errors that describe a malformed
// encoding. wazero's decoder also enforces validation rules such as limits
// and memory counts under a "section " prefix, so the prefix alone does not
// make an error a decode error.
var decodeMessages = []string{
	"malformed",
	"invalid magic number",
	"invalid version header",
	"unexpected EOF",
	"overflows a 32-bit integer",
	"overflows a 64-bit integer",
	"invalid leb128",
	"invalid byte",
}

// isDecodeError reports whether a CompileModule error came from a malformed
// encoding rather than a validation rule.
func isDecodeError(msg string) bool {
	for _, m := range decodeMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func classifyCompile(err error) *errors.Error {
	msg := err.Error()
	switch {
	case isDisabledFeature(msg):
		return errors.UnsupportedFeature(errors.PhaseValidate, err)
	case isDecodeError(msg):
		return errors.Deserialization("decode module", err)
	default:
		return errors.Validation(err)
	}
}

func classifyInstantiate(err error) *errors.Error {
	msg := err.Error()
	if strings.HasPrefix(msg, "import ") {
		return errors.Link("resolve imports", err)
	}
	for _, m := range linkMessages {
		if strings.Contains(msg, m) && !strings.Contains(msg, "wasm error") {
			return errors.Link("resolve imports", err)
		}
	}
	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		return errors.New(errors.PhaseInstantiate, errors.KindTimeout).
			Detail("start function interrupted").
			Cause(err).
			Build()
	}
	return errors.Instantiation(trapKind(msg), err)
}

func classifyCall(field string, err error) *errors.Error {
	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		return errors.Timeout(field, err)
	}
	return errors.Trap(trapKind(err.Error()), field, err)
}
