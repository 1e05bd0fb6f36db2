package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad        Phase = "load"        // script loading
	PhaseDecode      Phase = "decode"      // binary framing
	PhaseValidate    Phase = "validate"    // module validation
	PhaseLink        Phase = "link"        // import resolution
	PhaseInstantiate Phase = "instantiate" // start function, segment init
	PhaseInvoke      Phase = "invoke"      // export calls
	PhaseRegister    Phase = "register"    // import aliasing
	PhaseLookup      Phase = "lookup"      // instance lookup
	PhaseInterpret   Phase = "interpret"   // command acceptance
)

// Kind categorizes the error.
//
// Engine classes describe what the engine reported. Harness reasons describe
// how a command's expectation relates to that report.
type Kind string

// Engine classes.
const (
	KindDeserialization    Kind = "deserialization"
	KindValidation         Kind = "validation"
	KindLink               Kind = "link"
	KindInstantiation      Kind = "instantiation"
	KindTrap               Kind = "trap"
	KindUnsupportedFeature Kind = "unsupported_feature"
	KindNotFound           Kind = "not_found"
	KindTimeout            Kind = "timeout"
	KindInvalidInput       Kind = "invalid_input"
	KindEngine             Kind = "engine"
)

// Harness reasons.
const (
	ReasonUnsupportedCommand Kind = "unsupported_command"
	ReasonUnsupportedFeature Kind = "unsupported_feature"
	ReasonUnexpectedSuccess  Kind = "unexpected_success"
	ReasonUnexpectedFailure  Kind = "unexpected_failure"
	ReasonIncorrectResult    Kind = "incorrect_result"
)

// TrapKind sub-classifies runtime traps.
type TrapKind string

const (
	TrapNone                     TrapKind = ""
	TrapStackOverflow            TrapKind = "stack_overflow"
	TrapUnreachable              TrapKind = "unreachable"
	TrapIntegerDivideByZero      TrapKind = "integer_divide_by_zero"
	TrapIntegerOverflow          TrapKind = "integer_overflow"
	TrapInvalidConversion        TrapKind = "invalid_conversion"
	TrapOutOfBoundsMemory        TrapKind = "out_of_bounds_memory"
	TrapInvalidTableAccess       TrapKind = "invalid_table_access"
	TrapIndirectCallTypeMismatch TrapKind = "indirect_call_type_mismatch"
	TrapUnalignedAtomic          TrapKind = "unaligned_atomic"
	TrapExpectedSharedMemory     TrapKind = "expected_shared_memory"
	TrapUnknown                  TrapKind = "unknown"
)

// Error is the structured error type used throughout the harness
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Trap   TrapKind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Trap != TrapNone {
		b.WriteString(" (")
		b.WriteString(string(e.Trap))
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Trap sets the trap kind
func (b *Builder) Trap(t TrapKind) *Builder {
	b.err.Trap = t
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Engine class constructors

// Deserialization creates a malformed-binary error
func Deserialization(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindDeserialization,
		Detail: detail,
		Cause:  cause,
	}
}

// Validation creates an invalid-module error
func Validation(cause error) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindValidation,
		Detail: "compile module",
		Cause:  cause,
	}
}

// Link creates an import resolution error
func Link(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLink,
		Kind:   KindLink,
		Detail: detail,
		Cause:  cause,
	}
}

// Instantiation creates an instantiation-time initialization error
func Instantiation(trap TrapKind, cause error) *Error {
	return &Error{
		Phase:  PhaseInstantiate,
		Kind:   KindInstantiation,
		Trap:   trap,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Trap creates a runtime trap error
func Trap(trap TrapKind, field string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindTrap,
		Trap:   trap,
		Detail: fmt.Sprintf("invoke %q", field),
		Cause:  cause,
	}
}

// UnsupportedFeature creates an error for a feature the engine lacks
func UnsupportedFeature(phase Phase, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedFeature,
		Detail: "feature not supported by engine",
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Timeout creates an interrupted-execution error
func Timeout(field string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindTimeout,
		Detail: fmt.Sprintf("invoke %q interrupted", field),
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Load creates a script loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// Harness reason constructors

// UnsupportedCommand marks a command the harness declines to judge
func UnsupportedCommand(detail string, args ...any) *Error {
	return New(PhaseInterpret, ReasonUnsupportedCommand).Detail(detail, args...).Build()
}

// UnsupportedByEngine marks a command skipped because the engine lacks a feature
func UnsupportedByEngine(cause error) *Error {
	return &Error{
		Phase: PhaseInterpret,
		Kind:  ReasonUnsupportedFeature,
		Cause: cause,
	}
}

// UnexpectedSuccess marks an engine success where failure was required
func UnexpectedSuccess(detail string, args ...any) *Error {
	return New(PhaseInterpret, ReasonUnexpectedSuccess).Detail(detail, args...).Build()
}

// UnexpectedFailure marks an engine failure, or a failure of the wrong class
func UnexpectedFailure(cause error, detail string, args ...any) *Error {
	return New(PhaseInterpret, ReasonUnexpectedFailure).Detail(detail, args...).Cause(cause).Build()
}

// IncorrectResult marks a successful call whose value fails comparison
func IncorrectResult(detail string, args ...any) *Error {
	return New(PhaseInterpret, ReasonIncorrectResult).Detail(detail, args...).Build()
}

// Classification helpers

// ClassOf returns the innermost engine class in the error chain, or "" when
// the chain carries none.
func ClassOf(err error) Kind {
	var class Kind
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			break
		}
		if e.Phase != PhaseInterpret {
			class = e.Kind
		}
		err = e.Cause
	}
	return class
}

// ReasonOf returns the outermost harness reason in the error chain, or ""
// when the chain carries none.
func ReasonOf(err error) Kind {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return ""
		}
		if e.Phase == PhaseInterpret {
			return e.Kind
		}
		err = e.Cause
	}
	return ""
}

// TrapOf returns the first trap kind found in the error chain.
func TrapOf(err error) TrapKind {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return TrapNone
		}
		if e.Trap != TrapNone {
			return e.Trap
		}
		err = e.Cause
	}
	return TrapNone
}

// IsSkip reports whether the reason means the harness declined to judge.
func IsSkip(reason Kind) bool {
	return reason == ReasonUnsupportedCommand || reason == ReasonUnsupportedFeature
}
