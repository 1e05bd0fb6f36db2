package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseInvoke,
				Kind:   KindTrap,
				Trap:   TrapStackOverflow,
				Detail: `invoke "fac"`,
			},
			contains: []string{"[invoke]", "trap", "stack_overflow", `"fac"`},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindDeserialization,
			},
			contains: []string{"[decode]", "deserialization"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLink,
				Kind:   KindLink,
				Detail: "resolve imports",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[link]", "link", "resolve imports", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Validation(cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause through chain")
	}
}

func TestError_Is(t *testing.T) {
	err := Link("unknown import", nil)

	if !errors.Is(err, &Error{Phase: PhaseLink, Kind: KindLink}) {
		t.Error("expected match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseLink, Kind: KindValidation}) {
		t.Error("unexpected match on different kind")
	}
	if errors.Is(err, &Error{Phase: PhaseInvoke, Kind: KindLink}) {
		t.Error("unexpected match on different phase")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("boom")
	err := New(PhaseInvoke, KindTrap).
		Trap(TrapUnreachable).
		Detail("invoke %q", "f").
		Cause(cause).
		Build()

	if err.Phase != PhaseInvoke || err.Kind != KindTrap {
		t.Errorf("got phase=%s kind=%s", err.Phase, err.Kind)
	}
	if err.Trap != TrapUnreachable {
		t.Errorf("got trap %s", err.Trap)
	}
	if err.Detail != `invoke "f"` {
		t.Errorf("got detail %q", err.Detail)
	}
	if err.Cause != cause {
		t.Error("cause not set")
	}
}

func TestBuilder_DetailWithoutArgs(t *testing.T) {
	err := New(PhaseLookup, KindNotFound).Detail("100%").Build()
	if err.Detail != "100%" {
		t.Errorf("got detail %q", err.Detail)
	}
}

func TestClassOf(t *testing.T) {
	trap := Trap(TrapIntegerDivideByZero, "div", nil)
	wrapped := UnexpectedFailure(trap, "expected stack overflow")

	tests := []struct {
		err  error
		want Kind
		name string
	}{
		{nil, "", "nil"},
		{errors.New("plain"), "", "plain error"},
		{trap, KindTrap, "engine error"},
		{wrapped, KindTrap, "wrapped by reason"},
		{fmt.Errorf("ctx: %w", wrapped), KindTrap, "wrapped by fmt"},
		{UnexpectedSuccess("module compiled"), "", "reason only"},
		{Link("resolve", Deserialization("bad", nil)), KindDeserialization, "innermost class"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassOf(tt.err); got != tt.want {
				t.Errorf("ClassOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReasonOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
		name string
	}{
		{nil, "", "nil"},
		{Validation(nil), "", "engine only"},
		{UnexpectedSuccess("x"), ReasonUnexpectedSuccess, "success"},
		{UnexpectedFailure(Validation(nil), "x"), ReasonUnexpectedFailure, "failure"},
		{IncorrectResult("x"), ReasonIncorrectResult, "incorrect"},
		{UnsupportedCommand("x"), ReasonUnsupportedCommand, "unsupported command"},
		{UnsupportedByEngine(UnsupportedFeature(PhaseValidate, nil)), ReasonUnsupportedFeature, "unsupported feature"},
		{fmt.Errorf("outer: %w", IncorrectResult("x")), ReasonIncorrectResult, "wrapped by fmt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReasonOf(tt.err); got != tt.want {
				t.Errorf("ReasonOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrapOf(t *testing.T) {
	err := UnexpectedFailure(Trap(TrapOutOfBoundsMemory, "load", nil), "x")
	if got := TrapOf(err); got != TrapOutOfBoundsMemory {
		t.Errorf("TrapOf = %q", got)
	}
	if got := TrapOf(Validation(nil)); got != TrapNone {
		t.Errorf("TrapOf without trap = %q", got)
	}
	if got := TrapOf(Instantiation(TrapUnreachable, nil)); got != TrapUnreachable {
		t.Errorf("TrapOf instantiation = %q", got)
	}
}

func TestIsSkip(t *testing.T) {
	for _, k := range []Kind{ReasonUnsupportedCommand, ReasonUnsupportedFeature} {
		if !IsSkip(k) {
			t.Errorf("%s should skip", k)
		}
	}
	for _, k := range []Kind{ReasonUnexpectedSuccess, ReasonUnexpectedFailure, ReasonIncorrectResult, ""} {
		if IsSkip(k) {
			t.Errorf("%q should not skip", k)
		}
	}
}

func TestReasonChainMessage(t *testing.T) {
	err := UnexpectedFailure(Trap(TrapIntegerDivideByZero, "div", errors.New("wasm error: integer divide by zero")), "expected stack overflow, got %s", TrapIntegerDivideByZero)
	msg := err.Error()
	for _, s := range []string{"[interpret] unexpected_failure", "expected stack overflow", "[invoke] trap (integer_divide_by_zero)", "wasm error"} {
		if !strings.Contains(msg, s) {
			t.Errorf("message %q does not contain %q", msg, s)
		}
	}
}
