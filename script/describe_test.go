package script

import (
	"strings"
	"testing"

	"github.com/wippyai/wasm-spectest/value"
)

func TestDescribe(t *testing.T) {
	loc := Loc{File: "i32.wast", Line: 42}
	invoke := Action{Type: ActionInvoke, Module: "$M", Field: "add", Args: []value.Value{value.I32(1), value.I32(2)}}

	tests := []struct {
		cmd  Command
		name string
		want string
	}{
		{DefineModule{Loc: loc, Name: "$M", Module: Module{Filename: "i32.0.wasm"}}, "module", `i32.wast:42: module $M (i32.0.wasm)`},
		{AssertInvalid{Loc: loc, Module: Module{Filename: "i32.1.wasm"}, Text: "type mismatch"}, "invalid", `i32.wast:42: assert_invalid (i32.1.wasm) "type mismatch"`},
		{Register{Loc: loc, As: "M"}, "register latest", `i32.wast:42: register <latest> as "M"`},
		{AssertReturn{Loc: loc, Action: invoke, Expected: []value.Value{value.I32(3)}}, "return", `i32.wast:42: assert_return invoke $M."add"(i32:1, i32:2) -> [i32:3]`},
		{AssertReturnCanonicalNaN{Loc: loc, Action: Action{Type: ActionInvoke, Field: "f"}}, "canonical nan", `i32.wast:42: assert_return_canonical_nan invoke "f"() -> nan:canonical`},
		{AssertTrap{Loc: loc, Action: Action{Type: ActionInvoke, Field: "div"}, Text: "integer divide by zero"}, "trap", `i32.wast:42: assert_trap invoke "div"() "integer divide by zero"`},
		{PerformAction{Loc: loc, Action: Action{Type: ActionGet, Field: "g"}}, "get", `i32.wast:42: action get "g"`},
		{Unsupported{Loc: Loc{Line: 7}, Type: "assert_exception", Reason: "command type"}, "unsupported", `line 7: unsupported assert_exception: command type`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.cmd); got != tt.want {
				t.Errorf("Describe =\n %s\nwant\n %s", got, tt.want)
			}
		})
	}
}

func TestDescribeAction(t *testing.T) {
	got := DescribeAction(Action{Type: ActionInvoke, Field: "fac", Args: []value.Value{value.I64(5)}})
	if !strings.HasPrefix(got, "invoke ") || !strings.Contains(got, "i64:5") {
		t.Errorf("DescribeAction = %q", got)
	}
}

func TestKindString(t *testing.T) {
	if KindAssertReturnArithmeticNaN.String() != "assert_return_arithmetic_nan" {
		t.Errorf("String = %q", KindAssertReturnArithmeticNaN.String())
	}
	if Kind(200).String() != "unknown" {
		t.Errorf("out of range kind = %q", Kind(200).String())
	}
}
