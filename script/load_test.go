package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/value"
)

var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

const testScript = `{"source_filename": "test.wast",
 "commands": [
  {"type": "module", "line": 1, "name": "$M", "filename": "test.0.wasm"},
  {"type": "register", "line": 5, "name": "$M", "as": "M"},
  {"type": "action", "line": 6, "action": {"type": "invoke", "field": "run", "args": []}, "expected": []},
  {"type": "assert_return", "line": 7, "action": {"type": "invoke", "module": "$M", "field": "add", "args": [{"type": "i32", "value": "1"}, {"type": "i32", "value": "4294967295"}]}, "expected": [{"type": "i32", "value": "0"}]},
  {"type": "assert_return", "line": 8, "action": {"type": "invoke", "field": "nan", "args": []}, "expected": [{"type": "f32", "value": "nan:canonical"}]},
  {"type": "assert_return", "line": 9, "action": {"type": "invoke", "field": "nan", "args": []}, "expected": [{"type": "f64", "value": "nan:arithmetic"}]},
  {"type": "assert_return_canonical_nan", "line": 10, "action": {"type": "invoke", "field": "nan", "args": []}, "expected": [{"type": "f32"}]},
  {"type": "assert_trap", "line": 11, "action": {"type": "invoke", "field": "div", "args": [{"type": "i64", "value": "0"}]}, "text": "integer divide by zero", "expected": [{"type": "i64"}]},
  {"type": "assert_exhaustion", "line": 12, "action": {"type": "invoke", "field": "loop", "args": []}, "text": "call stack exhausted", "expected": []},
  {"type": "assert_invalid", "line": 13, "filename": "test.1.wasm", "text": "type mismatch", "module_type": "binary"},
  {"type": "assert_malformed", "line": 14, "filename": "test.2.wat", "text": "unknown operator", "module_type": "text"},
  {"type": "assert_malformed", "line": 15, "filename": "test.3.wasm", "text": "magic header not detected", "module_type": "binary"},
  {"type": "assert_uninstantiable", "line": 16, "filename": "test.4.wasm", "text": "unreachable", "module_type": "binary"},
  {"type": "assert_unlinkable", "line": 17, "filename": "test.5.wasm", "text": "unknown import", "module_type": "binary"},
  {"type": "assert_return", "line": 18, "action": {"type": "invoke", "field": "v", "args": [{"type": "v128", "lane_type": "i32", "value": ["0", "0", "0", "0"]}]}, "expected": []},
  {"type": "assert_return", "line": 19, "action": {"type": "get", "field": "g"}, "expected": [{"type": "i64", "value": "666"}]},
  {"type": "assert_return", "line": 20, "action": {"type": "invoke", "field": "ref", "args": []}, "expected": [{"type": "externref", "value": "null"}]},
  {"type": "assert_return", "line": 21, "action": {"type": "invoke", "field": "pair", "args": []}, "expected": [{"type": "f32", "value": "nan:canonical"}, {"type": "f32", "value": "0"}]},
  {"type": "assert_exception", "line": 22, "action": {"type": "invoke", "field": "throw", "args": []}}
 ]}`

func writeScript(t *testing.T, content string, modules ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, m := range modules {
		if err := os.WriteFile(filepath.Join(dir, m), emptyModule, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(dir, "test.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeScript(t, testScript,
		"test.0.wasm", "test.1.wasm", "test.3.wasm", "test.4.wasm", "test.5.wasm")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Name != "test" || s.Path != path {
		t.Errorf("Name=%q Path=%q", s.Name, s.Path)
	}

	wantKinds := []Kind{
		KindDefineModule,
		KindRegister,
		KindPerformAction,
		KindAssertReturn,
		KindAssertReturnCanonicalNaN,
		KindAssertReturnArithmeticNaN,
		KindAssertReturnCanonicalNaN,
		KindAssertTrap,
		KindAssertExhaustion,
		KindAssertInvalid,
		KindUnsupported,
		KindAssertMalformed,
		KindAssertUninstantiable,
		KindAssertUnlinkable,
		KindUnsupported,
		KindAssertReturn,
		KindUnsupported,
		KindUnsupported,
		KindUnsupported,
	}
	if len(s.Commands) != len(wantKinds) {
		t.Fatalf("got %d commands, want %d", len(s.Commands), len(wantKinds))
	}
	for i, cmd := range s.Commands {
		if cmd.Kind() != wantKinds[i] {
			t.Errorf("command %d (line %d): kind %s, want %s", i, cmd.Location().Line, cmd.Kind(), wantKinds[i])
		}
	}

	def := s.Commands[0].(DefineModule)
	if def.Name != "$M" || def.Filename != "test.0.wasm" || len(def.Binary) != 8 {
		t.Errorf("unexpected module command %+v", def)
	}
	if def.Location() != (Loc{File: "test.wast", Line: 1}) {
		t.Errorf("Location = %+v", def.Location())
	}

	reg := s.Commands[1].(Register)
	if reg.Name != "$M" || reg.As != "M" {
		t.Errorf("unexpected register %+v", reg)
	}

	ret := s.Commands[3].(AssertReturn)
	if ret.Action.Module != "$M" || ret.Action.Field != "add" || ret.Action.Type != ActionInvoke {
		t.Errorf("unexpected action %+v", ret.Action)
	}
	if len(ret.Action.Args) != 2 || !ret.Action.Args[1].Equal(value.I32(-1)) {
		t.Errorf("unexpected args %v", ret.Action.Args)
	}
	if len(ret.Expected) != 1 || !ret.Expected[0].Equal(value.I32(0)) {
		t.Errorf("unexpected expected %v", ret.Expected)
	}

	trap := s.Commands[7].(AssertTrap)
	if trap.Text != "integer divide by zero" || !trap.Action.Args[0].Equal(value.I64(0)) {
		t.Errorf("unexpected trap %+v", trap)
	}

	get := s.Commands[15].(AssertReturn)
	if get.Action.Type != ActionGet || get.Action.Field != "g" {
		t.Errorf("unexpected get action %+v", get.Action)
	}

	unsupported := s.Commands[10].(Unsupported)
	if unsupported.Type != "assert_malformed" || unsupported.Reason != "text module" {
		t.Errorf("unexpected unsupported %+v", unsupported)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		modules []string
	}{
		{"malformed json", `{"commands": [`, nil},
		{"missing module file", `{"source_filename": "x.wast", "commands": [{"type": "module", "line": 1, "filename": "x.0.wasm"}]}`, nil},
		{"missing action", `{"commands": [{"type": "assert_trap", "line": 1, "text": "x"}]}`, nil},
		{"bad literal", `{"commands": [{"type": "action", "line": 1, "action": {"type": "invoke", "field": "f", "args": [{"type": "i32", "value": "-1"}]}}]}`, nil},
		{"register without alias", `{"commands": [{"type": "register", "line": 1}]}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, tt.content, tt.modules...)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.ClassOf(err) != errors.KindInvalidInput {
				t.Errorf("expected invalid_input class, got %q (%v)", errors.ClassOf(err), err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParse_NameFromSource(t *testing.T) {
	s, err := Parse([]byte(`{"source_filename": "dir/i64.wast", "commands": []}`), t.TempDir())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if s.Name != "dir/i64" || len(s.Commands) != 0 {
		t.Errorf("Name=%q commands=%d", s.Name, len(s.Commands))
	}
}
