package script

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/value"
)

// wast2json output shape.
type (
	jsonScript struct {
		SourceFile string        `json:"source_filename"`
		Commands   []jsonCommand `json:"commands"`
	}

	jsonCommand struct {
		Type       string      `json:"type"`
		Name       string      `json:"name,omitempty"`
		Filename   string      `json:"filename,omitempty"`
		As         string      `json:"as,omitempty"`
		ModuleType string      `json:"module_type,omitempty"`
		Text       string      `json:"text,omitempty"`
		Action     *jsonAction `json:"action,omitempty"`
		Expected   []jsonValue `json:"expected,omitempty"`
		Line       int         `json:"line"`
	}

	jsonAction struct {
		Type   string      `json:"type"`
		Module string      `json:"module,omitempty"`
		Field  string      `json:"field"`
		Args   []jsonValue `json:"args"`
	}

	jsonValue struct {
		Type     string          `json:"type"`
		LaneType string          `json:"lane_type,omitempty"`
		Value    json.RawMessage `json:"value,omitempty"`
	}
)

// unsupportedError marks a command shape that loads as Unsupported rather
// than failing the whole script.
type unsupportedError struct {
	reason string
}

func (e *unsupportedError) Error() string { return e.reason }

func unsupportedf(format string, args ...any) error {
	return &unsupportedError{reason: fmt.Sprintf(format, args...)}
}

// Load reads a wast2json script and the module binaries it references, which
// are resolved relative to the script's directory.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("read %s", path), err)
	}
	s, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	s.Path = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes wast2json output. Module files are read from dir.
func Parse(data []byte, dir string) (*Script, error) {
	var js jsonScript
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, errors.Load("decode script", err)
	}

	s := &Script{
		Name:     strings.TrimSuffix(js.SourceFile, filepath.Ext(js.SourceFile)),
		Commands: make([]Command, 0, len(js.Commands)),
	}

	for i := range js.Commands {
		jc := &js.Commands[i]
		loc := Loc{File: js.SourceFile, Line: jc.Line}
		cmd, err := convert(jc, loc, dir)
		if err != nil {
			ue, ok := err.(*unsupportedError)
			if !ok {
				return nil, errors.Load(fmt.Sprintf("%s:%d: %s", js.SourceFile, jc.Line, jc.Type), err)
			}
			cmd = Unsupported{Loc: loc, Type: jc.Type, Reason: ue.reason}
		}
		s.Commands = append(s.Commands, cmd)
	}
	return s, nil
}

func convert(jc *jsonCommand, loc Loc, dir string) (Command, error) {
	switch jc.Type {
	case "module":
		mod, err := readModule(jc, dir)
		if err != nil {
			return nil, err
		}
		return DefineModule{Loc: loc, Module: mod, Name: jc.Name}, nil

	case "assert_invalid", "assert_malformed", "assert_uninstantiable", "assert_unlinkable":
		mod, err := readModule(jc, dir)
		if err != nil {
			return nil, err
		}
		switch jc.Type {
		case "assert_invalid":
			return AssertInvalid{Loc: loc, Module: mod, Text: jc.Text}, nil
		case "assert_malformed":
			return AssertMalformed{Loc: loc, Module: mod, Text: jc.Text}, nil
		case "assert_uninstantiable":
			return AssertUninstantiable{Loc: loc, Module: mod, Text: jc.Text}, nil
		default:
			return AssertUnlinkable{Loc: loc, Module: mod, Text: jc.Text}, nil
		}

	case "register":
		if jc.As == "" {
			return nil, fmt.Errorf("register without alias")
		}
		return Register{Loc: loc, Name: jc.Name, As: jc.As}, nil

	case "action":
		act, err := convertAction(jc.Action)
		if err != nil {
			return nil, err
		}
		return PerformAction{Loc: loc, Action: act}, nil

	case "assert_exhaustion":
		act, err := convertAction(jc.Action)
		if err != nil {
			return nil, err
		}
		return AssertExhaustion{Loc: loc, Action: act, Text: jc.Text}, nil

	case "assert_trap":
		act, err := convertAction(jc.Action)
		if err != nil {
			return nil, err
		}
		return AssertTrap{Loc: loc, Action: act, Text: jc.Text}, nil

	case "assert_return_canonical_nan", "assert_return_arithmetic_nan":
		act, err := convertAction(jc.Action)
		if err != nil {
			return nil, err
		}
		if jc.Type == "assert_return_canonical_nan" {
			return AssertReturnCanonicalNaN{Loc: loc, Action: act}, nil
		}
		return AssertReturnArithmeticNaN{Loc: loc, Action: act}, nil

	case "assert_return":
		act, err := convertAction(jc.Action)
		if err != nil {
			return nil, err
		}
		if len(jc.Expected) == 1 {
			if class, ok := nanPattern(jc.Expected[0]); ok {
				if class == value.NaNCanonical {
					return AssertReturnCanonicalNaN{Loc: loc, Action: act}, nil
				}
				return AssertReturnArithmeticNaN{Loc: loc, Action: act}, nil
			}
		}
		expected, err := convertValues(jc.Expected)
		if err != nil {
			return nil, err
		}
		return AssertReturn{Loc: loc, Action: act, Expected: expected}, nil

	default:
		return nil, unsupportedf("command type %q", jc.Type)
	}
}

func readModule(jc *jsonCommand, dir string) (Module, error) {
	if jc.ModuleType != "" && jc.ModuleType != "binary" {
		return Module{}, unsupportedf("%s module", jc.ModuleType)
	}
	if jc.Filename == "" {
		return Module{}, fmt.Errorf("missing module filename")
	}
	bin, err := os.ReadFile(filepath.Join(dir, jc.Filename))
	if err != nil {
		return Module{}, fmt.Errorf("read module: %w", err)
	}
	return Module{Filename: jc.Filename, Binary: bin}, nil
}

func convertAction(ja *jsonAction) (Action, error) {
	if ja == nil {
		return Action{}, fmt.Errorf("missing action")
	}
	act := Action{Module: ja.Module, Field: ja.Field}
	switch ja.Type {
	case "invoke":
		act.Type = ActionInvoke
	case "get":
		act.Type = ActionGet
	default:
		return Action{}, unsupportedf("action type %q", ja.Type)
	}
	args, err := convertValues(ja.Args)
	if err != nil {
		return Action{}, err
	}
	act.Args = args
	return act, nil
}

func convertValues(jvs []jsonValue) ([]value.Value, error) {
	if len(jvs) == 0 {
		return nil, nil
	}
	out := make([]value.Value, 0, len(jvs))
	for _, jv := range jvs {
		typ, ok := value.ParseType(jv.Type)
		if !ok {
			return nil, unsupportedf("%s value", jv.Type)
		}
		var lit string
		if err := json.Unmarshal(jv.Value, &lit); err != nil {
			return nil, fmt.Errorf("%s value: %w", jv.Type, err)
		}
		if _, isNaN := value.ParseNaNClass(lit); isNaN {
			return nil, unsupportedf("%s pattern outside single-result assertion", lit)
		}
		v, err := value.Parse(typ, lit)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func nanPattern(jv jsonValue) (value.NaNClass, bool) {
	if jv.Type != "f32" && jv.Type != "f64" {
		return 0, false
	}
	var lit string
	if err := json.Unmarshal(jv.Value, &lit); err != nil {
		return 0, false
	}
	return value.ParseNaNClass(lit)
}
