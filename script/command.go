package script

import (
	"github.com/wippyai/wasm-spectest/value"
)

// Kind identifies a command variant.
type Kind uint8

const (
	KindUnsupported Kind = iota
	KindDefineModule
	KindAssertInvalid
	KindAssertMalformed
	KindAssertUninstantiable
	KindAssertUnlinkable
	KindRegister
	KindPerformAction
	KindAssertExhaustion
	KindAssertReturn
	KindAssertReturnCanonicalNaN
	KindAssertReturnArithmeticNaN
	KindAssertTrap
)

var kindNames = [...]string{
	KindUnsupported:               "unsupported",
	KindDefineModule:              "module",
	KindAssertInvalid:             "assert_invalid",
	KindAssertMalformed:           "assert_malformed",
	KindAssertUninstantiable:      "assert_uninstantiable",
	KindAssertUnlinkable:          "assert_unlinkable",
	KindRegister:                  "register",
	KindPerformAction:             "action",
	KindAssertExhaustion:          "assert_exhaustion",
	KindAssertReturn:              "assert_return",
	KindAssertReturnCanonicalNaN:  "assert_return_canonical_nan",
	KindAssertReturnArithmeticNaN: "assert_return_arithmetic_nan",
	KindAssertTrap:                "assert_trap",
}

// String returns the script name of the command kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Loc is the source position of a command.
type Loc struct {
	File string
	Line int
}

// Location returns the position itself so that embedding Loc satisfies the
// Location method of Command.
func (l Loc) Location() Loc { return l }

// Command is one scripted test step. The set of implementations is closed:
// every variant is declared in this package.
type Command interface {
	Location() Loc
	Kind() Kind
	isCommand()
}

// ActionType distinguishes export invocation from global reads.
type ActionType uint8

const (
	ActionInvoke ActionType = iota + 1
	ActionGet
)

func (t ActionType) String() string {
	switch t {
	case ActionInvoke:
		return "invoke"
	case ActionGet:
		return "get"
	default:
		return "unknown"
	}
}

// Action names an export of a module instance. An empty Module selects the
// most recently instantiated module.
type Action struct {
	Module string
	Field  string
	Args   []value.Value
	Type   ActionType
}

// Module is a module binary referenced by a command.
type Module struct {
	Filename string
	Binary   []byte
}

// DefineModule instantiates a module, optionally binding it to Name.
type DefineModule struct {
	Loc
	Module
	Name string
}

// AssertInvalid expects the module to fail validation.
type AssertInvalid struct {
	Loc
	Module
	Text string
}

// AssertMalformed expects the module to fail decoding.
type AssertMalformed struct {
	Loc
	Module
	Text string
}

// AssertUninstantiable expects the module to fail during instantiation-time
// initialization.
type AssertUninstantiable struct {
	Loc
	Module
	Text string
}

// AssertUnlinkable expects import resolution to fail.
type AssertUnlinkable struct {
	Loc
	Module
	Text string
}

// Register makes the instance bound to Name importable under As. An empty
// Name selects the most recently instantiated module.
type Register struct {
	Loc
	Name string
	As   string
}

// PerformAction runs an action without judging its result.
type PerformAction struct {
	Loc
	Action Action
}

// AssertExhaustion expects the action to overflow the call stack.
type AssertExhaustion struct {
	Loc
	Action Action
	Text   string
}

// AssertReturn expects the action to return Expected.
type AssertReturn struct {
	Loc
	Action   Action
	Expected []value.Value
}

// AssertReturnCanonicalNaN expects a NaN result from the action.
type AssertReturnCanonicalNaN struct {
	Loc
	Action Action
}

// AssertReturnArithmeticNaN expects a NaN result from the action.
type AssertReturnArithmeticNaN struct {
	Loc
	Action Action
}

// AssertTrap expects the action to trap.
type AssertTrap struct {
	Loc
	Action Action
	Text   string
}

// Unsupported stands in for a command the harness cannot represent, such as
// text-format modules or SIMD and reference values.
type Unsupported struct {
	Loc
	Type   string
	Reason string
}

func (DefineModule) Kind() Kind { return KindDefineModule }
func (AssertInvalid) Kind() Kind { return KindAssertInvalid }
func (AssertMalformed) Kind() Kind { return KindAssertMalformed }
func (AssertUninstantiable) Kind() Kind { return KindAssertUninstantiable }
func (AssertUnlinkable) Kind() Kind { return KindAssertUnlinkable }
func (Register) Kind() Kind { return KindRegister }
func (PerformAction) Kind() Kind { return KindPerformAction }
func (AssertExhaustion) Kind() Kind { return KindAssertExhaustion }
func (AssertReturn) Kind() Kind { return KindAssertReturn }
func (AssertReturnCanonicalNaN) Kind() Kind { return KindAssertReturnCanonicalNaN }
func (AssertReturnArithmeticNaN) Kind() Kind { return KindAssertReturnArithmeticNaN }
func (AssertTrap) Kind() Kind { return KindAssertTrap }
func (Unsupported) Kind() Kind { return KindUnsupported }

func (DefineModule) isCommand() {}
func (AssertInvalid) isCommand() {}
func (AssertMalformed) isCommand() {}
func (AssertUninstantiable) isCommand() {}
func (AssertUnlinkable) isCommand() {}
func (Register) isCommand() {}
func (PerformAction) isCommand() {}
func (AssertExhaustion) isCommand() {}
func (AssertReturn) isCommand() {}
func (AssertReturnCanonicalNaN) isCommand() {}
func (AssertReturnArithmeticNaN) isCommand() {}
func (AssertTrap) isCommand() {}
func (Unsupported) isCommand() {}

// Script is a parsed command sequence.
type Script struct {
	Name     string
	Path     string
	Commands []Command
}
