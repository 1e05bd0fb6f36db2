// Package interp decides the outcome of single script commands.
//
// Step performs the one engine operation a command triggers and compares the
// engine's report with what the command kind requires. A nil error is a
// pass. Otherwise the error carries a harness reason (see errors.ReasonOf)
// wrapping the engine error that caused it.
package interp

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-spectest/engine"
	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/registry"
	"github.com/wippyai/wasm-spectest/script"
	"github.com/wippyai/wasm-spectest/value"
)

// Step executes cmd against reg. Each command is logged at debug level to
// the logger carried by ctx (see ContextWithLogger).
func Step(ctx context.Context, reg *registry.Registry, cmd script.Command) error {
	err := step(ctx, reg, cmd)
	if ce := loggerFrom(ctx).Check(zap.DebugLevel, "command"); ce != nil {
		ce.Write(
			zap.String("kind", cmd.Kind().String()),
			zap.Int("line", cmd.Location().Line),
			zap.String("reason", string(errors.ReasonOf(err))),
			zap.Error(err))
	}
	return err
}

func step(ctx context.Context, reg *registry.Registry, cmd script.Command) error {
	switch c := cmd.(type) {
	case script.DefineModule:
		if _, err := reg.Instantiate(ctx, c.Module.Binary, c.Name); err != nil {
			if errors.ClassOf(err) == errors.KindUnsupportedFeature {
				return errors.UnsupportedByEngine(err)
			}
			return errors.UnexpectedFailure(err, "instantiate %s", c.Module.Filename)
		}
		return nil

	case script.AssertInvalid:
		_, err := reg.Instantiate(ctx, c.Module.Binary, "")
		if err == nil {
			if derr := reg.DeleteLast(ctx); derr != nil {
				loggerFrom(ctx).Warn("roll back instance", zap.Error(derr))
			}
			return errors.UnexpectedSuccess("module %s instantiated, want validation error", c.Module.Filename)
		}
		return expectClass(err, errors.KindValidation)

	case script.AssertMalformed:
		return expectModuleFailure(ctx, reg, c.Module, errors.KindDeserialization, errors.KindValidation)

	case script.AssertUninstantiable:
		return expectModuleFailure(ctx, reg, c.Module, errors.KindInstantiation)

	case script.AssertUnlinkable:
		return expectModuleFailure(ctx, reg, c.Module, errors.KindLink)

	case script.Register:
		if err := reg.Register(c.Name, c.As); err != nil {
			return errors.UnexpectedFailure(err, "register %q", c.As)
		}
		return nil

	case script.PerformAction:
		if err := requireInvoke(c.Action); err != nil {
			return err
		}
		if _, err := run(ctx, reg, c.Action); err != nil {
			return errors.UnexpectedFailure(err, "invoke %q", c.Action.Field)
		}
		return nil

	case script.AssertExhaustion:
		if err := requireInvoke(c.Action); err != nil {
			return err
		}
		_, err := run(ctx, reg, c.Action)
		switch {
		case err == nil:
			return errors.UnexpectedSuccess("invoke %q returned, want stack overflow", c.Action.Field)
		case errors.TrapOf(err) == errors.TrapStackOverflow:
			return nil
		default:
			return errors.UnexpectedFailure(err, "want stack overflow")
		}

	case script.AssertReturn:
		if err := requireInvoke(c.Action); err != nil {
			return err
		}
		if len(c.Expected) > 1 {
			return errors.UnsupportedCommand("%d expected return values", len(c.Expected))
		}
		got, err := run(ctx, reg, c.Action)
		if err != nil {
			return errors.UnexpectedFailure(err, "invoke %q", c.Action.Field)
		}
		return CheckReturn(c.Expected, got)

	case script.AssertReturnCanonicalNaN:
		return expectNaN(ctx, reg, c.Action, value.NaNCanonical)

	case script.AssertReturnArithmeticNaN:
		return expectNaN(ctx, reg, c.Action, value.NaNArithmetic)

	case script.AssertTrap:
		if err := requireInvoke(c.Action); err != nil {
			return err
		}
		_, err := run(ctx, reg, c.Action)
		if err == nil {
			return errors.UnexpectedSuccess("invoke %q returned, want trap %q", c.Action.Field, c.Text)
		}
		return expectClass(err, errors.KindTrap)

	case script.Unsupported:
		return errors.UnsupportedCommand("%s: %s", c.Type, c.Reason)

	default:
		return errors.UnsupportedCommand("command %T", cmd)
	}
}

// CheckReturn compares a single expected value with the raw return slot.
// An empty expectation accepts any return.
func CheckReturn(expected []value.Value, got value.Return) error {
	switch len(expected) {
	case 0:
		return nil
	case 1:
		if !value.Match(expected[0], got) {
			return errors.IncorrectResult("%s", value.Describe(expected[0], got))
		}
		return nil
	default:
		return errors.UnsupportedCommand("%d expected return values", len(expected))
	}
}

func expectModuleFailure(ctx context.Context, reg *registry.Registry, mod script.Module, accept ...errors.Kind) error {
	if _, err := reg.Instantiate(ctx, mod.Binary, ""); err != nil {
		return expectClass(err, accept...)
	}
	return errors.UnexpectedSuccess("module %s instantiated, want %s error", mod.Filename, accept[0])
}

func expectClass(err error, accept ...errors.Kind) error {
	class := errors.ClassOf(err)
	for _, k := range accept {
		if class == k {
			return nil
		}
	}
	return errors.UnexpectedFailure(err, "want %s error, got %s", accept[0], class)
}

// expectNaN reinterprets the return slot per the export's declared result
// type, which is the one source of the value's kind for NaN assertions.
// Any NaN of that type passes. A NaN outside class is logged at debug level
// but not reported as a failure.
func expectNaN(ctx context.Context, reg *registry.Registry, act script.Action, class value.NaNClass) error {
	if err := requireInvoke(act); err != nil {
		return err
	}
	got, err := run(ctx, reg, act)
	if err != nil {
		return errors.UnexpectedFailure(err, "invoke %q", act.Field)
	}

	inst, ok := reg.InstanceNamed(act.Module)
	if !ok {
		return errors.UnexpectedFailure(nil, "instance %q disappeared", act.Module)
	}
	et, ok := inst.ExportType(act.Field)
	if !ok || et.Kind != engine.ExportFunc {
		return errors.UnexpectedFailure(nil, "%q is not a function export", act.Field)
	}
	typ, ok := et.Result()
	if !ok || !typ.IsFloat() {
		return errors.UnexpectedFailure(nil, "%v result of %q is not floating point", et.Results, act.Field)
	}

	v := got.As(typ)
	if !v.IsNaN() {
		return errors.IncorrectResult("expected %s, got %s", class, v)
	}
	if !value.InClass(v, class) {
		loggerFrom(ctx).Debug("nan outside asserted class",
			zap.String("field", act.Field),
			zap.Stringer("class", class),
			zap.Stringer("got", v))
	}
	return nil
}

func requireInvoke(act script.Action) error {
	if act.Type != script.ActionInvoke {
		return errors.UnsupportedCommand("%s action", act.Type)
	}
	return nil
}

func run(ctx context.Context, reg *registry.Registry, act script.Action) (value.Return, error) {
	return reg.Run(ctx, act.Module, act.Field, act.Args)
}
