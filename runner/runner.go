// Package runner drives scripts through the command interpreter.
//
// RunScript is the sequential loop for one script: every command is stepped
// against a registry owned by that run, in script order. RunAll schedules
// independent scripts in parallel, each with its own engine and registry.
package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-spectest/engine"
	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/interp"
	"github.com/wippyai/wasm-spectest/registry"
	"github.com/wippyai/wasm-spectest/result"
	"github.com/wippyai/wasm-spectest/script"
)

// RunScript runs every command of s against a fresh registry on eng. A nil
// log uses the package logger. Commands log to log as well. The run stops
// early only when ctx is done.
func RunScript(ctx context.Context, eng engine.Engine, s *script.Script, log *zap.Logger) *result.ScriptResult {
	if log == nil {
		log = Logger()
	}
	res := result.New(s.Name, s.Path)
	start := time.Now()

	reg := registry.New(eng)
	defer func() {
		if err := reg.Close(ctx); err != nil {
			log.Warn("close instances", zap.Error(err))
		}
	}()

	stepCtx := interp.ContextWithLogger(ctx, log)
	for _, cmd := range s.Commands {
		if err := ctx.Err(); err != nil {
			res.Err = errors.New(errors.PhaseInterpret, errors.KindEngine).
				Detail("interrupted at line %d", cmd.Location().Line).
				Cause(err).
				Build()
			break
		}
		err := interp.Step(stepCtx, reg, cmd)
		if res.Record(cmd, err) == result.StatusFail {
			log.Info("command failed",
				zap.Int("line", cmd.Location().Line),
				zap.String("kind", cmd.Kind().String()),
				zap.Error(err))
		}
	}

	res.Duration = time.Since(start)
	c := res.Counts()
	log.Debug("script finished",
		zap.Int("passed", c.Passed),
		zap.Int("skipped", c.Skipped),
		zap.Int("failed", c.Failed),
		zap.Duration("duration", res.Duration))
	return res
}

// RunFile loads the wast2json script at path and runs it on a new engine
// built from cfg. Load and engine errors are reported in the result's Err.
// A non-nil log is also handed to the engine unless cfg names its own.
func RunFile(ctx context.Context, cfg *engine.Config, path string, log *zap.Logger) *result.ScriptResult {
	var ec engine.Config
	if cfg != nil {
		ec = *cfg
	}
	if ec.Logger == nil {
		ec.Logger = log
	}
	if log == nil {
		log = Logger()
	}
	s, err := script.Load(path)
	if err != nil {
		res := result.New(scriptName(path), path)
		res.Err = err
		log.Info("script failed to load", zap.Error(err))
		return res
	}

	eng, err := engine.NewWazeroEngineWithConfig(ctx, &ec)
	if err != nil {
		res := result.New(s.Name, path)
		res.Err = err
		return res
	}
	defer func() { _ = eng.Close(ctx) }()

	return RunScript(ctx, eng, s, log)
}
