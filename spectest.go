package spectest

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-spectest/config"
	"github.com/wippyai/wasm-spectest/engine"
	"github.com/wippyai/wasm-spectest/interp"
	"github.com/wippyai/wasm-spectest/result"
	"github.com/wippyai/wasm-spectest/runner"
)

// Options configures a run. The zero value uses config.Default.
type Options struct {
	Config *config.Config
	Logger *zap.Logger
}

func (o *Options) config() *config.Config {
	if o == nil || o.Config == nil {
		return config.Default()
	}
	return o.Config
}

func (o *Options) logger() *zap.Logger {
	if o == nil {
		return nil
	}
	return o.Logger
}

// RunFile runs one wast2json script. A script that cannot be loaded returns
// its error along with an empty result.
func RunFile(ctx context.Context, path string, opts *Options) (*result.ScriptResult, error) {
	res := runner.RunFile(ctx, opts.config().EngineConfig(), path, opts.logger())
	return res, res.Err
}

// Run runs every script under paths. Directories contribute their *.json
// files.
func Run(ctx context.Context, paths []string, opts *Options) (*result.Summary, error) {
	return runner.RunAll(ctx, opts.config(), paths, opts.logger())
}

// SetLogger routes the logs of every package to l.
func SetLogger(l *zap.Logger) {
	engine.SetLogger(l)
	interp.SetLogger(l)
	runner.SetLogger(l)
}
