package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	spectest "github.com/wippyai/wasm-spectest"
	"github.com/wippyai/wasm-spectest/config"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to spectest.yaml (default: search from the working directory)")
		interactive = flag.Bool("i", false, "Interactive result browser")
		verbose     = flag.Bool("v", false, "Debug logging")
		parallel    = flag.Int("parallel", 0, "Scripts run at once (overrides run.parallel)")
		mode        = flag.String("mode", "", "Engine mode: auto, interpreter or compiler (overrides engine.mode)")
		failFast    = flag.Bool("fail-fast", false, "Stop after the first failing script")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: spectest [-config f] [-i] [-v] [-parallel n] <file.json|dir>...")
		fmt.Fprintln(os.Stderr, "       runs wast2json scripts; exit status 1 when any command fails")
		os.Exit(2)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *parallel > 0 {
		cfg.Run.Parallel = *parallel
	}
	if *mode != "" {
		cfg.Engine.Mode = *mode
	}
	if *failFast {
		cfg.Run.FailFast = true
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	log, err := buildLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()
	spectest.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *interactive {
		if err := runInteractive(ctx, cfg, flag.Args()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	failed, err := run(ctx, cfg, flag.Args(), !*noColor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if failed {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, paths []string, color bool) (bool, error) {
	summary, err := spectest.Run(ctx, paths, &spectest.Options{Config: cfg})
	if err != nil {
		return false, err
	}
	newReporter(os.Stdout, color).Summary(summary)
	return summary.Failed(), nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		found, err := config.FindConfig(".")
		if err != nil {
			return nil, err
		}
		if found == "" {
			return config.Default(), nil
		}
		path = found
	}
	return config.Load(path)
}

func buildLogger(lc config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	if lc.Format == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
