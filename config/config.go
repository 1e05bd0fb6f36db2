// Package config loads the runner configuration from spectest.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/tetratelabs/wazero/api"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasm-spectest/engine"
)

// FileName is the configuration file looked up by FindConfig.
const FileName = "spectest.yaml"

// Config is the top-level spectest.yaml configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Run    RunConfig    `yaml:"run"`
	Log    LogConfig    `yaml:"log"`
}

// EngineConfig selects how modules are compiled and executed.
type EngineConfig struct {
	// Mode is auto, interpreter or compiler. Defaults to auto.
	Mode string `yaml:"mode,omitempty"`

	// Features is the core feature set: v1 or v2. Defaults to v2.
	Features string `yaml:"features,omitempty"`

	// Threads enables the threads proposal on top of Features.
	Threads bool `yaml:"threads,omitempty"`

	// MemoryLimitPages caps the memory of every instance. 0 keeps the
	// runtime default.
	MemoryLimitPages uint32 `yaml:"memory_limit_pages,omitempty"`

	// InvokeTimeout bounds each call and start function, e.g. "10s".
	// 0 disables the bound.
	InvokeTimeout time.Duration `yaml:"invoke_timeout,omitempty"`

	// SpectestModule provides the "spectest" import module. Defaults to true.
	SpectestModule *bool `yaml:"spectest_module,omitempty"`
}

// RunConfig controls how scripts are scheduled.
type RunConfig struct {
	// Parallel is the number of scripts run at once. Defaults to NumCPU.
	Parallel int `yaml:"parallel,omitempty"`

	// Skip lists script name globs (filepath.Match syntax) that are not run.
	Skip []string `yaml:"skip,omitempty"`

	// FailFast stops scheduling scripts after the first failing one.
	FailFast bool `yaml:"fail_fast,omitempty"`
}

// LogConfig configures the zap logger built by the CLI.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads and parses a spectest.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses spectest.yaml content. The path argument is used only for
// error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for spectest.yaml starting from dir and walking up to
// parent directories. It returns "" and a nil error when none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	switch engine.Mode(c.Engine.Mode) {
	case "", engine.ModeAuto, engine.ModeInterpreter, engine.ModeCompiler:
	default:
		return fmt.Errorf("%s: engine.mode: unknown mode %q", path, c.Engine.Mode)
	}
	switch c.Engine.Features {
	case "", "v1", "v2":
	default:
		return fmt.Errorf("%s: engine.features: want v1 or v2, got %q", path, c.Engine.Features)
	}
	if c.Engine.InvokeTimeout < 0 {
		return fmt.Errorf("%s: engine.invoke_timeout must not be negative", path)
	}
	if c.Run.Parallel < 0 {
		return fmt.Errorf("%s: run.parallel must not be negative", path)
	}
	for i, pattern := range c.Run.Skip {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("%s: run.skip[%d]: %w", path, i, err)
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s: log.level: unknown level %q", path, c.Log.Level)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%s: log.format: want console or json, got %q", path, c.Log.Format)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Engine.Mode == "" {
		c.Engine.Mode = string(engine.ModeAuto)
	}
	if c.Engine.Features == "" {
		c.Engine.Features = "v2"
	}
	if c.Engine.SpectestModule == nil {
		on := true
		c.Engine.SpectestModule = &on
	}
	if c.Run.Parallel == 0 {
		c.Run.Parallel = runtime.NumCPU()
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// EngineConfig maps the engine section onto engine.Config.
func (c *Config) EngineConfig() *engine.Config {
	features := api.CoreFeaturesV2
	if c.Engine.Features == "v1" {
		features = api.CoreFeaturesV1
	}
	return &engine.Config{
		Mode:             engine.Mode(c.Engine.Mode),
		CoreFeatures:     features,
		MemoryLimitPages: c.Engine.MemoryLimitPages,
		InvokeTimeout:    c.Engine.InvokeTimeout,
		EnableThreads:    c.Engine.Threads,
		DisableSpectest:  c.Engine.SpectestModule != nil && !*c.Engine.SpectestModule,
	}
}

// Skipped reports whether the script name matches a skip glob.
func (c *Config) Skipped(name string) bool {
	for _, pattern := range c.Run.Skip {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
