package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/wasm-spectest/config"
	"github.com/wippyai/wasm-spectest/result"
)

// Expand resolves paths to script files. Directories contribute their *.json
// files in name order; files are kept as given.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}

// RunAll runs the scripts under paths with at most cfg.Run.Parallel running at
// once. Scripts matching a skip glob are not run. Results are in input order;
// with fail_fast, scripts not started after the first failure are left out.
// A nil log uses the package logger.
func RunAll(ctx context.Context, cfg *config.Config, paths []string, log *zap.Logger) (*result.Summary, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = Logger()
	}
	files, err := Expand(paths)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*result.ScriptResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Run.Parallel, 1))

	for i, file := range files {
		i, file := i, file
		name := scriptName(file)
		if cfg.Skipped(name) {
			log.Debug("script skipped", zap.String("script", name))
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			runID := uuid.NewString()
			scriptLog := log.With(zap.String("script", name), zap.String("run_id", runID))
			res := RunFile(gctx, cfg.EngineConfig(), file, scriptLog)
			res.RunID = runID
			results[i] = res
			if cfg.Run.FailFast && res.Failed() {
				cancel()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &result.Summary{}
	for _, r := range results {
		if r != nil {
			summary.Add(r)
		}
	}
	return summary, nil
}

func scriptName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
