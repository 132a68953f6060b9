// Package generator runs the fetch, transform and declaration pipeline for
// every output file of a configuration.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/usestring/algolia-codegen/internal/config"
	"github.com/usestring/algolia-codegen/internal/transform"
	"github.com/usestring/algolia-codegen/pkg/algolia"
	"github.com/usestring/algolia-codegen/pkg/typegen"
)

// ErrFileExists is returned when an output exists and overwrite is off.
var ErrFileExists = errors.New("file already exists")

// Status describes what happened to one target.
type Status string

const (
	StatusWritten Status = "written"
	StatusDryRun  Status = "dry-run"
	StatusFailed  Status = "failed"
)

// Options configures a Runner.
type Options struct {
	DryRun          bool     // Log instead of writing files
	Overwrite       bool     // Replace existing files even when the config file does not allow it
	Workers         int      // Targets processed in parallel (default 4)
	Targets         []string // Doublestar globs on output paths; empty selects all
	BaseDir         string   // Output paths are resolved against this directory
	MaxValueSetSize int      // Passed to typegen.Config
}

// TargetResult reports the outcome of one target.
type TargetResult struct {
	Path        string   // Output path as written in the config file
	Resolved    string   // Path on disk
	IndexName   string   // Index that was sampled
	Status      Status   // Outcome
	Types       []string // Emitted record types
	SampleCount int      // Samples after transform
	Source      string   // Rendered declarations
	Err         error    // Set when Status is StatusFailed
}

// Runner generates declaration files.
type Runner struct {
	source SampleSource
	opts   Options
}

// NewRunner creates a runner that reads samples from source.
func NewRunner(source SampleSource, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = config.DefaultGenerateWorkersValue
	}
	return &Runner{source: source, opts: opts}
}

// Run processes every selected target of f. All targets are attempted;
// failures are reported per target and joined into the returned error.
func (r *Runner) Run(ctx context.Context, f *config.File) ([]TargetResult, error) {
	targets, err := r.selectTargets(f.Targets())
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		slog.Warn("no targets selected", slog.Any("filters", r.opts.Targets))
		return nil, nil
	}

	overwrite := f.Overwrite || r.opts.Overwrite
	results := make([]TargetResult, len(targets))

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)

	for i, t := range targets {
		g.Go(func() error {
			res, err := r.Generate(ctx, t, overwrite)
			if err != nil {
				res.Status = StatusFailed
				res.Err = fmt.Errorf("%s: %w", t.Path, err)
				slog.Error("failed to generate file",
					slog.String("path", t.Path),
					slog.String("error", err.Error()),
				)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return results, errors.Join(errs...)
}

// Generate processes one target.
func (r *Runner) Generate(ctx context.Context, t config.Target, overwrite bool) (TargetResult, error) {
	g := t.Generator
	res := TargetResult{
		Path:      t.Path,
		Resolved:  r.resolve(t.Path),
		IndexName: g.IndexName,
	}

	slog.Info("processing file",
		slog.String("path", t.Path),
		slog.String("index", g.IndexName),
	)

	if !overwrite {
		if _, err := os.Stat(res.Resolved); err == nil {
			return res, fmt.Errorf("%w: %s", ErrFileExists, res.Resolved)
		}
	}

	var filter *transform.Filter
	if strings.TrimSpace(g.Transform) != "" {
		var err error
		if filter, err = transform.Compile(g.Transform); err != nil {
			return res, fmt.Errorf("transform: %w", err)
		}
	}

	hits, err := r.source.FetchSamples(ctx, g)
	if err != nil {
		return res, fmt.Errorf("fetching data from Algolia index %q (App ID: %s): %w", g.IndexName, g.AppID, err)
	}
	slog.Debug("fetched samples",
		slog.String("index", g.IndexName),
		slog.Int("count", len(hits)),
		slog.Any("object_ids", algolia.ObjectIDs(hits)),
	)

	samples := hits
	if filter != nil {
		out, err := filter.Apply(ctx, hits)
		if err != nil {
			return res, fmt.Errorf("transform: %w", err)
		}
		samples = out.Samples
		slog.Debug("transformed samples",
			slog.String("index", g.IndexName),
			slog.Int("count", len(samples)),
			slog.Int("dropped", out.Dropped),
		)
	}

	gen := typegen.Generate(samples, typegen.Config{
		IndexName:       g.IndexName,
		Prefix:          g.Prefix,
		Postfix:         g.Postfix,
		Enums:           g.Enums,
		MaxValueSetSize: r.opts.MaxValueSetSize,
	})
	slog.Debug("merged samples",
		slog.String("index", g.IndexName),
		slog.Int("sample_count", gen.SampleCount),
		slog.Int("value_sets", gen.ValueSets.Len()),
		slog.Any("types", gen.Types),
	)

	res.Types = gen.Types
	res.SampleCount = gen.SampleCount
	res.Source = gen.Source

	if r.opts.DryRun {
		res.Status = StatusDryRun
		slog.Info("would write file",
			slog.String("path", res.Resolved),
			slog.Int("bytes", len(gen.Source)),
			slog.Int("types", len(gen.Types)),
		)
		return res, nil
	}

	if err := writeFile(res.Resolved, gen.Source); err != nil {
		return res, err
	}
	res.Status = StatusWritten
	slog.Info("generated file",
		slog.String("path", res.Resolved),
		slog.Int("types", len(gen.Types)),
	)
	return res, nil
}

func (r *Runner) resolve(path string) string {
	if filepath.IsAbs(path) || r.opts.BaseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(r.opts.BaseDir, path)
}

// selectTargets keeps targets whose path matches any filter glob.
func (r *Runner) selectTargets(targets []config.Target) ([]config.Target, error) {
	if len(r.opts.Targets) == 0 {
		return targets, nil
	}
	for _, pattern := range r.opts.Targets {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid target pattern %q", pattern)
		}
	}

	var out []config.Target
	for _, t := range targets {
		path := filepath.ToSlash(filepath.Clean(t.Path))
		for _, pattern := range r.opts.Targets {
			if matched, _ := doublestar.Match(pattern, path); matched {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

// writeMu serialises writes so two targets naming the same file do not
// interleave.
var writeMu sync.Mutex

func writeFile(path, content string) error {
	writeMu.Lock()
	defer writeMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
