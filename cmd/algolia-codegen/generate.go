package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/usestring/algolia-codegen/internal/cache"
	"github.com/usestring/algolia-codegen/internal/config"
	"github.com/usestring/algolia-codegen/internal/generator"
)

func generateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "target",
			Usage: "Only generate output paths matching glob patterns (e.g., --target 'src/**/*.ts')",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Number of targets generated in parallel (default: GENERATE_WORKERS)",
		},
		&cli.BoolFlag{
			Name:  "overwrite",
			Usage: "Replace existing files even when the config sets overwrite: false",
		},
	}
}

func generateAction(c *cli.Context) error {
	cfg := config.Load()

	path, err := configPath(c, cfg)
	if err != nil {
		return err
	}
	file, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	slog.Debug("loaded config", slog.String("path", path), slog.Int("targets", len(file.Targets())))

	sampleCache, err := cache.NewSampleCache(cfg.SampleCacheMaxItems)
	if err != nil {
		return fmt.Errorf("failed to create sample cache: %w", err)
	}
	source := generator.NewAlgoliaSource(sampleCache, generator.SourceOptions{
		ConnectTimeout: cfg.HTTPConnectTimeout,
		RequestTimeout: cfg.HTTPRequestTimeout,
		HitsPerPage:    cfg.HitsPerPage,
	})

	workers := cfg.GenerateWorkers
	if c.IsSet("jobs") {
		workers = c.Int("jobs")
	}

	runner := generator.NewRunner(source, generator.Options{
		DryRun:          c.Bool("dry-run"),
		Overwrite:       c.Bool("overwrite"),
		Workers:         workers,
		Targets:         c.StringSlice("target"),
		MaxValueSetSize: cfg.MaxValueSetSize,
	})

	results, err := runner.Run(c.Context, file)

	failed := 0
	for _, res := range results {
		if res.Status == generator.StatusFailed {
			failed++
		}
	}
	slog.Info("generation finished",
		slog.Int("targets", len(results)),
		slog.Int("failed", failed),
	)
	return err
}

// configPath picks the --config flag, then ALGOLIA_CODEGEN_CONFIG, then the
// first default file name found in the working directory.
func configPath(c *cli.Context, cfg *config.Config) (string, error) {
	if p := c.String("config"); p != "" {
		return p, nil
	}
	if cfg.ConfigFile != "" {
		return cfg.ConfigFile, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return config.Find(wd)
}
