package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/usestring/algolia-codegen/internal/config"
	"github.com/usestring/algolia-codegen/internal/logging"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		slog.Error("algolia-codegen failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}

	var logCleanup func() error

	return &cli.App{
		Name:                   "algolia-codegen",
		Usage:                  "Generate TypeScript declarations from Algolia index samples",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: algolia-codegen.{yaml,yml,json,toml} in the working directory)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would be generated without writing files",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to a rotating file instead of stderr",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: text, json or auto",
			},
		},
		Before: func(c *cli.Context) error {
			cfg := config.Load()
			logCfg := logging.Config{
				Level:      cfg.LogLevel,
				Format:     cfg.LogFormat,
				FilePath:   cfg.LogFile,
				MaxSizeMB:  cfg.LogMaxSizeMB,
				MaxBackups: cfg.LogMaxBackups,
				MaxAgeDays: cfg.LogMaxAgeDays,
				Compress:   cfg.LogCompress,
			}
			if c.Bool("verbose") {
				logCfg.Level = "debug"
			}
			if v := c.String("log-file"); v != "" {
				logCfg.FilePath = v
			}
			if v := c.String("log-format"); v != "" {
				logCfg.Format = v
			}

			cleanup, err := logging.Setup(logCfg)
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			logCleanup = cleanup
			return nil
		},
		After: func(c *cli.Context) error {
			if logCleanup != nil {
				return logCleanup()
			}
			return nil
		},
		Action: generateAction,
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Generate declaration files for every configured target (default)",
				Flags:  generateFlags(),
				Action: generateAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON Schema of the config file",
				Action: schemaAction,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the type generator as MCP tools over stdio",
				Action: mcpAction,
			},
		},
	}
}

func schemaAction(c *cli.Context) error {
	data, err := config.SchemaJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
