package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/usestring/algolia-codegen/internal/cache"
	"github.com/usestring/algolia-codegen/internal/config"
	"github.com/usestring/algolia-codegen/internal/generator"
	"github.com/usestring/algolia-codegen/internal/mcp"
	"github.com/usestring/algolia-codegen/internal/mcp/tools"
)

func mcpAction(c *cli.Context) error {
	cfg := config.Load()

	sampleCache, err := cache.NewSampleCache(cfg.SampleCacheMaxItems)
	if err != nil {
		return fmt.Errorf("failed to create sample cache: %w", err)
	}

	deps := &tools.Deps{
		Config: cfg,
		Source: generator.NewAlgoliaSource(sampleCache, generator.SourceOptions{
			ConnectTimeout: cfg.HTTPConnectTimeout,
			RequestTimeout: cfg.HTTPRequestTimeout,
			HitsPerPage:    cfg.HitsPerPage,
		}),
	}

	server, err := mcp.NewServer(deps, mcp.WithBuiltinTools())
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	slog.Info("starting algolia-codegen MCP server on stdio")
	if err := server.Run(c.Context); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
