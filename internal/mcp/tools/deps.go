package tools

import (
	"github.com/usestring/algolia-codegen/internal/config"
	"github.com/usestring/algolia-codegen/internal/generator"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config *config.Config
	Source generator.SampleSource
}
