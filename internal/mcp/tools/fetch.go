package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/algolia-codegen/internal/config"
	"github.com/usestring/algolia-codegen/pkg/algolia"
)

// FetchSamplesInput is the input for algolia_fetch_samples.
type FetchSamplesInput struct {
	AppID       string `json:"app_id" jsonschema:"Algolia application ID"`
	SearchKey   string `json:"search_key" jsonschema:"Search-only API key"`
	IndexName   string `json:"index_name" jsonschema:"Index to sample"`
	HitsPerPage int    `json:"hits_per_page,omitempty" jsonschema:"Number of hits to fetch (default: 20, max: 1000)"`
}

// FetchSamplesOutput is the output for algolia_fetch_samples.
type FetchSamplesOutput struct {
	Samples   []any    `json:"samples,omitzero"`
	ObjectIDs []string `json:"object_ids,omitzero"`
	Count     int      `json:"count"`
}

// ToolFetchSamples fetches the first page of hits from an Algolia index.
func ToolFetchSamples(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input FetchSamplesInput) (*sdkmcp.CallToolResult, FetchSamplesOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input FetchSamplesInput) (*sdkmcp.CallToolResult, FetchSamplesOutput, error) {
		if input.AppID == "" || input.SearchKey == "" || input.IndexName == "" {
			return nil, FetchSamplesOutput{}, ErrInvalidInput("app_id, search_key and index_name are required")
		}
		if input.HitsPerPage < 0 || input.HitsPerPage > 1000 {
			return nil, FetchSamplesOutput{}, ErrInvalidInput("hits_per_page must be between 1 and 1000")
		}

		hits, err := d.Source.FetchSamples(ctx, config.Generator{
			AppID:       input.AppID,
			SearchKey:   input.SearchKey,
			IndexName:   input.IndexName,
			HitsPerPage: input.HitsPerPage,
		})
		if err != nil {
			return nil, FetchSamplesOutput{}, WrapAlgoliaError(err)
		}

		samples := make([]any, len(hits))
		for i, hit := range hits {
			samples[i] = hit
		}

		return nil, FetchSamplesOutput{
			Samples:   samples,
			ObjectIDs: algolia.ObjectIDs(hits),
			Count:     len(hits),
		}, nil
	}
}
