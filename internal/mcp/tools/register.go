// Package tools contains MCP tool implementations for algolia-codegen.
package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "algolia_generate_types",
		Description: "Generate TypeScript declarations from sample Algolia records. Samples are merged into one composite record, nested objects become named interfaces, and {id, value} arrays use the shared IdValue<T> type. Returns {source, root_type, types, value_sets, sample_count}. Use algolia_fetch_samples first to get samples from a live index.",
	}, ToolGenerateTypes(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "algolia_merge_samples",
		Description: "Merge sample records into the composite record that type generation infers from. Arrays are unioned with deep-equal duplicates removed; arrays of only strings or only numbers report their closed value set. Returns {merged, value_sets}.",
	}, ToolMergeSamples(d))

	if d.Source != nil {
		AddTool(srv, &sdkmcp.Tool{
			Name:        "algolia_fetch_samples",
			Description: "Fetch the first page of hits from an Algolia index with an empty query. Returns {samples, object_ids, count}; object_ids uses N/A for hits without an objectID. Pass samples to algolia_generate_types.",
		}, ToolFetchSamples(d))
	}
}
