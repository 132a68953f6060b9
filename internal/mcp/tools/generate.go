package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/algolia-codegen/pkg/jsonvalue"
	"github.com/usestring/algolia-codegen/pkg/typegen"
)

// GenerateTypesInput is the input for algolia_generate_types.
type GenerateTypesInput struct {
	Samples   []map[string]any `json:"samples" jsonschema:"Sample records (Algolia hits) to derive types from"`
	IndexName string           `json:"index_name,omitempty" jsonschema:"Index name shown in the file header"`
	Prefix    string           `json:"prefix,omitempty" jsonschema:"Prepended to every generated type name"`
	Postfix   string           `json:"postfix,omitempty" jsonschema:"Appended to every generated record type name"`
	Enums     bool             `json:"enums,omitempty" jsonschema:"Render closed value sets of primitive arrays as literal unions"`
}

// GenerateTypesOutput is the output for algolia_generate_types.
type GenerateTypesOutput struct {
	Source      string                      `json:"source"`
	RootType    string                      `json:"root_type"`
	Types       []string                    `json:"types,omitzero"`
	ValueSets   map[string]typegen.ValueSet `json:"value_sets,omitzero"`
	SampleCount int                         `json:"sample_count"`
}

// MergeSamplesInput is the input for algolia_merge_samples.
type MergeSamplesInput struct {
	Samples []map[string]any `json:"samples" jsonschema:"Sample records to merge into one composite record"`
}

// MergeSamplesOutput is the output for algolia_merge_samples.
type MergeSamplesOutput struct {
	Merged    map[string]any              `json:"merged,omitzero"`
	ValueSets map[string]typegen.ValueSet `json:"value_sets,omitzero"`
}

// ToolGenerateTypes renders TypeScript declarations from sample records.
func ToolGenerateTypes(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GenerateTypesInput) (*sdkmcp.CallToolResult, GenerateTypesOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GenerateTypesInput) (*sdkmcp.CallToolResult, GenerateTypesOutput, error) {
		samples, err := samplesFromInput(input.Samples)
		if err != nil {
			return nil, GenerateTypesOutput{}, err
		}

		indexName := input.IndexName
		if indexName == "" {
			indexName = "unknown"
		}

		res := typegen.Generate(samples, typegen.Config{
			IndexName:       indexName,
			Prefix:          input.Prefix,
			Postfix:         input.Postfix,
			Enums:           input.Enums,
			MaxValueSetSize: maxValueSetSize(d),
		})

		return nil, GenerateTypesOutput{
			Source:      res.Source,
			RootType:    res.RootType,
			Types:       res.Types,
			ValueSets:   valueSetMap(res.ValueSets),
			SampleCount: res.SampleCount,
		}, nil
	}
}

// ToolMergeSamples merges sample records and reports closed value sets.
func ToolMergeSamples(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input MergeSamplesInput) (*sdkmcp.CallToolResult, MergeSamplesOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input MergeSamplesInput) (*sdkmcp.CallToolResult, MergeSamplesOutput, error) {
		samples, err := samplesFromInput(input.Samples)
		if err != nil {
			return nil, MergeSamplesOutput{}, err
		}

		merged, sets := typegen.Merger{MaxValueSetSize: maxValueSetSize(d)}.Merge(samples)
		out, _ := jsonvalue.ToAny(merged).(map[string]any)

		return nil, MergeSamplesOutput{
			Merged:    out,
			ValueSets: valueSetMap(sets),
		}, nil
	}
}

func samplesFromInput(in []map[string]any) ([]*jsonvalue.Object, error) {
	if len(in) == 0 {
		return nil, ErrInvalidInput("samples must contain at least one record")
	}
	values := make([]any, len(in))
	for i, s := range in {
		values[i] = s
	}
	return typegen.Samples(values), nil
}

func maxValueSetSize(d *Deps) int {
	if d != nil && d.Config != nil {
		return d.Config.MaxValueSetSize
	}
	return 0
}

func valueSetMap(sets *typegen.ValueSets) map[string]typegen.ValueSet {
	if sets.Len() == 0 {
		return nil
	}
	out := make(map[string]typegen.ValueSet, sets.Len())
	for _, path := range sets.Paths() {
		vs, _ := sets.Get(path)
		out[path] = vs
	}
	return out
}
