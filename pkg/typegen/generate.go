package typegen

import (
	"github.com/usestring/algolia-codegen/pkg/jsonvalue"
)

// Config controls naming and rendering.
type Config struct {
	IndexName string // Named in the file header
	Prefix    string // Prepended to every synthesized name, e.g. "Algolia"
	Postfix   string // Appended to every record name, e.g. "Type"

	// Enums renders primitive array fields that have a closed value set as
	// a union of their literals instead of string[] or number[].
	Enums bool

	// MaxValueSetSize caps distinct literals per path. Zero means
	// DefaultMaxValueSetSize.
	MaxValueSetSize int
}

// Result is the full output of one generation.
type Result struct {
	Source      string            `json:"source"`       // Declaration file text
	RootType    string            `json:"root_type"`    // Name of the root record type
	Types       []string          `json:"types"`        // Record types in emission order
	ValueSets   *ValueSets        `json:"value_sets"`   // Closed value sets by dotted path
	SampleCount int               `json:"sample_count"` // Number of input records
	Merged      *jsonvalue.Object `json:"-"`            // Composite record that was inferred
}

// Generate merges samples, infers their shape and renders declarations.
func Generate(samples []*jsonvalue.Object, cfg Config) *Result {
	merged, sets := Merger{MaxValueSetSize: cfg.MaxValueSetSize}.Merge(samples)

	engine := NewEngine(cfg, sets)
	root := engine.Infer(merged, nil)

	order := NewDependencyGraph(engine.Registry()).Order()
	return &Result{
		Source:      render(engine, cfg.IndexName, order),
		RootType:    root.Type,
		Types:       order,
		ValueSets:   sets,
		SampleCount: len(samples),
		Merged:      merged,
	}
}

// GenerateDeclarations returns only the declaration text for samples.
func GenerateDeclarations(samples []*jsonvalue.Object, cfg Config) string {
	return Generate(samples, cfg).Source
}

// Samples converts decoded JSON values into records. Plain maps are
// converted with sorted keys; values that are not objects are dropped.
func Samples(values []any) []*jsonvalue.Object {
	out := make([]*jsonvalue.Object, 0, len(values))
	for _, v := range values {
		if obj, ok := jsonvalue.FromAny(v).(*jsonvalue.Object); ok {
			out = append(out, obj)
		}
	}
	return out
}
