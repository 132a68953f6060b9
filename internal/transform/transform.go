// Package transform applies jq filters to fetched Algolia hits before type
// generation.
package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/usestring/algolia-codegen/pkg/jsonvalue"
)

// ErrNoObjects is returned when a filter yields no object for any hit.
var ErrNoObjects = errors.New("transform produced no objects")

// Filter is a compiled jq program run once per hit.
type Filter struct {
	expr string
	code *gojq.Code
}

// Result describes one Apply run.
type Result struct {
	Samples []*jsonvalue.Object // Object outputs, in hit order
	Dropped int                 // Non-object outputs that were discarded
}

// Compile parses and compiles a jq expression.
func Compile(expression string) (*Filter, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}

	return &Filter{expr: expression, code: code}, nil
}

// Validate checks that a jq expression compiles without running it.
func Validate(expression string) error {
	_, err := Compile(expression)
	return err
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Apply runs the filter against every hit. Each object the filter emits
// becomes a sample; other outputs are counted in Result.Dropped. The first
// runtime error stops the run.
func (f *Filter) Apply(ctx context.Context, hits []*jsonvalue.Object) (*Result, error) {
	result := &Result{Samples: make([]*jsonvalue.Object, 0, len(hits))}

	for i, hit := range hits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		iter := f.code.RunWithContext(ctx, jsonvalue.ToAny(hit))
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}

			if err, isErr := v.(error); isErr {
				var haltErr *gojq.HaltError
				if errors.As(err, &haltErr) && haltErr.Value() == nil {
					break
				}
				return nil, errors.New(formatJQError(fmt.Sprintf("hit[%d]", i), err))
			}

			obj, isObj := jsonvalue.FromAny(v).(*jsonvalue.Object)
			if !isObj {
				result.Dropped++
				continue
			}
			result.Samples = append(result.Samples, obj)
		}
	}

	if len(result.Samples) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoObjects, f.expr)
	}
	return result, nil
}

// formatJQError creates a readable message for jq runtime errors.
//
// Runtime jq errors (like "cannot iterate over: null") are plain errors
// without typed wrappers in gojq, so the hints rely on string matching.
func formatJQError(label string, err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		return fmt.Sprintf("%s: transform halted with: %v", label, haltErr.Value())
	}

	errStr := err.Error()

	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the path may not exist in this hit)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	}

	return fmt.Sprintf("%s: %s%s", label, errStr, hint)
}
