package typegen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/algolia-codegen/pkg/jsonvalue"
)

const header = "/**\n" +
	" * Generated TypeScript types for Algolia index: products\n" +
	" * This file is auto-generated. Do not edit manually.\n" +
	" */\n"

func TestGenerate_EmptyArrayField(t *testing.T) {
	src := GenerateDeclarations(records(t, `{"objectID": "1", "tags": []}`), Config{IndexName: "products"})

	want := header + `
/**
 * Hit structure in Algolia
 */
export interface Hit {
  objectID: string;
  tags?: unknown[];
}
`
	if diff := cmp.Diff(want, src); diff != "" {
		t.Errorf("source mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_PrimitivesSorted(t *testing.T) {
	src := GenerateDeclarations(records(t, `{"objectID": "1", "price": 9.99, "active": true}`), Config{IndexName: "products"})

	want := header + `
/**
 * Hit structure in Algolia
 */
export interface Hit {
  active: boolean;
  objectID: string;
  price: number;
}
`
	if diff := cmp.Diff(want, src); diff != "" {
		t.Errorf("source mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_MergedColors(t *testing.T) {
	res := Generate(records(t, `{"colors": ["red"]}`, `{"colors": ["red", "blue"]}`), Config{IndexName: "products"})

	assert.Contains(t, res.Source, "  colors: string[];\n")
	assert.Equal(t, 2, res.SampleCount)

	vs, ok := res.ValueSets.Get("colors")
	require.True(t, ok)
	assert.Equal(t, ValueSetString, vs.Kind)
	assert.Equal(t, []any{"red", "blue"}, vs.Values)
}

func TestGenerate_EnumsRenderLiterals(t *testing.T) {
	res := Generate(records(t, `{"colors": ["red"]}`, `{"colors": ["red", "blue"]}`), Config{IndexName: "products", Enums: true})
	assert.Contains(t, res.Source, `  colors: ("red" | "blue")[];`)
}

func TestGenerate_FullDocument(t *testing.T) {
	samples := records(t,
		`{
			"objectID": "p1",
			"name": "Tent",
			"attributes": [{"id": "weight", "value": 2.5}],
			"labels": [{"id": "color", "value": "green"}],
			"sellerInfo": {"contact": {"email": "a@b.c"}},
			"reviews": []
		}`,
		`{
			"objectID": "p2",
			"name": null,
			"reviews": [{"rating": 4, "author": {"name": "Ann"}}]
		}`,
	)

	res := Generate(samples, Config{IndexName: "products", Prefix: "Algolia", Postfix: "Type"})

	want := header + `
export type AlgoliaIdValue<T = string> = {
  id: string;
  value: T;
};

/**
 * Contact info structure in Algolia
 */
export interface AlgoliaContactInfoType {
  email: string;
}

/**
 * Sellerinfo structure in Algolia
 */
export interface AlgoliaSellerinfoType {
  contact: AlgoliaContactInfoType;
}

/**
 * Author structure in Algolia
 */
export interface AlgoliaAuthorType {
  name: string;
}

/**
 * Reviews structure in Algolia
 */
export interface AlgoliaReviewsType {
  author: AlgoliaAuthorType;
  rating: number;
}

/**
 * Hit structure in Algolia
 */
export interface AlgoliaHitType {
  attributes: AlgoliaIdValue<number>[];
  labels: AlgoliaIdValue[];
  name: string;
  objectID: string;
  reviews: AlgoliaReviewsType[];
  sellerInfo: AlgoliaSellerinfoType;
}
`
	if diff := cmp.Diff(want, res.Source); diff != "" {
		t.Errorf("source mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "AlgoliaHitType", res.RootType)
	assert.Equal(t, []string{
		"AlgoliaContactInfoType",
		"AlgoliaSellerinfoType",
		"AlgoliaAuthorType",
		"AlgoliaReviewsType",
		"AlgoliaHitType",
	}, res.Types)
}

func TestGenerate_Stable(t *testing.T) {
	doc := `{"b": {"x": 1}, "a": [{"y": "z"}], "c": [{"id": "k", "value": true}]}`
	first := GenerateDeclarations(records(t, doc, doc), Config{IndexName: "i"})
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, GenerateDeclarations(records(t, doc, doc), Config{IndexName: "i"}))
	}
}

func TestGenerate_DependenciesPrecedeDependents(t *testing.T) {
	res := Generate(records(t, `{"a": {"b": {"c": {"d": 1}}}, "e": [{"f": {"g": 1}}]}`), Config{IndexName: "i"})

	pos := make(map[string]int, len(res.Types))
	for i, name := range res.Types {
		pos[name] = i
	}
	src := res.Source
	for _, name := range res.Types {
		for _, other := range res.Types {
			if other == name {
				continue
			}
			if strings.Contains(src, "export interface "+name+" {") && bodyReferences(src, name, other) {
				assert.Less(t, pos[other], pos[name], "%s must follow %s", name, other)
			}
		}
	}
}

// bodyReferences reports whether the interface body of name mentions other
// as a field type.
func bodyReferences(src, name, other string) bool {
	start := strings.Index(src, "export interface "+name+" {")
	end := strings.Index(src[start:], "\n}")
	body := src[start : start+end]
	return strings.Contains(body, ": "+other+";") || strings.Contains(body, ": "+other+"[]")
}

func TestGenerate_NoSamples(t *testing.T) {
	res := Generate(nil, Config{IndexName: "empty"})
	assert.Equal(t, "Hit", res.RootType)
	assert.Contains(t, res.Source, "export interface Hit {\n}")
	assert.Equal(t, 0, res.SampleCount)
}

func TestSamples(t *testing.T) {
	out := Samples([]any{
		map[string]any{"b": 1, "a": []any{map[string]any{"z": true}}},
		"not an object",
		jsonvalue.ObjectOf("c", int64(3)),
	})
	require.Len(t, out, 2)

	first, ok := jsonvalue.Entries(out[0])
	require.True(t, ok)
	assert.Equal(t, "a", first[0].Key, "plain maps are sorted")

	c, _ := out[1].Get("c")
	assert.Equal(t, float64(3), c)
}
