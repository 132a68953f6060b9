package typegen

import (
	"github.com/usestring/algolia-codegen/pkg/jsonvalue"
)

// Kind is the classification tag of a single value.
type Kind int

const (
	KindUnknown          Kind = iota // null, absent, or nested beyond MaxDepth
	KindPrimitive                    // string, number or boolean
	KindRecord                       // object
	KindEmptyArray                   // []
	KindKeyValueArray                // array of {id: string, value: any}
	KindHomogeneousArray             // every element shares one non-array type
	KindUnionArray                   // anything else
)

var kindNames = map[Kind]string{
	KindUnknown:          "nullable-unknown",
	KindPrimitive:        "primitive",
	KindRecord:           "record",
	KindEmptyArray:       "empty-array",
	KindKeyValueArray:    "kv-array",
	KindHomogeneousArray: "homogeneous-array",
	KindUnionArray:       "union-array",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Primitive type names.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeUnknown = "unknown"
)

// MaxDepth is the deepest nesting level that is classified. Deeper values
// are treated as unknown.
const MaxDepth = jsonvalue.MaxDepth

// Classification is the tagged result of classifying one value. Only the
// payload that belongs to Kind is set.
type Classification struct {
	Kind      Kind
	Null      bool              // KindUnknown: value was an explicit null
	Primitive string            // KindPrimitive
	Entries   []jsonvalue.Entry // KindRecord, in source order
	Value     any               // KindKeyValueArray: value of the first element
	Element   Shape             // KindHomogeneousArray
	Members   []string          // KindUnionArray: distinct element types in first-seen order
}

// Classify tags v. Array elements are inferred through e, so records found
// inside arrays are registered as a side effect.
func (e *Engine) Classify(v any, path Path) Classification {
	return e.classify(v, path, len(path))
}

func (e *Engine) classify(v any, path Path, depth int) Classification {
	if depth > MaxDepth {
		return Classification{Kind: KindUnknown}
	}
	if v == nil {
		return Classification{Kind: KindUnknown, Null: true}
	}
	if entries, ok := jsonvalue.Entries(v); ok {
		return Classification{Kind: KindRecord, Entries: entries}
	}

	switch val := v.(type) {
	case string:
		return Classification{Kind: KindPrimitive, Primitive: TypeString}
	case bool:
		return Classification{Kind: KindPrimitive, Primitive: TypeBoolean}
	case []any:
		return e.classifyArray(val, path, depth)
	}
	if _, ok := jsonvalue.Number(v); ok {
		return Classification{Kind: KindPrimitive, Primitive: TypeNumber}
	}
	// Non-JSON Go values have no structural meaning here.
	return Classification{Kind: KindUnknown}
}

func (e *Engine) classifyArray(elems []any, path Path, depth int) Classification {
	if len(elems) == 0 {
		return Classification{Kind: KindEmptyArray}
	}
	if isKeyValueArray(elems) {
		value, _ := jsonvalue.Lookup(elems[0], "value")
		return Classification{Kind: KindKeyValueArray, Value: value}
	}

	shapes := make([]Shape, len(elems))
	for i, elem := range elems {
		shapes[i] = e.infer(elem, path.Index(i), depth+1)
	}

	first := shapes[0]
	homogeneous := !first.Array
	for _, s := range shapes[1:] {
		if s.Type != first.Type || s.Array {
			homogeneous = false
			break
		}
	}
	if homogeneous {
		return Classification{Kind: KindHomogeneousArray, Element: first}
	}

	seen := make(map[string]struct{}, len(shapes))
	members := make([]string, 0, len(shapes))
	for _, s := range shapes {
		if _, dup := seen[s.Type]; dup {
			continue
		}
		seen[s.Type] = struct{}{}
		members = append(members, s.Type)
	}
	return Classification{Kind: KindUnionArray, Members: members}
}

// isKeyValueArray reports whether every element is an object carrying a
// string "id" and a "value" key. Additional keys are tolerated.
func isKeyValueArray(elems []any) bool {
	for _, elem := range elems {
		id, ok := jsonvalue.Lookup(elem, "id")
		if !ok {
			return false
		}
		if _, isString := id.(string); !isString {
			return false
		}
		if _, ok := jsonvalue.Lookup(elem, "value"); !ok {
			return false
		}
	}
	return len(elems) > 0
}
