// Package jsonvalue provides an order-preserving model for arbitrary JSON documents.
//
// Objects decode to *Object, an insertion-ordered map, so that key order as it
// appeared on the wire survives into type inference. Arrays decode to []any,
// numbers to float64, and null to nil. Plain map[string]any values are accepted
// wherever an object is expected and are visited in sorted key order.
package jsonvalue

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MaxDepth bounds recursion over nested values. Values below this depth are
// treated as opaque so that cyclic Go values cannot recurse forever.
const MaxDepth = 256

// Object is a JSON object whose keys keep their insertion order.
type Object = orderedmap.OrderedMap[string, any]

// Entry is a single key/value pair of an object.
type Entry struct {
	Key   string
	Value any
}

// ErrNotObject is returned by DecodeObject when the document is not an object.
var ErrNotObject = errors.New("JSON value is not an object")

// NewObject returns an empty Object.
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// ObjectOf builds an Object from alternating key/value arguments.
// It panics if a key is not a string; it exists for tests and literals.
func ObjectOf(kv ...any) *Object {
	obj := NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		obj.Set(kv[i].(string), kv[i+1])
	}
	return obj
}

// Decode parses a JSON document, preserving object key order.
func Decode(data []byte) (any, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON document")
	}
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("reading JSON value: %w", err)
	}
	return decodeValue(value, dataType)
}

// DecodeObject parses a JSON document that must be an object.
func DecodeObject(data []byte) (*Object, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

func decodeValue(value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.Object:
		obj := NewObject()
		err := jsonparser.ObjectEach(value, func(key, raw []byte, dt jsonparser.ValueType, _ int) error {
			child, err := decodeValue(raw, dt)
			if err != nil {
				return err
			}
			obj.Set(string(key), child)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("decoding object: %w", err)
		}
		return obj, nil

	case jsonparser.Array:
		arr := make([]any, 0)
		var decodeErr error
		_, err := jsonparser.ArrayEach(value, func(raw []byte, dt jsonparser.ValueType, _ int, err error) {
			if decodeErr != nil {
				return
			}
			if err != nil {
				decodeErr = err
				return
			}
			child, err := decodeValue(raw, dt)
			if err != nil {
				decodeErr = err
				return
			}
			arr = append(arr, child)
		})
		if err == nil {
			err = decodeErr
		}
		if err != nil {
			return nil, fmt.Errorf("decoding array: %w", err)
		}
		return arr, nil

	case jsonparser.String:
		return jsonparser.ParseString(value)

	case jsonparser.Number:
		return parseNumber(value)

	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)

	case jsonparser.Null:
		return nil, nil

	default:
		return nil, fmt.Errorf("unexpected JSON token %q", value)
	}
}

// parseNumber decodes a JSON number. Values beyond the float64 range clamp
// to ±math.MaxFloat64 so they stay numbers and remain encodable.
func parseNumber(value []byte) (float64, error) {
	n, err := strconv.ParseFloat(string(value), 64)
	if errors.Is(err, strconv.ErrRange) {
		if math.IsInf(n, 0) {
			return math.Copysign(math.MaxFloat64, n), nil
		}
		return n, nil
	}
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", value, err)
	}
	return n, nil
}

// Entries returns the key/value pairs of an object value. *Object values are
// returned in insertion order, map[string]any values in sorted key order.
// The second result is false when v is not an object.
func Entries(v any) ([]Entry, bool) {
	switch obj := v.(type) {
	case *Object:
		if obj == nil {
			return nil, false
		}
		entries := make([]Entry, 0, obj.Len())
		for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
			entries = append(entries, Entry{Key: pair.Key, Value: pair.Value})
		}
		return entries, true

	case map[string]any:
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(obj))
		for _, k := range keys {
			entries = append(entries, Entry{Key: k, Value: obj[k]})
		}
		return entries, true
	}
	return nil, false
}

// IsObject reports whether v is an object value.
func IsObject(v any) bool {
	switch obj := v.(type) {
	case *Object:
		return obj != nil
	case map[string]any:
		return true
	}
	return false
}

// Lookup returns the value stored under key in an object value.
func Lookup(v any, key string) (any, bool) {
	switch obj := v.(type) {
	case *Object:
		if obj == nil {
			return nil, false
		}
		return obj.Get(key)
	case map[string]any:
		val, ok := obj[key]
		return val, ok
	}
	return nil, false
}

// Number converts any Go numeric value (and json.Number) to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN(), false
		}
		return f, true
	}
	return 0, false
}

// FromAny normalises a value produced by encoding/json, YAML decoders or
// hand-built literals into the model used by this package: plain maps become
// *Object with sorted keys and numbers become float64.
func FromAny(v any) any {
	return fromAny(v, 0)
}

func fromAny(v any, depth int) any {
	if depth > MaxDepth {
		return v
	}
	switch val := v.(type) {
	case nil, string, bool:
		return val
	case *Object, map[string]any:
		entries, _ := Entries(val)
		obj := NewObject()
		for _, e := range entries {
			obj.Set(e.Key, fromAny(e.Value, depth+1))
		}
		return obj
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromAny(item, depth+1)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromAny(item, depth+1)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	}
	if n, ok := Number(v); ok {
		return n
	}
	return v
}

// ToAny converts a value into plain encoding/json form (map[string]any,
// []any, float64, ...), the shape expected by libraries such as gojq.
func ToAny(v any) any {
	return toAny(v, 0)
}

func toAny(v any, depth int) any {
	if depth > MaxDepth {
		return v
	}
	switch val := v.(type) {
	case *Object, map[string]any:
		entries, _ := Entries(val)
		out := make(map[string]any, len(entries))
		for _, e := range entries {
			out[e.Key] = toAny(e.Value, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toAny(item, depth+1)
		}
		return out
	}
	return v
}
