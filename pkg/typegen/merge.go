package typegen

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/usestring/algolia-codegen/pkg/jsonvalue"
)

// DefaultMaxValueSetSize is the largest number of distinct literals kept
// for one field path.
const DefaultMaxValueSetSize = 100

// ValueSetKind is the literal type shared by every member of a value set.
type ValueSetKind string

const (
	ValueSetString ValueSetKind = "string"
	ValueSetNumber ValueSetKind = "number"
)

// ValueSet is the closed set of literals observed for one field path.
type ValueSet struct {
	Kind   ValueSetKind `json:"kind"`
	Values []any        `json:"values"` // strings or float64, first-seen order
}

// ValueSets maps dotted field paths to value sets in discovery order.
type ValueSets struct {
	sets *orderedmap.OrderedMap[string, ValueSet]
}

// NewValueSets returns an empty collection.
func NewValueSets() *ValueSets {
	return &ValueSets{sets: orderedmap.New[string, ValueSet]()}
}

// Get returns the value set recorded for path.
func (v *ValueSets) Get(path string) (ValueSet, bool) {
	if v == nil {
		return ValueSet{}, false
	}
	return v.sets.Get(path)
}

// Paths returns recorded paths in discovery order.
func (v *ValueSets) Paths() []string {
	if v == nil {
		return nil
	}
	out := make([]string, 0, v.sets.Len())
	for pair := v.sets.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Len returns the number of recorded paths.
func (v *ValueSets) Len() int {
	if v == nil {
		return 0
	}
	return v.sets.Len()
}

// MarshalJSON encodes the sets as an object keyed by path.
func (v *ValueSets) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	return v.sets.MarshalJSON()
}

func (v *ValueSets) set(path string, vs ValueSet) {
	v.sets.Set(path, vs)
}

// Merger reconciles several records of one logical entity.
type Merger struct {
	// MaxValueSetSize caps distinct literals per path. Zero means
	// DefaultMaxValueSetSize.
	MaxValueSetSize int
}

// Merge reconciles records with the default value set ceiling.
func Merge(records []*jsonvalue.Object) (*jsonvalue.Object, *ValueSets) {
	return Merger{}.Merge(records)
}

// Merge returns one composite record and the value sets observed across
// records. Zero records yield an empty record; a single record is returned
// unchanged with no value sets.
func (m Merger) Merge(records []*jsonvalue.Object) (*jsonvalue.Object, *ValueSets) {
	sets := NewValueSets()
	switch len(records) {
	case 0:
		return jsonvalue.NewObject(), sets
	case 1:
		return records[0], sets
	}

	values := make([]any, len(records))
	for i, r := range records {
		values[i] = r
	}
	return m.mergeRecords(values, "", sets, 0), sets
}

func (m Merger) ceiling() int {
	if m.MaxValueSetSize > 0 {
		return m.MaxValueSetSize
	}
	return DefaultMaxValueSetSize
}

// mergeRecords merges object values field by field. prefix is the dotted
// path of the records, empty at the root.
func (m Merger) mergeRecords(records []any, prefix string, sets *ValueSets, depth int) *jsonvalue.Object {
	var keys []string
	defined := make(map[string][]any)
	for _, r := range records {
		entries, _ := jsonvalue.Entries(r)
		for _, e := range entries {
			if _, seen := defined[e.Key]; !seen {
				keys = append(keys, e.Key)
			}
			defined[e.Key] = append(defined[e.Key], e.Value)
		}
	}

	merged := jsonvalue.NewObject()
	for _, key := range keys {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		merged.Set(key, m.mergeField(defined[key], path, sets, depth+1))
	}
	return merged
}

func (m Merger) mergeField(values []any, path string, sets *ValueSets, depth int) any {
	if depth > MaxDepth {
		return values[0]
	}

	allArrays, allRecords := true, true
	for _, v := range values {
		if _, ok := v.([]any); !ok {
			allArrays = false
		}
		if !jsonvalue.IsObject(v) {
			allRecords = false
		}
	}

	switch {
	case allArrays:
		arrays := make([][]any, len(values))
		for i, v := range values {
			arrays[i] = v.([]any)
		}
		return m.mergeArrays(arrays, path, sets)
	case allRecords:
		return m.mergeRecords(values, path, sets, depth)
	}

	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return values[0]
}

// mergeArrays flattens arrays, dropping deep-equal duplicates while keeping
// first-seen order, and records a value set when every element is a string
// or every element is a number.
func (m Merger) mergeArrays(arrays [][]any, path string, sets *ValueSets) []any {
	union := make([]any, 0)
	buckets := make(map[uint64][][]byte)

	total := 0
	allStrings, allNumbers := true, true
	for _, arr := range arrays {
		for _, elem := range arr {
			total++
			if _, ok := elem.(string); !ok {
				allStrings = false
			}
			if _, ok := jsonvalue.Number(elem); !ok {
				allNumbers = false
			}

			canon := jsonvalue.Canonical(elem)
			h := xxhash.Sum64(canon)
			if containsBytes(buckets[h], canon) {
				continue
			}
			buckets[h] = append(buckets[h], canon)
			union = append(union, elem)
		}
	}

	if total == 0 || len(union) > m.ceiling() {
		return union
	}
	switch {
	case allStrings:
		sets.set(path, ValueSet{Kind: ValueSetString, Values: append([]any(nil), union...)})
	case allNumbers:
		nums := make([]any, len(union))
		for i, v := range union {
			n, _ := jsonvalue.Number(v)
			if n == 0 {
				n = 0
			}
			nums[i] = n
		}
		sets.set(path, ValueSet{Kind: ValueSetNumber, Values: nums})
	}
	return union
}

func containsBytes(list [][]byte, b []byte) bool {
	for _, item := range list {
		if bytes.Equal(item, b) {
			return true
		}
	}
	return false
}
