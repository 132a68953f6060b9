package jsonvalue

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Canonical returns a deterministic JSON encoding of v in which object keys
// are sorted. Two values are deeply equal exactly when their canonical
// encodings are byte-identical.
func Canonical(v any) []byte {
	var buf bytes.Buffer
	writeCanonical(&buf, v, 0)
	return buf.Bytes()
}

// Fingerprint hashes the canonical encoding of v.
func Fingerprint(v any) uint64 {
	return xxhash.Sum64(Canonical(v))
}

func writeCanonical(buf *bytes.Buffer, v any, depth int) {
	if depth > MaxDepth {
		buf.WriteString("null")
		return
	}
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case string:
		b, _ := json.Marshal(val)
		buf.Write(b)
	case *Object, map[string]any:
		entries, _ := Entries(val)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
		buf.WriteByte('{')
		for i, e := range entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, _ := json.Marshal(e.Key)
			buf.Write(k)
			buf.WriteByte(':')
			writeCanonical(buf, e.Value, depth+1)
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, item, depth+1)
		}
		buf.WriteByte(']')
	default:
		if n, ok := Number(v); ok {
			if n == 0 {
				n = 0 // -0 and 0 are the same value
			}
			buf.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
			return
		}
		b, err := json.Marshal(val)
		if err != nil {
			buf.WriteString("null")
			return
		}
		buf.Write(b)
	}
}
