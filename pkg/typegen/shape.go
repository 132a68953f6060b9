package typegen

import (
	"strconv"
	"strings"
)

// Shape is the inferred structural description of one value.
type Shape struct {
	Type     string  `json:"type"`               // Rendered TypeScript type expression
	Array    bool    `json:"array,omitempty"`    // Value is array-valued
	Optional bool    `json:"optional,omitempty"` // Owning field renders with "?"
	Nullable bool    `json:"nullable,omitempty"` // Source value was an explicit null
	Fields   []Field `json:"fields,omitempty"`   // Record fields in source order
}

// Field is a named child of a record shape.
type Field struct {
	Name  string `json:"name"`
	Shape Shape  `json:"shape"`
}

// Segment is one step of a structural path: either an object key or an
// array element index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path is the ordered list of segments leading from the root record to a value.
type Path []Segment

// Field returns a copy of p extended with an object key.
func (p Path) Field(key string) Path {
	return p.with(Segment{Key: key})
}

// Index returns a copy of p extended with an array element marker.
func (p Path) Index(i int) Path {
	return p.with(Segment{Index: i, IsIndex: true})
}

func (p Path) with(s Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

// Keys returns the object keys of p with array markers stripped.
func (p Path) Keys() []string {
	keys := make([]string, 0, len(p))
	for _, s := range p {
		if !s.IsIndex {
			keys = append(keys, s.Key)
		}
	}
	return keys
}

// Dotted joins the keys of p with dots. It reports false when p passes
// through an array element, since value sets only exist for record fields.
func (p Path) Dotted() (string, bool) {
	for _, s := range p {
		if s.IsIndex {
			return "", false
		}
	}
	return strings.Join(p.Keys(), "."), true
}

func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if s.IsIndex {
			b.WriteString("[" + strconv.Itoa(s.Index) + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
	}
	return b.String()
}

// Declaration is a registered record type.
type Declaration struct {
	Name    string
	Summary string  // One-line description rendered as a JSDoc comment
	Body    string  // "export interface ..." text without the comment
	Fields  []Field // Fields of the first occurrence, in source order
}

// Registry maps synthesized type names to their declarations. Names are
// insertion-ordered and registered at most once; later registrations under
// an existing name are ignored.
type Registry struct {
	names []string
	decls map[string]Declaration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decls: make(map[string]Declaration)}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.decls[name]
	return ok
}

// Register stores d unless its name is already taken. It reports whether d
// was stored.
func (r *Registry) Register(d Declaration) bool {
	if r.Has(d.Name) {
		return false
	}
	r.names = append(r.names, d.Name)
	r.decls[d.Name] = d
	return true
}

// Get returns the declaration registered under name.
func (r *Registry) Get(name string) (Declaration, bool) {
	d, ok := r.decls[name]
	return d, ok
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered declarations.
func (r *Registry) Len() int { return len(r.names) }
