package typegen

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// IDValueName is the unaffixed name of the shared generic used for arrays of
// {id, value} pairs.
const IDValueName = "IdValue"

// Engine infers shapes for one invocation. It owns a fresh Registry and is
// not safe for concurrent use.
type Engine struct {
	cfg       Config
	namer     *Namer
	registry  *Registry
	valueSets *ValueSets

	idValueUsed bool
}

// NewEngine returns an Engine for cfg. sets may be nil; it is only consulted
// when cfg.Enums is true.
func NewEngine(cfg Config, sets *ValueSets) *Engine {
	return &Engine{
		cfg:       cfg,
		namer:     NewNamer(cfg.Prefix, cfg.Postfix),
		registry:  NewRegistry(),
		valueSets: sets,
	}
}

// Registry returns the declarations registered so far.
func (e *Engine) Registry() *Registry { return e.registry }

// Namer returns the name allocator used by e.
func (e *Engine) Namer() *Namer { return e.namer }

// UsesIDValue reports whether any {id, value} array was inferred.
func (e *Engine) UsesIDValue() bool { return e.idValueUsed }

// IDValueName returns the affixed generic name, e.g. "AlgoliaIdValue".
// The postfix is not applied, matching the generic's shared role.
func (e *Engine) IDValueName() string { return e.cfg.Prefix + IDValueName }

// Infer returns the shape of v found at path, registering a declaration for
// every record reached for the first time under its allocated name.
func (e *Engine) Infer(v any, path Path) Shape {
	return e.infer(v, path, len(path))
}

func (e *Engine) infer(v any, path Path, depth int) Shape {
	c := e.classify(v, path, depth)

	switch c.Kind {
	case KindUnknown:
		return Shape{Type: TypeUnknown, Optional: true, Nullable: c.Null}

	case KindPrimitive:
		return Shape{Type: c.Primitive}

	case KindEmptyArray:
		return Shape{Type: TypeUnknown + "[]", Array: true, Optional: true}

	case KindKeyValueArray:
		e.idValueUsed = true
		value := e.infer(c.Value, path.Index(0).Field("value"), depth+2)
		typ := e.IDValueName()
		if value.Type != TypeString {
			typ += "<" + value.Type + ">"
		}
		return Shape{Type: typ + "[]", Array: true}

	case KindHomogeneousArray:
		return Shape{Type: c.Element.Type + "[]", Array: true, Fields: c.Element.Fields}

	case KindUnionArray:
		if len(c.Members) == 1 {
			return Shape{Type: c.Members[0] + "[]", Array: true}
		}
		return Shape{Type: "(" + strings.Join(c.Members, " | ") + ")[]", Array: true}

	case KindRecord:
		name := e.namer.Name(path)
		fields := make([]Field, 0, len(c.Entries))
		for _, entry := range c.Entries {
			child := e.infer(entry.Value, path.Field(entry.Key), depth+1)
			fields = append(fields, Field{Name: entry.Key, Shape: child})
		}
		if !e.registry.Has(name) {
			e.registry.Register(Declaration{
				Name:    name,
				Summary: e.namer.Summary(name),
				Body:    e.interfaceBody(name, fields, path),
				Fields:  fields,
			})
		}
		return Shape{Type: name, Fields: fields}
	}

	return Shape{Type: TypeUnknown, Optional: true}
}

// interfaceBody renders an interface with fields sorted by name.
func (e *Engine) interfaceBody(name string, fields []Field, path Path) string {
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	b.WriteString("export interface " + name + " {\n")
	for _, f := range sorted {
		typ := f.Shape.Type
		if f.Shape.Array && !strings.HasSuffix(typ, "[]") {
			typ += "[]"
		}
		if lit, ok := e.enumType(f, path); ok {
			typ = lit
		}
		if f.Shape.Nullable {
			typ += " | null"
		}
		marker := ""
		if f.Shape.Optional || f.Shape.Nullable {
			marker = "?"
		}
		b.WriteString("  " + propertyName(f.Name) + marker + ": " + typ + ";\n")
	}
	b.WriteString("}")
	return b.String()
}

// enumType renders a primitive array field with a recorded value set as a
// union of its literals.
func (e *Engine) enumType(f Field, path Path) (string, bool) {
	if !e.cfg.Enums || e.valueSets == nil || !f.Shape.Array {
		return "", false
	}
	key, ok := path.Field(f.Name).Dotted()
	if !ok {
		return "", false
	}
	set, ok := e.valueSets.Get(key)
	if !ok || f.Shape.Type != string(set.Kind)+"[]" {
		return "", false
	}
	literals := make([]string, 0, len(set.Values))
	for _, v := range set.Values {
		literals = append(literals, literal(v))
	}
	if len(literals) == 1 {
		return literals[0] + "[]", true
	}
	return "(" + strings.Join(literals, " | ") + ")[]", true
}

func literal(v any) string {
	switch val := v.(type) {
	case string:
		b, _ := json.Marshal(val)
		return string(b)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return TypeUnknown
}

// propertyName quotes keys that are not valid identifiers.
func propertyName(key string) string {
	if isIdentifier(key) {
		return key
	}
	b, _ := json.Marshal(key)
	return string(b)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
