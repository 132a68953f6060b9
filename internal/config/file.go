package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFileNames are searched, in order, when no config path is given.
var DefaultFileNames = []string{
	"algolia-codegen.yaml",
	"algolia-codegen.yml",
	"algolia-codegen.json",
	"algolia-codegen.toml",
}

// ErrConfigNotFound is returned when no config file exists.
var ErrConfigNotFound = errors.New("config file not found")

// File is an algolia-codegen configuration file.
type File struct {
	Overwrite bool      `json:"overwrite" jsonschema:"description=Replace output files that already exist"`
	Generates Generates `json:"generates"`
}

// Outputs maps output file paths to the generator that produces them.
type Outputs map[string]Generator

// Generates is a single Outputs object or an array of them.
type Generates []Outputs

// UnmarshalJSON accepts either an object or an array of objects.
func (g *Generates) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var single Outputs
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*g = Generates{single}
		return nil
	}
	var many []Outputs
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*g = many
	return nil
}

// JSONSchema describes the object-or-array form.
func (Generates) JSONSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{DoNotReference: true, Anonymous: true}
	gen := r.Reflect(&Generator{})
	gen.Version = ""

	outputs := &jsonschema.Schema{
		Type:                 "object",
		Description:          "Output file path to generator configuration",
		AdditionalProperties: gen,
	}
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			outputs,
			{Type: "array", Items: outputs},
		},
	}
}

// Generator configures one output file.
type Generator struct {
	AppID       string   `json:"appId" jsonschema:"description=Algolia application ID"`
	SearchKey   string   `json:"searchKey" jsonschema:"description=Search-only API key"`
	IndexName   string   `json:"indexName" jsonschema:"description=Index to sample"`
	Prefix      string   `json:"prefix,omitempty" jsonschema:"description=Prepended to every generated type name"`
	Postfix     string   `json:"postfix,omitempty" jsonschema:"description=Appended to every generated record type name"`
	Hosts       []Host   `json:"hosts,omitempty" validate:"omitempty,dive"`
	Timeout     *Timeout `json:"timeout,omitempty"`
	HitsPerPage int      `json:"hitsPerPage,omitempty" validate:"omitempty,min=1,max=1000" jsonschema:"minimum=1,maximum=1000"`
	Transform   string   `json:"transform,omitempty" jsonschema:"description=jq filter applied to every fetched hit"`
	Enums       bool     `json:"enums,omitempty" jsonschema:"description=Render closed value sets as literal unions"`
}

// Host is a custom Algolia endpoint.
type Host struct {
	URL      string `json:"url" validate:"required" jsonschema:"description=Host without scheme, e.g. my-app-dsn.algolia.net"`
	Accept   string `json:"accept" validate:"oneof=read write readWrite" jsonschema:"enum=read,enum=write,enum=readWrite"`
	Protocol string `json:"protocol" validate:"oneof=https http" jsonschema:"enum=https,enum=http"`
	Port     int    `json:"port,omitempty" validate:"omitempty,min=1,max=65535" jsonschema:"minimum=1,maximum=65535"`
}

// Timeout holds per-attempt timeouts in milliseconds.
type Timeout struct {
	Connect int `json:"connect,omitempty" validate:"omitempty,min=1" jsonschema:"minimum=1"`
	Request int `json:"request,omitempty" validate:"omitempty,min=1" jsonschema:"minimum=1"`
}

// ConnectTimeout returns the connect timeout, or zero when unset.
func (g Generator) ConnectTimeout() time.Duration {
	if g.Timeout == nil {
		return 0
	}
	return time.Duration(g.Timeout.Connect) * time.Millisecond
}

// RequestTimeout returns the request timeout, or zero when unset.
func (g Generator) RequestTimeout() time.Duration {
	if g.Timeout == nil {
		return 0
	}
	return time.Duration(g.Timeout.Request) * time.Millisecond
}

// Target is one output file and its generator.
type Target struct {
	Path      string
	Generator Generator
}

// Targets lists outputs in array order; paths within one object are sorted.
func (f *File) Targets() []Target {
	var out []Target
	for _, outputs := range f.Generates {
		paths := make([]string, 0, len(outputs))
		for p := range outputs {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			out = append(out, Target{Path: p, Generator: outputs[p]})
		}
	}
	return out
}

// ValidationError lists every problem found in a config file.
type ValidationError struct {
	File     string
	Problems []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid config file %s:", e.File)
	for _, p := range e.Problems {
		b.WriteString("\n  - " + p)
	}
	return b.String()
}

// Find returns the first default config file present in dir.
func Find(dir string) (string, error) {
	for _, name := range DefaultFileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrConfigNotFound, dir, strings.Join(DefaultFileNames, ", "))
}

// LoadFile reads, expands and validates the config file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseFile(path, data)
}

// ParseFile decodes data according to the extension of name. Unknown
// extensions are decoded as YAML, which also accepts JSON.
func ParseFile(name string, data []byte) (*File, error) {
	var doc any
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		err = json.Unmarshal(data, &doc)
	case ".toml":
		var m map[string]any
		err = toml.Unmarshal(data, &m)
		doc = m
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding config file %s: %w", name, err)
	}

	normalized, err := json.Marshal(expandEnv(doc))
	if err != nil {
		return nil, fmt.Errorf("normalizing config file %s: %w", name, err)
	}

	if problems := validateDocument(normalized); len(problems) > 0 {
		return nil, &ValidationError{File: name, Problems: problems}
	}

	var f File
	if err := json.Unmarshal(normalized, &f); err != nil {
		return nil, fmt.Errorf("decoding config file %s: %w", name, err)
	}
	if problems := validateStruct(&f); len(problems) > 0 {
		return nil, &ValidationError{File: name, Problems: problems}
	}
	return &f, nil
}

// expandEnv replaces ${VAR} and $VAR in every string value.
func expandEnv(v any) any {
	switch val := v.(type) {
	case string:
		return os.ExpandEnv(val)
	case map[string]any:
		for k, item := range val {
			val[k] = expandEnv(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = expandEnv(item)
		}
		return val
	}
	return v
}
