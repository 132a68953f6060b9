package typegen

import (
	"strings"
	"unicode"
)

// DependencyGraph records which registered types each declaration body
// mentions. Nodes keep registration order.
type DependencyGraph struct {
	nodes []string
	edges map[string][]string
}

// NewDependencyGraph scans every body in reg for identifiers that name
// another registered type. Self references are ignored and each dependency
// is listed once, in order of first occurrence.
func NewDependencyGraph(reg *Registry) *DependencyGraph {
	g := &DependencyGraph{
		nodes: reg.Names(),
		edges: make(map[string][]string, reg.Len()),
	}
	for _, name := range g.nodes {
		decl, _ := reg.Get(name)
		seen := map[string]bool{name: true}
		for _, word := range identifiers(decl.Body) {
			if seen[word] || !reg.Has(word) {
				continue
			}
			seen[word] = true
			g.edges[name] = append(g.edges[name], word)
		}
	}
	return g
}

// Dependencies returns the types referenced by name.
func (g *DependencyGraph) Dependencies(name string) []string {
	return g.edges[name]
}

// Order returns every node so that dependencies precede their dependents.
// Nodes are visited depth first in registration order; an edge back to a
// node still being visited is skipped, so cycles resolve by visit order.
func (g *DependencyGraph) Order() []string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(g.nodes))
	out := make([]string, 0, len(g.nodes))

	var visit func(name string)
	visit = func(name string) {
		if state[name] != unvisited {
			return
		}
		state[name] = visiting
		for _, dep := range g.edges[name] {
			visit(dep)
		}
		state[name] = done
		out = append(out, name)
	}

	for _, name := range g.nodes {
		visit(name)
	}
	return out
}

func identifiers(body string) []string {
	return strings.FieldsFunc(body, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$'
	})
}
