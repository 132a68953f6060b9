package typegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func registryOf(decls ...Declaration) *Registry {
	reg := NewRegistry()
	for _, d := range decls {
		reg.Register(d)
	}
	return reg
}

func TestDependencyGraph_DependencyFirst(t *testing.T) {
	reg := registryOf(
		Declaration{Name: "B", Body: "export interface B {\n  a: A;\n}"},
		Declaration{Name: "A", Body: "export interface A {\n  n: number;\n}"},
	)

	g := NewDependencyGraph(reg)
	assert.Equal(t, []string{"A"}, g.Dependencies("B"))
	assert.Equal(t, []string{"A", "B"}, g.Order())
}

func TestDependencyGraph_Cycle(t *testing.T) {
	reg := registryOf(
		Declaration{Name: "A", Body: "export interface A {\n  b: B;\n}"},
		Declaration{Name: "B", Body: "export interface B {\n  a: A[];\n}"},
		Declaration{Name: "C", Body: "export interface C {\n  x: string;\n}"},
	)

	order := NewDependencyGraph(reg).Order()
	assert.Equal(t, []string{"B", "A", "C"}, order)
}

func TestDependencyGraph_IgnoresSelfAndUnknown(t *testing.T) {
	reg := registryOf(
		Declaration{Name: "Node", Body: "export interface Node {\n  next: Node;\n  other: Missing;\n}"},
	)

	g := NewDependencyGraph(reg)
	assert.Empty(t, g.Dependencies("Node"))
	assert.Equal(t, []string{"Node"}, g.Order())
}

func TestDependencyGraph_MatchesWholeIdentifiers(t *testing.T) {
	reg := registryOf(
		Declaration{Name: "AlgoliaHit", Body: "export interface AlgoliaHit {\n  geo: AlgoliaGeoInfo;\n}"},
		Declaration{Name: "AlgoliaGeo", Body: "export interface AlgoliaGeo {\n  lat: number;\n}"},
		Declaration{Name: "AlgoliaGeoInfo", Body: "export interface AlgoliaGeoInfo {\n  lng: number;\n}"},
	)

	g := NewDependencyGraph(reg)
	assert.Equal(t, []string{"AlgoliaGeoInfo"}, g.Dependencies("AlgoliaHit"))
	assert.Equal(t, []string{"AlgoliaGeoInfo", "AlgoliaHit", "AlgoliaGeo"}, g.Order())
}

func TestDependencyGraph_SummaryNotScanned(t *testing.T) {
	reg := registryOf(
		Declaration{Name: "Hit", Summary: "Hit structure in Algolia mentions Price", Body: "export interface Hit {\n  n: number;\n}"},
		Declaration{Name: "Price", Body: "export interface Price {\n  hit: Hit;\n}"},
	)

	assert.Equal(t, []string{"Hit", "Price"}, NewDependencyGraph(reg).Order())
}
