// Package typegen infers TypeScript declarations from sample Algolia records.
//
// The pipeline runs in five stages, each freshly allocated per call:
//
//	samples -> Merge -> Engine.Infer -> DependencyGraph.Order -> render
//
// Merge reconciles several records of one index into a single composite
// record and records closed value sets for primitive arrays. The Engine walks
// that record, classifying every value, allocating a name for each nested
// object from its path and registering one interface declaration per name.
// Declarations are then sorted so that every type is emitted after the types
// it references.
//
// # Basic Usage
//
//	src := typegen.GenerateDeclarations(samples, typegen.Config{
//	    IndexName: "products",
//	    Prefix:    "Algolia",
//	})
//
// The package performs no I/O and never fails: every JSON-compatible input
// yields declaration text. Identical inputs, including sample order, always
// produce byte-identical output.
package typegen
