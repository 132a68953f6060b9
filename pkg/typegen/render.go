package typegen

import (
	"fmt"
	"strings"
)

const headerTemplate = `/**
 * Generated TypeScript types for Algolia index: %s
 * This file is auto-generated. Do not edit manually.
 */
`

// render writes the header, the shared generic if used, and every
// declaration in order, separated by blank lines.
func render(e *Engine, indexName string, order []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, headerTemplate, indexName)

	if e.UsesIDValue() {
		b.WriteString("\n")
		b.WriteString(idValueDeclaration(e.IDValueName()))
	}

	reg := e.Registry()
	for _, name := range order {
		decl, ok := reg.Get(name)
		if !ok {
			continue
		}
		b.WriteString("\n/**\n * " + decl.Summary + "\n */\n")
		b.WriteString(decl.Body)
		b.WriteString("\n")
	}
	return b.String()
}

func idValueDeclaration(name string) string {
	return "export type " + name + "<T = string> = {\n  id: string;\n  value: T;\n};\n"
}
