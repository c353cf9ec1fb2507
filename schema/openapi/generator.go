// Package openapi describes order selections as JSON Schema and publishes
// them in an OpenAPI 3 document for the order options endpoint.
package openapi

import (
	"fmt"

	orderopts "github.com/goliatone/go-order-options"
)

// Generator renders the OpenAPI document for one catalog.
type Generator struct {
	catalog *orderopts.Catalog
	config  generatorConfig
}

// NewGenerator constructs a generator for catalog.
func NewGenerator(catalog *orderopts.Catalog, opts ...GeneratorOption) *Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Generator{catalog: catalog, config: cfg}
}

// Generate builds the document. It is safe to call concurrently.
func (g *Generator) Generate() (map[string]any, error) {
	if g == nil || g.catalog == nil {
		return nil, fmt.Errorf("openapi: catalog is required")
	}
	root := buildSelectionGraph(g.catalog)
	return newOpenAPIDocumentBuilder(g.config, newComponentRegistry(), root).build()
}

// SelectionSchema returns the standalone JSON Schema for selections of
// catalog. Each option maps to a property shaped by its kind.
func SelectionSchema(catalog *orderopts.Catalog) map[string]any {
	return buildSelectionGraph(catalog).inlineOpenAPI()
}
