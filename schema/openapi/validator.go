package openapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	orderopts "github.com/goliatone/go-order-options"
)

// ErrInvalidSelection reports a selection that does not satisfy the catalog
// schema.
var ErrInvalidSelection = errors.New("openapi: selection does not match catalog schema")

const selectionResource = "selection.json"

// Validator checks selections against the schema produced by
// SelectionSchema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the selection schema of catalog.
func NewValidator(catalog *orderopts.Catalog) (*Validator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("openapi: catalog is required")
	}
	data, err := json.Marshal(SelectionSchema(catalog))
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal selection schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(selectionResource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("openapi: add selection schema: %w", err)
	}
	schema, err := compiler.Compile(selectionResource)
	if err != nil {
		return nil, fmt.Errorf("openapi: compile selection schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks sel.
func (v *Validator) Validate(sel orderopts.Selection) error {
	return v.ValidateMap(sel.Map())
}

// ValidateMap checks a raw selection, for example a decoded request body.
func (v *Validator) ValidateMap(raw map[string]any) error {
	if raw == nil {
		raw = map[string]any{}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("openapi: marshal selection: %w", err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("openapi: decode selection: %w", err)
	}
	if err := v.schema.Validate(instance); err != nil {
		var validationErr *jsonschema.ValidationError
		if !errors.As(err, &validationErr) {
			return fmt.Errorf("%w: %v", ErrInvalidSelection, err)
		}
		problems := leafProblems(validationErr, nil)
		return fmt.Errorf("%w:\n%s", ErrInvalidSelection, strings.Join(problems, "\n"))
	}
	return nil
}

func leafProblems(err *jsonschema.ValidationError, out []string) []string {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		return append(out, fmt.Sprintf("- %s: %s", location, err.Message))
	}
	for _, cause := range err.Causes {
		out = leafProblems(cause, out)
	}
	return out
}
