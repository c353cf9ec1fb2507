// Package catalog loads order option catalogs from JSON or YAML documents.
//
// Documents look like
//
//	options:
//	  - id: transport
//	    kind: dropdown
//	    label: Transport
//	    choices:
//	      - {id: bus, label: Bus, price: 0}
//	      - {id: plane, label: Plane, price: 400}
//
// The field names used by older trip catalogs (type, name, values) are
// accepted and mapped onto kind, label and choices.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	orderopts "github.com/goliatone/go-order-options"
	"github.com/goliatone/go-order-options/internal/hydrate"
	"github.com/goliatone/go-order-options/pricing"
)

//go:embed catalog.schema.json
var schemaDocument []byte

// Format names a catalog encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat indicates a catalog file with an unknown extension.
var ErrUnsupportedFormat = errors.New("catalog: unsupported format")

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// LoadFile reads, validates and decodes the catalog at path.
func LoadFile(path string) (*orderopts.Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return parse(data, format, filepath.Base(path))
}

// Parse validates and decodes a catalog document.
func Parse(data []byte, format Format) (*orderopts.Catalog, error) {
	return parse(data, format, "")
}

func parse(data []byte, format Format, source string) (*orderopts.Catalog, error) {
	document, err := Unmarshal(data, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(document); err != nil {
		return nil, err
	}
	return Decode(source, document)
}

// Unmarshal decodes raw bytes into JSON-compatible values.
func Unmarshal(data []byte, format Format) (map[string]any, error) {
	var document map[string]any
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&document); err != nil {
			return nil, fmt.Errorf("catalog: parse json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("catalog: parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if document == nil {
		return nil, fmt.Errorf("catalog: document is empty")
	}
	return document, nil
}

// Validate checks document against the embedded catalog schema.
func Validate(document map[string]any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	value, err := jsonValue(document)
	if err != nil {
		return fmt.Errorf("catalog: normalise document: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			var messages []string
			collectErrors(validationErr, &messages)
			return fmt.Errorf("catalog: schema validation failed:\n%s", strings.Join(messages, "\n"))
		}
		return fmt.Errorf("catalog: schema validation failed: %w", err)
	}
	return nil
}

// Decode converts a validated document into a Catalog.
func Decode(source string, document map[string]any) (*orderopts.Catalog, error) {
	entries, ok := document["options"].([]any)
	if !ok {
		return nil, fmt.Errorf("catalog: options must be a list, got %T", document["options"])
	}
	decoder := hydrate.NewDecoder[orderopts.Definition](
		hydrate.WithPreHook[orderopts.Definition](hydrate.RenameKeys(optionAliases)),
		hydrate.WithPreHook[orderopts.Definition](normalizePrices(hydrate.RenameKeys(choiceAliases))),
		hydrate.WithPostHook[orderopts.Definition](defaultLabels),
		hydrate.WithUseNumber[orderopts.Definition](),
	)
	definitions := make([]orderopts.Definition, 0, len(entries))
	for i, entry := range entries {
		payload, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("catalog: option %d must be an object, got %T", i, entry)
		}
		def, err := decoder.Decode(hydrate.Context{Source: source, Index: i}, payload)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		definitions = append(definitions, def)
	}
	catalog, err := orderopts.NewCatalog(definitions...)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return catalog, nil
}

var optionAliases = map[string]string{
	"type":   "kind",
	"name":   "label",
	"values": "choices",
}

var choiceAliases = map[string]string{
	"name": "label",
}

// normalizePrices stringifies option prices (so "50%" and 20 share a field)
// and turns choice prices into plain amounts after renaming choice keys with
// renameChoice.
func normalizePrices(renameChoice hydrate.PreHook) hydrate.PreHook {
	return func(ctx hydrate.Context, payload map[string]any) (map[string]any, error) {
		if price, ok := payload["price"]; ok && price != nil {
			if _, isString := price.(string); !isString {
				payload["price"] = fmt.Sprint(price)
			}
		}
		choices, ok := payload["choices"].([]any)
		if !ok {
			return payload, nil
		}
		for i, item := range choices {
			choice, ok := item.(map[string]any)
			if !ok {
				continue
			}
			choice, err := renameChoice(ctx, choice)
			if err != nil {
				return nil, fmt.Errorf("choice %d: %w", i, err)
			}
			price, err := pricing.ParsePrice(choice["price"])
			if err != nil {
				return nil, fmt.Errorf("choice %d: %w", i, err)
			}
			if price.Kind != pricing.Fixed {
				return nil, fmt.Errorf("choice %d: %w: choice prices must be amounts", i, pricing.ErrInvalidPrice)
			}
			choice["price"] = price.Amount
			choices[i] = choice
		}
		return payload, nil
	}
}

// defaultLabels falls back to ids so forms always have something to show.
func defaultLabels(_ hydrate.Context, def *orderopts.Definition) error {
	if def.Label == "" {
		def.Label = def.ID
	}
	for i := range def.Choices {
		if def.Choices[i].Label == "" {
			def.Choices[i].Label = def.Choices[i].ID
		}
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.json", bytes.NewReader(schemaDocument)); err != nil {
		return nil, fmt.Errorf("catalog: add embedded schema: %w", err)
	}
	schema, err := compiler.Compile("catalog.json")
	if err != nil {
		return nil, fmt.Errorf("catalog: compile embedded schema: %w", err)
	}
	return schema, nil
}

func jsonValue(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func collectErrors(err *jsonschema.ValidationError, messages *[]string) {
	if err.InstanceLocation != "" || len(err.Causes) == 0 {
		*messages = append(*messages, fmt.Sprintf("- %s: %s", instanceLocation(err), err.Message))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, messages)
	}
}

func instanceLocation(err *jsonschema.ValidationError) string {
	if err.InstanceLocation == "" {
		return "/"
	}
	return err.InstanceLocation
}
