package openapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	orderopts "github.com/goliatone/go-order-options"
)

type schemaNode struct {
	Type                 string
	Format               string
	Title                string
	Properties           map[string]*schemaNode
	Required             []string
	Items                *schemaNode
	Enum                 []any
	Default              any
	Minimum              *float64
	Maximum              *float64
	MinItems             *int
	UniqueItems          bool
	AdditionalProperties *bool
	formgen              map[string]string
	extensions           map[string]any
}

func newObjectNode() *schemaNode {
	return &schemaNode{
		Type:       "object",
		Properties: map[string]*schemaNode{},
	}
}

func (n *schemaNode) baseMap() map[string]any {
	result := map[string]any{}
	if n.Type != "" {
		result["type"] = n.Type
	}
	if n.Format != "" {
		result["format"] = n.Format
	}
	if n.Title != "" {
		result["title"] = n.Title
	}
	if n.Default != nil {
		result["default"] = n.Default
	}
	if len(n.Enum) > 0 {
		result["enum"] = n.Enum
	}
	if n.Minimum != nil {
		result["minimum"] = *n.Minimum
	}
	if n.Maximum != nil {
		result["maximum"] = *n.Maximum
	}
	if n.MinItems != nil {
		result["minItems"] = *n.MinItems
	}
	if n.UniqueItems {
		result["uniqueItems"] = true
	}
	if n.AdditionalProperties != nil {
		result["additionalProperties"] = *n.AdditionalProperties
	}
	if len(n.formgen) > 0 {
		result["x-formgen"] = orderedStringMap(n.formgen)
	}
	for key, value := range n.extensions {
		result[key] = value
	}
	return result
}

func (n *schemaNode) inlineOpenAPI() map[string]any {
	result := n.baseMap()

	if len(n.Properties) > 0 || n.Type == "object" {
		props := make(map[string]any, len(n.Properties))
		for _, name := range sortedKeys(n.Properties) {
			props[name] = n.Properties[name].inlineOpenAPI()
		}
		result["properties"] = props
	}

	if len(n.Required) > 0 {
		names := append([]string{}, n.Required...)
		sort.Strings(names)
		result["required"] = names
	}

	if n.Items != nil {
		result["items"] = n.Items.inlineOpenAPI()
	}

	return result
}

func (n *schemaNode) ensureFormgen() map[string]string {
	if n.formgen == nil {
		n.formgen = map[string]string{}
	}
	return n.formgen
}

func (n *schemaNode) setExtension(key string, value any) {
	if n.extensions == nil {
		n.extensions = map[string]any{}
	}
	n.extensions[key] = value
}

// Digest identifies structurally identical nodes so the component registry
// can publish them once.
func (n *schemaNode) Digest() string {
	data, err := json.Marshal(n.inlineOpenAPI())
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// buildSelectionGraph describes the selection object accepted for catalog:
// one property per option, required options listed, unknown ids rejected.
func buildSelectionGraph(catalog *orderopts.Catalog) *schemaNode {
	root := newObjectNode()
	closed := false
	root.AdditionalProperties = &closed
	for _, def := range catalog.Definitions() {
		root.Properties[def.ID] = optionNode(def)
		if def.Required {
			root.Required = append(root.Required, def.ID)
		}
	}
	return root
}

func optionNode(def orderopts.Definition) *schemaNode {
	node := &schemaNode{Title: def.Label}
	formgen := node.ensureFormgen()
	if def.Label != "" {
		formgen["label"] = def.Label
	}

	switch def.Kind {
	case orderopts.KindDropdown, orderopts.KindIcons:
		node.Type = "string"
		node.Enum = choiceIDs(def)
		formgen["widget"] = widgetFor(def.Kind)
	case orderopts.KindCheckboxes:
		one := 1
		node.Type = "array"
		node.Items = &schemaNode{Type: "string", Enum: choiceIDs(def)}
		node.MinItems = &one
		node.UniqueItems = true
		formgen["widget"] = widgetFor(def.Kind)
	case orderopts.KindNumber:
		node.Type = "number"
		if def.Limits != nil {
			min, max := def.Limits.Min, def.Limits.Max
			node.Minimum = &min
			node.Maximum = &max
		}
		formgen["widget"] = widgetFor(def.Kind)
	case orderopts.KindDate:
		node.Type = "string"
		node.Format = "date"
		formgen["widget"] = widgetFor(def.Kind)
	default:
		node.Type = "string"
		formgen["widget"] = widgetFor(orderopts.KindText)
	}

	if value, ok := def.DefaultValue(); ok {
		node.Default = value.Raw()
	}
	node.setExtension("x-order-kind", def.Kind.String())
	if def.Price != "" {
		node.setExtension("x-price", def.Price)
	}
	if def.When != "" {
		node.setExtension("x-when", def.When)
	}
	return node
}

func widgetFor(kind orderopts.Kind) string {
	switch kind {
	case orderopts.KindDropdown:
		return "select"
	case orderopts.KindIcons:
		return "icon-picker"
	case orderopts.KindCheckboxes:
		return "checkbox-group"
	case orderopts.KindNumber:
		return "number"
	case orderopts.KindDate:
		return "date"
	default:
		return "text"
	}
}

func choiceIDs(def orderopts.Definition) []any {
	ids := make([]any, 0, len(def.Choices))
	for _, choice := range def.Choices {
		ids = append(ids, choice.ID)
	}
	return ids
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func orderedStringMap(values map[string]string) map[string]any {
	out := make(map[string]any, len(values))
	for _, key := range sortedKeys(values) {
		out[key] = values[key]
	}
	return out
}
