package openapi

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type openAPIDocumentBuilder struct {
	config    generatorConfig
	registry  *componentRegistry
	rootNode  *schemaNode
	rootRef   string
	inlineDoc map[string]any
}

func newOpenAPIDocumentBuilder(config generatorConfig, registry *componentRegistry, root *schemaNode) *openAPIDocumentBuilder {
	return &openAPIDocumentBuilder{
		config:   config,
		registry: registry,
		rootNode: root,
	}
}

func (b *openAPIDocumentBuilder) build() (map[string]any, error) {
	if b.rootNode == nil {
		return nil, fmt.Errorf("openapi: root schema node cannot be nil")
	}

	if b.config.rootComponent != "" {
		b.rootRef = b.registry.forceReference(b.config.rootComponent, b.rootNode)
		b.registerDescendants(b.config.rootComponent, b.rootNode)
	} else {
		b.inlineDoc = b.schemaFor(b.rootNode, "Selection")
	}

	document := map[string]any{
		"openapi": b.config.openAPIVersion,
		"info":    b.buildInfo(),
		"paths":   b.buildPaths(),
	}

	if components := b.registry.componentsMap(); components != nil {
		document["components"] = map[string]any{
			"schemas": components,
		}
	}

	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

func (b *openAPIDocumentBuilder) buildInfo() map[string]any {
	info := map[string]any{
		"title":   b.config.info.Title,
		"version": b.config.info.Version,
	}
	if b.config.info.Description != "" {
		info["description"] = b.config.info.Description
	}
	return info
}

func (b *openAPIDocumentBuilder) buildPaths() map[string]any {
	schema := b.selectionSchema()
	params := pathParameters(b.config.path)

	write := b.config.write
	method := strings.ToLower(write.Method)
	if method == "" {
		method = "put"
	}
	responses := make(map[string]any, len(b.config.responses))
	for _, status := range sortedKeys(b.config.responses) {
		responses[status] = map[string]any{
			"description": b.config.responses[status].Description,
		}
	}
	pathItem := map[string]any{
		method: b.operation(write, b.operationID(write, method), params, map[string]any{
			"requestBody": map[string]any{
				"required": true,
				"content":  b.content(schema),
			},
			"responses": responses,
		}),
	}

	read := b.config.read
	if read.OperationID != "" && method != "get" {
		pathItem["get"] = b.operation(read, read.OperationID, params, map[string]any{
			"responses": map[string]any{
				"200": map[string]any{
					"description": "Current selection",
					"content":     b.content(schema),
				},
				"404": map[string]any{"description": "Order not found"},
			},
		})
	}

	return map[string]any{b.config.path: pathItem}
}

func (b *openAPIDocumentBuilder) selectionSchema() map[string]any {
	switch {
	case b.inlineDoc != nil:
		return b.inlineDoc
	case b.rootRef != "":
		return map[string]any{"$ref": b.rootRef}
	default:
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
}

func (b *openAPIDocumentBuilder) content(schema map[string]any) map[string]any {
	return map[string]any{
		b.config.contentType: map[string]any{"schema": schema},
	}
}

func (b *openAPIDocumentBuilder) operation(cfg operationConfig, operationID string, params []any, fields map[string]any) map[string]any {
	operation := map[string]any{"operationId": operationID}
	for key, value := range fields {
		operation[key] = value
	}
	if summary := strings.TrimSpace(cfg.Summary); summary != "" {
		operation["summary"] = summary
	}
	if len(b.config.tags) > 0 {
		operation["tags"] = append([]string{}, b.config.tags...)
	}
	if len(params) > 0 {
		operation["parameters"] = params
	}
	return operation
}

func (b *openAPIDocumentBuilder) operationID(cfg operationConfig, method string) string {
	if cfg.OperationID != "" {
		return cfg.OperationID
	}
	return fmt.Sprintf("%s:%s", method, b.config.path)
}

func (b *openAPIDocumentBuilder) schemaFor(node *schemaNode, nameHint string) map[string]any {
	if node == nil {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}

	if node.Type == "object" || node.Type == "array" {
		if ref := b.registry.register(nameHint, node); ref != "" {
			return map[string]any{"$ref": ref}
		}
	}

	result := node.baseMap()
	if len(node.Properties) > 0 || node.Type == "object" {
		props := make(map[string]any, len(node.Properties))
		for _, key := range sortedKeys(node.Properties) {
			props[key] = b.schemaFor(node.Properties[key], combineComponentName(nameHint, key))
		}
		result["properties"] = props
	}
	if len(node.Required) > 0 {
		required := append([]string{}, node.Required...)
		sort.Strings(required)
		result["required"] = required
	}
	if node.Items != nil {
		result["items"] = b.schemaFor(node.Items, combineComponentName(nameHint, "item"))
	}
	return result
}

func (b *openAPIDocumentBuilder) registerDescendants(nameHint string, node *schemaNode) {
	if node == nil {
		return
	}
	for _, key := range sortedKeys(node.Properties) {
		b.schemaFor(node.Properties[key], combineComponentName(nameHint, key))
	}
	if node.Items != nil {
		b.schemaFor(node.Items, combineComponentName(nameHint, "item"))
	}
}

var pathParameterRegexp = regexp.MustCompile(`\{([^{}/]+)\}`)

// pathParameters declares every templated segment of path, which OpenAPI
// requires for the document to be valid.
func pathParameters(path string) []any {
	matches := pathParameterRegexp.FindAllStringSubmatch(path, -1)
	params := make([]any, 0, len(matches))
	for _, match := range matches {
		params = append(params, map[string]any{
			"name":     match[1],
			"in":       "path",
			"required": true,
			"schema":   map[string]any{"type": "string"},
		})
	}
	return params
}

func combineComponentName(parts ...string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	if len(filtered) == 0 {
		return "Schema"
	}
	return strings.Join(filtered, "_")
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	openapi, _ := document["openapi"].(string)
	if openapi == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	for pathKey, pathValue := range paths {
		pathItem, _ := pathValue.(map[string]any)
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			if _, ok := operation["operationId"].(string); !ok {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			if method != "get" {
				requestBody, _ := operation["requestBody"].(map[string]any)
				if requestBody == nil {
					return fmt.Errorf("openapi: operation %s %s missing requestBody", method, pathKey)
				}
				if content, _ := requestBody["content"].(map[string]any); len(content) == 0 {
					return fmt.Errorf("openapi: operation %s %s requestBody missing content", method, pathKey)
				}
			}
			if _, ok := operation["responses"].(map[string]any); !ok {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
		}
	}
	return nil
}
