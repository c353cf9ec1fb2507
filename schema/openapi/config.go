package openapi

import (
	"strings"
)

// generatorConfig describes the order options endpoint: one path carrying a
// write operation (the selection as request body) and, optionally, a GET
// that returns the stored selection.
type generatorConfig struct {
	openAPIVersion string
	info           openapiInfo
	path           string
	write          operationConfig
	read           operationConfig
	tags           []string
	contentType    string
	responses      map[string]responseConfig
	rootComponent  string
}

type openapiInfo struct {
	Title       string
	Version     string
	Description string
}

type operationConfig struct {
	Method      string
	OperationID string
	Summary     string
}

type responseConfig struct {
	Description string
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		openAPIVersion: "3.0.3",
		info: openapiInfo{
			Title:   "Order Options",
			Version: "1.0.0",
		},
		path: "/orders/{orderId}/options",
		write: operationConfig{
			Method:      "put",
			OperationID: "updateOrderOptions",
			Summary:     "Replace the option selection of an order",
		},
		read: operationConfig{
			Method:      "get",
			OperationID: "getOrderOptions",
			Summary:     "Read the option selection of an order",
		},
		tags:        []string{"orders"},
		contentType: "application/json",
		responses: map[string]responseConfig{
			"204": {Description: "Selection stored"},
			"422": {Description: "Selection does not match the catalog"},
		},
		rootComponent: "OrderSelection",
	}
}

// GeneratorOption configures the OpenAPI generator behaviour.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default: 3.0.3).
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version != "" {
			cfg.openAPIVersion = version
		}
	}
}

// InfoOption configures optional fields on the OpenAPI info section.
type InfoOption func(*openapiInfo)

// WithInfoDescription sets the info description.
func WithInfoDescription(description string) InfoOption {
	return func(info *openapiInfo) {
		info.Description = description
	}
}

// WithInfo configures the info block. Empty strings keep the defaults.
func WithInfo(title, version string, opts ...InfoOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.info.Title = title
		}
		if version != "" {
			cfg.info.Version = version
		}
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.info)
			}
		}
	}
}

// OperationOption configures optional operation metadata.
type OperationOption func(*operationConfig)

// WithOperationSummary sets the operation summary.
func WithOperationSummary(summary string) OperationOption {
	return func(operation *operationConfig) {
		operation.Summary = summary
	}
}

// WithOperation configures the endpoint path and the write operation that
// receives the selection. Empty inputs keep the defaults.
func WithOperation(path, method, operationID string, opts ...OperationOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		if path != "" {
			cfg.path = path
		}
		if method != "" {
			cfg.write.Method = strings.ToLower(method)
		}
		if operationID != "" {
			cfg.write.OperationID = operationID
		}
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.write)
			}
		}
	}
}

// WithReadOperation renames the GET operation returning the stored
// selection. An empty operationID leaves it out of the document.
func WithReadOperation(operationID string, opts ...OperationOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.read.OperationID = operationID
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.read)
			}
		}
	}
}

// WithTags replaces the tags attached to every operation.
func WithTags(tags ...string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.tags = nil
		for _, tag := range tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				cfg.tags = append(cfg.tags, tag)
			}
		}
	}
}

// WithContentType sets the media type of the selection payload.
func WithContentType(contentType string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if contentType != "" {
			cfg.contentType = contentType
		}
	}
}

// ResponseOption configures additional response metadata.
type ResponseOption func(*responseConfig)

// WithResponse registers or overrides a write operation response.
func WithResponse(status, description string, opts ...ResponseOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		if status == "" {
			return
		}
		if cfg.responses == nil {
			cfg.responses = map[string]responseConfig{}
		}
		resp := cfg.responses[status]
		if description != "" {
			resp.Description = description
		}
		for _, opt := range opts {
			if opt != nil {
				opt(&resp)
			}
		}
		cfg.responses[status] = resp
	}
}

// WithRootComponent publishes the selection schema under components with the
// provided name (default OrderSelection). An empty name inlines it.
func WithRootComponent(name string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.rootComponent = name
	}
}
