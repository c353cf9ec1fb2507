package openapi

import (
	"fmt"
	"regexp"
	"strings"
)

// componentRegistry publishes a schema under components.schemas when it is
// forced (the selection root) or when the same structure appears twice, for
// example two options sharing an identical choice list.
type componentRegistry struct {
	entries   map[string]*componentEntry
	usedNames map[string]struct{}
}

type componentEntry struct {
	name   string
	schema map[string]any
	count  int
	force  bool
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{
		entries:   map[string]*componentEntry{},
		usedNames: map[string]struct{}{},
	}
}

func (r *componentRegistry) register(nameHint string, node *schemaNode) string {
	return r.registerInternal(nameHint, node, false)
}

func (r *componentRegistry) forceReference(name string, node *schemaNode) string {
	return r.registerInternal(name, node, true)
}

func (r *componentRegistry) registerInternal(nameHint string, node *schemaNode, force bool) string {
	if node == nil {
		return ""
	}
	digest := node.Digest()
	if digest == "" {
		return ""
	}

	entry, ok := r.entries[digest]
	if !ok {
		entry = &componentEntry{name: r.uniqueName(nameHint)}
		r.entries[digest] = entry
	}
	entry.count++
	entry.force = entry.force || force
	if !entry.published() {
		return ""
	}
	if entry.schema == nil {
		entry.schema = node.inlineOpenAPI()
	}
	return componentRef(entry.name)
}

func (e *componentEntry) published() bool {
	return e.force || e.count >= 2
}

func componentRef(name string) string {
	return fmt.Sprintf("#/components/schemas/%s", name)
}

func (r *componentRegistry) uniqueName(name string) string {
	safe := sanitizeComponentName(name)
	if safe == "" {
		safe = "Schema"
	}
	candidate := safe
	for suffix := 1; ; suffix++ {
		if _, exists := r.usedNames[candidate]; !exists {
			r.usedNames[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s%d", safe, suffix)
	}
}

func (r *componentRegistry) componentsMap() map[string]any {
	out := map[string]any{}
	for _, entry := range r.entries {
		if entry.published() && entry.schema != nil {
			out[entry.name] = entry.schema
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var componentNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeComponentName(name string) string {
	name = strings.Trim(componentNameRegexp.ReplaceAllString(name, "_"), "_")
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}
