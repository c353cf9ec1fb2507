// Package layering overlays raw selection maps. It is used to compute the
// effective selection of an order: what the user chose, falling back to the
// catalog defaults for options left untouched.
package layering

// Merge composes layers ordered from strongest to weakest and returns a new
// map. Keys present in a stronger layer win; nested maps are merged key by
// key; lists and scalars are replaced as a whole. Inputs are never mutated
// and the result shares no slices or maps with them.
func Merge(layers ...map[string]any) map[string]any {
	merged := map[string]any{}
	for i := len(layers) - 1; i >= 0; i-- {
		for key, value := range layers[i] {
			merged[key] = mergeValue(value, merged[key])
		}
	}
	return merged
}

// Effective overlays selection on defaults.
func Effective(selection, defaults map[string]any) map[string]any {
	return SelectionOverDefaults(selection, defaults, "").Merge()
}

func mergeValue(strong, weak any) any {
	strongMap, ok := strong.(map[string]any)
	if !ok {
		return Clone(strong)
	}
	weakMap, ok := weak.(map[string]any)
	if !ok {
		return Clone(strongMap)
	}
	return Merge(strongMap, weakMap)
}

// Clone deep copies the JSON-like shapes a selection can hold: maps, lists
// of strings or values, and scalars.
func Clone(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		if typed == nil {
			return typed
		}
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = Clone(item)
		}
		return out
	case []any:
		if typed == nil {
			return typed
		}
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = Clone(item)
		}
		return out
	case []string:
		if typed == nil {
			return typed
		}
		return append([]string{}, typed...)
	default:
		return value
	}
}
