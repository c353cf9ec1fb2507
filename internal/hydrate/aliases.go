package hydrate

// RenameKeys returns a PreHook that moves values from legacy keys to their
// current names. A key already present under its current name wins and the
// legacy key is dropped.
func RenameKeys(aliases map[string]string) PreHook {
	return func(_ Context, payload map[string]any) (map[string]any, error) {
		for legacy, current := range aliases {
			value, ok := payload[legacy]
			if !ok {
				continue
			}
			delete(payload, legacy)
			if _, exists := payload[current]; exists {
				continue
			}
			payload[current] = value
		}
		return payload, nil
	}
}
