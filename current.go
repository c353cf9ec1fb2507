package orderopts

// CurrentValue returns what a renderer shows for def: the stored raw value
// when the option was changed, otherwise the empty value for its kind ("" for
// single-value kinds, an empty list for checkboxes, Limits.Min or 0 for
// number). Replaying a placeholder through ReplayEvents would store it for
// number and text, so renderers use RenderEvents, which skips untouched
// options.
func CurrentValue(sel Selection, def Definition) any {
	if value, ok := sel.Get(def.ID); ok {
		return value.Raw()
	}
	switch def.Kind {
	case KindCheckboxes:
		return []string{}
	case KindNumber:
		if def.Limits != nil {
			return def.Limits.Min
		}
		return float64(0)
	default:
		return ""
	}
}

// RenderEvents returns the events a freshly rendered def raises for sel. An
// option the selection does not hold raises none, so rendering never adds
// keys.
func RenderEvents(sel Selection, def Definition) []Event {
	value, ok := sel.Get(def.ID)
	if !ok {
		return nil
	}
	return ReplayEvents(def.Kind, value.Raw())
}

// ReplayEvents returns the change events a freshly rendered option raises to
// reproduce a stored value: one toggle per checked id for checkboxes, a single
// select for every other kind. Feeding them through ApplyChange on a
// selection that already holds the value leaves it unchanged.
func ReplayEvents(kind Kind, current any) []Event {
	if kind != KindCheckboxes {
		return []Event{Select(current)}
	}
	var ids []string
	switch typed := current.(type) {
	case []string:
		ids = typed
	case []any:
		for _, item := range typed {
			if id, ok := item.(string); ok {
				ids = append(ids, id)
			}
		}
	}
	events := make([]Event, 0, len(ids))
	for _, id := range ids {
		events = append(events, Toggle(id, true))
	}
	return events
}
