package orderopts

// Event is the raw payload a renderer raises when the user changes an option.
// Value carries the chosen primitive (choice id, free text, number, date);
// Checked is only read for checkbox toggles.
type Event struct {
	Value   any
	Checked bool
}

// Select builds the event for dropdown, icons, number, text and date options.
func Select(value any) Event {
	return Event{Value: value}
}

// Toggle builds the event for a checkbox being checked or unchecked.
func Toggle(choiceID string, checked bool) Event {
	return Event{Value: choiceID, Checked: checked}
}
