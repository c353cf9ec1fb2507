package orderopts

import "strings"

// Kind identifies how an option is presented and how its value is stored.
// The set is closed; the reducer switches over it exhaustively.
type Kind int

const (
	// KindUnknown flags catalog entries whose kind could not be parsed.
	KindUnknown Kind = iota
	// KindDropdown stores a single choice id; the empty id clears it.
	KindDropdown
	// KindIcons stores a single choice id; a new click replaces the old one.
	KindIcons
	// KindCheckboxes stores an ordered list of checked choice ids.
	KindCheckboxes
	// KindNumber stores a numeric quantity.
	KindNumber
	// KindText stores free text, including the empty string.
	KindText
	// KindDate stores a calendar date as YYYY-MM-DD.
	KindDate
)

var kindNames = map[Kind]string{
	KindDropdown:   "dropdown",
	KindIcons:      "icons",
	KindCheckboxes: "checkboxes",
	KindNumber:     "number",
	KindText:       "text",
	KindDate:       "date",
}

// Kinds lists every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindDropdown, KindIcons, KindCheckboxes, KindNumber, KindText, KindDate}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether k is one of the six supported kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Enumerated reports whether options of this kind carry a choice list.
func (k Kind) Enumerated() bool {
	switch k {
	case KindDropdown, KindIcons, KindCheckboxes:
		return true
	default:
		return false
	}
}

// ParseKind converts a catalog spelling into a Kind. Returns KindUnknown for
// unrecognised values.
func ParseKind(value string) Kind {
	needle := strings.ToLower(strings.TrimSpace(value))
	for kind, name := range kindNames {
		if name == needle {
			return kind
		}
	}
	return KindUnknown
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown spellings decode
// to KindUnknown so catalog validation can report them with context.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}
