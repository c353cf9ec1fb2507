package orderopts

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNumericInput indicates a number option received a value that
	// does not coerce to a finite number.
	ErrInvalidNumericInput = errors.New("orderopts: invalid numeric input")
	// ErrInvalidDateInput indicates a date option received a value that is not
	// a recognisable calendar date.
	ErrInvalidDateInput = errors.New("orderopts: invalid date input")
	// ErrUnknownOptionKind indicates a change event carried a kind outside the
	// supported set. It points at a catalog/configuration mistake.
	ErrUnknownOptionKind = errors.New("orderopts: unknown option kind")
	// ErrInvalidEvent indicates the raw event payload has the wrong shape for
	// the option kind (for example a non-string dropdown value).
	ErrInvalidEvent = errors.New("orderopts: invalid change event")
)

// ChangeError captures which option a rejected change targeted.
type ChangeError struct {
	OptionID string
	Kind     Kind
	Err      error
}

func (e *ChangeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("orderopts: change option=%q kind=%s: %v", e.OptionID, e.Kind, e.Err)
}

func (e *ChangeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapChangeError(optionID string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var changeErr *ChangeError
	if errors.As(err, &changeErr) {
		if changeErr.OptionID == "" {
			changeErr.OptionID = optionID
		}
		return changeErr
	}
	return &ChangeError{OptionID: optionID, Kind: kind, Err: err}
}

// IsRejected reports whether err is one of the change rejections the reducer
// produces. Callers use it to separate "selection did not change" from real
// failures such as storage errors.
func IsRejected(err error) bool {
	return errors.Is(err, ErrInvalidNumericInput) ||
		errors.Is(err, ErrInvalidDateInput) ||
		errors.Is(err, ErrUnknownOptionKind) ||
		errors.Is(err, ErrInvalidEvent)
}
