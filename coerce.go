package orderopts

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DateLayout is the canonical representation stored for date options.
const DateLayout = "2006-01-02"

// numberText is the text a browser number input submits: decimal digits with
// an optional fraction and exponent ("3", "-2.5", ".5", "1e3").
var numberText = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?$`)

// CoerceNumber converts raw input from a number field into a float64. Strings
// are trimmed and must be plain decimal text, exponents included; hex floats,
// digit separators, a leading "+" and spelled-out "Inf"/"NaN" are rejected.
// Go numeric types and json.Number are converted. Booleans, nil, other
// types, NaN and infinities fail with ErrInvalidNumericInput.
func CoerceNumber(raw any) (float64, error) {
	var (
		number float64
		err    error
	)
	switch typed := raw.(type) {
	case nil:
		return 0, fmt.Errorf("%w: nil", ErrInvalidNumericInput)
	case bool:
		return 0, fmt.Errorf("%w: bool %t", ErrInvalidNumericInput, typed)
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return 0, fmt.Errorf("%w: empty string", ErrInvalidNumericInput)
		}
		if !numberText.MatchString(trimmed) {
			return 0, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidNumericInput, trimmed)
		}
		number, err = cast.ToFloat64E(trimmed)
	case json.Number:
		number, err = typed.Float64()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		number, err = cast.ToFloat64E(typed)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidNumericInput, raw)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumericInput, fmt.Sprint(raw))
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", ErrInvalidNumericInput, number)
	}
	return number, nil
}

// NormalizeDate converts a date picker value into DateLayout. It accepts
// time.Time, *time.Time and strings in the usual ISO/RFC layouts; the
// calendar date is taken in the value's own offset. A nil, zero or blank
// input reports ok=false, meaning the selection should be cleared.
func NormalizeDate(raw any) (string, bool, error) {
	switch typed := raw.(type) {
	case nil:
		return "", false, nil
	case time.Time:
		if typed.IsZero() {
			return "", false, nil
		}
		return typed.Format(DateLayout), true, nil
	case *time.Time:
		if typed == nil || typed.IsZero() {
			return "", false, nil
		}
		return typed.Format(DateLayout), true, nil
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return "", false, nil
		}
		parsed, err := cast.ToTimeInDefaultLocationE(trimmed, time.UTC)
		if err != nil {
			return "", false, fmt.Errorf("%w: %q", ErrInvalidDateInput, typed)
		}
		return parsed.Format(DateLayout), true, nil
	default:
		return "", false, fmt.Errorf("%w: unsupported type %T", ErrInvalidDateInput, raw)
	}
}
