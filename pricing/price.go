// Package pricing derives order totals from a selection and its catalog.
//
// Prices follow the catalog conventions: "$1,200" or 1200 is a fixed amount,
// "50%" raises the whole order by half. The order total is
//
//	(base + fixed option amounts) * (1 + multipliers)
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidPrice indicates a catalog price that cannot be parsed.
var ErrInvalidPrice = errors.New("pricing: invalid price")

// PriceKind distinguishes fixed amounts from order multipliers.
type PriceKind int

const (
	// Fixed prices add an amount to the order.
	Fixed PriceKind = iota
	// Multiplier prices scale the whole order by Amount (0.5 for "50%").
	Multiplier
)

func (k PriceKind) String() string {
	if k == Multiplier {
		return "multiplier"
	}
	return "fixed"
}

// Price is a parsed catalog price.
type Price struct {
	Kind   PriceKind `json:"kind"`
	Amount float64   `json:"amount"`
}

// IsZero reports whether the price contributes nothing.
func (p Price) IsZero() bool {
	return p.Amount == 0
}

// Times scales the price by n, keeping its kind.
func (p Price) Times(n float64) Price {
	return Price{Kind: p.Kind, Amount: p.Amount * n}
}

// ParsePrice converts a catalog price into a Price. Numbers are fixed
// amounts; strings may carry a "$" prefix, thousands separators, or a "%"
// suffix for multipliers. nil and blank strings are zero.
func ParsePrice(raw any) (Price, error) {
	text, ok := raw.(string)
	if !ok {
		if raw == nil {
			return Price{}, nil
		}
		amount, err := cast.ToFloat64E(raw)
		if err != nil {
			return Price{}, fmt.Errorf("%w: %v", ErrInvalidPrice, raw)
		}
		return Price{Kind: Fixed, Amount: amount}, nil
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Price{}, nil
	}
	kind := Fixed
	if strings.HasSuffix(trimmed, "%") {
		kind = Multiplier
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "%"))
	}
	trimmed = strings.NewReplacer("$", "", ",", "", " ", "").Replace(trimmed)
	amount, err := cast.ToFloat64E(trimmed)
	if err != nil || trimmed == "" {
		return Price{}, fmt.Errorf("%w: %q", ErrInvalidPrice, text)
	}
	if kind == Multiplier {
		amount /= 100
	}
	return Price{Kind: kind, Amount: amount}, nil
}

var printer = message.NewPrinter(language.English)

// FormatPrice renders an amount in dollars with thousands separators, for
// example $1,234.50.
func FormatPrice(amount float64) string {
	if amount < 0 {
		return "-" + printer.Sprintf("$%.2f", -amount)
	}
	return printer.Sprintf("$%.2f", amount)
}
