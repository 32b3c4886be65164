// Package money rounds and formats decimal amounts per ISO 4217 currency.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var ErrInvalidCurrency = errors.New("invalid currency")

var symbols = map[string]string{
	"USD": "$",
	"CAD": "$",
	"AUD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"CHF": "CHF ",
}

// DisplayOptions tweaks Format output.
type DisplayOptions struct {
	WithCurrency bool // append the ISO code: "$10.00 USD"
	SymbolAfter  bool // "10.00 $"
	HideCents    bool // "$10"
}

// ValidateCurrency normalizes code to its upper-case ISO form.
func ValidateCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return unit.String(), nil
}

// Scale is the number of minor-unit digits of the currency (2 for USD, 0 for JPY).
// Unknown codes use 2.
func Scale(code string) int32 {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// Round rounds half away from zero to the currency's minor unit.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(Scale(code))
}

// Format renders amount the way a storefront displays it, e.g. "$1,234.50" or "¥1,000".
func Format(amount decimal.Decimal, code string) string {
	return FormatWith(amount, code, DisplayOptions{})
}

func FormatWith(amount decimal.Decimal, code string, opts DisplayOptions) string {
	code = strings.ToUpper(code)
	scale := Scale(code)
	if opts.HideCents {
		scale = 0
	}

	rounded := amount.Round(scale)
	negative := rounded.IsNegative()
	digits := rounded.Abs().StringFixed(scale)

	intPart, frac, _ := strings.Cut(digits, ".")
	number := groupThousands(intPart)
	if frac != "" {
		number += "." + frac
	}

	symbol, ok := symbols[code]
	if !ok {
		symbol = code + " "
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	if opts.SymbolAfter {
		b.WriteString(number)
		b.WriteByte(' ')
		b.WriteString(strings.TrimSpace(symbol))
	} else {
		b.WriteString(symbol)
		b.WriteString(number)
	}
	if opts.WithCurrency {
		b.WriteByte(' ')
		b.WriteString(code)
	}
	return b.String()
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Sum adds amounts starting from zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
