// Package money formats decimal amounts the way the storefront shows them:
// Portuguese (Portugal) conventions with kwanza as the currency.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultSymbol = "Kz"

	decimalSeparator = ","
	groupSeparator   = "\u00a0"
	// pt-PT only groups integer parts of five or more digits.
	minGroupingDigits = 5
)

// Formatter renders amounts with a configurable currency symbol.
type Formatter struct {
	Symbol string
}

// NewFormatter falls back to the kwanza symbol when symbol is blank.
func NewFormatter(symbol string) Formatter {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return Formatter{Symbol: symbol}
}

// Format renders amount as e.g. "2500,00 Kz" or "12 345,68 Kz".
func (f Formatter) Format(amount decimal.Decimal) string {
	symbol := f.Symbol
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return formatLocal(amount) + groupSeparator + symbol
}

// Format renders amount with the default kwanza symbol.
func Format(amount decimal.Decimal) string {
	return NewFormatter(DefaultSymbol).Format(amount)
}

// Parse reads an amount typed by an operator, accepting either separator.
func Parse(value string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(groupSeparator, "", " ", "", DefaultSymbol, "").Replace(strings.TrimSpace(value))
	if strings.Contains(cleaned, decimalSeparator) {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, decimalSeparator, ".", 1)
	}
	return decimal.NewFromString(cleaned)
}

func formatLocal(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	integer, fraction, _ := strings.Cut(fixed, ".")
	if len(integer) >= minGroupingDigits {
		integer = group(integer)
	}

	out := integer + decimalSeparator + fraction
	if negative && strings.Trim(out, "0,"+groupSeparator) != "" {
		out = "-" + out
	}
	return out
}

func group(digits string) string {
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
