package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/money"
)

// Summary is derived from the lines on every read and never stored.
type Summary struct {
	Total         decimal.Decimal
	ItemCount     int
	DistinctLines int
}

// Summarize totals lines: the sum of price times quantity, the sum of
// quantities and the number of lines.
func Summarize(lines []Line) Summary {
	summary := Summary{Total: decimal.Zero, DistinctLines: len(lines)}
	for _, line := range lines {
		summary.Total = summary.Total.Add(line.Subtotal())
		summary.ItemCount += line.Quantity
	}
	return summary
}

// FormattedTotal renders the total with the default kwanza formatting.
func (s Summary) FormattedTotal() string {
	return money.Format(s.Total)
}

// FormatTotal renders the total with f.
func (s Summary) FormatTotal(f money.Formatter) string {
	return f.Format(s.Total)
}

// Badge reads "Carrinho (N)" with N distinct lines.
func (s Summary) Badge() string {
	return fmt.Sprintf("Carrinho (%d)", s.DistinctLines)
}
