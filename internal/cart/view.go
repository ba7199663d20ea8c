package cart

import (
	"fmt"

	"github.com/angelmondragon/pharmacy-backoffice/internal/catalog"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/money"
)

const (
	OutOfStockLabel = "Fora de estoque"
	EmptyCartLabel  = "Nenhum produto no carrinho!"
	EmptyShelfLabel = "Sem dados para mostrar!"
	CartTitle       = "Meu Carrinho"
)

// Control is a quantity button on a product card or cart line.
type Control int

const (
	ControlIncrement Control = iota
	ControlDecrement
)

// Press applies a control for item. Incrementing an item not yet in the cart
// adds one unit, which is how the storefront basket button behaves.
func Press(store *Store, item catalog.Item, control Control) bool {
	switch control {
	case ControlIncrement:
		if store.Quantity(item.ID) == 0 {
			return store.Add(item, 1)
		}
		return store.Increment(item.ID)
	case ControlDecrement:
		return store.Decrement(item.ID)
	default:
		return false
	}
}

// LineView is the rendered state of one cart line.
type LineView struct {
	ItemID       int64
	Name         string
	Quantity     int
	UnitPrice    string
	Subtotal     string
	Availability string
	CanIncrement bool
	CanDecrement bool
}

// NewLineView renders line with f.
func NewLineView(line Line, f money.Formatter) LineView {
	return LineView{
		ItemID:       line.Item.ID,
		Name:         line.Item.Name,
		Quantity:     line.Quantity,
		UnitPrice:    f.Format(line.Item.UnitPrice),
		Subtotal:     f.Format(line.Subtotal()),
		Availability: Availability(line.Item.Stock),
		CanIncrement: line.Quantity < line.Item.Stock,
		CanDecrement: line.Quantity > 0,
	}
}

// Availability reads "(1 disponível)" or "(N disponíveis)".
func Availability(stock int) string {
	if stock == 1 {
		return "(1 disponível)"
	}
	return fmt.Sprintf("(%d disponíveis)", stock)
}

// ProductCard is the rendered state of one storefront product.
type ProductCard struct {
	Item       catalog.Item
	Price      string
	Quantity   int
	OutOfStock bool
	// ShowBasket is true when the item is sellable but not yet in the cart.
	ShowBasket   bool
	CanIncrement bool
	Badge        string
}

// ProductCards renders the storefront grid against the cart.
func ProductCards(items []catalog.Item, store *Store, f money.Formatter) []ProductCard {
	cards := make([]ProductCard, 0, len(items))
	for _, item := range items {
		quantity := store.Quantity(item.ID)
		card := ProductCard{
			Item:     item,
			Price:    f.Format(item.UnitPrice),
			Quantity: quantity,
		}
		switch {
		case !item.InStock():
			card.OutOfStock = true
			card.Badge = OutOfStockLabel
		case quantity == 0:
			card.ShowBasket = true
			card.CanIncrement = true
		default:
			card.CanIncrement = quantity < item.Stock
		}
		cards = append(cards, card)
	}
	return cards
}

// View is the rendered cart drawer.
type View struct {
	Title           string
	Badge           string
	Lines           []LineView
	Empty           bool
	EmptyMessage    string
	Total           string
	CheckoutEnabled bool
}

// Render snapshots the cart for display.
func Render(store *Store, f money.Formatter) View {
	lines := store.Lines()
	summary := Summarize(lines)
	view := View{
		Title:           CartTitle,
		Badge:           summary.Badge(),
		Lines:           make([]LineView, 0, len(lines)),
		Empty:           len(lines) == 0,
		Total:           summary.FormatTotal(f),
		CheckoutEnabled: len(lines) > 0,
	}
	if view.Empty {
		view.EmptyMessage = EmptyCartLabel
	}
	for _, line := range lines {
		view.Lines = append(view.Lines, NewLineView(line, f))
	}
	return view
}
