package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

// FallbackCategory labels products that have no category.
const FallbackCategory = "Outros"

// Item is a purchasable product as the storefront sees it. Items are
// immutable snapshots; a refresh replaces them.
type Item struct {
	ID             int64
	Name           string
	UnitPrice      decimal.Decimal
	Stock          int
	Category       string
	Image          string
	Description    string
	ExpirationDate string
}

// InStock reports whether at least one unit can be sold.
func (i Item) InStock() bool {
	return i.Stock > 0
}

// FromProduct maps an API product to an Item.
func FromProduct(p pharmacyapi.Product) Item {
	category := FallbackCategory
	if p.ProductCategory != nil && p.ProductCategory.Name != "" {
		category = p.ProductCategory.Name
	}
	return Item{
		ID:             p.PKProduct,
		Name:           p.Name,
		UnitPrice:      p.Price,
		Stock:          p.Stock,
		Category:       category,
		Image:          p.Image,
		Description:    p.Description,
		ExpirationDate: p.ExpirationDate,
	}
}

// InStock keeps the items that can be sold, preserving order.
func InStock(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.InStock() {
			out = append(out, item)
		}
	}
	return out
}

// Group is one category and its items.
type Group struct {
	Category string
	Items    []Item
}

// GroupByCategory buckets items by category in first-seen order.
func GroupByCategory(items []Item) []Group {
	index := map[string]int{}
	var groups []Group
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = FallbackCategory
		}
		pos, ok := index[category]
		if !ok {
			pos = len(groups)
			index[category] = pos
			groups = append(groups, Group{Category: category})
		}
		groups[pos].Items = append(groups[pos].Items, item)
	}
	return groups
}

// OrderOptions returns the products an order may include: in-stock items
// grouped by category.
func OrderOptions(items []Item) []Group {
	return GroupByCategory(InStock(items))
}
