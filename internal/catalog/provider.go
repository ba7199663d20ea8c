package catalog

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

type productLister interface {
	ListProducts(ctx context.Context) ([]pharmacyapi.Product, error)
}

// Provider fetches the catalog and keeps the last good snapshot.
type Provider struct {
	products productLister
	logg     *logger.Logger

	mu    sync.RWMutex
	items []Item
	byID  map[int64]Item
}

// NewProvider builds a catalog provider over the products endpoint.
func NewProvider(products productLister, logg *logger.Logger) (*Provider, error) {
	if products == nil {
		return nil, fmt.Errorf("product lister required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Provider{
		products: products,
		logg:     logg,
		byID:     map[int64]Item{},
	}, nil
}

// Refresh refetches the catalog. Products without an id or with a negative
// price are skipped and logged, negative stock reads as out of stock. A
// failed fetch keeps the previous snapshot.
func (p *Provider) Refresh(ctx context.Context) ([]Item, error) {
	products, err := p.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(products))
	byID := make(map[int64]Item, len(products))
	var skipped error
	for _, product := range products {
		item := FromProduct(product)
		if item.Stock < 0 {
			item.Stock = 0
		}
		if err := validateItem(item); err != nil {
			skipped = multierr.Append(skipped, err)
			continue
		}
		if _, dup := byID[item.ID]; dup {
			skipped = multierr.Append(skipped, fmt.Errorf("product %d listed twice", item.ID))
			continue
		}
		items = append(items, item)
		byID[item.ID] = item
	}
	if skipped != nil {
		logCtx := p.logg.WithField(ctx, "skipped", len(multierr.Errors(skipped)))
		p.logg.Warn(logCtx, fmt.Sprintf("catalog refresh skipped products: %v", skipped))
	}

	p.mu.Lock()
	p.items = items
	p.byID = byID
	p.mu.Unlock()

	return cloneItems(items), nil
}

func validateItem(item Item) error {
	switch {
	case item.ID <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q has no id", item.Name))
	case item.UnitPrice.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %d has a negative price", item.ID))
	}
	return nil
}

// Items returns the current snapshot in catalog order.
func (p *Provider) Items() []Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneItems(p.items)
}

// Lookup finds an item in the current snapshot.
func (p *Provider) Lookup(id int64) (Item, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	item, ok := p.byID[id]
	return item, ok
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
