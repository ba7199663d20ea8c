package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backoffice/internal/catalog"
)

type cartTestContext struct {
	store *Store
	items map[int64]catalog.Item
}

func (c *cartTestContext) reset() {
	c.store = NewStore()
	c.items = map[int64]catalog.Item{}
}

func (c *cartTestContext) anItemPricedWithStock(id int64, price int64, stock int) error {
	c.items[id] = catalog.Item{
		ID:        id,
		Name:      fmt.Sprintf("item %d", id),
		UnitPrice: decimal.NewFromInt(price),
		Stock:     stock,
		Category:  catalog.FallbackCategory,
	}
	return nil
}

func (c *cartTestContext) iAddItemToTheCart(id int64) error {
	item, ok := c.items[id]
	if !ok {
		return fmt.Errorf("unknown item %d", id)
	}
	c.store.Add(item, 1)
	return nil
}

func (c *cartTestContext) iIncrementItemTimes(id int64, times int) error {
	for i := 0; i < times; i++ {
		c.store.Increment(id)
	}
	return nil
}

func (c *cartTestContext) iDecrementItemTimes(id int64, times int) error {
	for i := 0; i < times; i++ {
		c.store.Decrement(id)
	}
	return nil
}

func (c *cartTestContext) theCatalogNowListsItemWithStock(id int64, stock int) error {
	item, ok := c.items[id]
	if !ok {
		return fmt.Errorf("unknown item %d", id)
	}
	item.Stock = stock
	c.items[id] = item
	items := make([]catalog.Item, 0, len(c.items))
	for _, it := range c.items {
		items = append(items, it)
	}
	c.store.Sync(items)
	return nil
}

func (c *cartTestContext) itemHasQuantity(id int64, quantity int) error {
	if got := c.store.Quantity(id); got != quantity {
		return fmt.Errorf("expected quantity %d, got %d", quantity, got)
	}
	return nil
}

func (c *cartTestContext) itemCannotBeIncremented(id int64) error {
	if c.store.CanIncrement(id) {
		return fmt.Errorf("expected item %d to be at its stock", id)
	}
	return nil
}

func (c *cartTestContext) theCartIsEmpty() error {
	if !c.store.IsEmpty() {
		return errors.New("expected an empty cart")
	}
	return nil
}

func (c *cartTestContext) theCartTotalIs(total int64) error {
	got := c.store.Summary().Total
	if !got.Equal(decimal.NewFromInt(total)) {
		return fmt.Errorf("expected total %d, got %s", total, got)
	}
	return nil
}

func (c *cartTestContext) theCartShowsLinesAndUnits(lines, units int) error {
	summary := c.store.Summary()
	if summary.DistinctLines != lines || summary.ItemCount != units {
		return fmt.Errorf("expected %d lines and %d units, got %d and %d", lines, units, summary.DistinctLines, summary.ItemCount)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an item (\d+) priced (\d+) with stock (\d+)$`, tc.anItemPricedWithStock)

	// When steps
	ctx.Step(`^I add item (\d+) to the cart$`, tc.iAddItemToTheCart)
	ctx.Step(`^I increment item (\d+) (\d+) times$`, tc.iIncrementItemTimes)
	ctx.Step(`^I decrement item (\d+) (\d+) times$`, tc.iDecrementItemTimes)
	ctx.Step(`^the catalog now lists item (\d+) with stock (\d+)$`, tc.theCatalogNowListsItemWithStock)

	// Then steps
	ctx.Step(`^item (\d+) has quantity (\d+)$`, tc.itemHasQuantity)
	ctx.Step(`^item (\d+) cannot be incremented$`, tc.itemCannotBeIncremented)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart total is (\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^the cart shows (\d+) lines and (\d+) units$`, tc.theCartShowsLinesAndUnits)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
