package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

type stubLister struct {
	products []pharmacyapi.Product
	err      error
	calls    int
}

func (s *stubLister) ListProducts(context.Context) ([]pharmacyapi.Product, error) {
	s.calls++
	return s.products, s.err
}

func product(id int64, name string, price int64, stock int, category string) pharmacyapi.Product {
	p := pharmacyapi.Product{PKProduct: id, Name: name, Price: decimal.NewFromInt(price), Stock: stock}
	if category != "" {
		p.ProductCategory = &pharmacyapi.ProductCategory{Name: category}
	}
	return p
}

func TestFromProductFallsBackToOutros(t *testing.T) {
	item := FromProduct(product(1, "Gaze", 100, 2, ""))
	assert.Equal(t, FallbackCategory, item.Category)
	assert.True(t, item.InStock())
}

func TestOrderOptionsFiltersAndGroups(t *testing.T) {
	items := []Item{
		FromProduct(product(1, "Paracetamol", 1000, 3, "Analgésicos")),
		FromProduct(product(2, "Gaze", 100, 0, "Curativos")),
		FromProduct(product(3, "Ibuprofeno", 800, 1, "Analgésicos")),
		FromProduct(product(4, "Álcool", 300, 5, "")),
	}

	groups := OrderOptions(items)
	require.Len(t, groups, 2)
	assert.Equal(t, "Analgésicos", groups[0].Category)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, FallbackCategory, groups[1].Category)
	assert.Equal(t, int64(4), groups[1].Items[0].ID)
}

func TestProviderRefreshSkipsMalformedProducts(t *testing.T) {
	bad := product(5, "Sem preço", -1, 2, "")
	lister := &stubLister{products: []pharmacyapi.Product{
		product(1, "Paracetamol", 1000, 3, "Analgésicos"),
		product(0, "Sem id", 10, 1, ""),
		bad,
		product(6, "Stock negativo", 10, -4, ""),
		product(1, "Duplicado", 1, 1, ""),
	}}
	provider, err := NewProvider(lister, nil)
	require.NoError(t, err)

	items, err := provider.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Paracetamol", items[0].Name)
	assert.Equal(t, 0, items[1].Stock)

	found, ok := provider.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "Paracetamol", found.Name)
	_, ok = provider.Lookup(5)
	assert.False(t, ok)
}

func TestProviderKeepsSnapshotOnFailure(t *testing.T) {
	lister := &stubLister{products: []pharmacyapi.Product{product(1, "Paracetamol", 1000, 3, "")}}
	provider, err := NewProvider(lister, nil)
	require.NoError(t, err)
	_, err = provider.Refresh(context.Background())
	require.NoError(t, err)

	lister.err = errors.New("boom")
	_, err = provider.Refresh(context.Background())
	require.Error(t, err)
	assert.Len(t, provider.Items(), 1)
	assert.Equal(t, 2, lister.calls)
}

func TestItemsReturnsCopy(t *testing.T) {
	lister := &stubLister{products: []pharmacyapi.Product{product(1, "Paracetamol", 1000, 3, "")}}
	provider, _ := NewProvider(lister, nil)
	_, _ = provider.Refresh(context.Background())

	items := provider.Items()
	items[0].Stock = 99
	assert.Equal(t, 3, provider.Items()[0].Stock)
}

func TestNewProviderRequiresLister(t *testing.T) {
	_, err := NewProvider(nil, nil)
	assert.Error(t, err)
}
