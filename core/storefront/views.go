// Package storefront serves the views of the shop: the product list and
// detail, the cart and the checkout summary.
package storefront

import (
	"context"

	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/catalog"
	"github.com/irsalhamdi/storefront/core/checkout"
	"github.com/irsalhamdi/storefront/core/listing"
	"github.com/shopspring/decimal"
)

// Catalog is the part of the remote catalog the views read directly.
type Catalog interface {
	Product(ctx context.Context, id int) (catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
	ProductsByCategory(ctx context.Context, category string) ([]catalog.Product, error)
}

type ProductsView struct {
	listing.View
	CartCount int `json:"cartCount"`
}

type ProductView struct {
	Product   catalog.Product `json:"product"`
	InCart    int             `json:"inCart"`
	CartCount int             `json:"cartCount"`
	Back      string          `json:"back"`
}

type CategoriesView struct {
	Categories []string `json:"categories"`
	CartCount  int      `json:"cartCount"`
}

// CategoryView is one category as listed by the catalog, independent of
// the shopper's listing filters.
type CategoryView struct {
	Category  string            `json:"category"`
	Count     int               `json:"count"`
	Products  []catalog.Product `json:"products"`
	CartCount int               `json:"cartCount"`
	Back      string            `json:"back"`
}

type CartView struct {
	Version      uint64          `json:"version"`
	Items        []checkout.Line `json:"items"`
	Lines        int             `json:"lines"`
	CartCount    int             `json:"cartCount"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"totalDisplay"`
	Empty        bool            `json:"empty"`
}

// cartView renders one snapshot, so every figure in the view agrees.
func cartView(snap cart.Snapshot) CartView {
	lines := make([]checkout.Line, 0, snap.Len())
	for _, it := range snap.Items {
		lines = append(lines, checkout.Line{LineItem: it, Subtotal: it.Subtotal()})
	}

	tot := snap.Total()
	return CartView{
		Version:      snap.Version,
		Items:        lines,
		Lines:        snap.Len(),
		CartCount:    snap.Count(),
		Total:        tot,
		TotalDisplay: cart.Display(tot),
		Empty:        snap.Len() == 0,
	}
}
