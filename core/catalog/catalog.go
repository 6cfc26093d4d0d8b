package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

// AllCategories selects every category.
const AllCategories = "all"

var (
	// ErrFetchFailed is returned when a catalog call does not complete
	// with a success status.
	ErrFetchFailed = errors.New("catalog fetch failed")

	// ErrProductNotFound is returned when a product lookup has no match.
	ErrProductNotFound = errors.New("product not found")
)

type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}
