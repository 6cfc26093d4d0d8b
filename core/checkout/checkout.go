package checkout

import (
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/random"
	"github.com/shopspring/decimal"
)

// ErrEmptyCart is returned when there is nothing to check out.
var ErrEmptyCart = errors.New("no items to checkout")

const referenceLength = 12

type Line struct {
	cart.LineItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Summary is the order handed off to checkout. Amounts keep full
// precision; the Display fields are rounded to cents.
type Summary struct {
	Reference       string          `json:"reference"`
	CartVersion     uint64          `json:"cartVersion"`
	Items           []Line          `json:"items"`
	ItemCount       int             `json:"itemCount"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	SubtotalDisplay string          `json:"subtotalDisplay"`
	ShippingDisplay string          `json:"shippingDisplay"`
	TotalDisplay    string          `json:"totalDisplay"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Summarize builds the order summary of snap. Shipping is always free.
func Summarize(snap cart.Snapshot, now time.Time) (Summary, error) {
	if snap.Len() == 0 {
		return Summary{}, ErrEmptyCart
	}

	ref, err := random.StringSecure(referenceLength)
	if err != nil {
		return Summary{}, fmt.Errorf("generating checkout reference: %w", err)
	}

	lines := make([]Line, 0, snap.Len())
	for _, it := range snap.Items {
		lines = append(lines, Line{LineItem: it, Subtotal: it.Subtotal()})
	}

	sub := snap.Total()
	ship := decimal.Zero
	tot := sub.Add(ship)

	return Summary{
		Reference:       ref,
		CartVersion:     snap.Version,
		Items:           lines,
		ItemCount:       snap.Count(),
		Subtotal:        sub,
		Shipping:        ship,
		Total:           tot,
		SubtotalDisplay: cart.Display(sub),
		ShippingDisplay: "Free",
		TotalDisplay:    cart.Display(tot),
		CreatedAt:       now.UTC(),
	}, nil
}
