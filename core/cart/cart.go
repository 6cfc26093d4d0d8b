package cart

import (
	"github.com/irsalhamdi/storefront/core/catalog"
	"github.com/shopspring/decimal"
)

// Item is the product data copied into the cart when it is added.
type Item struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
}

type LineItem struct {
	Item
	Quantity int `json:"quantity"`
}

// Subtotal is the line's price times its quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ItemFrom snapshots the fields of p a cart line keeps.
func ItemFrom(p catalog.Product) Item {
	return Item{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
	}
}

// Snapshot is one immutable version of a cart. Its Items slice is never
// modified after the snapshot is published.
type Snapshot struct {
	Version uint64
	Items   []LineItem
}

// Total is the sum of price times quantity over every line, at full
// precision.
func (s Snapshot) Total() decimal.Decimal {
	tot := decimal.Zero
	for _, it := range s.Items {
		tot = tot.Add(it.Subtotal())
	}
	return tot
}

// Count is the number of units in the cart.
func (s Snapshot) Count() int {
	var n int
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

func (s Snapshot) Len() int { return len(s.Items) }

func (s Snapshot) Find(id int) (LineItem, bool) {
	if i := s.index(id); i >= 0 {
		return s.Items[i], true
	}
	return LineItem{}, false
}

func (s Snapshot) index(id int) int {
	for i, it := range s.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Display renders an amount with two decimals for presentation.
func Display(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// MaxQuantity is the most units of one product a cart line holds.
const MaxQuantity = 999

type AddItem struct {
	ProductID int `json:"productId" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"max=999"`
}

type QuantityUp struct {
	Quantity *int `json:"quantity" validate:"required,max=999"`
}
