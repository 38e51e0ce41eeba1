package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
)

// Cart is the user's in-progress selection of products. Items keep their
// insertion order; at most one item exists per ProductID.
type Cart struct {
	Items     []CartItem      `json:"items"`
	Currency  stripe.Currency `json:"currency"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CartItem is one product's entry in a cart. Name, UnitPrice and Image are
// snapshots taken from the catalog when the item was first added; later
// catalog changes do not alter them.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
	Quantity  int64           `json:"quantity"`
}

func NewCart() *Cart {
	return new(Cart)
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	clone := &Cart{
		Currency:  c.Currency,
		UpdatedAt: c.UpdatedAt,
	}
	if len(c.Items) > 0 {
		clone.Items = make([]CartItem, len(c.Items))
		copy(clone.Items, c.Items)
	}
	return clone
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount sums the quantities of all items.
func (c *Cart) ItemCount() int64 {
	var count int64
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Find returns a pointer into Items for the given product, or nil.
func (c *Cart) Find(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
