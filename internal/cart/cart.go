package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Capacity limits for a single shopper's cart.
const (
	MaxDistinctLines = 20
	MaxTotalUnits    = 100
)

var (
	// ErrLimitExceeded rejects an add that would overflow either capacity
	// limit. The cart is left untouched.
	ErrLimitExceeded = errors.New("cart: capacity limit exceeded")
)

type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
	StoreID   string          `json:"store_id"`
}

// Cart holds a shopper's pending lines. Zero value is an empty cart.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add puts one unit of p into the cart. An existing line is incremented,
// capped at its stock. A new line is appended unless doing so would exceed
// MaxDistinctLines distinct lines or MaxTotalUnits aggregate units.
func (c *Cart) Add(p Line) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ProductID {
			if c.Lines[i].Quantity < c.Lines[i].Stock {
				if c.TotalUnits() >= MaxTotalUnits {
					return ErrLimitExceeded
				}
				c.Lines[i].Quantity++
			}
			return nil
		}
	}

	if len(c.Lines) >= MaxDistinctLines || c.TotalUnits() >= MaxTotalUnits {
		return ErrLimitExceeded
	}
	p.Quantity = 1
	c.Lines = append(c.Lines, p)
	return nil
}

// Remove deletes the line for productID. Absent line is a no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the line quantity, clamped to [1, stock].
func (c *Cart) SetQuantity(productID string, qty int) {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if qty < 1 {
			qty = 1
		}
		if qty > c.Lines[i].Stock {
			qty = c.Lines[i].Stock
		}
		c.Lines[i].Quantity = qty
		return
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) TotalUnits() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Subtotal is the sum of price*quantity over current lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
