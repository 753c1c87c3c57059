// Package cart keeps the shopping cart inside the chat session.
package cart

import (
	"errors"
	"fmt"
	"slices"

	"github.com/m3rciful/easyshop/bots/easyshop/catalog"
	"github.com/m3rciful/easyshop/core/telegram/state"
)

const (
	sessionKey = "cart"
	// MaxQty caps the quantity of a single line.
	MaxQty = 99
)

// ErrInvalidQty is returned for quantities outside 1..MaxQty.
var ErrInvalidQty = errors.New("cart: quantity out of range")

// Item is one cart line. Title and Price are copied from the product when it is added.
type Item struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Qty       int    `json:"qty"`
}

// Subtotal returns Price*Qty.
func (i Item) Subtotal() int64 {
	return i.Price * int64(i.Qty)
}

// Cart is an ordered list of items, unique by product.
type Cart struct {
	Items []Item `json:"items"`
}

// Load reads the cart from s. A missing cart is empty.
func Load(s *state.Session) (*Cart, error) {
	c := &Cart{}
	if s == nil {
		return c, nil
	}
	if _, err := s.Get(sessionKey, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes c into s. An empty cart is removed from the session.
func (c *Cart) Save(s *state.Session) error {
	if s == nil {
		return errors.New("cart: no session")
	}
	if c.Empty() {
		s.Delete(sessionKey)
		return nil
	}
	return s.Put(sessionKey, c)
}

func (c *Cart) index(productID int64) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add increases the quantity of p by qty, appending a new line when needed.
func (c *Cart) Add(p catalog.Product, qty int) error {
	if qty < 1 {
		return ErrInvalidQty
	}
	if i := c.index(p.ID); i >= 0 {
		next := c.Items[i].Qty + qty
		if next > MaxQty {
			return fmt.Errorf("%w: %d", ErrInvalidQty, next)
		}
		c.Items[i].Qty = next
		c.Items[i].Title, c.Items[i].Price = p.Title, p.Price
		return nil
	}
	if qty > MaxQty {
		return fmt.Errorf("%w: %d", ErrInvalidQty, qty)
	}
	c.Items = append(c.Items, Item{ProductID: p.ID, Title: p.Title, Price: p.Price, Qty: qty})
	return nil
}

// SetQty replaces the quantity of a line. Zero removes it.
func (c *Cart) SetQty(productID int64, qty int) error {
	if qty < 0 || qty > MaxQty {
		return fmt.Errorf("%w: %d", ErrInvalidQty, qty)
	}
	i := c.index(productID)
	if i < 0 {
		return catalog.ErrNotFound
	}
	if qty == 0 {
		c.Remove(productID)
		return nil
	}
	c.Items[i].Qty = qty
	return nil
}

// Remove drops the line of productID and reports whether it existed.
func (c *Cart) Remove(productID int64) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// Count returns the total number of units.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Qty
	}
	return n
}

// Snapshot returns a copy of the lines.
func (c *Cart) Snapshot() []Item {
	return slices.Clone(c.Items)
}

// Subtract takes the quantities of lines out of the cart, dropping lines that reach zero.
// Lines not in the cart are ignored.
func (c *Cart) Subtract(lines []Item) {
	for _, l := range lines {
		i := c.index(l.ProductID)
		if i < 0 {
			continue
		}
		c.Items[i].Qty -= l.Qty
		if c.Items[i].Qty <= 0 {
			c.Items = slices.Delete(c.Items, i, i+1)
		}
	}
}

// Total returns the sum of all subtotals in minor units.
func (c *Cart) Total() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Subtotal()
	}
	return total
}
