// Package cart implements the point-of-sale cart: a mutable list of line
// entries keyed by product identity, recomputed through the invoice engine
// after every transition so it is always consistent.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/kassa-dev/kassa/internal/domain/invoice"
	"github.com/kassa-dev/kassa/internal/domain/product"
)

// Entry is one cart line: a product at the price it carried when first
// added, with the accumulated quantity.
type Entry struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  decimal.Decimal
}

// Totals holds the cart's derived amounts after the last mutation.
type Totals struct {
	SubTotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Cart is the in-memory POS cart. It is not safe for concurrent use; the
// POS flow mutates it from a single event loop.
type Cart struct {
	entries []Entry
	taxRate decimal.Decimal
	totals  Totals
}

// New creates an empty cart. taxRate is a fraction (0.10 for 10%) applied
// to the subtotal on every recomputation.
func New(taxRate decimal.Decimal) *Cart {
	c := &Cart{taxRate: taxRate}
	c.recalculate()
	return c
}

// Add merges the product into the cart: if a line for the product already
// exists its quantity is incremented by one, otherwise a new line is
// appended with quantity 1 at the product's current selling price. The cart
// is keyed by product identity, never by insertion order.
func (c *Cart) Add(p product.Product) {
	defer c.recalculate()

	for i := range c.entries {
		if c.entries[i].ProductID == p.ID {
			c.entries[i].Quantity = c.entries[i].Quantity.Add(decimal.NewFromInt(1))
			return
		}
	}
	c.entries = append(c.entries, Entry{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.SellingPrice,
		Quantity:  decimal.NewFromInt(1),
	})
}

// SetQuantity replaces the quantity of the product's line in place. A
// quantity of zero or less removes the line.
func (c *Cart) SetQuantity(productID int64, quantity decimal.Decimal) {
	if !quantity.IsPositive() {
		c.Remove(productID)
		return
	}
	defer c.recalculate()

	for i := range c.entries {
		if c.entries[i].ProductID == productID {
			c.entries[i].Quantity = quantity
			return
		}
	}
}

// Remove deletes the product's line. Removing an unknown product is a
// no-op, not an error.
func (c *Cart) Remove(productID int64) {
	defer c.recalculate()

	for i := range c.entries {
		if c.entries[i].ProductID == productID {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.entries = nil
	c.recalculate()
}

// Entries returns a copy of the current cart lines.
func (c *Cart) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Totals returns the amounts computed after the last mutation.
func (c *Cart) Totals() Totals {
	return c.totals
}

// Items converts the cart lines into invoice line items for checkout.
func (c *Cart) Items() []invoice.LineItem {
	items := make([]invoice.LineItem, len(c.entries))
	for i, e := range c.entries {
		items[i] = invoice.LineItem{
			ProductID: e.ProductID,
			Quantity:  e.Quantity,
			UnitPrice: e.UnitPrice,
			LineTotal: invoice.LineTotal(e.Quantity, e.UnitPrice, decimal.Zero),
		}
	}
	return items
}

// recalculate runs after every transition; the cart has no dirty flag.
func (c *Cart) recalculate() {
	items := c.Items()
	s := invoice.Totals(items, decimal.Zero, decimal.Zero, decimal.Zero)

	tax := s.SubTotal.Mul(c.taxRate).Round(2)
	c.totals = Totals{
		SubTotal: s.SubTotal,
		Tax:      tax,
		Total:    s.SubTotal.Add(tax).Round(2),
	}
}
