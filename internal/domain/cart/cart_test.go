package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kassa-dev/kassa/internal/domain/product"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func testProduct(id int64, name, price string) product.Product {
	return product.Product{
		ID:           id,
		Name:         name,
		SellingPrice: d(price),
		Quantity:     d("100"),
	}
}

func TestCart_AddMergesOnDuplicate(t *testing.T) {
	c := New(decimal.Zero)
	apple := testProduct(1, "Apple", "2.00")

	c.Add(apple)
	assert.True(t, d("2.00").Equal(c.Totals().SubTotal))

	c.Add(apple)
	entries := c.Entries()
	assert.Len(t, entries, 1)
	assert.True(t, d("2").Equal(entries[0].Quantity))
	assert.True(t, d("4.00").Equal(c.Totals().SubTotal))
}

func TestCart_SetQuantityZeroRemoves(t *testing.T) {
	c := New(decimal.Zero)
	c.Add(testProduct(1, "Apple", "2.00"))

	c.SetQuantity(1, decimal.Zero)

	assert.Empty(t, c.Entries())
	assert.True(t, c.Totals().SubTotal.IsZero())
	assert.True(t, c.Totals().Total.IsZero())
}

func TestCart_SetQuantityReplacesInPlace(t *testing.T) {
	c := New(decimal.Zero)
	c.Add(testProduct(1, "Apple", "2.00"))
	c.Add(testProduct(2, "Milk", "3.50"))

	c.SetQuantity(1, d("5"))

	entries := c.Entries()
	assert.Len(t, entries, 2)
	assert.True(t, d("5").Equal(entries[0].Quantity))
	assert.True(t, d("13.50").Equal(c.Totals().SubTotal))
}

func TestCart_RemoveUnknownIsNoop(t *testing.T) {
	c := New(decimal.Zero)
	c.Add(testProduct(1, "Apple", "2.00"))
	before := c.Totals()

	c.Remove(42)

	assert.Len(t, c.Entries(), 1)
	assert.True(t, before.SubTotal.Equal(c.Totals().SubTotal))
	assert.True(t, before.Total.Equal(c.Totals().Total))
}

func TestCart_TaxAppliedOnEveryMutation(t *testing.T) {
	c := New(d("0.10"))

	c.Add(testProduct(1, "Apple", "10.00"))
	assert.True(t, d("1.00").Equal(c.Totals().Tax))
	assert.True(t, d("11.00").Equal(c.Totals().Total))

	c.Add(testProduct(1, "Apple", "10.00"))
	assert.True(t, d("2.00").Equal(c.Totals().Tax))
	assert.True(t, d("22.00").Equal(c.Totals().Total))
}

func TestCart_PriceFrozenAtFirstAdd(t *testing.T) {
	c := New(decimal.Zero)
	c.Add(testProduct(1, "Apple", "2.00"))

	// The catalog price changed between adds; the cart keeps the price
	// the line was opened with and only bumps the quantity.
	c.Add(testProduct(1, "Apple", "2.50"))

	entries := c.Entries()
	assert.Len(t, entries, 1)
	assert.True(t, d("2.00").Equal(entries[0].UnitPrice))
	assert.True(t, d("4.00").Equal(c.Totals().SubTotal))
}

func TestCart_Clear(t *testing.T) {
	c := New(d("0.10"))
	c.Add(testProduct(1, "Apple", "2.00"))
	c.Add(testProduct(2, "Milk", "3.50"))

	c.Clear()

	assert.Empty(t, c.Entries())
	assert.True(t, c.Totals().Total.IsZero())
}

func TestCart_ItemsForCheckout(t *testing.T) {
	c := New(d("0.10"))
	c.Add(testProduct(1, "Apple", "2.00"))
	c.Add(testProduct(1, "Apple", "2.00"))
	c.Add(testProduct(2, "Milk", "3.50"))

	items := c.Items()

	assert.Len(t, items, 2)
	assert.True(t, d("4.00").Equal(items[0].LineTotal))
	assert.True(t, d("3.50").Equal(items[1].LineTotal))
}
