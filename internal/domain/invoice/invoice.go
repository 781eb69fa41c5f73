// Package invoice implements the shared total-calculation engine used by
// sales, purchases, and the point-of-sale cart. All functions are pure:
// they hold no state and never touch storage.
package invoice

import (
	"github.com/shopspring/decimal"
)

// LineItem is one product entry within a document, with its own quantity,
// unit price, line discount, and derived total.
type LineItem struct {
	ProductID int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	LineTotal decimal.Decimal
}

// Summary holds the document-level derived amounts.
type Summary struct {
	SubTotal  decimal.Decimal
	Total     decimal.Decimal
	Remaining decimal.Decimal
}

// Document is the order-level value shared by sales and purchases: a list of
// line items plus document-level discount, tax, and paid adjustments, along
// with every derived field. It is always recomputed from scratch via
// Recalculate; nothing patches derived fields incrementally.
type Document struct {
	Items    []LineItem
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Paid     decimal.Decimal

	SubTotal  decimal.Decimal
	Total     decimal.Decimal
	Remaining decimal.Decimal
	Status    Status
}

// LineTotal computes quantity * unitPrice - discount rounded to 2 decimal
// places (round half away from zero, matching currency display). A result
// below zero is returned as-is, never clamped: Validate rejects it before
// submission, and the UI uses the negative value to flag the bad discount.
func LineTotal(quantity, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Sub(discount).Round(2)
}

// Totals aggregates the document-level amounts from the items' stored line
// totals. It trusts each LineTotal field; callers must keep them in sync
// (Recalculate does both in one pass). Intermediate sums keep full precision;
// rounding happens only at the final step of each derived field.
//
// Totals never rejects input. A negative Remaining means overpayment and is
// a valid value the caller is expected to represent, not hide.
func Totals(items []LineItem, discount, tax, paid decimal.Decimal) Summary {
	subTotal := decimal.Zero
	for _, item := range items {
		subTotal = subTotal.Add(item.LineTotal)
	}
	subTotal = subTotal.Round(2)

	total := subTotal.Sub(discount).Add(tax).Round(2)
	remaining := total.Sub(paid).Round(2)

	return Summary{
		SubTotal:  subTotal,
		Total:     total,
		Remaining: remaining,
	}
}

// Recalculate recomputes every derived field of the document: each item's
// line total, then sub_total/total/remaining, then the payment status. Any
// mutation to items, discount, tax, or paid must be followed by a call to
// Recalculate — partial recomputation is the bug class this engine exists
// to prevent.
func Recalculate(doc *Document, vocab Vocabulary) {
	for i := range doc.Items {
		item := &doc.Items[i]
		item.LineTotal = LineTotal(item.Quantity, item.UnitPrice, item.Discount)
	}

	s := Totals(doc.Items, doc.Discount, doc.Tax, doc.Paid)
	doc.SubTotal = s.SubTotal
	doc.Total = s.Total
	doc.Remaining = s.Remaining
	doc.Status = Classify(doc.Total, doc.Paid, vocab)
}
