// Package purchase implements purchase documents: stock received from
// suppliers. It mirrors the sale package with the purchase status
// vocabulary and stock flowing in instead of out.
package purchase

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/kassa-dev/kassa/internal/domain/invoice"
)

// ErrNotFound is returned when a requested purchase does not exist.
var ErrNotFound = errors.New("purchase not found")

// Item is one purchase line as persisted. SellingPrice is the new retail
// price to apply to the product when the purchase is received.
type Item struct {
	ID           int64
	PurchaseID   int64
	ProductID    int64
	Barcode      string
	BatchNumber  string
	ExpiryDate   *time.Time
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
	SellingPrice decimal.Decimal
	Discount     decimal.Decimal
	LineTotal    decimal.Decimal
}

// Purchase is a persisted purchase document with its engine-derived amounts.
type Purchase struct {
	ID            int64
	SupplierID    int64
	InvoiceNumber string
	SubTotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Paid          decimal.Decimal
	Remaining     decimal.Decimal
	Status        invoice.Status
	PurchaseDate  time.Time
	Items         []Item
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Document maps the purchase onto the invoice engine's value type. The line
// discount is always subtracted from quantity * unit cost — one uniform
// rule for every call site.
func (p *Purchase) Document() *invoice.Document {
	items := make([]invoice.LineItem, len(p.Items))
	for i, it := range p.Items {
		items[i] = invoice.LineItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitCost,
			Discount:  it.Discount,
			LineTotal: it.LineTotal,
		}
	}
	return &invoice.Document{
		Items:    items,
		Discount: p.Discount,
		Tax:      p.Tax,
		Paid:     p.Paid,
	}
}

// applyDocument copies the recalculated derived fields back into the purchase.
func (p *Purchase) applyDocument(doc *invoice.Document) {
	for i := range p.Items {
		p.Items[i].LineTotal = doc.Items[i].LineTotal
	}
	p.SubTotal = doc.SubTotal
	p.Total = doc.Total
	p.Remaining = doc.Remaining
	p.Status = doc.Status
}

// Repository defines persistence operations for purchases. Create adds the
// received quantities to product stock and refreshes cost/selling prices in
// the same transaction; Update reconciles the stock delta; Delete backs the
// received stock out again.
type Repository interface {
	List(ctx context.Context) ([]Purchase, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]Purchase, error)
	GetByID(ctx context.Context, id int64) (*Purchase, error)
	Create(ctx context.Context, p *Purchase) error
	Update(ctx context.Context, p *Purchase) error
	Delete(ctx context.Context, id int64) error
}
