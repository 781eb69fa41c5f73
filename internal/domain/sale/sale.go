// Package sale implements sale documents: POS receipts and back-office
// invoices addressed to customers.
package sale

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/kassa-dev/kassa/internal/domain/invoice"
)

// ErrNotFound is returned when a requested sale does not exist.
var ErrNotFound = errors.New("sale not found")

// Item is one sale line as persisted.
type Item struct {
	ID          int64
	SaleID      int64
	ProductID   int64
	BatchNumber string
	ExpiryDate  *time.Time
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	LineTotal   decimal.Decimal
}

// Sale is a persisted sale document with its engine-derived amounts.
type Sale struct {
	ID            int64
	CustomerID    *int64
	InvoiceNumber string
	SubTotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Paid          decimal.Decimal
	Remaining     decimal.Decimal
	Status        invoice.Status
	PaymentMethod string
	SaleDate      time.Time
	Items         []Item
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Document maps the sale onto the invoice engine's value type.
func (s *Sale) Document() *invoice.Document {
	items := make([]invoice.LineItem, len(s.Items))
	for i, it := range s.Items {
		items[i] = invoice.LineItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			LineTotal: it.LineTotal,
		}
	}
	return &invoice.Document{
		Items:    items,
		Discount: s.Discount,
		Tax:      s.Tax,
		Paid:     s.Paid,
	}
}

// applyDocument copies the recalculated derived fields back into the sale.
func (s *Sale) applyDocument(doc *invoice.Document) {
	for i := range s.Items {
		s.Items[i].LineTotal = doc.Items[i].LineTotal
	}
	s.SubTotal = doc.SubTotal
	s.Total = doc.Total
	s.Remaining = doc.Remaining
	s.Status = doc.Status
}

// Repository defines persistence operations for sales. Create, Update, and
// Delete adjust product stock in the same transaction as the document
// write; Create and Update return product.InsufficientStockError when the
// catalog cannot cover the requested quantities.
type Repository interface {
	List(ctx context.Context) ([]Sale, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]Sale, error)
	GetByID(ctx context.Context, id int64) (*Sale, error)
	Create(ctx context.Context, s *Sale) error
	Update(ctx context.Context, s *Sale) error
	Delete(ctx context.Context, id int64) error
}
