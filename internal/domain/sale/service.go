package sale

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kassa-dev/kassa/internal/domain/invoice"
	"github.com/kassa-dev/kassa/internal/domain/product"
)

// ItemRequest is the client-supplied shape of one sale line. Amounts arrive
// as the client entered them; every derived field is recomputed server-side.
type ItemRequest struct {
	ProductID   int64
	BatchNumber string
	ExpiryDate  *time.Time
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
}

// Request holds the input for creating or updating a sale.
type Request struct {
	CustomerID    *int64
	InvoiceNumber string
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	Paid          decimal.Decimal
	PaymentMethod string
	SaleDate      time.Time
	Items         []ItemRequest
}

// Service encapsulates sale business logic: recomputation through the
// invoice engine, validation, and stock-aware persistence.
type Service struct {
	sales    Repository
	products product.Repository
	now      func() time.Time
}

// NewService creates a sale Service with the required dependencies.
func NewService(sales Repository, products product.Repository) *Service {
	return &Service{
		sales:    sales,
		products: products,
		now:      time.Now,
	}
}

// Create recalculates, validates, and persists a new sale. Client-supplied
// totals are ignored; the engine's output is what gets stored. Stock is
// deducted in the repository transaction, so a failure leaves nothing
// half-written and the client can correct and resubmit.
func (s *Service) Create(ctx context.Context, req Request) (*Sale, error) {
	sl, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	if sl.InvoiceNumber == "" {
		sl.InvoiceNumber = s.nextInvoiceNumber()
	}
	if sl.SaleDate.IsZero() {
		sl.SaleDate = s.now()
	}

	if err := s.sales.Create(ctx, sl); err != nil {
		return nil, errors.Wrap(err, "create sale")
	}
	return sl, nil
}

// Update recalculates and persists changes to an existing sale. The
// repository reconciles the stock delta between the old and new items.
func (s *Service) Update(ctx context.Context, id int64, req Request) (*Sale, error) {
	existing, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sl, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	sl.ID = existing.ID
	if sl.InvoiceNumber == "" {
		sl.InvoiceNumber = existing.InvoiceNumber
	}
	if sl.SaleDate.IsZero() {
		sl.SaleDate = existing.SaleDate
	}

	if err := s.sales.Update(ctx, sl); err != nil {
		return nil, errors.Wrap(err, "update sale")
	}
	return sl, nil
}

// Delete removes a sale; the repository restores the deducted stock.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.sales.Delete(ctx, id)
}

// Get returns a single sale by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	return s.sales.GetByID(ctx, id)
}

// List returns all sales, newest first.
func (s *Service) List(ctx context.Context) ([]Sale, error) {
	return s.sales.List(ctx)
}

// build assembles a recalculated, validated sale from the request.
func (s *Service) build(ctx context.Context, req Request) (*Sale, error) {
	sl := &Sale{
		CustomerID:    req.CustomerID,
		InvoiceNumber: req.InvoiceNumber,
		Discount:      req.Discount,
		Tax:           req.Tax,
		Paid:          req.Paid,
		PaymentMethod: req.PaymentMethod,
		SaleDate:      req.SaleDate,
		Items:         make([]Item, len(req.Items)),
	}
	for i, item := range req.Items {
		sl.Items[i] = Item{
			ProductID:   item.ProductID,
			BatchNumber: item.BatchNumber,
			ExpiryDate:  item.ExpiryDate,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
		}
	}

	doc := sl.Document()
	invoice.Recalculate(doc, invoice.VocabularySale)
	if err := invoice.Validate(doc); err != nil {
		return nil, err
	}
	sl.applyDocument(doc)

	if err := s.checkProducts(ctx, sl.Items); err != nil {
		return nil, err
	}
	return sl, nil
}

// checkProducts verifies every referenced product exists in one batch fetch.
func (s *Service) checkProducts(ctx context.Context, items []Item) error {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "get products")
	}

	known := make(map[int64]struct{}, len(fetched))
	for _, p := range fetched {
		known[p.ID] = struct{}{}
	}
	for _, item := range items {
		if _, ok := known[item.ProductID]; !ok {
			return product.ErrNotFound
		}
	}
	return nil
}

// nextInvoiceNumber generates INV-YYYYMMDD-XXXXXX with a random suffix.
func (s *Service) nextInvoiceNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("INV-%s-%s", s.now().Format("20060102"), suffix)
}
