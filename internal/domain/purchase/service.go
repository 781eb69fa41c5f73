package purchase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kassa-dev/kassa/internal/domain/invoice"
	"github.com/kassa-dev/kassa/internal/domain/party"
	"github.com/kassa-dev/kassa/internal/domain/product"
)

// ErrSupplierRequired is returned when a purchase has no supplier.
var ErrSupplierRequired = errors.New("supplier is required")

// ItemRequest is the client-supplied shape of one purchase line.
type ItemRequest struct {
	ProductID    int64
	Barcode      string
	BatchNumber  string
	ExpiryDate   *time.Time
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
	SellingPrice decimal.Decimal
	Discount     decimal.Decimal
}

// Request holds the input for creating or updating a purchase.
type Request struct {
	SupplierID    int64
	InvoiceNumber string
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	Paid          decimal.Decimal
	PurchaseDate  time.Time
	Items         []ItemRequest
}

// Service encapsulates purchase business logic.
type Service struct {
	purchases Repository
	products  product.Repository
	suppliers party.SupplierRepository
	now       func() time.Time
}

// NewService creates a purchase Service with the required dependencies.
func NewService(purchases Repository, products product.Repository, suppliers party.SupplierRepository) *Service {
	return &Service{
		purchases: purchases,
		products:  products,
		suppliers: suppliers,
		now:       time.Now,
	}
}

// Create recalculates, validates, and persists a new purchase. Stock and
// product prices are updated in the repository transaction.
func (s *Service) Create(ctx context.Context, req Request) (*Purchase, error) {
	p, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	if p.InvoiceNumber == "" {
		p.InvoiceNumber = s.nextInvoiceNumber()
	}
	if p.PurchaseDate.IsZero() {
		p.PurchaseDate = s.now()
	}

	if err := s.purchases.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create purchase")
	}
	return p, nil
}

// Update recalculates and persists changes to an existing purchase.
func (s *Service) Update(ctx context.Context, id int64, req Request) (*Purchase, error) {
	existing, err := s.purchases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	p.ID = existing.ID
	if p.InvoiceNumber == "" {
		p.InvoiceNumber = existing.InvoiceNumber
	}
	if p.PurchaseDate.IsZero() {
		p.PurchaseDate = existing.PurchaseDate
	}

	if err := s.purchases.Update(ctx, p); err != nil {
		return nil, errors.Wrap(err, "update purchase")
	}
	return p, nil
}

// Delete removes a purchase; the repository backs the received stock out.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.purchases.Delete(ctx, id)
}

// Get returns a single purchase by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Purchase, error) {
	return s.purchases.GetByID(ctx, id)
}

// List returns all purchases, newest first.
func (s *Service) List(ctx context.Context) ([]Purchase, error) {
	return s.purchases.List(ctx)
}

// build assembles a recalculated, validated purchase from the request.
func (s *Service) build(ctx context.Context, req Request) (*Purchase, error) {
	if req.SupplierID == 0 {
		return nil, ErrSupplierRequired
	}
	if _, err := s.suppliers.GetByID(ctx, req.SupplierID); err != nil {
		return nil, err
	}

	p := &Purchase{
		SupplierID:    req.SupplierID,
		InvoiceNumber: req.InvoiceNumber,
		Discount:      req.Discount,
		Tax:           req.Tax,
		Paid:          req.Paid,
		PurchaseDate:  req.PurchaseDate,
		Items:         make([]Item, len(req.Items)),
	}
	for i, item := range req.Items {
		p.Items[i] = Item{
			ProductID:    item.ProductID,
			Barcode:      item.Barcode,
			BatchNumber:  item.BatchNumber,
			ExpiryDate:   item.ExpiryDate,
			Quantity:     item.Quantity,
			UnitCost:     item.UnitCost,
			SellingPrice: item.SellingPrice,
			Discount:     item.Discount,
		}
	}

	doc := p.Document()
	invoice.Recalculate(doc, invoice.VocabularyPurchase)
	if err := invoice.Validate(doc); err != nil {
		return nil, err
	}
	p.applyDocument(doc)

	if err := s.checkProducts(ctx, p.Items); err != nil {
		return nil, err
	}
	return p, nil
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

// nextInvoiceNumber generates PUR-YYYYMMDD-XXXXXX with a random suffix.
func (s *Service) nextInvoiceNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("PUR-%s-%s", s.now().Format("20060102"), suffix)
}
