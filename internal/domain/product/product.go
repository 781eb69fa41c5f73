// Package product defines the catalog types shared by the POS screen,
// purchases, and sales.
package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// InsufficientStockError indicates a sale requested more units than the
// product has on hand.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for " + e.Name +
		": requested " + e.Requested.String() +
		", available " + e.Available.String()
}

// Product is a catalog item. Quantity is the stock on hand; it is a decimal
// because some goods are sold by weight.
type Product struct {
	ID               int64
	CategoryID       *int64
	Name             string
	SKU              string
	Barcode          string
	Description      string
	CostPrice        decimal.Decimal
	SellingPrice     decimal.Decimal
	Quantity         decimal.Decimal
	ReorderThreshold decimal.Decimal
	ExpiryDate       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LowStock reports whether the product is at or below its reorder threshold.
func (p Product) LowStock() bool {
	return p.Quantity.LessThanOrEqual(p.ReorderThreshold)
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	ListLowStock(ctx context.Context) ([]Product, error)
}

// Category groups products for navigation and reporting.
type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ErrCategoryNotFound is returned when a requested category does not exist.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
}
