// Package party holds the customer and supplier records documents are
// addressed to. Both are plain contact-book entries; referential integrity
// against sales and purchases is enforced by the database layer.
package party

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrCustomerNotFound is returned when a requested customer does not exist.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrSupplierNotFound is returned when a requested supplier does not exist.
	ErrSupplierNotFound = errors.New("supplier not found")
	// ErrInUse is returned when deletion is blocked by existing documents
	// referencing the record.
	ErrInUse = errors.New("record is referenced by existing documents")
)

// Customer is a sale counterparty.
type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Supplier is a purchase counterparty.
type Supplier struct {
	ID            int64
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CustomerRepository defines persistence operations for customers.
type CustomerRepository interface {
	List(ctx context.Context) ([]Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id int64) error
}

// SupplierRepository defines persistence operations for suppliers.
type SupplierRepository interface {
	List(ctx context.Context) ([]Supplier, error)
	GetByID(ctx context.Context, id int64) (*Supplier, error)
	Create(ctx context.Context, s *Supplier) error
	Update(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, id int64) error
}
