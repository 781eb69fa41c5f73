package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kassa-dev/kassa/internal/domain/party"
)

// foreignKeyViolation is the PostgreSQL SQLSTATE raised when a delete is
// blocked by a referencing row.
const foreignKeyViolation = "23503"

var _ party.CustomerRepository = (*CustomerRepository)(nil)

// CustomerRepository implements party.CustomerRepository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// List returns all customers ordered by name.
func (r *CustomerRepository) List(ctx context.Context) ([]party.Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, phone, address, created_at, updated_at
		FROM customers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// GetByID returns a single customer by its identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*party.Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, phone, address, created_at, updated_at
		FROM customers WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, party.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}
	return &c, nil
}

// Create inserts a new customer and fills in its generated ID and timestamps.
func (r *CustomerRepository) Create(ctx context.Context, c *party.Customer) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (name, email, phone, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		c.Name, c.Email, c.Phone, c.Address,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating customer %q: %w", c.Name, err)
	}
	return nil
}

// Update rewrites the customer's mutable columns.
func (r *CustomerRepository) Update(ctx context.Context, c *party.Customer) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET name = $2, email = $3, phone = $4, address = $5,
			updated_at = now()
		WHERE id = $1`,
		c.ID, c.Name, c.Email, c.Phone, c.Address,
	)
	if err != nil {
		return fmt.Errorf("updating customer %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return party.ErrCustomerNotFound
	}
	return nil
}

// Delete removes a customer. Customers referenced by sales cannot be
// deleted; the violation surfaces as party.ErrInUse.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return party.ErrInUse
		}
		return fmt.Errorf("deleting customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return party.ErrCustomerNotFound
	}
	return nil
}

func scanCustomer(row pgx.CollectableRow) (party.Customer, error) {
	var c party.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

var _ party.SupplierRepository = (*SupplierRepository)(nil)

// SupplierRepository implements party.SupplierRepository backed by PostgreSQL.
type SupplierRepository struct {
	pool *pgxpool.Pool
}

// NewSupplierRepository returns a SupplierRepository that uses the given pool.
func NewSupplierRepository(pool *pgxpool.Pool) *SupplierRepository {
	return &SupplierRepository{pool: pool}
}

// List returns all suppliers ordered by name.
func (r *SupplierRepository) List(ctx context.Context) ([]party.Supplier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, contact_person, email, phone, address, created_at, updated_at
		FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}
	return pgx.CollectRows(rows, scanSupplier)
}

// GetByID returns a single supplier by its identifier.
func (r *SupplierRepository) GetByID(ctx context.Context, id int64) (*party.Supplier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, contact_person, email, phone, address, created_at, updated_at
		FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting supplier %d: %w", id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSupplier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, party.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("getting supplier %d: %w", id, err)
	}
	return &s, nil
}

// Create inserts a new supplier and fills in its generated ID and timestamps.
func (r *SupplierRepository) Create(ctx context.Context, s *party.Supplier) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO suppliers (name, contact_person, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		s.Name, s.ContactPerson, s.Email, s.Phone, s.Address,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating supplier %q: %w", s.Name, err)
	}
	return nil
}

// Update rewrites the supplier's mutable columns.
func (r *SupplierRepository) Update(ctx context.Context, s *party.Supplier) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE suppliers SET name = $2, contact_person = $3, email = $4,
			phone = $5, address = $6, updated_at = now()
		WHERE id = $1`,
		s.ID, s.Name, s.ContactPerson, s.Email, s.Phone, s.Address,
	)
	if err != nil {
		return fmt.Errorf("updating supplier %d: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return party.ErrSupplierNotFound
	}
	return nil
}

// Delete removes a supplier. Suppliers referenced by purchases cannot be
// deleted; the violation surfaces as party.ErrInUse.
func (r *SupplierRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return party.ErrInUse
		}
		return fmt.Errorf("deleting supplier %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return party.ErrSupplierNotFound
	}
	return nil
}

func scanSupplier(row pgx.CollectableRow) (party.Supplier, error) {
	var s party.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Email, &s.Phone, &s.Address,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
