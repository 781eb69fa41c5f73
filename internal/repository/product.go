package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kassa-dev/kassa/internal/domain/product"
)

const productColumns = `id, category_id, name, sku, barcode, description,
	cost_price, selling_price, quantity, reorder_threshold, expiry_date,
	created_at, updated_at`

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Search returns products whose name, SKU, or barcode matches the query.
// The POS screen uses this for its product lookup box.
func (r *ProductRepository) Search(ctx context.Context, query string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products
		WHERE lower(name) LIKE lower('%' || $1 || '%')
			OR sku = $1 OR barcode = $1
		ORDER BY name, id`, query)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a new product and fills in its generated ID and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (category_id, name, sku, barcode, description,
			cost_price, selling_price, quantity, reorder_threshold, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		p.CategoryID, p.Name, p.SKU, p.Barcode, p.Description,
		p.CostPrice, p.SellingPrice, p.Quantity, p.ReorderThreshold, p.ExpiryDate,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.Name, err)
	}
	return nil
}

// Update rewrites every mutable product column.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET category_id = $2, name = $3, sku = $4, barcode = $5,
			description = $6, cost_price = $7, selling_price = $8, quantity = $9,
			reorder_threshold = $10, expiry_date = $11, updated_at = now()
		WHERE id = $1`,
		p.ID, p.CategoryID, p.Name, p.SKU, p.Barcode, p.Description,
		p.CostPrice, p.SellingPrice, p.Quantity, p.ReorderThreshold, p.ExpiryDate,
	)
	if err != nil {
		return fmt.Errorf("updating product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product by ID.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// ListLowStock returns products at or below their reorder threshold.
func (r *ProductRepository) ListLowStock(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products
		WHERE quantity <= reorder_threshold ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing low stock products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.SKU, &p.Barcode, &p.Description,
		&p.CostPrice, &p.SellingPrice, &p.Quantity, &p.ReorderThreshold,
		&p.ExpiryDate, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
