package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kassa-dev/kassa/internal/domain/product"
	"github.com/kassa-dev/kassa/internal/domain/sale"
)

const saleColumns = `id, customer_id, invoice_number, sub_total, discount, tax,
	total, paid, remaining, status, payment_method, sale_date, created_at, updated_at`

var _ sale.Repository = (*SaleRepository)(nil)

// SaleRepository implements sale.Repository backed by PostgreSQL. Document
// writes and the matching stock movements happen in one transaction, so a
// rejected sale (insufficient stock, constraint violation) leaves no
// partial state behind.
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository returns a SaleRepository that uses the given pool.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

// List returns all sales with their items, newest first.
func (r *SaleRepository) List(ctx context.Context) ([]sale.Sale, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY sale_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	sales, err := pgx.CollectRows(rows, scanSale)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	return r.attachItems(ctx, sales)
}

// ListBetween returns sales whose sale_date falls in [from, to].
func (r *SaleRepository) ListBetween(ctx context.Context, from, to time.Time) ([]sale.Sale, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+saleColumns+` FROM sales
		WHERE sale_date >= $1 AND sale_date <= $2
		ORDER BY sale_date DESC, id DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing sales between: %w", err)
	}
	sales, err := pgx.CollectRows(rows, scanSale)
	if err != nil {
		return nil, fmt.Errorf("listing sales between: %w", err)
	}
	return r.attachItems(ctx, sales)
}

// GetByID returns a single sale with its items.
func (r *SaleRepository) GetByID(ctx context.Context, id int64) (*sale.Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting sale %d: %w", id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSale)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sale.ErrNotFound
		}
		return nil, fmt.Errorf("getting sale %d: %w", id, err)
	}

	items, err := r.itemsFor(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

// Create persists a new sale and deducts the sold quantities from stock.
func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO sales (customer_id, invoice_number, sub_total, discount,
				tax, total, paid, remaining, status, payment_method, sale_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at, updated_at`,
			s.CustomerID, s.InvoiceNumber, s.SubTotal, s.Discount, s.Tax,
			s.Total, s.Paid, s.Remaining, s.Status, s.PaymentMethod, s.SaleDate,
		).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting sale %q: %w", s.InvoiceNumber, err)
		}

		if err := r.insertItems(ctx, tx, s); err != nil {
			return err
		}
		return deductStock(ctx, tx, saleMovements(s.Items))
	})
}

// Update rewrites the sale and reconciles stock: the old items' quantities
// are restored, then the new items' quantities deducted.
func (r *SaleRepository) Update(ctx context.Context, s *sale.Sale) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		old, err := r.itemsFor(ctx, tx, s.ID)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE sales SET customer_id = $2, invoice_number = $3, sub_total = $4,
				discount = $5, tax = $6, total = $7, paid = $8, remaining = $9,
				status = $10, payment_method = $11, sale_date = $12, updated_at = now()
			WHERE id = $1`,
			s.ID, s.CustomerID, s.InvoiceNumber, s.SubTotal, s.Discount, s.Tax,
			s.Total, s.Paid, s.Remaining, s.Status, s.PaymentMethod, s.SaleDate,
		)
		if err != nil {
			return fmt.Errorf("updating sale %d: %w", s.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return sale.ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, s.ID); err != nil {
			return fmt.Errorf("clearing sale items %d: %w", s.ID, err)
		}
		if err := r.insertItems(ctx, tx, s); err != nil {
			return err
		}

		if err := restoreStock(ctx, tx, saleMovements(old)); err != nil {
			return err
		}
		return deductStock(ctx, tx, saleMovements(s.Items))
	})
}

// Delete removes a sale and restores the deducted stock.
func (r *SaleRepository) Delete(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		items, err := r.itemsFor(ctx, tx, id)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("deleting sale %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return sale.ErrNotFound
		}
		return restoreStock(ctx, tx, saleMovements(items))
	})
}

func (r *SaleRepository) insertItems(ctx context.Context, tx pgx.Tx, s *sale.Sale) error {
	for i := range s.Items {
		item := &s.Items[i]
		item.SaleID = s.ID
		err := tx.QueryRow(ctx,
			`INSERT INTO sale_items (sale_id, product_id, batch_number, expiry_date,
				quantity, unit_price, discount, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			item.SaleID, item.ProductID, item.BatchNumber, item.ExpiryDate,
			item.Quantity, item.UnitPrice, item.Discount, item.LineTotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("inserting sale item for product %d: %w", item.ProductID, err)
		}
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *SaleRepository) itemsFor(ctx context.Context, q querier, saleID int64) ([]sale.Item, error) {
	rows, err := q.Query(ctx,
		`SELECT id, sale_id, product_id, batch_number, expiry_date,
			quantity, unit_price, discount, line_total
		FROM sale_items WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("listing sale items %d: %w", saleID, err)
	}
	return pgx.CollectRows(rows, scanSaleItem)
}

func (r *SaleRepository) attachItems(ctx context.Context, sales []sale.Sale) ([]sale.Sale, error) {
	for i := range sales {
		items, err := r.itemsFor(ctx, r.pool, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

func scanSale(row pgx.CollectableRow) (sale.Sale, error) {
	var s sale.Sale
	err := row.Scan(
		&s.ID, &s.CustomerID, &s.InvoiceNumber, &s.SubTotal, &s.Discount, &s.Tax,
		&s.Total, &s.Paid, &s.Remaining, &s.Status, &s.PaymentMethod, &s.SaleDate,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func scanSaleItem(row pgx.CollectableRow) (sale.Item, error) {
	var it sale.Item
	err := row.Scan(
		&it.ID, &it.SaleID, &it.ProductID, &it.BatchNumber, &it.ExpiryDate,
		&it.Quantity, &it.UnitPrice, &it.Discount, &it.LineTotal,
	)
	return it, err
}

// stockMovement is one product/quantity pair to apply against stock.
type stockMovement struct {
	productID int64
	quantity  decimal.Decimal
}

func saleMovements(items []sale.Item) []stockMovement {
	out := make([]stockMovement, len(items))
	for i, item := range items {
		out[i] = stockMovement{productID: item.ProductID, quantity: item.Quantity}
	}
	return out
}

// deductStock subtracts quantities with a conditional guard; a miss means
// either the product vanished or the stock no longer covers the request.
func deductStock(ctx context.Context, tx pgx.Tx, movements []stockMovement) error {
	for _, m := range movements {
		tag, err := tx.Exec(ctx,
			`UPDATE products SET quantity = quantity - $2, updated_at = now()
			WHERE id = $1 AND quantity >= $2`,
			m.productID, m.quantity,
		)
		if err != nil {
			return fmt.Errorf("deducting stock for product %d: %w", m.productID, err)
		}
		if tag.RowsAffected() == 0 {
			return stockShortage(ctx, tx, m)
		}
	}
	return nil
}

// restoreStock adds quantities back, for deletes and update reconciliation.
func restoreStock(ctx context.Context, tx pgx.Tx, movements []stockMovement) error {
	for _, m := range movements {
		_, err := tx.Exec(ctx,
			`UPDATE products SET quantity = quantity + $2, updated_at = now()
			WHERE id = $1`,
			m.productID, m.quantity,
		)
		if err != nil {
			return fmt.Errorf("restoring stock for product %d: %w", m.productID, err)
		}
	}
	return nil
}

// stockShortage distinguishes a missing product from an insufficient
// quantity and builds the matching typed error.
func stockShortage(ctx context.Context, tx pgx.Tx, m stockMovement) error {
	var (
		name      string
		available decimal.Decimal
	)
	err := tx.QueryRow(ctx,
		`SELECT name, quantity FROM products WHERE id = $1`, m.productID,
	).Scan(&name, &available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.ErrNotFound
		}
		return fmt.Errorf("checking stock for product %d: %w", m.productID, err)
	}
	return &product.InsufficientStockError{
		ProductID: m.productID,
		Name:      name,
		Requested: m.quantity,
		Available: available,
	}
}
