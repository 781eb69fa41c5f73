package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kassa-dev/kassa/internal/domain/purchase"
)

const purchaseColumns = `id, supplier_id, invoice_number, sub_total, discount, tax,
	total, paid, remaining, status, purchase_date, created_at, updated_at`

var _ purchase.Repository = (*PurchaseRepository)(nil)

// PurchaseRepository implements purchase.Repository backed by PostgreSQL.
// Receiving a purchase adds to stock and refreshes product prices in the
// same transaction as the document write.
type PurchaseRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseRepository returns a PurchaseRepository that uses the given pool.
func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

// List returns all purchases with their items, newest first.
func (r *PurchaseRepository) List(ctx context.Context) ([]purchase.Purchase, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+purchaseColumns+` FROM purchases ORDER BY purchase_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	purchases, err := pgx.CollectRows(rows, scanPurchase)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	return r.attachItems(ctx, purchases)
}

// ListBetween returns purchases whose purchase_date falls in [from, to].
func (r *PurchaseRepository) ListBetween(ctx context.Context, from, to time.Time) ([]purchase.Purchase, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+purchaseColumns+` FROM purchases
		WHERE purchase_date >= $1 AND purchase_date <= $2
		ORDER BY purchase_date DESC, id DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing purchases between: %w", err)
	}
	purchases, err := pgx.CollectRows(rows, scanPurchase)
	if err != nil {
		return nil, fmt.Errorf("listing purchases between: %w", err)
	}
	return r.attachItems(ctx, purchases)
}

// GetByID returns a single purchase with its items.
func (r *PurchaseRepository) GetByID(ctx context.Context, id int64) (*purchase.Purchase, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting purchase %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPurchase)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, purchase.ErrNotFound
		}
		return nil, fmt.Errorf("getting purchase %d: %w", id, err)
	}

	items, err := r.itemsFor(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return &p, nil
}

// Create persists a new purchase, adds the received quantities to stock,
// and refreshes each product's cost and selling price.
func (r *PurchaseRepository) Create(ctx context.Context, p *purchase.Purchase) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO purchases (supplier_id, invoice_number, sub_total, discount,
				tax, total, paid, remaining, status, purchase_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at, updated_at`,
			p.SupplierID, p.InvoiceNumber, p.SubTotal, p.Discount, p.Tax,
			p.Total, p.Paid, p.Remaining, p.Status, p.PurchaseDate,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting purchase %q: %w", p.InvoiceNumber, err)
		}

		if err := r.insertItems(ctx, tx, p); err != nil {
			return err
		}
		return receiveStock(ctx, tx, p.Items)
	})
}

// Update rewrites the purchase and reconciles stock: the old received
// quantities are backed out, then the new quantities applied.
func (r *PurchaseRepository) Update(ctx context.Context, p *purchase.Purchase) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		old, err := r.itemsFor(ctx, tx, p.ID)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE purchases SET supplier_id = $2, invoice_number = $3, sub_total = $4,
				discount = $5, tax = $6, total = $7, paid = $8, remaining = $9,
				status = $10, purchase_date = $11, updated_at = now()
			WHERE id = $1`,
			p.ID, p.SupplierID, p.InvoiceNumber, p.SubTotal, p.Discount, p.Tax,
			p.Total, p.Paid, p.Remaining, p.Status, p.PurchaseDate,
		)
		if err != nil {
			return fmt.Errorf("updating purchase %d: %w", p.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return purchase.ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clearing purchase items %d: %w", p.ID, err)
		}
		if err := r.insertItems(ctx, tx, p); err != nil {
			return err
		}

		if err := restoreStock(ctx, tx, negatePurchase(old)); err != nil {
			return err
		}
		return receiveStock(ctx, tx, p.Items)
	})
}

// Delete removes a purchase and backs the received stock out again.
func (r *PurchaseRepository) Delete(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		items, err := r.itemsFor(ctx, tx, id)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("deleting purchase %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return purchase.ErrNotFound
		}
		return restoreStock(ctx, tx, negatePurchase(items))
	})
}

func (r *PurchaseRepository) insertItems(ctx context.Context, tx pgx.Tx, p *purchase.Purchase) error {
	for i := range p.Items {
		item := &p.Items[i]
		item.PurchaseID = p.ID
		err := tx.QueryRow(ctx,
			`INSERT INTO purchase_items (purchase_id, product_id, barcode, batch_number,
				expiry_date, quantity, unit_cost, selling_price, discount, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`,
			item.PurchaseID, item.ProductID, item.Barcode, item.BatchNumber,
			item.ExpiryDate, item.Quantity, item.UnitCost, item.SellingPrice,
			item.Discount, item.LineTotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("inserting purchase item for product %d: %w", item.ProductID, err)
		}
	}
	return nil
}

func (r *PurchaseRepository) itemsFor(ctx context.Context, q querier, purchaseID int64) ([]purchase.Item, error) {
	rows, err := q.Query(ctx,
		`SELECT id, purchase_id, product_id, barcode, batch_number, expiry_date,
			quantity, unit_cost, selling_price, discount, line_total
		FROM purchase_items WHERE purchase_id = $1 ORDER BY id`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("listing purchase items %d: %w", purchaseID, err)
	}
	return pgx.CollectRows(rows, scanPurchaseItem)
}

func (r *PurchaseRepository) attachItems(ctx context.Context, purchases []purchase.Purchase) ([]purchase.Purchase, error) {
	for i := range purchases {
		items, err := r.itemsFor(ctx, r.pool, purchases[i].ID)
		if err != nil {
			return nil, err
		}
		purchases[i].Items = items
	}
	return purchases, nil
}

func scanPurchase(row pgx.CollectableRow) (purchase.Purchase, error) {
	var p purchase.Purchase
	err := row.Scan(
		&p.ID, &p.SupplierID, &p.InvoiceNumber, &p.SubTotal, &p.Discount, &p.Tax,
		&p.Total, &p.Paid, &p.Remaining, &p.Status, &p.PurchaseDate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanPurchaseItem(row pgx.CollectableRow) (purchase.Item, error) {
	var it purchase.Item
	err := row.Scan(
		&it.ID, &it.PurchaseID, &it.ProductID, &it.Barcode, &it.BatchNumber,
		&it.ExpiryDate, &it.Quantity, &it.UnitCost, &it.SellingPrice,
		&it.Discount, &it.LineTotal,
	)
	return it, err
}

// receiveStock adds received quantities and refreshes product prices. A
// zero selling price on the item keeps the product's current price.
func receiveStock(ctx context.Context, tx pgx.Tx, items []purchase.Item) error {
	for _, item := range items {
		tag, err := tx.Exec(ctx,
			`UPDATE products SET
				quantity = quantity + $2,
				cost_price = $3,
				selling_price = CASE WHEN $4::numeric > 0 THEN $4 ELSE selling_price END,
				updated_at = now()
			WHERE id = $1`,
			item.ProductID, item.Quantity, item.UnitCost, item.SellingPrice,
		)
		if err != nil {
			return fmt.Errorf("receiving stock for product %d: %w", item.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return errors.Errorf("product %d not found", item.ProductID)
		}
	}
	return nil
}

// negatePurchase converts purchase items into negative stock movements so
// restoreStock backs them out.
func negatePurchase(items []purchase.Item) []stockMovement {
	out := make([]stockMovement, len(items))
	for i, item := range items {
		out[i] = stockMovement{productID: item.ProductID, quantity: item.Quantity.Neg()}
	}
	return out
}
