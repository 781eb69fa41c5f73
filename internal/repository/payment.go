package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kassa-dev/kassa/internal/domain/invoice"
	"github.com/kassa-dev/kassa/internal/domain/payment"
	"github.com/kassa-dev/kassa/internal/domain/purchase"
	"github.com/kassa-dev/kassa/internal/domain/sale"
)

const paymentColumns = `id, payable_type, payable_id, amount, method, reference,
	paid_at, notes, created_at, updated_at`

var _ payment.Repository = (*PaymentRepository)(nil)

// PaymentRepository implements payment.Repository backed by PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository returns a PaymentRepository that uses the given pool.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// List returns all payments, newest first.
func (r *PaymentRepository) List(ctx context.Context) ([]payment.Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments ORDER BY paid_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	return pgx.CollectRows(rows, scanPayment)
}

// ListForPayable returns the payments recorded against one document.
func (r *PaymentRepository) ListForPayable(ctx context.Context, typ payment.PayableType, id int64) ([]payment.Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments
		WHERE payable_type = $1 AND payable_id = $2
		ORDER BY paid_at DESC, id DESC`, typ, id)
	if err != nil {
		return nil, fmt.Errorf("listing payments for %s %d: %w", typ, id, err)
	}
	return pgx.CollectRows(rows, scanPayment)
}

// GetByID returns a single payment by its identifier.
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*payment.Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting payment %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPayment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrNotFound
		}
		return nil, fmt.Errorf("getting payment %d: %w", id, err)
	}
	return &p, nil
}

// Create inserts a new payment and fills in its generated ID and timestamps.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payments (payable_type, payable_id, amount, method, reference, paid_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		p.PayableType, p.PayableID, p.Amount, p.Method, p.Reference, p.PaidAt, p.Notes,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating payment: %w", err)
	}
	return nil
}

// Update rewrites the payment's mutable columns.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET payable_type = $2, payable_id = $3, amount = $4,
			method = $5, reference = $6, paid_at = $7, notes = $8, updated_at = now()
		WHERE id = $1`,
		p.ID, p.PayableType, p.PayableID, p.Amount, p.Method, p.Reference, p.PaidAt, p.Notes,
	)
	if err != nil {
		return fmt.Errorf("updating payment %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrNotFound
	}
	return nil
}

// Delete removes a payment by ID.
func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting payment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrNotFound
	}
	return nil
}

// SumForPayable returns the total recorded against one document.
func (r *PaymentRepository) SumForPayable(ctx context.Context, typ payment.PayableType, id int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE payable_type = $1 AND payable_id = $2`, typ, id,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing payments for %s %d: %w", typ, id, err)
	}
	return sum, nil
}

func scanPayment(row pgx.CollectableRow) (payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID, &p.PayableType, &p.PayableID, &p.Amount, &p.Method, &p.Reference,
		&p.PaidAt, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

var _ payment.PayableStore = (*PayableStore)(nil)

// PayableStore implements payment.PayableStore over the sales and
// purchases tables.
type PayableStore struct {
	pool *pgxpool.Pool
}

// NewPayableStore returns a PayableStore that uses the given pool.
func NewPayableStore(pool *pgxpool.Pool) *PayableStore {
	return &PayableStore{pool: pool}
}

// Total returns the grand total of the referenced document.
func (s *PayableStore) Total(ctx context.Context, typ payment.PayableType, id int64) (decimal.Decimal, error) {
	table, notFound, err := payableTable(typ)
	if err != nil {
		return decimal.Zero, err
	}

	var total decimal.Decimal
	err = s.pool.QueryRow(ctx, `SELECT total FROM `+table+` WHERE id = $1`, id).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, notFound
		}
		return decimal.Zero, fmt.Errorf("getting %s %d total: %w", typ, id, err)
	}
	return total, nil
}

// SetPaymentState writes the reconciled paid/remaining/status back onto
// the referenced document.
func (s *PayableStore) SetPaymentState(ctx context.Context, typ payment.PayableType, id int64,
	paid, remaining decimal.Decimal, status invoice.Status,
) error {
	table, notFound, err := payableTable(typ)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE `+table+` SET paid = $2, remaining = $3, status = $4, updated_at = now()
		WHERE id = $1`,
		id, paid, remaining, status,
	)
	if err != nil {
		return fmt.Errorf("updating %s %d payment state: %w", typ, id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

func payableTable(typ payment.PayableType) (table string, notFound error, err error) {
	switch typ {
	case payment.PayableSale:
		return "sales", sale.ErrNotFound, nil
	case payment.PayablePurchase:
		return "purchases", purchase.ErrNotFound, nil
	default:
		return "", nil, payment.ErrInvalidPayable
	}
}
