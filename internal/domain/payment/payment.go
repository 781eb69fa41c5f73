// Package payment records money moving against sales and purchases and
// keeps the parent document's paid/remaining/status reconciled with the
// sum of its payments.
package payment

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/kassa-dev/kassa/internal/domain/invoice"
)

// PayableType identifies which document family a payment settles.
type PayableType string

const (
	// PayableSale attaches the payment to a sale.
	PayableSale PayableType = "sale"
	// PayablePurchase attaches the payment to a purchase.
	PayablePurchase PayableType = "purchase"
)

// Method enumerates the accepted payment methods.
type Method string

const (
	MethodCash         Method = "cash"
	MethodCard         Method = "card"
	MethodBankTransfer Method = "bank_transfer"
)

var (
	// ErrNotFound is returned when a requested payment does not exist.
	ErrNotFound = errors.New("payment not found")
	// ErrInvalidAmount is returned for a zero or negative payment amount.
	ErrInvalidAmount = errors.New("payment amount must be greater than 0")
	// ErrInvalidMethod is returned for an unknown payment method.
	ErrInvalidMethod = errors.New("unknown payment method")
	// ErrInvalidPayable is returned for an unknown payable type.
	ErrInvalidPayable = errors.New("payable type must be sale or purchase")
)

// Payment is one recorded payment against a sale or purchase.
type Payment struct {
	ID          int64
	PayableType PayableType
	PayableID   int64
	Amount      decimal.Decimal
	Method      Method
	Reference   string
	PaidAt      time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines persistence operations for payments.
type Repository interface {
	List(ctx context.Context) ([]Payment, error)
	ListForPayable(ctx context.Context, typ PayableType, id int64) ([]Payment, error)
	GetByID(ctx context.Context, id int64) (*Payment, error)
	Create(ctx context.Context, p *Payment) error
	Update(ctx context.Context, p *Payment) error
	Delete(ctx context.Context, id int64) error
	// SumForPayable returns the total of all payments recorded against the
	// given document.
	SumForPayable(ctx context.Context, typ PayableType, id int64) (decimal.Decimal, error)
}

// PayableStore exposes the parent-document fields the reconciler needs:
// the grand total to settle against and a way to write back the derived
// payment fields.
type PayableStore interface {
	Total(ctx context.Context, typ PayableType, id int64) (decimal.Decimal, error)
	SetPaymentState(ctx context.Context, typ PayableType, id int64,
		paid, remaining decimal.Decimal, status invoice.Status) error
}

// vocabulary maps a payable type onto its status vocabulary.
func (t PayableType) vocabulary() invoice.Vocabulary {
	if t == PayablePurchase {
		return invoice.VocabularyPurchase
	}
	return invoice.VocabularySale
}
