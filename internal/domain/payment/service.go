package payment

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/kassa-dev/kassa/internal/domain/invoice"
)

// Service records payments and reconciles the parent document after every
// mutation: paid becomes the sum of recorded payments, remaining and status
// are rederived from the stored total. Overpayment is allowed and shows up
// as a negative remaining balance (change due).
type Service struct {
	payments Repository
	payables PayableStore
	now      func() time.Time
}

// NewService creates a payment Service with the required dependencies.
func NewService(payments Repository, payables PayableStore) *Service {
	return &Service{
		payments: payments,
		payables: payables,
		now:      time.Now,
	}
}

// Create validates and records a payment, then reconciles the parent.
func (s *Service) Create(ctx context.Context, p *Payment) (*Payment, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = s.now()
	}

	// The parent must exist before the payment is written.
	if _, err := s.payables.Total(ctx, p.PayableType, p.PayableID); err != nil {
		return nil, err
	}

	if err := s.payments.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create payment")
	}
	if err := s.reconcile(ctx, p.PayableType, p.PayableID); err != nil {
		return nil, err
	}
	return p, nil
}

// Update modifies a payment and reconciles both the old and new parent
// (they differ when the payment was moved to another document).
func (s *Service) Update(ctx context.Context, id int64, p *Payment) (*Payment, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	existing, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.ID = id
	if p.PaidAt.IsZero() {
		p.PaidAt = existing.PaidAt
	}

	if err := s.payments.Update(ctx, p); err != nil {
		return nil, errors.Wrap(err, "update payment")
	}

	if existing.PayableType != p.PayableType || existing.PayableID != p.PayableID {
		if err := s.reconcile(ctx, existing.PayableType, existing.PayableID); err != nil {
			return nil, err
		}
	}
	if err := s.reconcile(ctx, p.PayableType, p.PayableID); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a payment and reconciles its parent.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.payments.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete payment")
	}
	return s.reconcile(ctx, existing.PayableType, existing.PayableID)
}

// Get returns a single payment by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.payments.GetByID(ctx, id)
}

// List returns all payments, newest first.
func (s *Service) List(ctx context.Context) ([]Payment, error) {
	return s.payments.List(ctx)
}

// ListForPayable returns the payments recorded against one document.
func (s *Service) ListForPayable(ctx context.Context, typ PayableType, id int64) ([]Payment, error) {
	if typ != PayableSale && typ != PayablePurchase {
		return nil, ErrInvalidPayable
	}
	return s.payments.ListForPayable(ctx, typ, id)
}

// reconcile rederives the parent document's paid/remaining/status from the
// current sum of its payments.
func (s *Service) reconcile(ctx context.Context, typ PayableType, id int64) error {
	total, err := s.payables.Total(ctx, typ, id)
	if err != nil {
		return errors.Wrap(err, "load payable total")
	}

	paid, err := s.payments.SumForPayable(ctx, typ, id)
	if err != nil {
		return errors.Wrap(err, "sum payments")
	}

	remaining := total.Sub(paid).Round(2)
	status := invoice.Classify(total, paid, typ.vocabulary())

	if err := s.payables.SetPaymentState(ctx, typ, id, paid, remaining, status); err != nil {
		return errors.Wrap(err, "write payment state")
	}
	return nil
}

func validate(p *Payment) error {
	if p.PayableType != PayableSale && p.PayableType != PayablePurchase {
		return ErrInvalidPayable
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	switch p.Method {
	case MethodCash, MethodCard, MethodBankTransfer:
		return nil
	default:
		return ErrInvalidMethod
	}
}
