package payment

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kassa-dev/kassa/internal/domain/invoice"
)

// --- Mock implementations ---

type mockPaymentRepo struct {
	byID   map[int64]*Payment
	nextID int64
	sums   map[string]decimal.Decimal
}

func newPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{
		byID: make(map[int64]*Payment),
		sums: make(map[string]decimal.Decimal),
	}
}

func key(typ PayableType, id int64) string {
	return string(typ) + "/" + decimal.NewFromInt(id).String()
}

func (m *mockPaymentRepo) List(_ context.Context) ([]Payment, error) { return nil, nil }

func (m *mockPaymentRepo) ListForPayable(_ context.Context, _ PayableType, _ int64) ([]Payment, error) {
	return nil, nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id int64) (*Payment, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockPaymentRepo) Create(_ context.Context, p *Payment) error {
	m.nextID++
	p.ID = m.nextID
	m.byID[p.ID] = p
	k := key(p.PayableType, p.PayableID)
	m.sums[k] = m.sums[k].Add(p.Amount)
	return nil
}

func (m *mockPaymentRepo) Update(_ context.Context, p *Payment) error {
	old := m.byID[p.ID]
	oldKey := key(old.PayableType, old.PayableID)
	m.sums[oldKey] = m.sums[oldKey].Sub(old.Amount)
	m.byID[p.ID] = p
	k := key(p.PayableType, p.PayableID)
	m.sums[k] = m.sums[k].Add(p.Amount)
	return nil
}

func (m *mockPaymentRepo) Delete(_ context.Context, id int64) error {
	p := m.byID[id]
	k := key(p.PayableType, p.PayableID)
	m.sums[k] = m.sums[k].Sub(p.Amount)
	delete(m.byID, id)
	return nil
}

func (m *mockPaymentRepo) SumForPayable(_ context.Context, typ PayableType, id int64) (decimal.Decimal, error) {
	return m.sums[key(typ, id)], nil
}

type payableState struct {
	paid      decimal.Decimal
	remaining decimal.Decimal
	status    invoice.Status
}

type mockPayableStore struct {
	totals map[string]decimal.Decimal
	states map[string]payableState
}

func newPayableStore() *mockPayableStore {
	return &mockPayableStore{
		totals: make(map[string]decimal.Decimal),
		states: make(map[string]payableState),
	}
}

func (m *mockPayableStore) Total(_ context.Context, typ PayableType, id int64) (decimal.Decimal, error) {
	total, ok := m.totals[key(typ, id)]
	if !ok {
		return decimal.Zero, errors.New("payable not found")
	}
	return total, nil
}

func (m *mockPayableStore) SetPaymentState(_ context.Context, typ PayableType, id int64,
	paid, remaining decimal.Decimal, status invoice.Status,
) error {
	m.states[key(typ, id)] = payableState{paid: paid, remaining: remaining, status: status}
	return nil
}

// --- Helpers ---

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func cashPayment(typ PayableType, payableID int64, amount string) *Payment {
	return &Payment{
		PayableType: typ,
		PayableID:   payableID,
		Amount:      d(amount),
		Method:      MethodCash,
	}
}

// --- Tests ---

func TestCreate_ReconcilesParent(t *testing.T) {
	payments := newPaymentRepo()
	payables := newPayableStore()
	payables.totals[key(PayableSale, 1)] = d("100.00")
	svc := NewService(payments, payables)

	_, err := svc.Create(context.Background(), cashPayment(PayableSale, 1, "40.00"))
	require.NoError(t, err)

	state := payables.states[key(PayableSale, 1)]
	assert.True(t, d("40.00").Equal(state.paid))
	assert.True(t, d("60.00").Equal(state.remaining))
	assert.Equal(t, invoice.StatusPartial, state.status)

	// A second payment settles the document.
	_, err = svc.Create(context.Background(), cashPayment(PayableSale, 1, "60.00"))
	require.NoError(t, err)

	state = payables.states[key(PayableSale, 1)]
	assert.True(t, d("100.00").Equal(state.paid))
	assert.True(t, state.remaining.IsZero())
	assert.Equal(t, invoice.StatusPaid, state.status)
}

func TestCreate_OverpaymentAllowed(t *testing.T) {
	payments := newPaymentRepo()
	payables := newPayableStore()
	payables.totals[key(PayableSale, 1)] = d("50.00")
	svc := NewService(payments, payables)

	_, err := svc.Create(context.Background(), cashPayment(PayableSale, 1, "70.00"))
	require.NoError(t, err)

	state := payables.states[key(PayableSale, 1)]
	assert.True(t, d("-20.00").Equal(state.remaining))
	assert.Equal(t, invoice.StatusPaid, state.status)
}

func TestCreate_PurchaseVocabulary(t *testing.T) {
	payments := newPaymentRepo()
	payables := newPayableStore()
	payables.totals[key(PayablePurchase, 3)] = d("100.00")
	svc := NewService(payments, payables)

	p := cashPayment(PayablePurchase, 3, "10.00")
	_, err := svc.Create(context.Background(), p)
	require.NoError(t, err)

	// Remove the only payment: the purchase reverts to credit, not unpaid.
	require.NoError(t, svc.Delete(context.Background(), p.ID))

	state := payables.states[key(PayablePurchase, 3)]
	assert.True(t, state.paid.IsZero())
	assert.Equal(t, invoice.StatusCredit, state.status)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newPaymentRepo(), newPayableStore())

	tests := []struct {
		name    string
		payment *Payment
		wantErr error
	}{
		{"zero amount", &Payment{PayableType: PayableSale, PayableID: 1, Method: MethodCash}, ErrInvalidAmount},
		{"negative amount", cashPayment(PayableSale, 1, "-5.00"), ErrInvalidAmount},
		{"bad method", &Payment{PayableType: PayableSale, PayableID: 1, Amount: d("5"), Method: "barter"}, ErrInvalidMethod},
		{"bad payable type", &Payment{PayableType: "loan", PayableID: 1, Amount: d("5"), Method: MethodCash}, ErrInvalidPayable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.payment)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreate_UnknownParent(t *testing.T) {
	svc := NewService(newPaymentRepo(), newPayableStore())

	_, err := svc.Create(context.Background(), cashPayment(PayableSale, 99, "10.00"))
	require.Error(t, err)
}

func TestUpdate_MovedPaymentReconcilesBothParents(t *testing.T) {
	payments := newPaymentRepo()
	payables := newPayableStore()
	payables.totals[key(PayableSale, 1)] = d("100.00")
	payables.totals[key(PayableSale, 2)] = d("100.00")
	svc := NewService(payments, payables)

	p, err := svc.Create(context.Background(), cashPayment(PayableSale, 1, "100.00"))
	require.NoError(t, err)

	moved := cashPayment(PayableSale, 2, "100.00")
	_, err = svc.Update(context.Background(), p.ID, moved)
	require.NoError(t, err)

	oldState := payables.states[key(PayableSale, 1)]
	assert.True(t, oldState.paid.IsZero())
	assert.Equal(t, invoice.StatusUnpaid, oldState.status)

	newState := payables.states[key(PayableSale, 2)]
	assert.True(t, d("100.00").Equal(newState.paid))
	assert.Equal(t, invoice.StatusPaid, newState.status)
}
