package report

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kassa-dev/kassa/internal/domain/party"
	"github.com/kassa-dev/kassa/internal/domain/product"
	"github.com/kassa-dev/kassa/internal/domain/purchase"
	"github.com/kassa-dev/kassa/internal/domain/sale"
)

// --- Mock implementations ---

type mockSaleRepo struct {
	sales []sale.Sale
	from  time.Time
	to    time.Time
}

func (m *mockSaleRepo) List(_ context.Context) ([]sale.Sale, error) { return m.sales, nil }

func (m *mockSaleRepo) ListBetween(_ context.Context, from, to time.Time) ([]sale.Sale, error) {
	m.from, m.to = from, to
	return m.sales, nil
}

func (m *mockSaleRepo) GetByID(_ context.Context, _ int64) (*sale.Sale, error) {
	return nil, sale.ErrNotFound
}
func (m *mockSaleRepo) Create(_ context.Context, _ *sale.Sale) error { return nil }
func (m *mockSaleRepo) Update(_ context.Context, _ *sale.Sale) error { return nil }
func (m *mockSaleRepo) Delete(_ context.Context, _ int64) error      { return nil }

type mockPurchaseRepo struct {
	purchases []purchase.Purchase
}

func (m *mockPurchaseRepo) List(_ context.Context) ([]purchase.Purchase, error) {
	return m.purchases, nil
}

func (m *mockPurchaseRepo) ListBetween(_ context.Context, _, _ time.Time) ([]purchase.Purchase, error) {
	return m.purchases, nil
}

func (m *mockPurchaseRepo) GetByID(_ context.Context, _ int64) (*purchase.Purchase, error) {
	return nil, purchase.ErrNotFound
}
func (m *mockPurchaseRepo) Create(_ context.Context, _ *purchase.Purchase) error { return nil }
func (m *mockPurchaseRepo) Update(_ context.Context, _ *purchase.Purchase) error { return nil }
func (m *mockPurchaseRepo) Delete(_ context.Context, _ int64) error              { return nil }

type mockProductRepo struct {
	products []product.Product
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	return m.products, nil
}
func (m *mockProductRepo) Search(_ context.Context, _ string) ([]product.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) GetByID(_ context.Context, _ int64) (*product.Product, error) {
	return nil, product.ErrNotFound
}
func (m *mockProductRepo) GetByIDs(_ context.Context, _ []int64) ([]product.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, _ int64) error            { return nil }
func (m *mockProductRepo) ListLowStock(_ context.Context) ([]product.Product, error) {
	return nil, nil
}

type mockCustomerRepo struct {
	customers []party.Customer
}

func (m *mockCustomerRepo) List(_ context.Context) ([]party.Customer, error) {
	return m.customers, nil
}
func (m *mockCustomerRepo) GetByID(_ context.Context, _ int64) (*party.Customer, error) {
	return nil, party.ErrCustomerNotFound
}
func (m *mockCustomerRepo) Create(_ context.Context, _ *party.Customer) error { return nil }
func (m *mockCustomerRepo) Update(_ context.Context, _ *party.Customer) error { return nil }
func (m *mockCustomerRepo) Delete(_ context.Context, _ int64) error           { return nil }

// --- Helpers ---

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newService(sales *mockSaleRepo, purchases *mockPurchaseRepo, products *mockProductRepo, customers *mockCustomerRepo) *Service {
	if sales == nil {
		sales = &mockSaleRepo{}
	}
	if purchases == nil {
		purchases = &mockPurchaseRepo{}
	}
	if products == nil {
		products = &mockProductRepo{}
	}
	if customers == nil {
		customers = &mockCustomerRepo{}
	}
	return NewService(sales, purchases, products, customers)
}

// --- Tests ---

func TestSales_SumsRevenue(t *testing.T) {
	sales := &mockSaleRepo{sales: []sale.Sale{
		{ID: 1, Total: d("95.00")},
		{ID: 2, Total: d("12.50")},
	}}
	svc := newService(sales, nil, nil, nil)

	rep, err := svc.Sales(context.Background(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	)

	require.NoError(t, err)
	assert.Len(t, rep.Sales, 2)
	assert.True(t, d("107.50").Equal(rep.Summary.TotalRevenue))
	assert.Equal(t, 2, rep.Summary.TotalTransactions)
}

func TestSales_ZeroUpperBoundDefaultsToNow(t *testing.T) {
	sales := &mockSaleRepo{}
	svc := newService(sales, nil, nil, nil)
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.Sales(context.Background(), time.Time{}, time.Time{})

	require.NoError(t, err)
	assert.Equal(t, fixed, sales.to)
}

func TestPurchases_SumsSpend(t *testing.T) {
	purchases := &mockPurchaseRepo{purchases: []purchase.Purchase{
		{ID: 1, Total: d("75.24")},
		{ID: 2, Total: d("4.76")},
	}}
	svc := newService(nil, purchases, nil, nil)

	rep, err := svc.Purchases(context.Background(), time.Time{}, time.Time{})

	require.NoError(t, err)
	assert.True(t, d("80.00").Equal(rep.Summary.TotalPurchases))
	assert.Equal(t, 2, rep.Summary.TotalTransactions)
}

func TestInventory_SplitsLowStock(t *testing.T) {
	products := &mockProductRepo{products: []product.Product{
		{ID: 1, Name: "Coffee", Quantity: d("5"), ReorderThreshold: d("8")},
		{ID: 2, Name: "Milk", Quantity: d("120"), ReorderThreshold: d("24")},
		{ID: 3, Name: "Eggs", Quantity: d("12"), ReorderThreshold: d("12")},
	}}
	svc := newService(nil, nil, products, nil)

	rep, err := svc.Inventory(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, rep.Summary.TotalProducts)
	assert.Equal(t, 2, rep.Summary.TotalLowStock)
	require.Len(t, rep.LowStock, 2)
	assert.Equal(t, "Coffee", rep.LowStock[0].Name)
	assert.Equal(t, "Eggs", rep.LowStock[1].Name)
}

func TestDashboard(t *testing.T) {
	todaySales := make([]sale.Sale, 7)
	for i := range todaySales {
		todaySales[i] = sale.Sale{ID: int64(i + 1), Total: d("10.00")}
	}
	sales := &mockSaleRepo{sales: todaySales}
	products := &mockProductRepo{products: []product.Product{
		{ID: 1, Quantity: d("2"), ReorderThreshold: d("8")},
		{ID: 2, Quantity: d("50"), ReorderThreshold: d("8")},
	}}
	customers := &mockCustomerRepo{customers: []party.Customer{{ID: 1}, {ID: 2}, {ID: 3}}}

	svc := newService(sales, nil, products, customers)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 16, 30, 0, 0, time.UTC) }

	dash, err := svc.Dashboard(context.Background())

	require.NoError(t, err)
	assert.True(t, d("70.00").Equal(dash.TodayRevenue))
	assert.Equal(t, 7, dash.TodayTransactions)
	assert.Equal(t, 2, dash.ProductCount)
	assert.Equal(t, 3, dash.CustomerCount)
	assert.Equal(t, 1, dash.LowStockCount)
	assert.Len(t, dash.RecentSales, 5)

	// Queried window is the current day only.
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), sales.from)
}
