// Package report derives the read-only aggregates behind the reports and
// dashboard screens. Everything is computed on demand from the document
// stores; item counts are small enough that no materialization is needed.
package report

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/kassa-dev/kassa/internal/domain/party"
	"github.com/kassa-dev/kassa/internal/domain/product"
	"github.com/kassa-dev/kassa/internal/domain/purchase"
	"github.com/kassa-dev/kassa/internal/domain/sale"
)

// SalesReport lists sales in a date range with revenue totals.
type SalesReport struct {
	Sales   []sale.Sale
	Summary SalesSummary
}

// SalesSummary aggregates a sales report.
type SalesSummary struct {
	TotalRevenue      decimal.Decimal
	TotalTransactions int
}

// PurchasesReport lists purchases in a date range with spend totals.
type PurchasesReport struct {
	Purchases []purchase.Purchase
	Summary   PurchasesSummary
}

// PurchasesSummary aggregates a purchases report.
type PurchasesSummary struct {
	TotalPurchases    decimal.Decimal
	TotalTransactions int
}

// InventoryReport lists the catalog with its low-stock subset.
type InventoryReport struct {
	Products []product.Product
	LowStock []product.Product
	Summary  InventorySummary
}

// InventorySummary aggregates an inventory report.
type InventorySummary struct {
	TotalProducts int
	TotalLowStock int
}

// Dashboard is the landing-screen snapshot.
type Dashboard struct {
	TodayRevenue      decimal.Decimal
	TodayTransactions int
	ProductCount      int
	CustomerCount     int
	LowStockCount     int
	RecentSales       []sale.Sale
}

// Service computes reports from the document and catalog stores.
type Service struct {
	sales     sale.Repository
	purchases purchase.Repository
	products  product.Repository
	customers party.CustomerRepository
	now       func() time.Time
}

// NewService creates a report Service with the required dependencies.
func NewService(
	sales sale.Repository,
	purchases purchase.Repository,
	products product.Repository,
	customers party.CustomerRepository,
) *Service {
	return &Service{
		sales:     sales,
		purchases: purchases,
		products:  products,
		customers: customers,
		now:       time.Now,
	}
}

// Sales returns the sales report for [from, to]. Zero bounds default to the
// beginning of time and now respectively.
func (s *Service) Sales(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	from, to = s.normalizeRange(from, to)

	sales, err := s.sales.ListBetween(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "list sales")
	}

	revenue := decimal.Zero
	for _, sl := range sales {
		revenue = revenue.Add(sl.Total)
	}

	return &SalesReport{
		Sales: sales,
		Summary: SalesSummary{
			TotalRevenue:      revenue.Round(2),
			TotalTransactions: len(sales),
		},
	}, nil
}

// Purchases returns the purchases report for [from, to].
func (s *Service) Purchases(ctx context.Context, from, to time.Time) (*PurchasesReport, error) {
	from, to = s.normalizeRange(from, to)

	purchases, err := s.purchases.ListBetween(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "list purchases")
	}

	spend := decimal.Zero
	for _, p := range purchases {
		spend = spend.Add(p.Total)
	}

	return &PurchasesReport{
		Purchases: purchases,
		Summary: PurchasesSummary{
			TotalPurchases:    spend.Round(2),
			TotalTransactions: len(purchases),
		},
	}, nil
}

// Inventory returns the full catalog with the low-stock subset highlighted.
func (s *Service) Inventory(ctx context.Context) (*InventoryReport, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	low := make([]product.Product, 0)
	for _, p := range products {
		if p.LowStock() {
			low = append(low, p)
		}
	}

	return &InventoryReport{
		Products: products,
		LowStock: low,
		Summary: InventorySummary{
			TotalProducts: len(products),
			TotalLowStock: len(low),
		},
	}, nil
}

// Dashboard returns the landing-screen snapshot: today's trade plus catalog
// and customer counts.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := s.sales.ListBetween(ctx, dayStart, now)
	if err != nil {
		return nil, errors.Wrap(err, "list today's sales")
	}

	revenue := decimal.Zero
	for _, sl := range today {
		revenue = revenue.Add(sl.Total)
	}

	products, err := s.products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	lowStock := 0
	for _, p := range products {
		if p.LowStock() {
			lowStock++
		}
	}

	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list customers")
	}

	recent := today
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return &Dashboard{
		TodayRevenue:      revenue.Round(2),
		TodayTransactions: len(today),
		ProductCount:      len(products),
		CustomerCount:     len(customers),
		LowStockCount:     lowStock,
		RecentSales:       recent,
	}, nil
}

func (s *Service) normalizeRange(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = s.now()
	}
	return from, to
}
