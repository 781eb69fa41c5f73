// Package api exposes the store's HTTP surface: catalog, counterparties,
// sales, purchases, payments, POS checkout, settings, and reports.
package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"golang.org/x/sync/singleflight"

	"github.com/kassa-dev/kassa/internal/domain/auth"
	"github.com/kassa-dev/kassa/internal/domain/party"
	"github.com/kassa-dev/kassa/internal/domain/payment"
	"github.com/kassa-dev/kassa/internal/domain/product"
	"github.com/kassa-dev/kassa/internal/domain/purchase"
	"github.com/kassa-dev/kassa/internal/domain/report"
	"github.com/kassa-dev/kassa/internal/domain/sale"
	"github.com/kassa-dev/kassa/internal/domain/settings"
)

// Handler bundles the services behind the HTTP API.
type Handler struct {
	products   product.Repository
	categories product.CategoryRepository
	customers  party.CustomerRepository
	suppliers  party.SupplierRepository
	sales      *sale.Service
	purchases  *purchase.Service
	payments   *payment.Service
	reports    *report.Service
	settings   *settings.Service
	apikeys    auth.Repository
	pepper     []byte

	// checkouts collapses concurrent POS submits that carry the same
	// idempotency key into a single sale.
	checkouts singleflight.Group
}

// Config carries the Handler's dependencies.
type Config struct {
	Products   product.Repository
	Categories product.CategoryRepository
	Customers  party.CustomerRepository
	Suppliers  party.SupplierRepository
	Sales      *sale.Service
	Purchases  *purchase.Service
	Payments   *payment.Service
	Reports    *report.Service
	Settings   *settings.Service
	APIKeys    auth.Repository
	Pepper     []byte
}

// NewHandler creates the API handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		products:   cfg.Products,
		categories: cfg.Categories,
		customers:  cfg.Customers,
		suppliers:  cfg.Suppliers,
		sales:      cfg.Sales,
		purchases:  cfg.Purchases,
		payments:   cfg.Payments,
		reports:    cfg.Reports,
		settings:   cfg.Settings,
		apikeys:    cfg.APIKeys,
		pepper:     cfg.Pepper,
	}
}

// Routes builds the router for the /api subtree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(APIKeyAuth(h.apikeys, h.pepper))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/search", h.searchProducts)
		r.Get("/low-stock", h.listLowStock)
		r.Post("/", h.createProduct)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Post("/", h.createCategory)
		r.Put("/{id}", h.updateCategory)
		r.Delete("/{id}", h.deleteCategory)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Post("/", h.createCustomer)
		r.Get("/{id}", h.getCustomer)
		r.Put("/{id}", h.updateCustomer)
		r.Delete("/{id}", h.deleteCustomer)
	})

	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.listSuppliers)
		r.Post("/", h.createSupplier)
		r.Get("/{id}", h.getSupplier)
		r.Put("/{id}", h.updateSupplier)
		r.Delete("/{id}", h.deleteSupplier)
	})

	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.listSales)
		r.Post("/", h.createSale)
		r.Get("/{id}", h.getSale)
		r.Put("/{id}", h.updateSale)
		r.Delete("/{id}", h.deleteSale)
	})

	r.Route("/purchases", func(r chi.Router) {
		r.Get("/", h.listPurchases)
		r.Post("/", h.createPurchase)
		r.Get("/{id}", h.getPurchase)
		r.Put("/{id}", h.updatePurchase)
		r.Delete("/{id}", h.deletePurchase)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.listPayments)
		r.Post("/", h.createPayment)
		r.Get("/{id}", h.getPayment)
		r.Put("/{id}", h.updatePayment)
		r.Delete("/{id}", h.deletePayment)
	})

	r.Post("/pos/checkout", h.posCheckout)

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.listSettings)
		r.Put("/", h.updateSetting)
		r.Get("/{key}", h.getSetting)
		r.Delete("/{key}", h.deleteSetting)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/sales", h.salesReport)
		r.Get("/purchases", h.purchasesReport)
		r.Get("/inventory", h.inventoryReport)
	})
	r.Get("/dashboard", h.dashboard)

	return r
}

// idParam extracts the {id} path parameter.
func idParam(r *http.Request) (int64, error) {
	return parseID(chi.URLParam(r, "id"))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse id")
	}
	return id, nil
}
