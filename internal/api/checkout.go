package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kassa-dev/kassa/internal/domain/cart"
	"github.com/kassa-dev/kassa/internal/domain/product"
	"github.com/kassa-dev/kassa/internal/domain/sale"
)

const idempotencyKeyHeader = "Idempotency-Key"

type checkoutItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  Money `json:"quantity"`
}

type checkoutRequest struct {
	CustomerID    *int64                `json:"customer_id"`
	Items         []checkoutItemRequest `json:"items"`
	PaymentMethod string                `json:"payment_method"`
	Paid          Money                 `json:"paid"`
}

// posCheckout rings up a cart: prices come from the catalog, tax from the
// configured rate, and the result is persisted as a regular sale. A repeated
// Idempotency-Key while the first submit is still in flight returns that
// submit's sale instead of ringing the cart up twice.
func (h *Handler) posCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "cart is empty")
		return
	}

	key := r.Header.Get(idempotencyKeyHeader)
	if key == "" {
		// No key means no dedupe; a unique key keeps the flight isolated.
		key = uuid.NewString()
	}

	v, err, _ := h.checkouts.Do(key, func() (any, error) {
		return h.ringUp(r, req)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSaleResponse(v.(*sale.Sale)))
}

// ringUp converts the cart into a sale request priced from the catalog.
func (h *Handler) ringUp(r *http.Request, req checkoutRequest) (*sale.Sale, error) {
	ctx := r.Context()

	ids := make([]int64, len(req.Items))
	for i, it := range req.Items {
		ids[i] = it.ProductID
	}
	products, err := h.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	c := cart.New(h.settings.TaxRate(ctx))
	for _, it := range req.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, product.ErrNotFound
		}
		c.Add(p)
		c.SetQuantity(p.ID, it.Quantity.Decimal)
	}

	totals := c.Totals()
	items := make([]sale.ItemRequest, 0, len(c.Entries()))
	for _, e := range c.Entries() {
		items = append(items, sale.ItemRequest{
			ProductID: e.ProductID,
			Quantity:  e.Quantity,
			UnitPrice: e.UnitPrice,
		})
	}

	return h.sales.Create(ctx, sale.Request{
		CustomerID:    req.CustomerID,
		Tax:           totals.Tax,
		Paid:          req.Paid.Decimal,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
	})
}
