package api

import (
	"net/http"
	"time"

	"github.com/kassa-dev/kassa/internal/domain/product"
)

type productRequest struct {
	CategoryID       *int64     `json:"category_id"`
	Name             string     `json:"name"`
	SKU              string     `json:"sku"`
	Barcode          string     `json:"barcode"`
	Description      string     `json:"description"`
	CostPrice        Money      `json:"cost_price"`
	SellingPrice     Money      `json:"selling_price"`
	Quantity         Money      `json:"quantity"`
	ReorderThreshold Money      `json:"reorder_threshold"`
	ExpiryDate       *time.Time `json:"expiry_date"`
}

type productResponse struct {
	ID               int64      `json:"id"`
	CategoryID       *int64     `json:"category_id"`
	Name             string     `json:"name"`
	SKU              string     `json:"sku"`
	Barcode          string     `json:"barcode"`
	Description      string     `json:"description"`
	CostPrice        Money      `json:"cost_price"`
	SellingPrice     Money      `json:"selling_price"`
	Quantity         Money      `json:"quantity"`
	ReorderThreshold Money      `json:"reorder_threshold"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	LowStock         bool       `json:"low_stock"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:               p.ID,
		CategoryID:       p.CategoryID,
		Name:             p.Name,
		SKU:              p.SKU,
		Barcode:          p.Barcode,
		Description:      p.Description,
		CostPrice:        NewMoney(p.CostPrice),
		SellingPrice:     NewMoney(p.SellingPrice),
		Quantity:         NewMoney(p.Quantity),
		ReorderThreshold: NewMoney(p.ReorderThreshold),
		ExpiryDate:       p.ExpiryDate,
		LowStock:         p.LowStock(),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toProductResponses(products []product.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	return out
}

func (req productRequest) toDomain() product.Product {
	return product.Product{
		CategoryID:       req.CategoryID,
		Name:             req.Name,
		SKU:              req.SKU,
		Barcode:          req.Barcode,
		Description:      req.Description,
		CostPrice:        req.CostPrice.Decimal,
		SellingPrice:     req.SellingPrice.Decimal,
		Quantity:         req.Quantity.Decimal,
		ReorderThreshold: req.ReorderThreshold.Decimal,
		ExpiryDate:       req.ExpiryDate,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// searchProducts matches by name substring or exact SKU/barcode. The POS
// screen uses it for barcode-scanner input.
func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	products, err := h.products.Search(r.Context(), query)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

func (h *Handler) listLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListLowStock(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	p := req.toDomain()
	if err := h.products.Create(r.Context(), &p); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req productRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	p := req.toDomain()
	p.ID = id
	if err := h.products.Update(r.Context(), &p); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type categoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCategoryResponse(c product.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	c := product.Category{Name: req.Name, Description: req.Description}
	if err := h.categories.Create(r.Context(), &c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	c := product.Category{ID: id, Name: req.Name, Description: req.Description}
	if err := h.categories.Update(r.Context(), &c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
