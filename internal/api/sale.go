package api

import (
	"net/http"
	"time"

	"github.com/kassa-dev/kassa/internal/domain/sale"
)

type saleItemRequest struct {
	ProductID   int64      `json:"product_id"`
	BatchNumber string     `json:"batch_number"`
	ExpiryDate  *time.Time `json:"expiry_date"`
	Quantity    Money      `json:"quantity"`
	UnitPrice   Money      `json:"unit_price"`
	Discount    Money      `json:"discount"`
}

type saleRequest struct {
	CustomerID    *int64            `json:"customer_id"`
	InvoiceNumber string            `json:"invoice_number"`
	Discount      Money             `json:"discount"`
	Tax           Money             `json:"tax"`
	Paid          Money             `json:"paid"`
	PaymentMethod string            `json:"payment_method"`
	SaleDate      *time.Time        `json:"sale_date"`
	Items         []saleItemRequest `json:"items"`
}

type saleItemResponse struct {
	ID          int64      `json:"id"`
	ProductID   int64      `json:"product_id"`
	BatchNumber string     `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
	Quantity    Money      `json:"quantity"`
	UnitPrice   Money      `json:"unit_price"`
	Discount    Money      `json:"discount"`
	LineTotal   Money      `json:"line_total"`
}

type saleResponse struct {
	ID            int64              `json:"id"`
	CustomerID    *int64             `json:"customer_id"`
	InvoiceNumber string             `json:"invoice_number"`
	SubTotal      Money              `json:"sub_total"`
	Discount      Money              `json:"discount"`
	Tax           Money              `json:"tax"`
	Total         Money              `json:"total"`
	Paid          Money              `json:"paid"`
	Remaining     Money              `json:"remaining"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	SaleDate      time.Time          `json:"sale_date"`
	Items         []saleItemResponse `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func (req saleRequest) toDomain() sale.Request {
	items := make([]sale.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = sale.ItemRequest{
			ProductID:   it.ProductID,
			BatchNumber: it.BatchNumber,
			ExpiryDate:  it.ExpiryDate,
			Quantity:    it.Quantity.Decimal,
			UnitPrice:   it.UnitPrice.Decimal,
			Discount:    it.Discount.Decimal,
		}
	}
	out := sale.Request{
		CustomerID:    req.CustomerID,
		InvoiceNumber: req.InvoiceNumber,
		Discount:      req.Discount.Decimal,
		Tax:           req.Tax.Decimal,
		Paid:          req.Paid.Decimal,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
	}
	if req.SaleDate != nil {
		out.SaleDate = *req.SaleDate
	}
	return out
}

func toSaleResponse(s *sale.Sale) saleResponse {
	items := make([]saleItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = saleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			BatchNumber: it.BatchNumber,
			ExpiryDate:  it.ExpiryDate,
			Quantity:    NewMoney(it.Quantity),
			UnitPrice:   NewMoney(it.UnitPrice),
			Discount:    NewMoney(it.Discount),
			LineTotal:   NewMoney(it.LineTotal),
		}
	}
	return saleResponse{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		InvoiceNumber: s.InvoiceNumber,
		SubTotal:      NewMoney(s.SubTotal),
		Discount:      NewMoney(s.Discount),
		Tax:           NewMoney(s.Tax),
		Total:         NewMoney(s.Total),
		Paid:          NewMoney(s.Paid),
		Remaining:     NewMoney(s.Remaining),
		Status:        string(s.Status),
		PaymentMethod: s.PaymentMethod,
		SaleDate:      s.SaleDate,
		Items:         items,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toSaleResponses(sales []sale.Sale) []saleResponse {
	out := make([]saleResponse, len(sales))
	for i := range sales {
		out[i] = toSaleResponse(&sales[i])
	}
	return out
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponses(sales))
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	s, err := h.sales.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponse(s))
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	s, err := h.sales.Create(r.Context(), req.toDomain())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSaleResponse(s))
}

func (h *Handler) updateSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req saleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	s, err := h.sales.Update(r.Context(), id, req.toDomain())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponse(s))
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.sales.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
