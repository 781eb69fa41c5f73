package api

import (
	"net/http"
	"time"

	"github.com/kassa-dev/kassa/internal/domain/purchase"
)

type purchaseItemRequest struct {
	ProductID    int64      `json:"product_id"`
	Barcode      string     `json:"barcode"`
	BatchNumber  string     `json:"batch_number"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	Quantity     Money      `json:"quantity"`
	UnitCost     Money      `json:"unit_cost"`
	SellingPrice Money      `json:"selling_price"`
	Discount     Money      `json:"discount"`
}

type purchaseRequest struct {
	SupplierID    int64                 `json:"supplier_id"`
	InvoiceNumber string                `json:"invoice_number"`
	Discount      Money                 `json:"discount"`
	Tax           Money                 `json:"tax"`
	Paid          Money                 `json:"paid"`
	PurchaseDate  *time.Time            `json:"purchase_date"`
	Items         []purchaseItemRequest `json:"items"`
}

type purchaseItemResponse struct {
	ID           int64      `json:"id"`
	ProductID    int64      `json:"product_id"`
	Barcode      string     `json:"barcode,omitempty"`
	BatchNumber  string     `json:"batch_number,omitempty"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	Quantity     Money      `json:"quantity"`
	UnitCost     Money      `json:"unit_cost"`
	SellingPrice Money      `json:"selling_price"`
	Discount     Money      `json:"discount"`
	LineTotal    Money      `json:"line_total"`
}

type purchaseResponse struct {
	ID            int64                  `json:"id"`
	SupplierID    int64                  `json:"supplier_id"`
	InvoiceNumber string                 `json:"invoice_number"`
	SubTotal      Money                  `json:"sub_total"`
	Discount      Money                  `json:"discount"`
	Tax           Money                  `json:"tax"`
	Total         Money                  `json:"total"`
	Paid          Money                  `json:"paid"`
	Remaining     Money                  `json:"remaining"`
	Status        string                 `json:"status"`
	PurchaseDate  time.Time              `json:"purchase_date"`
	Items         []purchaseItemResponse `json:"items"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

func (req purchaseRequest) toDomain() purchase.Request {
	items := make([]purchase.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = purchase.ItemRequest{
			ProductID:    it.ProductID,
			Barcode:      it.Barcode,
			BatchNumber:  it.BatchNumber,
			ExpiryDate:   it.ExpiryDate,
			Quantity:     it.Quantity.Decimal,
			UnitCost:     it.UnitCost.Decimal,
			SellingPrice: it.SellingPrice.Decimal,
			Discount:     it.Discount.Decimal,
		}
	}
	out := purchase.Request{
		SupplierID:    req.SupplierID,
		InvoiceNumber: req.InvoiceNumber,
		Discount:      req.Discount.Decimal,
		Tax:           req.Tax.Decimal,
		Paid:          req.Paid.Decimal,
		Items:         items,
	}
	if req.PurchaseDate != nil {
		out.PurchaseDate = *req.PurchaseDate
	}
	return out
}

func toPurchaseResponse(p *purchase.Purchase) purchaseResponse {
	items := make([]purchaseItemResponse, len(p.Items))
	for i, it := range p.Items {
		items[i] = purchaseItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			Barcode:      it.Barcode,
			BatchNumber:  it.BatchNumber,
			ExpiryDate:   it.ExpiryDate,
			Quantity:     NewMoney(it.Quantity),
			UnitCost:     NewMoney(it.UnitCost),
			SellingPrice: NewMoney(it.SellingPrice),
			Discount:     NewMoney(it.Discount),
			LineTotal:    NewMoney(it.LineTotal),
		}
	}
	return purchaseResponse{
		ID:            p.ID,
		SupplierID:    p.SupplierID,
		InvoiceNumber: p.InvoiceNumber,
		SubTotal:      NewMoney(p.SubTotal),
		Discount:      NewMoney(p.Discount),
		Tax:           NewMoney(p.Tax),
		Total:         NewMoney(p.Total),
		Paid:          NewMoney(p.Paid),
		Remaining:     NewMoney(p.Remaining),
		Status:        string(p.Status),
		PurchaseDate:  p.PurchaseDate,
		Items:         items,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.purchases.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]purchaseResponse, len(purchases))
	for i := range purchases {
		out[i] = toPurchaseResponse(&purchases[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	p, err := h.purchases.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseResponse(p))
}

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	p, err := h.purchases.Create(r.Context(), req.toDomain())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPurchaseResponse(p))
}

func (h *Handler) updatePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req purchaseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	p, err := h.purchases.Update(r.Context(), id, req.toDomain())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseResponse(p))
}

func (h *Handler) deletePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.purchases.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
