package api

import (
	"net/http"
	"time"

	"github.com/kassa-dev/kassa/internal/domain/payment"
)

type paymentRequest struct {
	PayableType string     `json:"payable_type"`
	PayableID   int64      `json:"payable_id"`
	Amount      Money      `json:"amount"`
	Method      string     `json:"method"`
	Reference   string     `json:"reference"`
	PaidAt      *time.Time `json:"paid_at"`
	Notes       string     `json:"notes"`
}

type paymentResponse struct {
	ID          int64     `json:"id"`
	PayableType string    `json:"payable_type"`
	PayableID   int64     `json:"payable_id"`
	Amount      Money     `json:"amount"`
	Method      string    `json:"method"`
	Reference   string    `json:"reference,omitempty"`
	PaidAt      time.Time `json:"paid_at"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (req paymentRequest) toDomain() *payment.Payment {
	p := &payment.Payment{
		PayableType: payment.PayableType(req.PayableType),
		PayableID:   req.PayableID,
		Amount:      req.Amount.Decimal,
		Method:      payment.Method(req.Method),
		Reference:   req.Reference,
		Notes:       req.Notes,
	}
	if req.PaidAt != nil {
		p.PaidAt = *req.PaidAt
	}
	return p
}

func toPaymentResponse(p *payment.Payment) paymentResponse {
	return paymentResponse{
		ID:          p.ID,
		PayableType: string(p.PayableType),
		PayableID:   p.PayableID,
		Amount:      NewMoney(p.Amount),
		Method:      string(p.Method),
		Reference:   p.Reference,
		PaidAt:      p.PaidAt,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	var (
		payments []payment.Payment
		err      error
	)

	// Optional ?payable_type=sale&payable_id=7 filter for the document
	// detail screens.
	q := r.URL.Query()
	if typ := q.Get("payable_type"); typ != "" {
		id, parseErr := parseID(q.Get("payable_id"))
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid payable_id")
			return
		}
		payments, err = h.payments.ListForPayable(r.Context(), payment.PayableType(typ), id)
	} else {
		payments, err = h.payments.List(r.Context())
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]paymentResponse, len(payments))
	for i := range payments {
		out[i] = toPaymentResponse(&payments[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	p, err := h.payments.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	p, err := h.payments.Create(r.Context(), req.toDomain())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentResponse(p))
}

func (h *Handler) updatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req paymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	p, err := h.payments.Update(r.Context(), id, req.toDomain())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.payments.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
