package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kassa-dev/kassa/internal/domain/invoice"
	"github.com/kassa-dev/kassa/internal/domain/party"
	"github.com/kassa-dev/kassa/internal/domain/payment"
	"github.com/kassa-dev/kassa/internal/domain/product"
	"github.com/kassa-dev/kassa/internal/domain/purchase"
	"github.com/kassa-dev/kassa/internal/domain/sale"
	"github.com/kassa-dev/kassa/internal/domain/settings"
)

// Money is a decimal that survives the loosely-typed form state the admin
// SPA sends: JSON numbers, numeric strings, empty strings, and null all
// decode; anything unparsable coerces to zero instead of failing the
// request. Responses render as plain JSON numbers with 2 decimals.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal for response serialization.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// UnmarshalJSON implements the coerce-to-zero policy for malformed input.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		m.Decimal = decimal.Zero
		return nil
	}
	m.Decimal = d
	return nil
}

// MarshalJSON renders the amount as an unquoted number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.StringFixed(2)), nil
}

// errorResponse is the error envelope every endpoint uses.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// writeDomainError maps domain errors onto HTTP statuses. Validation and
// stock failures carry their message verbatim so the client can show it;
// unexpected errors are logged and masked.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		stockErr   *product.InsufficientStockError
		missingErr *invoice.MissingProductError
		negErr     *invoice.NegativeLineTotalError
	)

	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, product.ErrCategoryNotFound),
		errors.Is(err, party.ErrCustomerNotFound),
		errors.Is(err, party.ErrSupplierNotFound),
		errors.Is(err, sale.ErrNotFound),
		errors.Is(err, purchase.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, settings.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, party.ErrInUse):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, invoice.ErrNoItems),
		errors.Is(err, purchase.ErrSupplierRequired),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrInvalidMethod),
		errors.Is(err, payment.ErrInvalidPayable),
		errors.As(err, &stockErr),
		errors.As(err, &missingErr),
		errors.As(err, &negErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode parses the JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "parse request body")
	}
	return nil
}
