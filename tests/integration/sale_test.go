//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var invoicePattern = regexp.MustCompile(`^INV-\d{8}-[0-9A-F]{6}$`)

func TestCreateSale_NoAuth(t *testing.T) {
	req := saleRequest{
		Items: []saleItemRequest{{ProductID: 1, Quantity: "1", UnitPrice: "1.29"}},
	}
	resp := doPostNoAuth(t, "/api/sales", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateSale_InvalidKey(t *testing.T) {
	req := saleRequest{
		Items: []saleItemRequest{{ProductID: 1, Quantity: "1", UnitPrice: "1.29"}},
	}
	resp := doPostWithKey(t, "/api/sales", req, "wrong-key")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateSale_EmptyItems(t *testing.T) {
	resp := doPost(t, "/api/sales", saleRequest{Items: []saleItemRequest{}})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCreateSale_UnknownProduct(t *testing.T) {
	req := saleRequest{
		Items: []saleItemRequest{{ProductID: 99999, Quantity: "1", UnitPrice: "1.00"}},
	}
	resp := doPost(t, "/api/sales", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateSale_ComputesTotals(t *testing.T) {
	// 2 x Ground Coffee @ 7.99 with a 1.00 line discount.
	req := saleRequest{
		Items: []saleItemRequest{
			{ProductID: 4, Quantity: "2", UnitPrice: "7.99", Discount: "1.00"},
		},
		Tax:  "1.50",
		Paid: "10.00",
	}
	resp := doPost(t, "/api/sales", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	sale := decodeJSON[saleResponse](t, resp)
	if sale.SubTotal != 14.98 {
		t.Errorf("sub_total: got %v, want 14.98", sale.SubTotal)
	}
	if sale.Total != 16.48 {
		t.Errorf("total: got %v, want 16.48", sale.Total)
	}
	if sale.Remaining != 6.48 {
		t.Errorf("remaining: got %v, want 6.48", sale.Remaining)
	}
	if sale.Status != "partial" {
		t.Errorf("status: got %q, want partial", sale.Status)
	}
	if !invoicePattern.MatchString(sale.InvoiceNumber) {
		t.Errorf("invoice_number %q does not match %s", sale.InvoiceNumber, invoicePattern)
	}
}

func TestCheckout_DefaultTaxRate(t *testing.T) {
	// 2 x Whole Milk @ 1.29 = 2.58, plus the seeded 10% tax = 2.84.
	req := checkoutRequest{
		Items: []saleItemRequest{
			{ProductID: 1, Quantity: "2"},
		},
		PaymentMethod: "cash",
		Paid:          "2.84",
	}
	resp := doPost(t, "/api/pos/checkout", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	sale := decodeJSON[saleResponse](t, resp)
	if sale.SubTotal != 2.58 {
		t.Errorf("sub_total: got %v, want 2.58", sale.SubTotal)
	}
	if sale.Tax != 0.26 {
		t.Errorf("tax: got %v, want 0.26", sale.Tax)
	}
	if sale.Total != 2.84 {
		t.Errorf("total: got %v, want 2.84", sale.Total)
	}
	if sale.Status != "paid" {
		t.Errorf("status: got %q, want paid", sale.Status)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	resp := doPost(t, "/api/pos/checkout", checkoutRequest{Items: []saleItemRequest{}})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestSale_InsufficientStock(t *testing.T) {
	// Olive Oil is seeded with 25 on hand.
	req := saleRequest{
		Items: []saleItemRequest{
			{ProductID: 6, Quantity: "9999", UnitPrice: "8.49"},
		},
	}
	resp := doPost(t, "/api/sales", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusUnprocessableEntity {
		t.Errorf("code: got %d, want 422", body.Code)
	}
}
