//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 8 {
		t.Fatalf("expected 8 products, got %d", len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var milk *productResponse
	for i := range products {
		if products[i].SKU == "DAIRY-001" {
			milk = &products[i]
			break
		}
	}

	if milk == nil {
		t.Fatal("product DAIRY-001 not found")
	}
	if milk.Name != "Whole Milk 1L" {
		t.Errorf("name: got %q, want %q", milk.Name, "Whole Milk 1L")
	}
	if milk.SellingPrice != 1.29 {
		t.Errorf("selling_price: got %v, want 1.29", milk.SellingPrice)
	}
	if milk.Barcode != "4006381333931" {
		t.Errorf("barcode: got %q, want %q", milk.Barcode, "4006381333931")
	}
	if milk.LowStock {
		t.Error("milk should not be low on stock")
	}
}

func TestSearchProducts_ByBarcode(t *testing.T) {
	resp := doGet(t, "/api/products/search?q=4006381333962")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].Name != "Ground Coffee 500g" {
		t.Errorf("name: got %q, want %q", products[0].Name, "Ground Coffee 500g")
	}
}

func TestSearchProducts_MissingQuery(t *testing.T) {
	resp := doGet(t, "/api/products/search")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/99999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("code: got %d, want 404", body.Code)
	}
}
