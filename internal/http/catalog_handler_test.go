package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/keaunie/elev8kitchens-backend/internal/catalog"
)

func testCatalog() *catalog.Store {
	return catalog.NewStoreFromProducts([]catalog.Product{
		{
			ID:     1,
			Handle: "island-10ft",
			Title:  "10 ft Outdoor Kitchen Island",
			Variants: []catalog.Variant{
				{SKU: "ISL-10-GRA", Size: "10 ft", Color: "Graphite", PriceCents: 200000, PaymentLink: "https://pay.example/isl-10-gra"},
				{SKU: "ISL-10-SND", Size: "10 ft", Color: "Sand", PriceCents: 200000},
			},
		},
		{
			ID:     2,
			Handle: "island-6ft",
			Title:  "6 ft Outdoor Kitchen Island",
			Variants: []catalog.Variant{
				{SKU: "ISL-6-GRA", Size: "6 ft", Color: "Graphite", PriceCents: 50000},
			},
		},
	})
}

// withURLParam injects a chi route parameter for direct handler invocation.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestListProducts(t *testing.T) {
	handler := NewProductHandler(testCatalog())

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)

	handler.ListProducts(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response []catalog.Product
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response) != 2 {
		t.Errorf("Expected 2 products, got %d", len(response))
	}
}

func TestGetProduct_ByHandle(t *testing.T) {
	handler := NewProductHandler(testCatalog())

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/island-10ft", nil), "handle", "island-10ft")

	handler.GetProduct(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response catalog.Product
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.ID != 1 {
		t.Errorf("Expected product id 1, got %d", response.ID)
	}
}

func TestGetProduct_ByNumericID(t *testing.T) {
	handler := NewProductHandler(testCatalog())

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/2", nil), "handle", "2")

	handler.GetProduct(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response catalog.Product
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Handle != "island-6ft" {
		t.Errorf("Expected handle 'island-6ft', got '%s'", response.Handle)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	handler := NewProductHandler(testCatalog())

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/pergola", nil), "handle", "pergola")

	handler.GetProduct(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "not_found" {
		t.Errorf("Expected error code 'not_found', got '%s'", response.Code)
	}
}
