package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/keaunie/elev8kitchens-backend/internal/cart"
	"github.com/keaunie/elev8kitchens-backend/internal/catalog"
)

type CartHandler struct {
	carts   *cart.Service
	catalog *catalog.Store
}

func NewCartHandler(carts *cart.Service, store *catalog.Store) *CartHandler {
	return &CartHandler{carts: carts, catalog: store}
}

type AddItemRequestDTO struct {
	ProductID int64  `json:"productId"`
	Handle    string `json:"handle"`
	SKU       string `json:"sku"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Qty       int    `json:"qty"`
}

type UpdateQuantityRequestDTO struct {
	Qty int `json:"qty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session")
		return
	}

	c, err := h.carts.Get(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Qty < 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "qty must not be negative")
		return
	}

	// Resolve the line against the catalog so carts never hold products
	// that do not exist.
	product, ok := h.catalog.ProductByHandleOrID(req.Handle, req.ProductID)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "unknown product")
		return
	}
	variant, ok := catalog.FindVariant(product, req.SKU, req.Size, req.Color)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "unknown variant")
		return
	}

	c, err := h.carts.AddItem(r.Context(), sessionID, cart.Line{
		ProductID: product.ID,
		Handle:    product.Handle,
		SKU:       variant.SKU,
		Size:      variant.Size,
		Color:     variant.Color,
		Qty:       req.Qty,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session")
		return
	}

	sku := chi.URLParam(r, "sku")
	if sku == "" {
		respondError(w, http.StatusBadRequest, "invalid_sku", "sku is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Zero and negative quantities remove the line.
	c, err := h.carts.UpdateQty(r.Context(), sessionID, sku, req.Qty)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session")
		return
	}

	sku := chi.URLParam(r, "sku")
	if sku == "" {
		respondError(w, http.StatusBadRequest, "invalid_sku", "sku is required")
		return
	}

	c, err := h.carts.RemoveItem(r.Context(), sessionID, sku)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session")
		return
	}

	c, err := h.carts.Clear(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, c)
}
