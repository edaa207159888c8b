package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/keaunie/elev8kitchens-backend/internal/catalog"
)

type ProductHandler struct {
	catalog *catalog.Store
}

func NewProductHandler(store *catalog.Store) *ProductHandler {
	return &ProductHandler{catalog: store}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Products())
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	// Numeric params double as product ids
	id, _ := strconv.ParseInt(handle, 10, 64)
	product, ok := h.catalog.ProductByHandleOrID(handle, id)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "no product with handle "+handle)
		return
	}

	respondJSON(w, http.StatusOK, product)
}
