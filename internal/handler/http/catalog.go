package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/berkaykaya07/BerkayKayaCase/internal/catalog"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/httputil"
)

// CatalogHandler serves catalog detail and category lookups that bypass the
// coordinator.
type CatalogHandler struct {
	client *catalog.Client
	logger *slog.Logger
}

// NewCatalogHandler creates a catalog HTTP handler.
func NewCatalogHandler(client *catalog.Client, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{client: client, logger: logger}
}

// GetProduct handles GET /api/v1/products/{productId}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseIntParam(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	detail, err := h.client.ProductByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, mapCatalogError(err, "product", itoa(id)), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// GetCategories handles GET /api/v1/categories
func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.client.CategoryDetails(r.Context())
	if err != nil {
		httputil.WriteError(w, r, mapCatalogError(err, "categories", ""), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}
