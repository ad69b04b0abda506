package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/berkaykaya07/BerkayKayaCase/internal/catalog"
	"github.com/berkaykaya07/BerkayKayaCase/internal/domain"
	"github.com/berkaykaya07/BerkayKayaCase/internal/store"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/httputil"
)

// FavoritesHandler handles HTTP requests for favorites endpoints.
type FavoritesHandler struct {
	store   *store.Store
	catalog *catalog.Client
	logger  *slog.Logger
}

// NewFavoritesHandler creates a favorites HTTP handler.
func NewFavoritesHandler(st *store.Store, client *catalog.Client, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{store: st, catalog: client, logger: logger}
}

// List handles GET /api/v1/favorites
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	favorites := h.store.Favorites()
	if favorites == nil {
		favorites = []domain.Product{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: favorites})
}

// Add handles PUT /api/v1/favorites/{productId}. Adding an existing
// favorite is a no-op, so the endpoint is idempotent.
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseIntParam(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	detail, err := h.catalog.ProductByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, mapCatalogError(err, "product", itoa(id)), h.logger)
		return
	}

	h.store.AddFavorite(r.Context(), detail.Summary())
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{"favorite": true}})
}

// Remove handles DELETE /api/v1/favorites/{productId}
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseIntParam(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	h.store.RemoveFavorite(r.Context(), id)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{"favorite": false}})
}

// Status handles GET /api/v1/favorites/{productId}
func (h *FavoritesHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseIntParam(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{"favorite": h.store.IsFavorite(id)}})
}
