package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/berkaykaya07/BerkayKayaCase/internal/catalog"
	"github.com/berkaykaya07/BerkayKayaCase/internal/checkout"
	"github.com/berkaykaya07/BerkayKayaCase/internal/domain"
	"github.com/berkaykaya07/BerkayKayaCase/internal/event"
	"github.com/berkaykaya07/BerkayKayaCase/internal/store"
	apperrors "github.com/berkaykaya07/BerkayKayaCase/pkg/errors"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/httputil"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints. Items are added by
// product id; the catalog is consulted for the product payload so the cart
// never stores client-supplied prices.
type CartHandler struct {
	store     *store.Store
	catalog   *catalog.Client
	checkout  *checkout.Service
	publisher event.Publisher
	logger    *slog.Logger
}

// NewCartHandler creates a cart HTTP handler.
func NewCartHandler(st *store.Store, client *catalog.Client, svc *checkout.Service, publisher event.Publisher, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		store:     st,
		catalog:   client,
		checkout:  svc,
		publisher: publisher,
		logger:    logger,
	}
}

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gte=1"`
}

// UpdateQuantityRequest is the JSON request body for updating an item's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// CartResponse is the cart contents with the cost breakdown.
type CartResponse struct {
	Lines  []domain.CartLine `json:"lines"`
	Totals checkout.Totals   `json:"totals"`
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.cartResponse()})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	detail, err := h.catalog.ProductByID(r.Context(), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, mapCatalogError(err, "product", itoa(req.ProductID)), h.logger)
		return
	}

	h.store.AddToCart(r.Context(), detail.Summary())
	h.publishCartEvent(r, req.ProductID, "add")

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.cartResponse()})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}. A zero
// quantity removes the line.
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseIntParam(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	h.store.SetQuantity(r.Context(), id, req.Quantity)
	h.publishCartEvent(r, id, "update")

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.cartResponse()})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseIntParam(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	h.store.RemoveFromCart(r.Context(), id)
	h.publishCartEvent(r, id, "remove")

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.cartResponse()})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCart(r.Context())
	h.publishCartEvent(r, 0, "clear")

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}

func (h *CartHandler) cartResponse() CartResponse {
	lines := h.store.Cart()
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return CartResponse{Lines: lines, Totals: h.checkout.Totals()}
}

func (h *CartHandler) publishCartEvent(r *http.Request, productID int, action string) {
	lines := h.store.Cart()
	quantity := 0
	for _, l := range lines {
		if l.Product.ID == productID {
			quantity = l.Quantity
			break
		}
	}
	h.publisher.CartUpdated(r.Context(), event.CartUpdatedPayload{
		ProductID: productID,
		Action:    action,
		Quantity:  quantity,
		ItemCount: domain.CartItemCount(lines),
	})
}
