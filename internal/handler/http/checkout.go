package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/berkaykaya07/BerkayKayaCase/internal/checkout"
	apperrors "github.com/berkaykaya07/BerkayKayaCase/pkg/errors"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/httputil"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout endpoints.
type CheckoutHandler struct {
	service *checkout.Service
	logger  *slog.Logger
}

// NewCheckoutHandler creates a checkout HTTP handler.
func NewCheckoutHandler(svc *checkout.Service, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, logger: logger}
}

// GetTotals handles GET /api/v1/checkout/totals
func (h *CheckoutHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.Totals()})
}

// PlaceOrder handles POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req checkout.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), req)
	if err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			httputil.WriteValidationError(w, err)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}
