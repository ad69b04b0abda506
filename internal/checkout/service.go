// Package checkout turns the current cart into an order: it computes
// totals with tax, validates the buyer's details, and clears the cart on
// success.
package checkout

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/berkaykaya07/BerkayKayaCase/internal/domain"
	"github.com/berkaykaya07/BerkayKayaCase/internal/event"
	"github.com/berkaykaya07/BerkayKayaCase/internal/store"
	apperrors "github.com/berkaykaya07/BerkayKayaCase/pkg/errors"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/validator"
)

// DefaultTaxRate is applied when no rate is configured.
const DefaultTaxRate = 0.18

// Totals is the cost breakdown of a cart.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

// PlaceOrderRequest carries the buyer details collected at checkout.
type PlaceOrderRequest struct {
	FullName      string `json:"full_name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required"`
	Address       string `json:"address" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card cash"`
}

// Order is the result of a successful checkout.
type Order struct {
	OrderNumber string            `json:"order_number"`
	Email       string            `json:"email"`
	Lines       []domain.CartLine `json:"lines"`
	Totals      Totals            `json:"totals"`
}

// Service implements checkout on top of the cart store.
type Service struct {
	store     *store.Store
	publisher event.Publisher
	taxRate   float64
	logger    *slog.Logger
}

// NewService creates a checkout service. A non-positive taxRate falls back
// to DefaultTaxRate.
func NewService(st *store.Store, publisher event.Publisher, taxRate float64, logger *slog.Logger) *Service {
	if taxRate <= 0 {
		taxRate = DefaultTaxRate
	}
	return &Service{
		store:     st,
		publisher: publisher,
		taxRate:   taxRate,
		logger:    logger,
	}
}

// Totals computes the cost breakdown for the current cart. Line totals use
// the discounted unit price; tax applies to the subtotal. Amounts are
// rounded to cents.
func (s *Service) Totals() Totals {
	return s.totalsFor(s.store.Cart())
}

func (s *Service) totalsFor(lines []domain.CartLine) Totals {
	subtotal := domain.CartSubtotal(lines)
	tax := roundCents(subtotal * s.taxRate)
	return Totals{
		Subtotal:  roundCents(subtotal),
		Tax:       tax,
		Total:     roundCents(subtotal) + tax,
		ItemCount: domain.CartItemCount(lines),
	}
}

// PlaceOrder validates the request, rejects an empty cart, and on success
// clears the cart and emits an order.placed event. Event publishing is best
// effort and never fails the order.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (Order, error) {
	if err := validator.Validate(req); err != nil {
		return Order{}, err
	}

	lines := s.store.Cart()
	if len(lines) == 0 {
		return Order{}, apperrors.InvalidInput("cart is empty")
	}

	order := Order{
		OrderNumber: uuid.New().String(),
		Email:       req.Email,
		Lines:       lines,
		Totals:      s.totalsFor(lines),
	}

	s.store.ClearCart(ctx)

	s.publisher.OrderPlaced(ctx, event.OrderPlacedPayload{
		OrderNumber: order.OrderNumber,
		Email:       order.Email,
		ItemCount:   order.Totals.ItemCount,
		Subtotal:    order.Totals.Subtotal,
		Tax:         order.Totals.Tax,
		Total:       order.Totals.Total,
	})

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_number", order.OrderNumber),
		slog.Int("item_count", order.Totals.ItemCount),
		slog.Float64("total", order.Totals.Total),
	)

	return order, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
