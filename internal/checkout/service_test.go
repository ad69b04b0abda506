package checkout

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkaykaya07/BerkayKayaCase/internal/domain"
	"github.com/berkaykaya07/BerkayKayaCase/internal/event"
	"github.com/berkaykaya07/BerkayKayaCase/internal/store"
	"github.com/berkaykaya07/BerkayKayaCase/internal/store/memstore"
	apperrors "github.com/berkaykaya07/BerkayKayaCase/pkg/errors"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/validator"
)

// capturingPublisher records published events.
type capturingPublisher struct {
	orders []event.OrderPlacedPayload
	carts  []event.CartUpdatedPayload
}

func (p *capturingPublisher) OrderPlaced(_ context.Context, payload event.OrderPlacedPayload) {
	p.orders = append(p.orders, payload)
}

func (p *capturingPublisher) CartUpdated(_ context.Context, payload event.CartUpdatedPayload) {
	p.carts = append(p.carts, payload)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, taxRate float64) (*Service, *store.Store, *capturingPublisher) {
	t.Helper()
	st := store.New(context.Background(), memstore.New(), testLogger())
	pub := &capturingPublisher{}
	return NewService(st, pub, taxRate, testLogger()), st, pub
}

func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		FullName:      "Ada Lovelace",
		Email:         "ada@example.com",
		Phone:         "+90 555 000 0000",
		Address:       "1 Analytical Engine St",
		PaymentMethod: "card",
	}
}

func TestService_Totals_EmptyCart(t *testing.T) {
	svc, _, _ := newTestService(t, 0.18)

	totals := svc.Totals()
	assert.Zero(t, totals.Subtotal)
	assert.Zero(t, totals.Tax)
	assert.Zero(t, totals.Total)
	assert.Zero(t, totals.ItemCount)
}

func TestService_Totals_AppliesTaxToDiscountedSubtotal(t *testing.T) {
	svc, st, _ := newTestService(t, 0.18)
	ctx := context.Background()

	// 100 with 10% discount, twice: subtotal 180.
	st.AddToCart(ctx, domain.Product{ID: 1, Price: 100, DiscountPercentage: 10})
	st.AddToCart(ctx, domain.Product{ID: 1, Price: 100, DiscountPercentage: 10})

	totals := svc.Totals()
	assert.InDelta(t, 180.0, totals.Subtotal, 0.001)
	assert.InDelta(t, 32.4, totals.Tax, 0.001)
	assert.InDelta(t, 212.4, totals.Total, 0.001)
	assert.Equal(t, 2, totals.ItemCount)
}

func TestService_DefaultTaxRate(t *testing.T) {
	svc, st, _ := newTestService(t, 0)
	ctx := context.Background()

	st.AddToCart(ctx, domain.Product{ID: 1, Price: 100})

	totals := svc.Totals()
	assert.InDelta(t, 18.0, totals.Tax, 0.001)
}

func TestService_PlaceOrder_EmptyCartRejected(t *testing.T) {
	svc, _, pub := newTestService(t, 0.18)

	_, err := svc.PlaceOrder(context.Background(), validRequest())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, pub.orders)
}

func TestService_PlaceOrder_ValidationFailures(t *testing.T) {
	svc, st, _ := newTestService(t, 0.18)
	ctx := context.Background()
	st.AddToCart(ctx, domain.Product{ID: 1, Price: 10})

	cases := []struct {
		name   string
		mutate func(*PlaceOrderRequest)
	}{
		{"missing name", func(r *PlaceOrderRequest) { r.FullName = "" }},
		{"missing email", func(r *PlaceOrderRequest) { r.Email = "" }},
		{"bad email", func(r *PlaceOrderRequest) { r.Email = "not-an-email" }},
		{"missing phone", func(r *PlaceOrderRequest) { r.Phone = "" }},
		{"missing address", func(r *PlaceOrderRequest) { r.Address = "" }},
		{"bad payment method", func(r *PlaceOrderRequest) { r.PaymentMethod = "crypto" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)

			_, err := svc.PlaceOrder(ctx, req)
			var valErr *validator.ValidationError
			assert.ErrorAs(t, err, &valErr)
		})
	}

	// The cart is untouched by rejected orders.
	assert.Len(t, st.Cart(), 1)
}

func TestService_PlaceOrder_Success(t *testing.T) {
	svc, st, pub := newTestService(t, 0.18)
	ctx := context.Background()

	st.AddToCart(ctx, domain.Product{ID: 1, Price: 100, DiscountPercentage: 10})
	st.AddToCart(ctx, domain.Product{ID: 2, Price: 50})

	order, err := svc.PlaceOrder(ctx, validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, order.OrderNumber)
	assert.Equal(t, "ada@example.com", order.Email)
	assert.Len(t, order.Lines, 2)
	assert.InDelta(t, 140.0, order.Totals.Subtotal, 0.001)
	assert.InDelta(t, 25.2, order.Totals.Tax, 0.001)
	assert.InDelta(t, 165.2, order.Totals.Total, 0.001)

	// The cart is cleared and the event carries the order totals.
	assert.Empty(t, st.Cart())
	require.Len(t, pub.orders, 1)
	assert.Equal(t, order.OrderNumber, pub.orders[0].OrderNumber)
	assert.InDelta(t, 165.2, pub.orders[0].Total, 0.001)
}

func TestService_PlaceOrder_UniqueOrderNumbers(t *testing.T) {
	svc, st, _ := newTestService(t, 0.18)
	ctx := context.Background()

	st.AddToCart(ctx, domain.Product{ID: 1, Price: 10})
	first, err := svc.PlaceOrder(ctx, validRequest())
	require.NoError(t, err)

	st.AddToCart(ctx, domain.Product{ID: 2, Price: 10})
	second, err := svc.PlaceOrder(ctx, validRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
}
