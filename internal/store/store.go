// Package store holds the user's cart and favorites as observable
// collections backed by durable storage. State is loaded once at
// construction and written back synchronously, best-effort, after every
// mutation: a write failure is logged and swallowed, and the in-memory
// state stays authoritative for the session.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/berkaykaya07/BerkayKayaCase/internal/domain"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/relay"
)

// Storage keys for the persisted JSON arrays.
const (
	KeyCart      = "user_cart"
	KeyFavorites = "user_favorites"
)

// Backend persists raw values under fixed keys. Load returns
// ErrKeyNotFound when nothing has been written yet.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Store owns the cart and favorites collections. All mutations are
// synchronous and atomic: readers and subscribers never observe a torn
// intermediate state.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  *slog.Logger

	cart      []domain.CartLine
	favorites []domain.Product

	cartRelay *relay.Relay[[]domain.CartLine]
	favRelay  *relay.Relay[[]domain.Product]
}

// New constructs a store, loading persisted state from the backend.
// Corrupt or missing persisted data starts the relevant collection empty.
func New(ctx context.Context, backend Backend, logger *slog.Logger) *Store {
	s := &Store{
		backend: backend,
		logger:  logger,
	}

	s.cart = loadSlice[domain.CartLine](ctx, backend, KeyCart, logger)
	s.favorites = loadSlice[domain.Product](ctx, backend, KeyFavorites, logger)

	s.cartRelay = relay.New(copyLines(s.cart))
	s.favRelay = relay.New(copyProducts(s.favorites))

	logger.Info("store loaded",
		slog.Int("cart_lines", len(s.cart)),
		slog.Int("favorites", len(s.favorites)),
	)
	return s
}

func loadSlice[T any](ctx context.Context, backend Backend, key string, logger *slog.Logger) []T {
	data, err := backend.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			logger.Warn("store load failed, starting empty",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		logger.Warn("store data corrupt, starting empty",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return out
}

// Cart returns a snapshot of the cart lines.
func (s *Store) Cart() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.cart)
}

// Favorites returns a snapshot of the favorited products.
func (s *Store) Favorites() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyProducts(s.favorites)
}

// CartUpdates exposes the observable cart stream.
func (s *Store) CartUpdates() *relay.Relay[[]domain.CartLine] {
	return s.cartRelay
}

// FavoriteUpdates exposes the observable favorites stream.
func (s *Store) FavoriteUpdates() *relay.Relay[[]domain.Product] {
	return s.favRelay
}

// AddToCart adds a product to the cart, incrementing the quantity when a
// line for the same product already exists.
func (s *Store) AddToCart(ctx context.Context, p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.cart {
		if s.cart[i].Product.ID == p.ID {
			s.cart[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.cart = append(s.cart, domain.CartLine{Product: p, Quantity: 1})
	}

	s.publishCartLocked(ctx)
}

// RemoveFromCart removes the line for the given product id, if present.
func (s *Store) RemoveFromCart(ctx context.Context, productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.cart[:0]
	for _, l := range s.cart {
		if l.Product.ID != productID {
			out = append(out, l)
		}
	}
	s.cart = out

	s.publishCartLocked(ctx)
}

// SetQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line; quantities are never stored below one.
func (s *Store) SetQuantity(ctx context.Context, productID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].Product.ID != productID {
			continue
		}
		if quantity > 0 {
			s.cart[i].Quantity = quantity
		} else {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
		}
		break
	}

	s.publishCartLocked(ctx)
}

// ClearCart removes all cart lines.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = nil
	s.publishCartLocked(ctx)
}

// AddFavorite adds a product to the favorites. Adding an already-favorited
// product is a no-op; insertion order is preserved for display.
func (s *Store) AddFavorite(ctx context.Context, p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.favorites {
		if f.ID == p.ID {
			return
		}
	}
	s.favorites = append(s.favorites, p)

	s.publishFavoritesLocked(ctx)
}

// RemoveFavorite removes a product from the favorites, if present.
func (s *Store) RemoveFavorite(ctx context.Context, productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.favorites[:0]
	for _, f := range s.favorites {
		if f.ID != productID {
			out = append(out, f)
		}
	}
	s.favorites = out

	s.publishFavoritesLocked(ctx)
}

// IsFavorite reports whether the given product id is favorited.
func (s *Store) IsFavorite(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.favorites {
		if f.ID == productID {
			return true
		}
	}
	return false
}

func (s *Store) publishCartLocked(ctx context.Context) {
	snapshot := copyLines(s.cart)
	s.cartRelay.Publish(snapshot)
	s.persistLocked(ctx, KeyCart, snapshot)
}

func (s *Store) publishFavoritesLocked(ctx context.Context) {
	snapshot := copyProducts(s.favorites)
	s.favRelay.Publish(snapshot)
	s.persistLocked(ctx, KeyFavorites, snapshot)
}

// persistLocked writes the collection back to the backend. Failures are
// logged and swallowed; the in-memory state remains authoritative.
func (s *Store) persistLocked(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.WarnContext(ctx, "store marshal failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := s.backend.Save(ctx, key, data); err != nil {
		s.logger.WarnContext(ctx, "store write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func copyLines(in []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(in))
	copy(out, in)
	return out
}

func copyProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	copy(out, in)
	return out
}
