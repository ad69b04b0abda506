package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/berkaykaya07/BerkayKayaCase/internal/browse"
	"github.com/berkaykaya07/BerkayKayaCase/internal/catalog"
	"github.com/berkaykaya07/BerkayKayaCase/internal/checkout"
	"github.com/berkaykaya07/BerkayKayaCase/internal/event"
	"github.com/berkaykaya07/BerkayKayaCase/internal/store"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/health"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/middleware"
)

// Deps bundles everything the router serves.
type Deps struct {
	Coordinator *browse.Coordinator
	Catalog     *catalog.Client
	Store       *store.Store
	Checkout    *checkout.Service
	Publisher   event.Publisher
	Health      *health.Handler
	Logger      *slog.Logger
}

// NewRouter creates a chi router with all browse service routes registered.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(d.Logger))
	r.Use(chimw.Compress(5))
	r.Use(middleware.RequestLogging(d.Logger))
	r.Use(middleware.PrometheusMetrics("browse"))
	r.Use(middleware.Tracing("browse"))
	r.Use(middleware.RequestLogger(d.Logger))

	// Health check endpoints
	r.Get("/health/live", d.Health.LivenessHandler())
	r.Get("/health/ready", d.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	browseHandler := NewBrowseHandler(d.Coordinator, d.Logger)
	catalogHandler := NewCatalogHandler(d.Catalog, d.Logger)
	cartHandler := NewCartHandler(d.Store, d.Catalog, d.Checkout, d.Publisher, d.Logger)
	favoritesHandler := NewFavoritesHandler(d.Store, d.Catalog, d.Logger)
	checkoutHandler := NewCheckoutHandler(d.Checkout, d.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		// The SSE stream stays outside the timeout so it can run until the
		// client disconnects.
		r.Get("/browse/events", browseHandler.Events)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(60 * time.Second))
			r.Use(ContentTypeJSON)

			r.Route("/browse", func(r chi.Router) {
				r.Get("/", browseHandler.GetSnapshot)
				r.Post("/search", browseHandler.Search)
				r.Post("/search/clear", browseHandler.ClearSearch)
				r.Post("/filter", browseHandler.Filter)
				r.Post("/sort", browseHandler.Sort)
				r.Post("/next-page", browseHandler.NextPage)
				r.Post("/refresh", browseHandler.Refresh)
			})

			r.Get("/products/{productId}", catalogHandler.GetProduct)
			r.Get("/categories", catalogHandler.GetCategories)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{productId}", cartHandler.UpdateItemQuantity)
				r.Delete("/items/{productId}", cartHandler.RemoveItem)
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", favoritesHandler.List)
				r.Get("/{productId}", favoritesHandler.Status)
				r.Put("/{productId}", favoritesHandler.Add)
				r.Delete("/{productId}", favoritesHandler.Remove)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/totals", checkoutHandler.GetTotals)
				r.Post("/", checkoutHandler.PlaceOrder)
			})
		})
	})

	return r
}
