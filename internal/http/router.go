package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultRequestTimeout = 30 * time.Second

type RouterConfig struct {
	Sessions SessionProvider
	Catalog  catalog.Catalog
	// Timeout bounds each handler, including remote sync.
	Timeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRequestTimeout
	}

	cartHandler := NewCartHandler(cfg.Sessions, cfg.Catalog, cfg.Timeout)
	wishlistHandler := NewWishlistHandler(cfg.Sessions, cfg.Catalog, cfg.Timeout)
	checkoutHandler := NewCheckoutHandler(cfg.Sessions)
	productHandler := NewProductHandler(cfg.Catalog, cfg.Timeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.Timeout + 5*time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", productHandler.GetProducts)
		r.Get("/products/{product_id}", productHandler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(MockAuthMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Patch("/items/{product_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
				r.Post("/items/{product_id}/move-to-wishlist", cartHandler.MoveToWishlist)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlistHandler.GetWishlist)
				r.Delete("/", wishlistHandler.ClearWishlist)
				r.Post("/items", wishlistHandler.AddItem)
				r.Delete("/items/{product_id}", wishlistHandler.RemoveItem)
				r.Post("/items/{product_id}/move-to-cart", wishlistHandler.MoveToCart)
				r.Post("/add-all-to-cart", wishlistHandler.AddAllToCart)
			})

			r.Post("/checkout/quote", checkoutHandler.Quote)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
