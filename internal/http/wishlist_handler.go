package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/go-chi/chi/v5"
)

type WishlistHandler struct {
	sessions SessionProvider
	catalog  catalog.Catalog
	timeout  time.Duration
}

func NewWishlistHandler(sessions SessionProvider, catalog catalog.Catalog, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{
		sessions: sessions,
		catalog:  catalog,
		timeout:  timeout,
	}
}

type AddWishlistRequestDTO struct {
	ProductID domain.ProductID `json:"productId"`
}

type AddAllResponseDTO struct {
	store.State
	Result store.BulkResult `json:"result"`
}

// GET /api/v1/wishlist?sort=&filter=
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	order, err := store.ParseSort(r.URL.Query().Get("sort"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_sort", err.Error())
		return
	}
	filter, err := store.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.WishlistState(order, filter))
}

// POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddWishlistRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}

	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	entry, err := domain.NewWishlistEntry(*product)
	if err != nil {
		handleError(w, r, err)
		return
	}

	state, err := s.AddToWishlist(ctx, entry)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, state.Wishlist)
}

// DELETE /api/v1/wishlist/items/{product_id}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	state, err := s.RemoveFromWishlist(ctx, domain.ProductID(chi.URLParam(r, "product_id")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state.Wishlist)
}

// DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	state, err := s.ClearWishlist(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state.Wishlist)
}

// POST /api/v1/wishlist/items/{product_id}/move-to-cart
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	state, err := s.MoveToCart(ctx, domain.ProductID(chi.URLParam(r, "product_id")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// POST /api/v1/wishlist/add-all-to-cart
func (h *WishlistHandler) AddAllToCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	state, result, err := s.AddAllAvailableToCart(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, AddAllResponseDTO{State: state, Result: result})
}
