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

// SessionProvider hands out the session of a user. store.Registry implements it.
type SessionProvider interface {
	Session(ctx context.Context, id string) (*store.Session, error)
}

type CartHandler struct {
	sessions SessionProvider
	catalog  catalog.Catalog
	timeout  time.Duration
}

func NewCartHandler(sessions SessionProvider, catalog catalog.Catalog, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  catalog,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID domain.ProductID `json:"productId"`
	Size      string           `json:"size"`
	Color     string           `json:"color"`
	Quantity  int              `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

// session resolves the caller's session, writing the error response itself
// when it cannot.
func session(w http.ResponseWriter, r *http.Request, sessions SessionProvider) (*store.Session, bool) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return nil, false
	}
	s, err := sessions.Session(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return nil, false
	}
	return s, true
}

func lineKey(r *http.Request) domain.Key {
	return domain.Key{
		ProductID: domain.ProductID(chi.URLParam(r, "product_id")),
		Size:      r.URL.Query().Get("size"),
		Color:     r.URL.Query().Get("color"),
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.CartState())
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 || req.Quantity > domain.MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
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
	item, err := domain.NewLineItem(*product, req.Size, req.Color)
	if err != nil {
		handleError(w, r, err)
		return
	}

	state, err := s.AddToCart(ctx, item, req.Quantity)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, state.Cart)
}

// PATCH /api/v1/cart/items/{product_id}?size=&color=
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}
	if *req.Quantity > domain.MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not exceed 99")
		return
	}

	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	state, err := s.UpdateQuantity(ctx, lineKey(r), *req.Quantity)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state.Cart)
}

// DELETE /api/v1/cart/items/{product_id}?size=&color=
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	state, err := s.RemoveFromCart(ctx, lineKey(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state.Cart)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	state, err := s.ClearCart(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state.Cart)
}

// POST /api/v1/cart/items/{product_id}/move-to-wishlist?size=&color=
func (h *CartHandler) MoveToWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	state, err := s.MoveToWishlist(ctx, lineKey(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}
