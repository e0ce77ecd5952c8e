package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/pricing"
)

type CheckoutHandler struct {
	sessions SessionProvider
}

func NewCheckoutHandler(sessions SessionProvider) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions}
}

// POST /api/v1/checkout/quote
// An empty body quotes standard shipping without gift wrap.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var opts pricing.CheckoutOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	totals, err := s.Checkout(opts)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}
