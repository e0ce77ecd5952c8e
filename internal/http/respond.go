package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError converts domain errors to HTTP status codes.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		httpStatus = http.StatusConflict
		code = "out_of_stock"
	case errors.Is(err, pricing.ErrEmptyCart):
		httpStatus = http.StatusUnprocessableEntity
		code = "empty_cart"
	case errors.Is(err, domain.ErrValidation):
		httpStatus = http.StatusBadRequest
		code = "invalid_argument"
	case errors.Is(err, domain.ErrNotFound):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, domain.ErrNetwork):
		httpStatus = http.StatusBadGateway
		code = "upstream_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
	default:
		logger.WithTrace(r.Context(), zap.L()).Error("unhandled error",
			zap.String("request_id", getRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}
