package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/internal/repository"
	"github.com/Raj-kansagra/InstaFood/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// errorMappings is checked in order with errors.Is.
var errorMappings = []struct {
	err    error
	status int
	code   string
}{
	{repository.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{repository.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{repository.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{domain.ErrItemNotFound, http.StatusNotFound, "item_not_found"},
	{domain.ErrQuantityBelowZero, http.StatusConflict, "quantity_below_zero"},
	{service.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{service.ErrInvalidDelivery, http.StatusBadRequest, "invalid_delivery"},
	{service.ErrTotalMismatch, http.StatusConflict, "total_mismatch"},
	{service.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{service.ErrInvalidFilter, http.StatusBadRequest, "invalid_filter"},
	{service.ErrInvalidSignUp, http.StatusBadRequest, "invalid_sign_up"},
	{service.ErrUserExists, http.StatusConflict, "user_exists"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "unauthorized"},
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			respondError(w, m.status, m.code, err.Error())
			return
		}
	}

	if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
		return
	}

	slog.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func parseObjectID(w http.ResponseWriter, raw, field string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_"+field, field+" must be a valid id")
		return primitive.NilObjectID, false
	}
	return id, true
}
