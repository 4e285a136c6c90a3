package http

import (
	"context"
	"net/http"
	"time"
)

type CartHandler struct {
	cart    CartService
	timeout time.Duration
}

func NewCartHandler(cart CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:    cart,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

// RemoveItemRequestDTO removes the whole entry when Full is set or Quantity
// is null.
type RemoveItemRequestDTO struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
	Full      bool   `json:"full"`
}

// GET /api/v1/user/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	lines, err := h.cart.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, lines)
}

// POST /api/v1/user/cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	productID, ok := parseObjectID(w, req.ProductID, "product_id")
	if !ok {
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	lines, err := h.cart.AddItem(ctx, userID, productID, quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, lines)
}

// PATCH /api/v1/user/cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req RemoveItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	productID, ok := parseObjectID(w, req.ProductID, "product_id")
	if !ok {
		return
	}

	full := req.Full || req.Quantity == nil
	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	lines, err := h.cart.RemoveItem(ctx, userID, productID, quantity, full)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, lines)
}

// DELETE /api/v1/user/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.cart.ClearCart(ctx, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, []struct{}{})
}
