package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FavoritesHandler struct {
	favorites FavoritesService
	timeout   time.Duration
}

func NewFavoritesHandler(favorites FavoritesService, timeout time.Duration) *FavoritesHandler {
	return &FavoritesHandler{
		favorites: favorites,
		timeout:   timeout,
	}
}

type FavoriteRequestDTO struct {
	ProductID string `json:"productId"`
}

// GET /api/v1/user/favorite
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	products, err := h.favorites.List(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// POST /api/v1/user/favorite
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.favorites.Add)
}

// PATCH /api/v1/user/favorite
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.favorites.Remove)
}

func (h *FavoritesHandler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, productID primitive.ObjectID) ([]domain.Product, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req FavoriteRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	productID, ok := parseObjectID(w, req.ProductID, "product_id")
	if !ok {
		return
	}

	products, err := op(ctx, userID, productID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}
