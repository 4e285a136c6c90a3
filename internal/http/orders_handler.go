package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
}

func NewOrdersHandler(orders OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

// productRef accepts a bare hex id or a populated product object with an _id.
type productRef struct {
	id primitive.ObjectID
}

func (p *productRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			ID primitive.ObjectID `json:"_id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		p.id = obj.ID
		return nil
	}

	var hex string
	if err := json.Unmarshal(b, &hex); err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return err
	}
	p.id = id
	return nil
}

type OrderProductDTO struct {
	Product   *productRef `json:"product"`
	ProductID *productRef `json:"productId"`
	Quantity  int         `json:"quantity"`
}

type PlaceOrderRequestDTO struct {
	Products    []OrderProductDTO       `json:"products"`
	Address     string                  `json:"address"`
	Delivery    *domain.DeliveryDetails `json:"delivery"`
	TotalAmount *decimal.Decimal        `json:"totalAmount"`
}

var errMissingProduct = errors.New("every product line needs a product or productId")

func (req PlaceOrderRequestDTO) toInput() (service.PlaceOrderInput, error) {
	in := service.PlaceOrderInput{
		Delivery:    req.Delivery,
		Address:     req.Address,
		TotalAmount: req.TotalAmount,
	}
	for _, p := range req.Products {
		ref := p.Product
		if ref == nil {
			ref = p.ProductID
		}
		if ref == nil || ref.id.IsZero() {
			return in, errMissingProduct
		}
		in.Items = append(in.Items, service.OrderLineInput{ProductID: ref.id, Quantity: p.Quantity})
	}
	return in, nil
}

// POST /api/v1/user/order
func (h *OrdersHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req PlaceOrderRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orders.PlaceOrder(ctx, userID, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// GET /api/v1/user/order
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListOrders(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/user/order/{id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := parseObjectID(w, chi.URLParam(r, "id"), "order_id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, userID, orderID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}
