package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/cache"
	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// totalTolerance is the largest accepted gap between a client total and the
// server computed one.
var totalTolerance = decimal.New(1, -2)

// maxOrderLineQuantity bounds one product's quantity in an order, after
// repeated lines are merged.
const maxOrderLineQuantity = 999

type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, evt domain.OrderPlacedEvent) error
}

type OrderLineInput struct {
	ProductID primitive.ObjectID
	Quantity  int
}

// PlaceOrderInput carries either structured Delivery details or a flattened
// Address. Empty Items means the stored cart is ordered.
type PlaceOrderInput struct {
	Items       []OrderLineInput
	Delivery    *domain.DeliveryDetails
	Address     string
	TotalAmount *decimal.Decimal
}

type OrderService struct {
	orders    repository.OrderRepository
	users     repository.UserRepository
	products  repository.ProductRepository
	cache     cache.CartCache
	publisher OrderEventPublisher
	log       *slog.Logger
	tracer    trace.Tracer
}

func NewOrderService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	products repository.ProductRepository,
	cartCache cache.CartCache,
	publisher OrderEventPublisher,
	log *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		users:     users,
		products:  products,
		cache:     cartCache,
		publisher: publisher,
		log:       log,
		tracer:    otel.Tracer("github.com/Raj-kansagra/InstaFood/internal/service"),
	}
}

// PlaceOrder prices the items from current product data, stores one order and
// empties the buyer's cart. Cart clearing and event publishing failures are
// logged; the order stands.
func (s *OrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.String("user.id", userID.Hex())))
	defer span.End()

	order, err := s.placeOrder(ctx, userID, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID.Hex()),
		attribute.Float64("order.total", order.TotalAmount),
	)
	return order, nil
}

func (s *OrderService) placeOrder(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (*domain.Order, error) {
	address, err := deliveryAddress(in)
	if err != nil {
		return nil, err
	}

	lines, err := s.orderLines(ctx, userID, in.Items)
	if err != nil {
		return nil, err
	}

	items, total, err := s.price(ctx, lines)
	if err != nil {
		return nil, err
	}

	if in.TotalAmount != nil && total.Sub(*in.TotalAmount).Abs().GreaterThan(totalTolerance) {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrTotalMismatch, total.StringFixed(2), in.TotalAmount.StringFixed(2))
	}

	order := &domain.Order{
		TotalAmount: total.InexactFloat64(),
		Address:     address,
		Status:      domain.OrderStatusPaymentDone,
		UserID:      userID,
		Products:    items,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.log.ErrorContext(ctx, "repo create order error", slog.Any("error", err))
		return nil, err
	}

	s.log.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID.Hex()),
		slog.String("user_id", userID.Hex()),
		slog.String("total", total.StringFixed(2)))

	if err := s.users.ClearCart(ctx, userID); err != nil {
		s.log.ErrorContext(ctx, "failed to clear cart after order",
			slog.String("order_id", order.ID.Hex()),
			slog.Any("error", err))
	}
	invalidateCart(s.cache, s.log, userID)

	placedAt := order.CreatedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}
	evt := domain.OrderPlacedEvent{
		EventID:     uuid.NewString(),
		OrderID:     order.ID.Hex(),
		UserID:      userID.Hex(),
		TotalAmount: order.TotalAmount,
		Items:       order.Products,
		PlacedAt:    placedAt,
	}
	if err := s.publisher.PublishOrderPlaced(ctx, evt); err != nil {
		s.log.WarnContext(ctx, "failed to publish order event",
			slog.String("order_id", order.ID.Hex()),
			slog.Any("error", err))
	}

	return order, nil
}

func deliveryAddress(in PlaceOrderInput) (string, error) {
	if in.Delivery != nil {
		if err := in.Delivery.Validate(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidDelivery, err)
		}
		return in.Delivery.Address(), nil
	}
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return "", fmt.Errorf("%w: address is required", ErrInvalidDelivery)
	}
	return address, nil
}

// orderLines falls back to the stored cart when no snapshot was sent and
// merges repeated products.
func (s *OrderService) orderLines(ctx context.Context, userID primitive.ObjectID, snapshot []OrderLineInput) ([]OrderLineInput, error) {
	if len(snapshot) == 0 {
		cart, err := s.users.GetCart(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, item := range cart {
			snapshot = append(snapshot, OrderLineInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}
	if len(snapshot) == 0 {
		return nil, ErrEmptyCart
	}

	merged := make([]OrderLineInput, 0, len(snapshot))
	index := make(map[primitive.ObjectID]int, len(snapshot))
	for _, line := range snapshot {
		if line.Quantity < 1 || line.Quantity > maxOrderLineQuantity {
			return nil, fmt.Errorf("%w: product %s has quantity %d", ErrInvalidQuantity, line.ProductID.Hex(), line.Quantity)
		}
		if i, ok := index[line.ProductID]; ok {
			if merged[i].Quantity+line.Quantity > maxOrderLineQuantity {
				return nil, fmt.Errorf("%w: product %s exceeds %d", ErrInvalidQuantity, line.ProductID.Hex(), maxOrderLineQuantity)
			}
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

func (s *OrderService) price(ctx context.Context, lines []OrderLineInput) ([]domain.OrderItem, decimal.Decimal, error) {
	ids := make([]primitive.ObjectID, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	byID, err := populate(ctx, s.products, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", repository.ErrProductNotFound, l.ProductID.Hex())
		}
		unit := decimal.NewFromFloat(p.Price.Org)
		subtotal := unit.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
		total = total.Add(subtotal)

		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  l.Quantity,
			UnitPrice: unit.InexactFloat64(),
			Subtotal:  subtotal.InexactFloat64(),
		})
	}
	return items, total.Round(2), nil
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error) {
	return s.orders.ListOrdersByUser(ctx, userID)
}

// GetOrder hides other users' orders behind ErrOrderNotFound.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID primitive.ObjectID) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}
