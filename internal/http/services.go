package http

import (
	"context"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The handler dependencies below are satisfied by the internal/service types.

type AuthService interface {
	SignUp(ctx context.Context, in service.SignUpInput) (*service.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*service.AuthResult, error)
}

type ProductService interface {
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
}

type CartService interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) ([]domain.CartLine, error)
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) ([]domain.CartLine, error)
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int, full bool) ([]domain.CartLine, error)
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
}

type FavoritesService interface {
	List(ctx context.Context, userID primitive.ObjectID) ([]domain.Product, error)
	Add(ctx context.Context, userID, productID primitive.ObjectID) ([]domain.Product, error)
	Remove(ctx context.Context, userID, productID primitive.ObjectID) ([]domain.Product, error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, userID primitive.ObjectID, in service.PlaceOrderInput) (*domain.Order, error)
	ListOrders(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID primitive.ObjectID) (*domain.Order, error)
}
