package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrDuplicateEmail  = errors.New("email already registered")

	ErrItemNotFound      = domain.ErrItemNotFound
	ErrQuantityBelowZero = domain.ErrQuantityBelowZero
)

type ProductRepository interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	// GetProductsByIDs skips ids with no matching document; order is unspecified.
	GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Product, error)
}

// UserRepository owns the user documents, including the embedded cart and
// favourites arrays.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	GetCart(ctx context.Context, userID primitive.ObjectID) (domain.Cart, error)
	AddCartItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	DecrementCartItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	RemoveCartItem(ctx context.Context, userID, productID primitive.ObjectID) error
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
	// RemoveOrderedItems pulls the ordered products from the cart, but only
	// while the cart is unchanged since placedAt.
	RemoveOrderedItems(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID, placedAt time.Time) error

	GetFavourites(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	AddFavourite(ctx context.Context, userID, productID primitive.ObjectID) error
	RemoveFavourite(ctx context.Context, userID, productID primitive.ObjectID) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error)
}
