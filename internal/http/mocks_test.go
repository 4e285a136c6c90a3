package http

import (
	"context"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/internal/repository"
	"github.com/Raj-kansagra/InstaFood/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockVerifier struct {
	tokens map[string]primitive.ObjectID
}

func (m mockVerifier) Verify(token string) (primitive.ObjectID, error) {
	id, ok := m.tokens[token]
	if !ok {
		return primitive.NilObjectID, service.ErrInvalidToken
	}
	return id, nil
}

type mockAuthService struct {
	result *service.AuthResult
	err    error
	gotIn  service.SignUpInput
}

func (m *mockAuthService) SignUp(_ context.Context, in service.SignUpInput) (*service.AuthResult, error) {
	m.gotIn = in
	return m.result, m.err
}

func (m *mockAuthService) SignIn(context.Context, string, string) (*service.AuthResult, error) {
	return m.result, m.err
}

type mockProductService struct {
	products  []domain.Product
	err       error
	gotFilter domain.ProductFilter
}

func (m *mockProductService) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	m.gotFilter = f
	return m.products, m.err
}

func (m *mockProductService) Get(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

type removeCall struct {
	productID primitive.ObjectID
	quantity  int
	full      bool
}

type mockCartService struct {
	lines      []domain.CartLine
	err        error
	gotUser    primitive.ObjectID
	gotAddQty  int
	gotRemove  removeCall
	clearCalls int
}

func (m *mockCartService) GetCart(_ context.Context, userID primitive.ObjectID) ([]domain.CartLine, error) {
	m.gotUser = userID
	return m.lines, m.err
}

func (m *mockCartService) AddItem(_ context.Context, userID, _ primitive.ObjectID, quantity int) ([]domain.CartLine, error) {
	m.gotUser = userID
	m.gotAddQty = quantity
	return m.lines, m.err
}

func (m *mockCartService) RemoveItem(_ context.Context, userID, productID primitive.ObjectID, quantity int, full bool) ([]domain.CartLine, error) {
	m.gotUser = userID
	m.gotRemove = removeCall{productID: productID, quantity: quantity, full: full}
	return m.lines, m.err
}

func (m *mockCartService) ClearCart(_ context.Context, userID primitive.ObjectID) error {
	m.gotUser = userID
	m.clearCalls++
	return m.err
}

type mockFavoritesService struct {
	products []domain.Product
	err      error
	added    []primitive.ObjectID
	removed  []primitive.ObjectID
}

func (m *mockFavoritesService) List(context.Context, primitive.ObjectID) ([]domain.Product, error) {
	return m.products, m.err
}

func (m *mockFavoritesService) Add(_ context.Context, _, productID primitive.ObjectID) ([]domain.Product, error) {
	m.added = append(m.added, productID)
	return m.products, m.err
}

func (m *mockFavoritesService) Remove(_ context.Context, _, productID primitive.ObjectID) ([]domain.Product, error) {
	m.removed = append(m.removed, productID)
	return m.products, m.err
}

type mockOrderService struct {
	order  *domain.Order
	orders []domain.Order
	err    error
	gotIn  service.PlaceOrderInput
}

func (m *mockOrderService) PlaceOrder(_ context.Context, _ primitive.ObjectID, in service.PlaceOrderInput) (*domain.Order, error) {
	m.gotIn = in
	return m.order, m.err
}

func (m *mockOrderService) ListOrders(context.Context, primitive.ObjectID) ([]domain.Order, error) {
	return m.orders, m.err
}

func (m *mockOrderService) GetOrder(context.Context, primitive.ObjectID, primitive.ObjectID) (*domain.Order, error) {
	return m.order, m.err
}
