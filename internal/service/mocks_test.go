package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/cache"
	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockUserRepository keeps users in memory with the same cart rules as the
// Mongo implementation.
type mockUserRepository struct {
	m     sync.Mutex
	users map[primitive.ObjectID]*domain.User
	err   error // returned by every call when set

	clearErr   error
	clearCalls int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: map[primitive.ObjectID]*domain.User{}}
}

func (m *mockUserRepository) add(u *domain.User) *domain.User {
	m.m.Lock()
	defer m.m.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepository) get(id primitive.ObjectID) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) CreateUser(_ context.Context, user *domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetUserByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	return m.get(id)
}

func (m *mockUserRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) GetCart(_ context.Context, userID primitive.ObjectID) (domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	u, err := m.get(userID)
	if err != nil {
		return nil, err
	}
	return append(domain.Cart{}, u.Cart...), nil
}

func (m *mockUserRepository) AddCartItem(_ context.Context, userID, productID primitive.ObjectID, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	u, err := m.get(userID)
	if err != nil {
		return err
	}
	u.Cart = u.Cart.Add(productID, quantity)
	return nil
}

func (m *mockUserRepository) DecrementCartItem(_ context.Context, userID, productID primitive.ObjectID, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	u, err := m.get(userID)
	if err != nil {
		return err
	}
	cart, err := u.Cart.Remove(productID, quantity)
	if err != nil {
		return err
	}
	u.Cart = cart
	return nil
}

func (m *mockUserRepository) RemoveCartItem(_ context.Context, userID, productID primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	u, err := m.get(userID)
	if err != nil {
		return err
	}
	u.Cart = u.Cart.Drop(productID)
	return nil
}

func (m *mockUserRepository) ClearCart(_ context.Context, userID primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.clearCalls++
	if m.clearErr != nil {
		return m.clearErr
	}
	u, err := m.get(userID)
	if err != nil {
		return err
	}
	u.Cart = domain.Cart{}
	return nil
}

func (m *mockUserRepository) RemoveOrderedItems(_ context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID, placedAt time.Time) error {
	m.m.Lock()
	defer m.m.Unlock()
	u, err := m.get(userID)
	if err != nil {
		return err
	}
	if u.UpdatedAt.After(placedAt) {
		return nil
	}
	for _, id := range productIDs {
		u.Cart = u.Cart.Drop(id)
	}
	return nil
}

func (m *mockUserRepository) GetFavourites(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.m.Lock()
	defer m.m.Unlock()
	u, err := m.get(userID)
	if err != nil {
		return nil, err
	}
	return append([]primitive.ObjectID{}, u.Favourites...), nil
}

func (m *mockUserRepository) AddFavourite(_ context.Context, userID, productID primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	u, err := m.get(userID)
	if err != nil {
		return err
	}
	for _, id := range u.Favourites {
		if id == productID {
			return nil
		}
	}
	u.Favourites = append(u.Favourites, productID)
	return nil
}

func (m *mockUserRepository) RemoveFavourite(_ context.Context, userID, productID primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	u, err := m.get(userID)
	if err != nil {
		return err
	}
	out := u.Favourites[:0]
	for _, id := range u.Favourites {
		if id != productID {
			out = append(out, id)
		}
	}
	u.Favourites = out
	return nil
}

type mockProductRepository struct {
	products []domain.Product
	err      error

	m       sync.Mutex
	lookups int
}

func newMockProductRepository(products ...domain.Product) *mockProductRepository {
	return &mockProductRepository{products: products}
}

func (m *mockProductRepository) ListProducts(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Product{}
	for _, p := range m.products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) GetProduct(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) GetProductsByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Product, error) {
	m.m.Lock()
	m.lookups++
	m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Product{}
	for _, p := range m.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

type mockOrderRepository struct {
	m      sync.Mutex
	orders []domain.Order
	err    error
}

func (m *mockOrderRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	m.orders = append(m.orders, *order)
	return nil
}

func (m *mockOrderRepository) GetOrder(_ context.Context, id primitive.ObjectID) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			o := o
			return &o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepository) ListOrdersByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	out := []domain.Order{}
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserID == userID {
			out = append(out, m.orders[i])
		}
	}
	return out, nil
}

func (m *mockOrderRepository) count() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.orders)
}

type mockCache struct {
	m        sync.RWMutex
	lines    map[string][]domain.CartLine
	versions map[string]int64
	err      error
	deletes  int

	// afterVersion runs once Version has answered, standing in for a
	// mutation that lands while the cart is loaded
	afterVersion func()
}

func newMockCache() *mockCache {
	return &mockCache{lines: map[string][]domain.CartLine{}, versions: map[string]int64{}}
}

func (m *mockCache) Version(_ context.Context, userID string) (int64, error) {
	m.m.RLock()
	v, err, hook := m.versions[userID], m.err, m.afterVersion
	m.m.RUnlock()
	if hook != nil {
		hook()
	}
	return v, err
}

func (m *mockCache) Get(_ context.Context, userID string) ([]domain.CartLine, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	lines, ok := m.lines[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return lines, nil
}

func (m *mockCache) Set(_ context.Context, userID string, version int64, lines []domain.CartLine) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.versions[userID] != version {
		return cache.ErrStaleVersion
	}
	m.lines[userID] = lines
	return nil
}

func (m *mockCache) Delete(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deletes++
	m.versions[userID]++
	delete(m.lines, userID)
	return m.err
}

func (m *mockCache) has(userID string) bool {
	m.m.RLock()
	defer m.m.RUnlock()
	_, ok := m.lines[userID]
	return ok
}

type mockPublisher struct {
	m      sync.Mutex
	events []domain.OrderPlacedEvent
	err    error
}

func (m *mockPublisher) PublishOrderPlaced(_ context.Context, evt domain.OrderPlacedEvent) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, evt)
	return nil
}
