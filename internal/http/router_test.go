package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testRouter struct {
	handler http.Handler
	userID  primitive.ObjectID
	cart    *mockCartService
	orders  *mockOrderService
}

func newTestRouter(t *testing.T, maxBody int64) testRouter {
	t.Helper()
	userID := primitive.NewObjectID()
	cart := &mockCartService{lines: []domain.CartLine{}}
	orders := &mockOrderService{order: &domain.Order{}, orders: []domain.Order{}}

	hs := Handlers{
		Auth:      NewAuthHandler(&mockAuthService{}, time.Second),
		Products:  NewProductHandler(&mockProductService{products: []domain.Product{}}, time.Second),
		Cart:      NewCartHandler(cart, time.Second),
		Favorites: NewFavoritesHandler(&mockFavoritesService{products: []domain.Product{}}, time.Second),
		Orders:    NewOrdersHandler(orders, time.Second),
	}
	cfg := RouterConfig{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: maxBody,
		AllowedOrigins:     []string{"http://localhost:3000"},
	}
	verifier := mockVerifier{tokens: map[string]primitive.ObjectID{"good": userID}}

	return testRouter{
		handler: NewRouter(cfg, hs, verifier, logger.Discard()),
		userID:  userID,
		cart:    cart,
		orders:  orders,
	}
}

func (tr testRouter) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	tr.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	tr := newTestRouter(t, 0)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := tr.do("GET", path, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	tr := newTestRouter(t, 0)

	assert.Equal(t, http.StatusOK, tr.do("GET", "/api/v1/products", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, tr.do("POST", "/api/v1/user/signin", "", `{}`).Code)
}

func TestRouter_AuthRequired(t *testing.T) {
	tr := newTestRouter(t, 0)

	routes := []struct{ method, path string }{
		{"GET", "/api/v1/user/cart"},
		{"DELETE", "/api/v1/user/cart"},
		{"GET", "/api/v1/user/favorite"},
		{"GET", "/api/v1/user/order"},
		{"POST", "/api/v1/user/order"},
	}
	for _, rt := range routes {
		rec := tr.do(rt.method, rt.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, rt.path)

		rec = tr.do(rt.method, rt.path, "forged", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, rt.path)
	}
}

func TestRouter_AuthenticatedRequestReachesHandler(t *testing.T) {
	tr := newTestRouter(t, 0)

	rec := tr.do("GET", "/api/v1/user/cart", "good", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tr.userID, tr.cart.gotUser)

	rec = tr.do("DELETE", "/api/v1/user/cart", "good", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, tr.cart.clearCalls)

	rec = tr.do("POST", "/api/v1/user/order", "good", `{"address":"12 MG Road"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "12 MG Road", tr.orders.gotIn.Address)
}

func TestRouter_CORSPreflight(t *testing.T) {
	tr := newTestRouter(t, 0)

	req := httptest.NewRequest("OPTIONS", "/api/v1/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	tr.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_BodyLimit(t *testing.T) {
	tr := newTestRouter(t, 64)

	big := `{"address":"` + strings.Repeat("x", 256) + `"}`
	rec := tr.do("POST", "/api/v1/user/order", "good", big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMaxBodySize_PassesSmallBodies(t *testing.T) {
	var got []byte
	h := MaxBodySize(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		got = buf.Bytes()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/", strings.NewReader("small")))
	assert.Equal(t, "small", string(got))
}

func TestAuthMiddleware_HeaderForms(t *testing.T) {
	userID := primitive.NewObjectID()
	verifier := mockVerifier{tokens: map[string]primitive.ObjectID{"tok": userID}}

	var seen primitive.ObjectID
	h := AuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = getUserIDFromContext(r.Context())
	}))

	tests := []struct {
		header string
		status int
	}{
		{"Bearer tok", http.StatusOK},
		{"Bearer  tok ", http.StatusOK},
		{"tok", http.StatusUnauthorized},
		{"Bearer ", http.StatusUnauthorized},
		{"Basic tok", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		seen = primitive.NilObjectID
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", tt.header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, tt.status, rec.Code, tt.header)
		if tt.status == http.StatusOK {
			assert.Equal(t, userID, seen)
		}
	}
}
