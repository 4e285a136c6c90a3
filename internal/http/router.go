package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	AllowedOrigins     []string
	ServiceName        string
}

type Handlers struct {
	Auth      *AuthHandler
	Products  *ProductHandler
	Cart      *CartHandler
	Favorites *FavoritesHandler
	Orders    *OrdersHandler
}

func NewRouter(cfg RouterConfig, hs Handlers, verifier TokenVerifier, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(MaxBodySize(cfg.MaxRequestBodySize))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", hs.Products.List)
			r.Get("/{id}", hs.Products.Get)
		})

		r.Route("/user", func(r chi.Router) {
			r.Post("/signup", hs.Auth.SignUp)
			r.Post("/signin", hs.Auth.SignIn)

			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(verifier))

				r.Route("/cart", func(r chi.Router) {
					r.Get("/", hs.Cart.GetCart)
					r.Post("/", hs.Cart.AddItem)
					r.Patch("/", hs.Cart.RemoveItem)
					r.Delete("/", hs.Cart.ClearCart)
				})

				r.Route("/favorite", func(r chi.Router) {
					r.Get("/", hs.Favorites.List)
					r.Post("/", hs.Favorites.Add)
					r.Patch("/", hs.Favorites.Remove)
				})

				r.Route("/order", func(r chi.Router) {
					r.Get("/", hs.Orders.ListOrders)
					r.Post("/", hs.Orders.PlaceOrder)
					r.Get("/{id}", hs.Orders.GetOrder)
				})
			})
		})
	})

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "instafood"
	}
	return otelhttp.NewHandler(r, serviceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}
