package http

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	products ProductService
	timeout  time.Duration
}

func NewProductHandler(products ProductService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		products: products,
		timeout:  timeout,
	}
}

// GET /api/v1/products?minPrice=&maxPrice=&categories=a,b&search=&limit=&offset=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	filter, field, ok := parseProductFilter(r.URL.Query())
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_filter", field+" must be a number")
		return
	}

	products, err := h.products.List(ctx, filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := parseObjectID(w, chi.URLParam(r, "id"), "product_id")
	if !ok {
		return
	}

	product, err := h.products.Get(ctx, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// parseProductFilter returns the offending parameter name when a number does
// not parse.
func parseProductFilter(q url.Values) (domain.ProductFilter, string, bool) {
	var f domain.ProductFilter

	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
	} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return f, p.name, false
		}
		*p.dst = &v
	}

	for _, p := range []struct {
		name string
		dst  *int64
	}{
		{"limit", &f.Limit},
		{"offset", &f.Offset},
	} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, p.name, false
		}
		*p.dst = v
	}

	for _, raw := range q["categories"] {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				f.Categories = append(f.Categories, c)
			}
		}
	}
	f.Search = q.Get("search")

	return f, "", true
}
