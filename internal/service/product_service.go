package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxPageSize = 100

type ProductService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return nil, fmt.Errorf("%w: minPrice must not be negative", ErrInvalidFilter)
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return nil, fmt.Errorf("%w: maxPrice must not be negative", ErrInvalidFilter)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, fmt.Errorf("%w: minPrice is greater than maxPrice", ErrInvalidFilter)
	}
	if f.Limit < 0 || f.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidFilter)
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	f.Search = strings.TrimSpace(f.Search)

	return s.products.ListProducts(ctx, f)
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	return s.products.GetProduct(ctx, id)
}

// populate looks products up by id. Ids with no product are absent from the map.
func populate(ctx context.Context, products repository.ProductRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Product, error) {
	found, err := products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	return byID, nil
}
