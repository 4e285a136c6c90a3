package service

import (
	"context"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FavoritesService struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

func NewFavoritesService(users repository.UserRepository, products repository.ProductRepository) *FavoritesService {
	return &FavoritesService{users: users, products: products}
}

// List returns the favourite products in the order they were added.
func (s *FavoritesService) List(ctx context.Context, userID primitive.ObjectID) ([]domain.Product, error) {
	ids, err := s.users.GetFavourites(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	byID, err := populate(ctx, s.products, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *FavoritesService) Add(ctx context.Context, userID, productID primitive.ObjectID) ([]domain.Product, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.users.AddFavourite(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}

// Remove is a no-op for a product that is not a favourite.
func (s *FavoritesService) Remove(ctx context.Context, userID, productID primitive.ObjectID) ([]domain.Product, error) {
	if err := s.users.RemoveFavourite(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}
