package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/cache"
	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
)

const maxAddQuantity = 99

type CartService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	cache    cache.CartCache
	log      *slog.Logger
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCartService(users repository.UserRepository, products repository.ProductRepository, cartCache cache.CartCache, log *slog.Logger) *CartService {
	return &CartService{
		users:    users,
		products: products,
		cache:    cartCache,
		log:      log,
	}
}

// GetCart returns the populated cart, served from cache when possible.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) ([]domain.CartLine, error) {
	key := userID.Hex()

	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		lines, err := s.cache.Get(ctx, key)
		if err == nil {
			return lines, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "cache get error", slog.Any("error", err))
		}

		// read before the store so a mutation during the load stales the write
		version, verr := s.cache.Version(ctx, key)

		lines, err = s.loadCart(ctx, userID)
		if err != nil {
			return nil, err
		}

		if verr != nil {
			s.log.WarnContext(ctx, "cache version error", slog.Any("error", verr))
			return lines, nil
		}
		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			err := s.cache.Set(setCtx, key, version, lines)
			switch {
			case errors.Is(err, cache.ErrStaleVersion):
				s.log.Debug("cart changed during load, not cached", slog.String("user_id", key))
			case err != nil:
				s.log.Warn("cache set error", slog.Any("error", err))
			}
		}()

		return lines, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]domain.CartLine), nil
}

// AddItem adds quantity units of a product, creating the entry if needed.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) ([]domain.CartLine, error) {
	if quantity < 1 || quantity > maxAddQuantity {
		return nil, fmt.Errorf("%w: must be between 1 and %d", ErrInvalidQuantity, maxAddQuantity)
	}
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	if err := s.users.AddCartItem(ctx, userID, productID, quantity); err != nil {
		s.log.ErrorContext(ctx, "repo add item error", slog.Any("error", err))
		return nil, err
	}

	s.invalidateCache(userID)
	return s.loadCart(ctx, userID)
}

// RemoveItem takes quantity units off an entry, or the whole entry when full
// is set. An entry that reaches zero is removed.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int, full bool) ([]domain.CartLine, error) {
	var err error
	if full {
		err = s.removeEntry(ctx, userID, productID)
	} else {
		if quantity < 1 {
			return nil, fmt.Errorf("%w: must be at least 1", ErrInvalidQuantity)
		}
		err = s.users.DecrementCartItem(ctx, userID, productID, quantity)
	}
	if err != nil {
		if !errors.Is(err, repository.ErrItemNotFound) && !errors.Is(err, repository.ErrQuantityBelowZero) {
			s.log.ErrorContext(ctx, "repo remove item error", slog.Any("error", err))
		}
		return nil, err
	}

	s.invalidateCache(userID)
	return s.loadCart(ctx, userID)
}

func (s *CartService) removeEntry(ctx context.Context, userID, productID primitive.ObjectID) error {
	cart, err := s.users.GetCart(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := cart.Find(productID); !ok {
		return repository.ErrItemNotFound
	}
	return s.users.RemoveCartItem(ctx, userID, productID)
}

func (s *CartService) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.users.ClearCart(ctx, userID); err != nil {
		s.log.ErrorContext(ctx, "repo clear cart error", slog.Any("error", err))
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// loadCart reads the stored cart and resolves its products. Entries whose
// product no longer exists are skipped.
func (s *CartService) loadCart(ctx context.Context, userID primitive.ObjectID) ([]domain.CartLine, error) {
	cart, err := s.users.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(cart))
	if len(cart) == 0 {
		return lines, nil
	}

	byID, err := populate(ctx, s.products, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	for _, item := range cart {
		p, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, domain.CartLine{Product: p, Quantity: item.Quantity})
	}
	return lines, nil
}

func (s *CartService) invalidateCache(userID primitive.ObjectID) {
	invalidateCart(s.cache, s.log, userID)
}

func invalidateCart(c cache.CartCache, log *slog.Logger, userID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Delete(ctx, userID.Hex()); err != nil {
		log.Warn("cache invalidate error", slog.Any("error", err))
	}
}
