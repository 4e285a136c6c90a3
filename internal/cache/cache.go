package cache

import (
	"context"
	"errors"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
)

// CartCache holds a user's resolved cart lines, keyed by the user's hex id.
//
// Every Delete bumps the user's version. A loader reads Version before it
// reads the store and passes it to Set, which refuses with ErrStaleVersion if
// a Delete happened in between.
type CartCache interface {
	Get(ctx context.Context, userID string) ([]domain.CartLine, error)
	Version(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, version int64, lines []domain.CartLine) error
	Delete(ctx context.Context, userID string) error
}

var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrStaleVersion = errors.New("cart changed since it was loaded")
)
