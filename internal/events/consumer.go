package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/cache"
	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/internal/repository"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const maxBackoff = 30 * time.Second

// CartStore is the slice of the user repository the clearer needs.
type CartStore interface {
	RemoveOrderedItems(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID, placedAt time.Time) error
}

// CartClearer takes the ordered products out of the buyer's cart for every
// order_placed event. A cart written after the order is left alone, so late
// and redelivered events cannot drop items added since.
type CartClearer struct {
	reader  messageReader
	store   CartStore
	cache   cache.CartCache
	log     *slog.Logger
	backoff time.Duration
}

func NewCartClearer(store CartStore, cartCache cache.CartCache, log *slog.Logger, brokers []string, topic, groupID string) *CartClearer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newCartClearer(reader, store, cartCache, log)
}

func newCartClearer(reader messageReader, store CartStore, cartCache cache.CartCache, log *slog.Logger) *CartClearer {
	return &CartClearer{
		reader:  reader,
		store:   store,
		cache:   cartCache,
		log:     log,
		backoff: time.Second,
	}
}

// Run blocks until ctx is cancelled.
func (c *CartClearer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("error reading message", slog.Any("error", err))
			c.sleep(ctx, c.backoff)
			continue
		}

		if !c.process(ctx, m) {
			return
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.log.Error("failed to commit message", slog.Any("error", err))
		}
	}
}

// process retries m until it is handled. A group reader does not hand an
// uncommitted message out again, and committing a later offset would skip it,
// so the loop stays on m. It returns false once ctx is cancelled.
func (c *CartClearer) process(ctx context.Context, m kafka.Message) bool {
	wait := c.backoff
	for {
		err := c.handle(ctx, m)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		c.log.Error("failed to clear cart",
			slog.Any("error", err),
			slog.Int64("offset", m.Offset),
			slog.Duration("retry_in", wait))
		if !c.sleep(ctx, wait) {
			return false
		}
		wait = min(wait*2, maxBackoff)
	}
}

func (c *CartClearer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Error("error closing reader", slog.Any("error", err))
	}
}

// handle returns an error only for failures worth retrying. Malformed and
// unrelated messages are logged and skipped.
func (c *CartClearer) handle(ctx context.Context, m kafka.Message) error {
	if t := headerValue(m, eventTypeHeader); t != "" && t != domain.EventTypeOrderPlaced {
		return nil
	}

	var evt domain.OrderPlacedEvent
	if err := json.Unmarshal(m.Value, &evt); err != nil {
		c.log.Warn("error parsing message", slog.Any("error", err))
		return nil
	}

	userID, err := primitive.ObjectIDFromHex(evt.UserID)
	if err != nil {
		c.log.Warn("missing or invalid user_id", slog.String("user_id", evt.UserID))
		return nil
	}

	productIDs := make([]primitive.ObjectID, 0, len(evt.Items))
	for _, item := range evt.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	if err := c.store.RemoveOrderedItems(ctx, userID, productIDs, evt.PlacedAt); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	if err := c.cache.Delete(ctx, evt.UserID); err != nil {
		c.log.Warn("failed to delete cache", slog.Any("error", err))
	}

	c.log.Info("ordered items removed from cart",
		slog.String("order_id", evt.OrderID),
		slog.String("user_id", evt.UserID))
	return nil
}

func (c *CartClearer) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
