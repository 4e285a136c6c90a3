package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(usersCollection),
	}
}

func (m *mongoUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now
	// nil slices are stored as null, which $push and $addToSet refuse
	if user.Cart == nil {
		user.Cart = domain.Cart{}
	}
	if user.Favourites == nil {
		user.Favourites = []primitive.ObjectID{}
	}

	res, err := m.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (m *mongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *mongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (m *mongoUserRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.User, error) {
	var user domain.User
	err := m.collection.FindOne(ctx, filter, opts...).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (m *mongoUserRepository) GetCart(ctx context.Context, userID primitive.ObjectID) (domain.Cart, error) {
	user, err := m.findOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"cart": 1}))
	if err != nil {
		return nil, err
	}
	return user.Cart, nil
}

// AddCartItem increments an existing entry or pushes a new one. The push is
// guarded on the product being absent so two concurrent adds cannot create a
// duplicate entry; losing that race falls back to the increment.
func (m *mongoUserRepository) AddCartItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	for attempt := 0; attempt < 2; attempt++ {
		now := time.Now().UTC()

		res, err := m.collection.UpdateOne(ctx,
			bson.M{"_id": userID, "cart.product": productID},
			bson.M{
				"$inc": bson.M{"cart.$.quantity": quantity},
				"$set": bson.M{"updated_at": now},
			})
		if err != nil {
			return fmt.Errorf("failed to increment cart item: %w", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		res, err = m.collection.UpdateOne(ctx,
			bson.M{"_id": userID, "cart.product": bson.M{"$ne": productID}},
			bson.M{
				"$push": bson.M{"cart": domain.CartItem{ProductID: productID, Quantity: quantity}},
				"$set":  bson.M{"updated_at": now},
			})
		if err != nil {
			return fmt.Errorf("failed to add cart item: %w", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}
	}

	if _, err := m.GetUserByID(ctx, userID); err != nil {
		return err
	}
	return fmt.Errorf("failed to add cart item: concurrent modification")
}

// DecrementCartItem takes quantity off an entry. Each step is a single
// conditional update, so the stored quantity never goes below zero.
func (m *mongoUserRepository) DecrementCartItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	now := time.Now().UTC()

	res, err := m.collection.UpdateOne(ctx,
		bson.M{
			"_id":  userID,
			"cart": bson.M{"$elemMatch": bson.M{"product": productID, "quantity": bson.M{"$gt": quantity}}},
		},
		bson.M{
			"$inc": bson.M{"cart.$.quantity": -quantity},
			"$set": bson.M{"updated_at": now},
		})
	if err != nil {
		return fmt.Errorf("failed to decrement cart item: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = m.collection.UpdateOne(ctx,
		bson.M{
			"_id":  userID,
			"cart": bson.M{"$elemMatch": bson.M{"product": productID, "quantity": quantity}},
		},
		bson.M{
			"$pull": bson.M{"cart": bson.M{"product": productID}},
			"$set":  bson.M{"updated_at": now},
		})
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	cart, err := m.GetCart(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := cart.Remove(productID, quantity); err != nil {
		return err
	}
	// the entry changed between the conditional updates and the read
	return fmt.Errorf("failed to decrement cart item: concurrent modification")
}

func (m *mongoUserRepository) RemoveCartItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"cart": bson.M{"product": productID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (m *mongoUserRepository) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"cart": domain.Cart{}, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RemoveOrderedItems is a no-op when the cart was written after placedAt, so
// items added after the order survive a late or redelivered event.
func (m *mongoUserRepository) RemoveOrderedItems(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID, placedAt time.Time) error {
	if len(productIDs) == 0 {
		return nil
	}

	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "updated_at": bson.M{"$lte": placedAt}},
		bson.M{
			"$pull": bson.M{"cart": bson.M{"product": bson.M{"$in": productIDs}}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return fmt.Errorf("failed to remove ordered items: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := m.collection.CountDocuments(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("failed to remove ordered items: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (m *mongoUserRepository) GetFavourites(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	user, err := m.findOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"favourites": 1}))
	if err != nil {
		return nil, err
	}
	return user.Favourites, nil
}

func (m *mongoUserRepository) AddFavourite(ctx context.Context, userID, productID primitive.ObjectID) error {
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$addToSet": bson.M{"favourites": productID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return fmt.Errorf("failed to add favourite: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (m *mongoUserRepository) RemoveFavourite(ctx context.Context, userID, productID primitive.ObjectID) error {
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"favourites": productID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return fmt.Errorf("failed to remove favourite: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
