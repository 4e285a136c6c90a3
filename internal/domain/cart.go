package domain

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrQuantityBelowZero = errors.New("quantity cannot go below zero")
)

type CartItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// CartLine is a cart entry with its product resolved.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Cart is the ordered list of entries stored on a user. Entries are unique
// by product and every quantity is positive.
//
// Add, Remove and Drop are the in-memory form of the cart rules. The Mongo
// repository applies the same rules as conditional updates and classifies a
// failed decrement through Remove; the in-memory test repositories use them
// directly.
type Cart []CartItem

func (c Cart) Find(productID primitive.ObjectID) (int, bool) {
	for i, item := range c {
		if item.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

func (c Cart) Quantity(productID primitive.ObjectID) int {
	if i, ok := c.Find(productID); ok {
		return c[i].Quantity
	}
	return 0
}

func (c Cart) ProductIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(c))
	for i, item := range c {
		ids[i] = item.ProductID
	}
	return ids
}

// Add returns a copy of c with qty added to productID, appending a new entry
// when the product is not in the cart yet.
func (c Cart) Add(productID primitive.ObjectID, qty int) Cart {
	out := c.clone()
	if i, ok := out.Find(productID); ok {
		out[i].Quantity += qty
		return out
	}
	return append(out, CartItem{ProductID: productID, Quantity: qty})
}

// Remove returns a copy of c with qty taken from productID. An entry that
// reaches zero is dropped; going below zero is rejected and c is unchanged.
func (c Cart) Remove(productID primitive.ObjectID, qty int) (Cart, error) {
	i, ok := c.Find(productID)
	if !ok {
		return c, ErrItemNotFound
	}
	left := c[i].Quantity - qty
	switch {
	case left < 0:
		return c, ErrQuantityBelowZero
	case left == 0:
		return c.Drop(productID), nil
	}
	out := c.clone()
	out[i].Quantity = left
	return out, nil
}

// Drop returns a copy of c without productID.
func (c Cart) Drop(productID primitive.ObjectID) Cart {
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
