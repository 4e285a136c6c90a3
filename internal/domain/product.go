package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Price struct {
	Org float64 `bson:"org" json:"org"` // selling price
	Mrp float64 `bson:"mrp" json:"mrp"` // list price
	Off float64 `bson:"off" json:"off"` // discount percent
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Desc        string             `bson:"desc" json:"desc"`
	Img         string             `bson:"img" json:"img"`
	Price       Price              `bson:"price" json:"price"`
	Ingredients []string           `bson:"ingredients" json:"ingredients"`
	Category    []string           `bson:"category" json:"category"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ProductFilter narrows a catalog listing. Nil bounds are open.
type ProductFilter struct {
	MinPrice   *float64
	MaxPrice   *float64
	Categories []string
	Search     string
	Limit      int64
	Offset     int64
}

// Matches reports whether p passes the filter. Limit and Offset are ignored.
// The repository's Mongo query must select exactly the products Matches accepts.
func (f ProductFilter) Matches(p Product) bool {
	if f.MinPrice != nil && p.Price.Org < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price.Org > *f.MaxPrice {
		return false
	}
	if len(f.Categories) > 0 && !hasAny(p.Category, f.Categories) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Desc), q) {
			return false
		}
	}
	return true
}

func hasAny(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
