package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// WeightVariant is an alternative pack size with its own pricing.
type WeightVariant struct {
	Weight     string  `bson:"weight"`
	Price      float64 `bson:"price"`
	OfferPrice float64 `bson:"offer_price"`
}

// Product is a catalog entry. Images hold object-store URLs.
type Product struct {
	ID             bson.ObjectID   `bson:"_id,omitempty"`
	Name           string          `bson:"name"`
	Description    []string        `bson:"description"`
	Category       string          `bson:"category"`
	Price          float64         `bson:"price"`
	OfferPrice     float64         `bson:"offer_price"`
	WeightVariants []WeightVariant `bson:"weight_variants,omitempty"`
	Images         []string        `bson:"images"`
	InStock        bool            `bson:"in_stock"`
	CreatedAt      time.Time       `bson:"created_at"`
	UpdatedAt      time.Time       `bson:"updated_at"`
}
