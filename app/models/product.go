package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is one user's review embedded in a product document. A user has
// at most one rating per product.
type Rating struct {
	Star     int                `bson:"star" json:"star"`
	Comment  string             `bson:"comment,omitempty" json:"comment,omitempty"`
	PostedBy primitive.ObjectID `bson:"postedBy" json:"postedBy"`
}

// Image is an uploaded product image reference.
type Image struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

// Product is a catalogue document in the "products" collection.
// Quantity is units in stock and never goes negative; Sold counts units
// moved through completed orders.
type Product struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Slug        string               `bson:"slug" json:"slug"`
	Description string               `bson:"description" json:"description"`
	Brand       string               `bson:"brand" json:"brand"`
	Category    string               `bson:"category" json:"category"`
	Price       float64              `bson:"price" json:"price"`
	Quantity    int64                `bson:"quantity" json:"quantity"`
	Sold        int64                `bson:"sold" json:"sold"`
	Images      []Image              `bson:"images,omitempty" json:"images,omitempty"`
	Colors      []primitive.ObjectID `bson:"color,omitempty" json:"color,omitempty"`
	Tags        string               `bson:"tags,omitempty" json:"tags,omitempty"`
	Ratings     []Rating             `bson:"ratings,omitempty" json:"ratings,omitempty"`
	TotalRating int                  `bson:"totalrating" json:"totalrating"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}
