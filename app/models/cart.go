package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one line item in a user's cart, stored as its own document
// in the "carts" collection. There is no aggregate cart document; a
// user's cart is the set of their line items.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	ColorID   primitive.ObjectID `bson:"color,omitempty" json:"color,omitempty"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
	// Price is the unit price captured when the item was added.
	Price     float64   `bson:"price" json:"price"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CartItemView is a line item with its product and color expanded for
// API responses.
type CartItemView struct {
	CartItem `bson:",inline"`
	Product  *Product `bson:"product,omitempty" json:"product,omitempty"`
	Color    *Color   `bson:"colorDoc,omitempty" json:"colorDetail,omitempty"`
}
