package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Color is a catalogue color option in the "colors" collection.
type Color struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
