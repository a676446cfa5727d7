// Package models defines the MongoDB document types shared by
// repositories, services and controllers.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account document in the "users" collection.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FirstName string               `bson:"firstname" json:"firstname"`
	LastName  string               `bson:"lastname" json:"lastname"`
	Email     string               `bson:"email" json:"email"`
	Mobile    string               `bson:"mobile" json:"mobile"`
	Role      string               `bson:"role" json:"role"`
	IsBlocked bool                 `bson:"isBlocked" json:"isBlocked"`
	Address   string               `bson:"address,omitempty" json:"address,omitempty"`
	Wishlist  []primitive.ObjectID `bson:"wishlist,omitempty" json:"wishlist,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Admin reports whether the user holds the admin role.
func (u User) Admin() bool { return u.Role == RoleAdmin }
