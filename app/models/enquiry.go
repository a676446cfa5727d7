package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enquiry statuses.
const (
	EnquirySubmitted  = "Submitted"
	EnquiryContacted  = "Contacted"
	EnquiryInProgress = "In Progress"
	EnquiryResolved   = "Resolved"
)

// Enquiry is a customer contact-form submission in the "enquiries"
// collection.
type Enquiry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Mobile    string             `bson:"mobile" json:"mobile"`
	Comment   string             `bson:"comment" json:"comment"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
