package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Orders move forward only; cash_on_delivery is a
// terminal short-circuit set at payment selection.
const (
	StatusCreated        = "created"
	StatusCashOnDelivery = "cash_on_delivery"
	StatusProcessing     = "processing"
	StatusShipped        = "shipped"
	StatusDelivered      = "delivered"
)

var statusTransitions = map[string][]string{
	StatusCreated:    {StatusProcessing, StatusCashOnDelivery},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
}

// ValidTransition reports whether an order may move from one status to
// another.
func ValidTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// KnownStatus reports whether s is one of the defined order statuses.
func KnownStatus(s string) bool {
	switch s {
	case StatusCreated, StatusCashOnDelivery, StatusProcessing, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// OrderItem is a snapshot of one purchased line. It copies quantity and
// unit price at checkout time so later product edits never change what
// the order says.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	ColorID   primitive.ObjectID `bson:"color,omitempty" json:"color,omitempty"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// PaymentIntent records how the order is to be paid. Only cash on
// delivery is supported.
type PaymentIntent struct {
	Method    string    `bson:"method" json:"method"`
	Amount    float64   `bson:"amount" json:"amount"`
	Currency  string    `bson:"currency" json:"currency"`
	CreatedAt time.Time `bson:"created" json:"created"`
}

// Shipping is the delivery address captured at checkout. Required but
// not deeply validated; the courier sheet is the source of truth.
type Shipping struct {
	Name    string `bson:"name" json:"name" validate:"required"`
	Address string `bson:"address" json:"address" validate:"required"`
	City    string `bson:"city" json:"city" validate:"required"`
	Pincode string `bson:"pincode" json:"pincode" validate:"required"`
	Mobile  string `bson:"mobile" json:"mobile" validate:"required"`
}

// Order is an immutable purchase record in the "orders" collection.
// After creation only Status may change.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"orderby" json:"orderby"`
	Items          []OrderItem        `bson:"products" json:"products"`
	Shipping       Shipping           `bson:"shipping" json:"shipping"`
	TotalPrice     float64            `bson:"totalPrice" json:"totalPrice"`
	Payment        PaymentIntent      `bson:"paymentIntent" json:"paymentIntent"`
	Status         string             `bson:"orderStatus" json:"orderStatus"`
	IdempotencyKey string             `bson:"idempotencyKey,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
