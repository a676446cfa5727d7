package validate_test

import (
	"testing"
	"time"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/pkg/validate"
	"github.com/stretchr/testify/assert"
)

type ratingInput struct {
	ProductID string `json:"prodId" validate:"required"`
	Star      int    `json:"star"   validate:"required,gte=1,lte=5"`
	Comment   string `json:"comment" validate:"nullable,max=500"`
}

func TestStruct_Valid(t *testing.T) {
	errs := validate.Struct(ratingInput{ProductID: "65a1", Star: 4})
	assert.Empty(t, errs)
}

func TestStruct_Required(t *testing.T) {
	errs := validate.Struct(ratingInput{Star: 3})
	assert.Contains(t, errs, "prodId")
}

func TestStruct_StarBounds(t *testing.T) {
	errs := validate.Struct(ratingInput{ProductID: "65a1", Star: 6})
	assert.Contains(t, errs, "star")

	// Star 0 trips required before gte; either way it must be rejected.
	errs = validate.Struct(ratingInput{ProductID: "65a1", Star: 0})
	assert.Contains(t, errs, "star")
}

func TestStruct_NullableSkipsEmpty(t *testing.T) {
	errs := validate.Struct(ratingInput{ProductID: "65a1", Star: 2, Comment: ""})
	assert.NotContains(t, errs, "comment")
}

func TestStruct_InKeepsCommaParams(t *testing.T) {
	type statusInput struct {
		Status string `json:"status" validate:"required,in=created,processing,shipped,delivered"`
	}

	assert.Empty(t, validate.Struct(statusInput{Status: "shipped"}))

	errs := validate.Struct(statusInput{Status: "teleported"})
	assert.Contains(t, errs, "status")
}

func TestStruct_Email(t *testing.T) {
	type enquiryInput struct {
		Email string `json:"email" validate:"required,email"`
	}

	assert.Empty(t, validate.Struct(enquiryInput{Email: "asha@example.com"}))
	assert.Contains(t, validate.Struct(enquiryInput{Email: "not-an-email"}), "email")
}

func TestStruct_NestedStruct(t *testing.T) {
	type checkoutInput struct {
		Shipping models.Shipping `json:"shipping"`
	}

	// An all-empty shipping block must not slip through checkout.
	errs := validate.Struct(checkoutInput{})
	assert.Contains(t, errs, "shipping.name")
	assert.Contains(t, errs, "shipping.address")
	assert.Contains(t, errs, "shipping.pincode")

	errs = validate.Struct(checkoutInput{Shipping: models.Shipping{
		Name:    "Asha",
		Address: "12 MG Road",
		City:    "Pune",
		Pincode: "411001",
		Mobile:  "9876543210",
	}})
	assert.Empty(t, errs)
}

func TestStruct_TimeFieldsNotRecursed(t *testing.T) {
	type stamped struct {
		Title     string    `json:"title" validate:"required"`
		CreatedAt time.Time `json:"createdAt"`
	}

	assert.Empty(t, validate.Struct(stamped{Title: "kurta"}))
}

func TestStruct_MinMaxOnStrings(t *testing.T) {
	type titleInput struct {
		Title string `json:"title" validate:"required,min=2,max=10"`
	}

	assert.Contains(t, validate.Struct(titleInput{Title: "a"}), "title")
	assert.Contains(t, validate.Struct(titleInput{Title: "a very long title"}), "title")
	assert.Empty(t, validate.Struct(titleInput{Title: "kurta"}))
}
