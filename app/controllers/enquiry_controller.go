package controllers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/pkg/bind"
	"github.com/rishivikram/vastra/pkg/response"
)

type EnquiryController struct {
	enquiries repositories.EnquiryRepository
}

func NewEnquiryController() *EnquiryController {
	return &EnquiryController{enquiries: repositories.NewEnquiryRepository()}
}

// Create handles POST /api/enquiry (public contact form).
func (c *EnquiryController) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name    string `json:"name" validate:"required,min=1,max=200"`
		Email   string `json:"email" validate:"required,email"`
		Mobile  string `json:"mobile" validate:"required,min=7,max=15"`
		Comment string `json:"comment" validate:"required,max=2000"`
	}
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	enquiry := models.Enquiry{
		Name:    in.Name,
		Email:   in.Email,
		Mobile:  in.Mobile,
		Comment: in.Comment,
	}
	if err := c.enquiries.Create(r.Context(), &enquiry); err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, enquiry)
}

// All handles GET /api/enquiry (admin).
func (c *EnquiryController) All(w http.ResponseWriter, r *http.Request) {
	enquiries, err := c.enquiries.All(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, enquiries)
}

// Get handles GET /api/enquiry/{id} (admin).
func (c *EnquiryController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	enquiry, err := c.enquiries.FindByID(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, enquiry)
}

// Update handles PUT /api/enquiry/{id} (admin), typically a status move.
func (c *EnquiryController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var in struct {
		Status string `json:"status" validate:"required,in=Submitted,Contacted,In Progress,Resolved"`
	}
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	enquiry, err := c.enquiries.Update(r.Context(), id, bson.M{"status": in.Status})
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, enquiry)
}

// Delete handles DELETE /api/enquiry/{id} (admin).
func (c *EnquiryController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	if err := c.enquiries.Delete(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}
	response.Message(w, "enquiry deleted")
}
