package controllers

import (
	"net/http"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/pkg/bind"
	"github.com/rishivikram/vastra/pkg/response"
)

type ColorController struct {
	colors repositories.ColorRepository
}

func NewColorController() *ColorController {
	return &ColorController{colors: repositories.NewColorRepository()}
}

type colorInput struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}

// Create handles POST /api/color (admin).
func (c *ColorController) Create(w http.ResponseWriter, r *http.Request) {
	var in colorInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	color := models.Color{Title: in.Title}
	if err := c.colors.Create(r.Context(), &color); err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, color)
}

// All handles GET /api/color.
func (c *ColorController) All(w http.ResponseWriter, r *http.Request) {
	colors, err := c.colors.All(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, colors)
}

// Get handles GET /api/color/{id}.
func (c *ColorController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	color, err := c.colors.FindByID(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, color)
}

// Update handles PUT /api/color/{id} (admin).
func (c *ColorController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var in colorInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	color, err := c.colors.Update(r.Context(), id, in.Title)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, color)
}

// Delete handles DELETE /api/color/{id} (admin).
func (c *ColorController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	if err := c.colors.Delete(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}
	response.Message(w, "color deleted")
}
