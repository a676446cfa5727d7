package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rishivikram/vastra/app/services"
	"github.com/rishivikram/vastra/pkg/bind"
	"github.com/rishivikram/vastra/pkg/response"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController() *CartController {
	return &CartController{carts: services.NewCartService()}
}

// Add handles POST /api/user/cart.
func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	var in services.AddItemInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	item, err := c.carts.AddItem(r.Context(), userID, in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, item)
}

// List handles GET /api/user/cart.
func (c *CartController) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	items, err := c.carts.Items(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, items)
}

// UpdateQuantity handles PUT /api/user/cart/{id}/{newQuantity}.
func (c *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	quantity, err := strconv.ParseInt(chi.URLParam(r, "newQuantity"), 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid quantity")
		return
	}

	item, err := c.carts.UpdateQuantity(r.Context(), userID, chi.URLParam(r, "id"), quantity)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, item)
}

// Remove handles DELETE /api/user/cart/{id}.
func (c *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	if err := c.carts.RemoveItem(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		response.FromError(w, err)
		return
	}
	response.Message(w, "cart item removed")
}

// Empty handles DELETE /api/user/cart.
func (c *CartController) Empty(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	if err := c.carts.Empty(r.Context(), userID); err != nil {
		response.FromError(w, err)
		return
	}
	response.Message(w, "cart emptied")
}
