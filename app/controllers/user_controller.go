package controllers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/pkg/bind"
	"github.com/rishivikram/vastra/pkg/response"
)

// UserController is thin enough to sit directly on the repository.
type UserController struct {
	users repositories.UserRepository
}

func NewUserController() *UserController {
	return &UserController{users: repositories.NewUserRepository()}
}

// All handles GET /api/user/all-users (admin).
func (c *UserController) All(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	users, total, err := c.users.All(r.Context(), page, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Paginated(w, users, paginate(page, limit, total))
}

// Get handles GET /api/user/{id} (admin).
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	user, err := c.users.FindByID(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, user)
}

// UpdateSelf handles PUT /api/user/edit-user.
func (c *UserController) UpdateSelf(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	var in struct {
		FirstName string `json:"firstname" validate:"required,min=1,max=100"`
		LastName  string `json:"lastname" validate:"required,min=1,max=100"`
		Email     string `json:"email" validate:"required,email"`
		Mobile    string `json:"mobile" validate:"required,min=7,max=15"`
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

	user, err := c.users.UpdateProfile(r.Context(), userID, bson.M{
		"firstname": in.FirstName,
		"lastname":  in.LastName,
		"email":     in.Email,
		"mobile":    in.Mobile,
	})
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, user)
}

// SaveAddress handles PUT /api/user/save-address.
func (c *UserController) SaveAddress(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	var in struct {
		Address string `json:"address" validate:"required,max=500"`
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

	user, err := c.users.SaveAddress(r.Context(), userID, in.Address)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, user)
}

// Block handles PUT /api/user/block-user/{id} (admin).
func (c *UserController) Block(w http.ResponseWriter, r *http.Request) {
	c.setBlocked(w, r, true, "user blocked")
}

// Unblock handles PUT /api/user/unblock-user/{id} (admin).
func (c *UserController) Unblock(w http.ResponseWriter, r *http.Request) {
	c.setBlocked(w, r, false, "user unblocked")
}

func (c *UserController) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool, msg string) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	if err := c.users.SetBlocked(r.Context(), id, blocked); err != nil {
		response.FromError(w, err)
		return
	}
	response.Message(w, msg)
}

// Delete handles DELETE /api/user/{id} (admin).
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	if err := c.users.Delete(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}
	response.Message(w, "user deleted")
}
