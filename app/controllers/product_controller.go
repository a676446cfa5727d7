package controllers

import (
	"net/http"
	"strconv"

	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/app/services"
	"github.com/rishivikram/vastra/pkg/bind"
	"github.com/rishivikram/vastra/pkg/response"
)

type ProductController struct {
	products    *services.ProductService
	recommender *services.RecommenderService
}

func NewProductController() *ProductController {
	return &ProductController{
		products:    services.NewProductService(),
		recommender: services.NewRecommenderService(),
	}
}

// List handles GET /api/product.
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	filter := repositories.ProductFilter{
		Brand:    q.Get("brand"),
		Category: q.Get("category"),
	}
	filter.MinPrice, _ = strconv.ParseFloat(q.Get("minPrice"), 64)
	filter.MaxPrice, _ = strconv.ParseFloat(q.Get("maxPrice"), 64)

	products, total, err := c.products.List(r.Context(), filter, page, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Paginated(w, products, paginate(page, limit, total))
}

// Get handles GET /api/product/{id}.
func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	product, err := c.products.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, product)
}

// Create handles POST /api/product (admin).
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.products.Create(r.Context(), in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, product)
}

// Update handles PUT /api/product/{id} (admin).
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var in services.ProductInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.products.Update(r.Context(), id, in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, product)
}

// Delete handles DELETE /api/product/{id} (admin).
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	if err := c.products.Delete(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}
	response.Message(w, "product deleted")
}

// Upload handles PUT /api/product/upload/{id} (admin, multipart form
// with an "image" file field).
func (c *ProductController) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	img, err := c.products.UploadImage(r.Context(), id, header.Filename, file)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, img)
}

// Rate handles PUT /api/product/rating.
func (c *ProductController) Rate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	var in struct {
		ProductID string `json:"prodId" validate:"required"`
		Star      int    `json:"star" validate:"required,integer,gte=1,lte=5"`
		Comment   string `json:"comment" validate:"nullable"`
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

	productID, err := parseHex(in.ProductID, "prodId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	product, err := c.products.Rate(r.Context(), productID, userID, in.Star, in.Comment)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, product)
}

// ToggleWishlist handles PUT /api/product/wishlist.
func (c *ProductController) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	var in struct {
		ProductID string `json:"prodId" validate:"required"`
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

	productID, err := parseHex(in.ProductID, "prodId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	wishlisted, err := c.products.ToggleWishlist(r.Context(), userID, productID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]bool{"wishlisted": wishlisted})
}

// Wishlist handles GET /api/user/wishlist.
func (c *ProductController) Wishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	products, err := c.products.Wishlist(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, products)
}

// Recommend handles GET /api/product/recommenders.
func (c *ProductController) Recommend(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	products, err := c.recommender.ForUser(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, products)
}
