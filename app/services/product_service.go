package services

import (
	"context"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/pkg/apperr"
	"github.com/rishivikram/vastra/pkg/storage"
)

// ProductService owns catalogue logic: CRUD, ratings, wishlist and
// image uploads.
type ProductService struct {
	products repositories.ProductRepository
	colors   repositories.ColorRepository
	users    repositories.UserRepository
	disk     func() storage.Disk
}

// NewProductService wires the production product service.
func NewProductService() *ProductService {
	return &ProductService{
		products: repositories.NewProductRepository(),
		colors:   repositories.NewColorRepository(),
		users:    repositories.NewUserRepository(),
		disk:     storage.Default,
	}
}

// ─── CRUD ───

// ProductInput is the create/update payload.
type ProductInput struct {
	Title       string   `json:"title" validate:"required,min=2,max=200"`
	Description string   `json:"description" validate:"required"`
	Brand       string   `json:"brand" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Price       float64  `json:"price" validate:"required,numeric,gte=0"`
	Quantity    int64    `json:"quantity" validate:"required,numeric,gte=0"`
	Colors      []string `json:"color" validate:"nullable"`
	Tags        string   `json:"tags" validate:"nullable"`
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	colorIDs, err := parseObjectIDs(in.Colors)
	if err != nil {
		return models.Product{}, apperr.Validation("invalid color id")
	}

	p := models.Product{
		Title:       in.Title,
		Slug:        Slugify(in.Title),
		Description: in.Description,
		Brand:       in.Brand,
		Category:    in.Category,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Colors:      colorIDs,
		Tags:        in.Tags,
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, in ProductInput) (models.Product, error) {
	colorIDs, err := parseObjectIDs(in.Colors)
	if err != nil {
		return models.Product{}, apperr.Validation("invalid color id")
	}

	set := bson.M{
		"title":       in.Title,
		"slug":        Slugify(in.Title),
		"description": in.Description,
		"brand":       in.Brand,
		"category":    in.Category,
		"price":       in.Price,
		"quantity":    in.Quantity,
		"tags":        in.Tags,
	}
	if len(colorIDs) > 0 {
		set["color"] = colorIDs
	}
	return s.products.Update(ctx, id, set)
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.products.Delete(ctx, id)
}

func (s *ProductService) List(ctx context.Context, filter repositories.ProductFilter, page, limit int) ([]models.Product, int64, error) {
	return s.products.All(ctx, filter, page, limit)
}

// DetailedProduct is a product with its color refs expanded.
type DetailedProduct struct {
	models.Product
	ColorDetails []models.Color `json:"colorDetails,omitempty"`
}

// Get returns one product with its colors expanded.
func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (DetailedProduct, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return DetailedProduct{}, err
	}
	colors, err := s.colors.FindByIDs(ctx, p.Colors)
	if err != nil {
		return DetailedProduct{}, err
	}
	return DetailedProduct{Product: p, ColorDetails: colors}, nil
}

// ─── Ratings ───

// Rate records the caller's star rating on a product, overwriting any
// rating they gave before, and refreshes the product's aggregate rating.
func (s *ProductService) Rate(ctx context.Context, productID, userID primitive.ObjectID, star int, comment string) (models.Product, error) {
	if star < 1 || star > 5 {
		return models.Product{}, apperr.Validation("star must be between 1 and 5")
	}

	ratings, err := s.products.UpsertRating(ctx, productID, models.Rating{
		Star:     star,
		Comment:  comment,
		PostedBy: userID,
	})
	if err != nil {
		return models.Product{}, err
	}

	if err := s.products.SetTotalRating(ctx, productID, AggregateRating(ratings)); err != nil {
		return models.Product{}, err
	}
	return s.products.FindByID(ctx, productID)
}

// AggregateRating returns the round-half-up mean star value, or 0 when
// there are no ratings.
func AggregateRating(ratings []models.Rating) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Star
	}
	// Integer round-half-up avoids any float NaN path entirely.
	return (sum*2 + len(ratings)) / (2 * len(ratings))
}

// ─── Wishlist ───

// ToggleWishlist adds the product to the user's wishlist, or removes it
// when already present. Returns true when the product is now wishlisted.
func (s *ProductService) ToggleWishlist(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return false, err
	}
	return s.users.ToggleWishlist(ctx, userID, productID)
}

// Wishlist returns the user's wishlisted products.
func (s *ProductService) Wishlist(ctx context.Context, userID primitive.ObjectID) ([]models.Product, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.products.FindByIDs(ctx, user.Wishlist)
}

// ─── Images ───

// UploadImage stores an image on the configured disk and attaches its
// public URL to the product.
func (s *ProductService) UploadImage(ctx context.Context, productID primitive.ObjectID, filename string, r io.Reader) (models.Image, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return models.Image{}, err
	}

	path := storage.ImagePath("product", productID.Hex(), filename)
	disk := s.disk()
	if err := disk.PutStream(path, r); err != nil {
		return models.Image{}, apperr.Wrap(apperr.KindInternal, "store image", err)
	}

	img := models.Image{PublicID: path, URL: disk.URL(path)}
	if err := s.products.AddImage(ctx, productID, img); err != nil {
		// Keep the disk consistent with the document.
		_ = disk.Delete(path)
		return models.Image{}, err
	}
	return img, nil
}

// ─── helpers ───

// Slugify lowercases the title and collapses runs of non-alphanumerics
// into single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func parseObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	if len(hexes) == 0 {
		return nil, nil
	}
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
