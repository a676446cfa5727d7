package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/pkg/apperr"
)

// CartService manages a user's cart line items.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
}

// NewCartService wires the production cart service.
func NewCartService() *CartService {
	return &CartService{
		carts:    repositories.NewCartRepository(),
		products: repositories.NewProductRepository(),
	}
}

// AddItemInput is the payload for adding a line item. Price is optional;
// when zero the current product price is captured.
type AddItemInput struct {
	ProductID string  `json:"productId" validate:"required"`
	ColorID   string  `json:"color" validate:"nullable"`
	Quantity  int64   `json:"quantity" validate:"required,numeric,gte=1"`
	Price     float64 `json:"price" validate:"nullable,numeric"`
}

// AddItem appends a line item to the user's cart, capturing the current
// product price when the request does not carry one.
func (s *CartService) AddItem(ctx context.Context, userID primitive.ObjectID, in AddItemInput) (models.CartItem, error) {
	productID, err := primitive.ObjectIDFromHex(in.ProductID)
	if err != nil {
		return models.CartItem{}, apperr.Validation("invalid product id")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return models.CartItem{}, err
	}

	price := in.Price
	if price == 0 {
		price = product.Price
	}

	item := models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  in.Quantity,
		Price:     price,
	}
	if in.ColorID != "" {
		colorID, err := primitive.ObjectIDFromHex(in.ColorID)
		if err != nil {
			return models.CartItem{}, apperr.Validation("invalid color id")
		}
		item.ColorID = colorID
	}

	if err := s.carts.Add(ctx, &item); err != nil {
		return models.CartItem{}, err
	}
	return item, nil
}

// Items returns the user's cart with products and colors expanded.
func (s *CartService) Items(ctx context.Context, userID primitive.ObjectID) ([]models.CartItemView, error) {
	return s.carts.ItemsExpanded(ctx, userID)
}

// UpdateQuantity changes the quantity of one of the user's own line items.
func (s *CartService) UpdateQuantity(ctx context.Context, userID primitive.ObjectID, itemID string, quantity int64) (models.CartItem, error) {
	if quantity < 1 {
		return models.CartItem{}, apperr.Validation("quantity must be at least 1")
	}
	id, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return models.CartItem{}, apperr.Validation("invalid cart item id")
	}
	return s.carts.UpdateQuantity(ctx, id, userID, quantity)
}

// RemoveItem deletes one of the user's own line items.
func (s *CartService) RemoveItem(ctx context.Context, userID primitive.ObjectID, itemID string) error {
	id, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return apperr.Validation("invalid cart item id")
	}
	return s.carts.Remove(ctx, id, userID)
}

// Empty removes every line item in the user's cart.
func (s *CartService) Empty(ctx context.Context, userID primitive.ObjectID) error {
	return s.carts.Clear(ctx, userID)
}
