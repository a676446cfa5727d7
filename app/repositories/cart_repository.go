package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/pkg/apperr"
	"github.com/rishivikram/vastra/pkg/database"
)

// CartRepository handles "carts" line-item documents. Every mutating
// method filters on the owning user so one user can never touch
// another's items. Clear participates in the checkout transaction when
// called with a session context.
type CartRepository interface {
	Add(ctx context.Context, item *models.CartItem) error
	ItemsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error)
	ItemsExpanded(ctx context.Context, userID primitive.ObjectID) ([]models.CartItemView, error)
	UpdateQuantity(ctx context.Context, itemID, userID primitive.ObjectID, quantity int64) (models.CartItem, error)
	Remove(ctx context.Context, itemID, userID primitive.ObjectID) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type mongoCartRepository struct {
	col func() *mongo.Collection
}

// NewCartRepository returns the Mongo-backed cart repository.
func NewCartRepository() CartRepository {
	return &mongoCartRepository{col: database.C("carts")}
}

func (r *mongoCartRepository) Add(ctx context.Context, item *models.CartItem) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	res, err := r.col().InsertOne(ctx, item)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "add cart item", err)
	}
	item.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoCartRepository) ItemsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	cur, err := r.col().Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list cart", err)
	}
	defer cur.Close(ctx)

	var items []models.CartItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "decode cart", err)
	}
	return items, nil
}

func (r *mongoCartRepository) ItemsExpanded(ctx context.Context, userID primitive.ObjectID) ([]models.CartItemView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "products",
			"localField":   "productId",
			"foreignField": "_id",
			"as":           "product",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$product", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "colors",
			"localField":   "color",
			"foreignField": "_id",
			"as":           "colorDoc",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$colorDoc", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}}}},
	}
	cur, err := r.col().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "expand cart", err)
	}
	defer cur.Close(ctx)

	var views []models.CartItemView
	if err := cur.All(ctx, &views); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "decode cart view", err)
	}
	return views, nil
}

func (r *mongoCartRepository) UpdateQuantity(ctx context.Context, itemID, userID primitive.ObjectID, quantity int64) (models.CartItem, error) {
	var item models.CartItem
	err := r.col().FindOneAndUpdate(ctx,
		bson.M{"_id": itemID, "userId": userID},
		bson.M{"$set": bson.M{"quantity": quantity, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return item, apperr.NotFound("cart item not found")
	}
	if err != nil {
		return item, apperr.Wrap(apperr.KindInternal, "update cart item", err)
	}
	return item, nil
}

func (r *mongoCartRepository) Remove(ctx context.Context, itemID, userID primitive.ObjectID) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": itemID, "userId": userID})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "remove cart item", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("cart item not found")
	}
	return nil
}

func (r *mongoCartRepository) Clear(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := r.col().DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return apperr.Wrap(apperr.KindInternal, "clear cart", err)
	}
	return nil
}
