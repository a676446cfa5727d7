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

// ColorRepository handles "colors" collection CRUD.
type ColorRepository interface {
	Create(ctx context.Context, c *models.Color) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Color, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Color, error)
	All(ctx context.Context) ([]models.Color, error)
	Update(ctx context.Context, id primitive.ObjectID, title string) (models.Color, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoColorRepository struct {
	col func() *mongo.Collection
}

// NewColorRepository returns the Mongo-backed color repository.
func NewColorRepository() ColorRepository {
	return &mongoColorRepository{col: database.C("colors")}
}

func (r *mongoColorRepository) Create(ctx context.Context, c *models.Color) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := r.col().InsertOne(ctx, c)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "insert color", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoColorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Color, error) {
	var c models.Color
	err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c, apperr.NotFound("color not found")
	}
	if err != nil {
		return c, apperr.Wrap(apperr.KindInternal, "find color", err)
	}
	return c, nil
}

func (r *mongoColorRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Color, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "find colors", err)
	}
	defer cur.Close(ctx)

	var out []models.Color
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "decode colors", err)
	}
	return out, nil
}

func (r *mongoColorRepository) All(ctx context.Context) ([]models.Color, error) {
	cur, err := r.col().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list colors", err)
	}
	defer cur.Close(ctx)

	var out []models.Color
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "decode colors", err)
	}
	return out, nil
}

func (r *mongoColorRepository) Update(ctx context.Context, id primitive.ObjectID, title string) (models.Color, error) {
	var c models.Color
	err := r.col().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"title": title, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c, apperr.NotFound("color not found")
	}
	if err != nil {
		return c, apperr.Wrap(apperr.KindInternal, "update color", err)
	}
	return c, nil
}

func (r *mongoColorRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "delete color", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("color not found")
	}
	return nil
}
