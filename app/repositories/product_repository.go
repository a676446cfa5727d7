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

// ProductFilter narrows product listings. Zero values mean "no filter".
type ProductFilter struct {
	Brand    string
	Category string
	MinPrice float64
	MaxPrice float64
}

// ProductRepository handles "products" collection operations, including
// the stock decrements that run inside the checkout transaction.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	All(ctx context.Context, filter ProductFilter, page, limit int) ([]models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddImage(ctx context.Context, id primitive.ObjectID, img models.Image) error

	// UpsertRating overwrites the caller's existing rating on the product
	// or appends a new one, then returns the updated ratings slice.
	UpsertRating(ctx context.Context, productID primitive.ObjectID, rating models.Rating) ([]models.Rating, error)
	SetTotalRating(ctx context.Context, productID primitive.ObjectID, total int) error

	// TopRated returns up to limit products ordered by rating count
	// descending, used to pad short recommendation lists.
	TopRated(ctx context.Context, limit int) ([]models.Product, error)

	// DecrementStock applies one ordered batch of conditional stock
	// decrements, one per item. Each update matches only while the
	// product still has at least the requested quantity, so the returned
	// matched count falls short of len(items) exactly when some product
	// lacks stock.
	DecrementStock(ctx context.Context, items []models.OrderItem) (int64, error)
}

type mongoProductRepository struct {
	col func() *mongo.Collection
}

// NewProductRepository returns the Mongo-backed product repository.
func NewProductRepository() ProductRepository {
	return &mongoProductRepository{col: database.C("products")}
}

func (r *mongoProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := r.col().InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("product slug already exists")
		}
		return apperr.Wrap(apperr.KindInternal, "insert product", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return p, apperr.NotFound("product not found")
	}
	if err != nil {
		return p, apperr.Wrap(apperr.KindInternal, "find product", err)
	}
	return p, nil
}

func (r *mongoProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "find products", err)
	}
	defer cur.Close(ctx)

	var out []models.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "decode products", err)
	}
	return out, nil
}

func (r *mongoProductRepository) All(ctx context.Context, filter ProductFilter, page, limit int) ([]models.Product, int64, error) {
	query := bson.M{}
	if filter.Brand != "" {
		query["brand"] = filter.Brand
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	price := bson.M{}
	if filter.MinPrice > 0 {
		price["$gte"] = filter.MinPrice
	}
	if filter.MaxPrice > 0 {
		price["$lte"] = filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	total, err := r.col().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "count products", err)
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.col().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "list products", err)
	}
	defer cur.Close(ctx)

	var out []models.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "decode products", err)
	}
	return out, total, nil
}

func (r *mongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Product, error) {
	set["updatedAt"] = time.Now().UTC()

	var p models.Product
	err := r.col().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return p, apperr.NotFound("product not found")
	}
	if err != nil {
		return p, apperr.Wrap(apperr.KindInternal, "update product", err)
	}
	return p, nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "delete product", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

func (r *mongoProductRepository) AddImage(ctx context.Context, id primitive.ObjectID, img models.Image) error {
	res, err := r.col().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"images": img},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "add image", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

func (r *mongoProductRepository) UpsertRating(ctx context.Context, productID primitive.ObjectID, rating models.Rating) ([]models.Rating, error) {
	now := time.Now().UTC()

	// Overwrite an existing rating by the same user via the positional
	// operator.
	res, err := r.col().UpdateOne(ctx,
		bson.M{"_id": productID, "ratings.postedBy": rating.PostedBy},
		bson.M{"$set": bson.M{
			"ratings.$.star":    rating.Star,
			"ratings.$.comment": rating.Comment,
			"updatedAt":         now,
		}},
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "update rating", err)
	}

	if res.MatchedCount == 0 {
		res, err = r.col().UpdateOne(ctx,
			bson.M{"_id": productID},
			bson.M{
				"$push": bson.M{"ratings": rating},
				"$set":  bson.M{"updatedAt": now},
			},
		)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "push rating", err)
		}
		if res.MatchedCount == 0 {
			return nil, apperr.NotFound("product not found")
		}
	}

	p, err := r.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return p.Ratings, nil
}

func (r *mongoProductRepository) SetTotalRating(ctx context.Context, productID primitive.ObjectID, total int) error {
	_, err := r.col().UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"totalrating": total, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "set total rating", err)
	}
	return nil
}

func (r *mongoProductRepository) TopRated(ctx context.Context, limit int) ([]models.Product, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{
			"ratingCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$ratings", bson.A{}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "ratingCount", Value: -1}, {Key: "totalrating", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cur, err := r.col().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "top rated", err)
	}
	defer cur.Close(ctx)

	var out []models.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "decode top rated", err)
	}
	return out, nil
}

func (r *mongoProductRepository) DecrementStock(ctx context.Context, items []models.OrderItem) (int64, error) {
	writes := make([]mongo.WriteModel, 0, len(items))
	for _, item := range items {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{
				"_id":      item.ProductID,
				"quantity": bson.M{"$gte": item.Quantity},
			}).
			SetUpdate(bson.M{
				"$inc": bson.M{"quantity": -item.Quantity, "sold": +item.Quantity},
			}))
	}

	res, err := r.col().BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "stock decrement", err)
	}
	return res.MatchedCount, nil
}
