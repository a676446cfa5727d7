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

// ErrDuplicateOrder means an order with the same (user, idempotency key)
// already exists. Callers resolve the original with FindByIdempotencyKey.
var ErrDuplicateOrder = errors.New("order with this idempotency key already exists")

// OrderRepository handles "orders" collection operations. Create runs
// inside the checkout transaction when called with a session context.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindByIdempotencyKey(ctx context.Context, userID primitive.ObjectID, key string) (models.Order, error)
	All(ctx context.Context, page, limit int) ([]models.Order, int64, error)

	// UpdateStatus moves an order from exactly the given status to the
	// next one. A zero matched count means the order either does not
	// exist or is no longer in the expected status.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to string) (models.Order, error)
}

type mongoOrderRepository struct {
	col func() *mongo.Collection
}

// NewOrderRepository returns the Mongo-backed order repository.
func NewOrderRepository() OrderRepository {
	return &mongoOrderRepository{col: database.C("orders")}
}

func (r *mongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := r.col().InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		// The partial unique (orderby, idempotencyKey) index caught a
		// same-key retry that slipped past the Redis claim.
		return apperr.Wrap(apperr.KindConflict, "duplicate checkout request", ErrDuplicateOrder)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "insert order", err)
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return order, apperr.NotFound("order not found")
	}
	if err != nil {
		return order, apperr.Wrap(apperr.KindInternal, "find order", err)
	}
	return order, nil
}

func (r *mongoOrderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	cur, err := r.col().Find(ctx, bson.M{"orderby": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list orders", err)
	}
	defer cur.Close(ctx)

	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "decode orders", err)
	}
	return orders, nil
}

func (r *mongoOrderRepository) FindByIdempotencyKey(ctx context.Context, userID primitive.ObjectID, key string) (models.Order, error) {
	var order models.Order
	err := r.col().FindOne(ctx, bson.M{"orderby": userID, "idempotencyKey": key}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return order, apperr.NotFound("order not found")
	}
	if err != nil {
		return order, apperr.Wrap(apperr.KindInternal, "find order by key", err)
	}
	return order, nil
}

func (r *mongoOrderRepository) All(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	total, err := r.col().CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "count orders", err)
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.col().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "list all orders", err)
	}
	defer cur.Close(ctx)

	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "decode orders", err)
	}
	return orders, total, nil
}

func (r *mongoOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to string) (models.Order, error) {
	var order models.Order
	err := r.col().FindOneAndUpdate(ctx,
		bson.M{"_id": id, "orderStatus": from},
		bson.M{"$set": bson.M{"orderStatus": to, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return order, apperr.Conflict("order status changed concurrently")
	}
	if err != nil {
		return order, apperr.Wrap(apperr.KindInternal, "update order status", err)
	}
	return order, nil
}
