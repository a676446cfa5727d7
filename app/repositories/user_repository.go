// Package repositories contains the MongoDB persistence layer. Each
// repository is an interface plus a Mongo-backed implementation; services
// depend on the interfaces so tests can substitute fakes.
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
	"github.com/rishivikram/vastra/pkg/middleware"
)

// UserRepository handles "users" collection operations. It also backs
// the auth middleware's account lookup.
type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	All(ctx context.Context, page, limit int) ([]models.User, int64, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, set bson.M) (models.User, error)
	SaveAddress(ctx context.Context, id primitive.ObjectID, address string) (models.User, error)
	SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ToggleWishlist atomically adds productID to the user's wishlist if
	// absent, otherwise removes it. Returns true when the product ended
	// up in the wishlist.
	ToggleWishlist(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)

	AccountStatus(ctx context.Context, userID string) (middleware.AccountStatus, error)
}

type mongoUserRepository struct {
	col func() *mongo.Collection
}

// NewUserRepository returns the Mongo-backed user repository.
func NewUserRepository() UserRepository {
	return &mongoUserRepository{col: database.C("users")}
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, apperr.NotFound("user not found")
	}
	if err != nil {
		return user, apperr.Wrap(apperr.KindInternal, "find user", err)
	}
	return user, nil
}

func (r *mongoUserRepository) All(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	total, err := r.col().CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "count users", err)
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.col().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "list users", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "decode users", err)
	}
	return users, total, nil
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, set bson.M) (models.User, error) {
	set["updatedAt"] = time.Now().UTC()

	var user models.User
	err := r.col().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, apperr.NotFound("user not found")
	}
	if err != nil {
		return user, apperr.Wrap(apperr.KindInternal, "update user", err)
	}
	return user, nil
}

func (r *mongoUserRepository) SaveAddress(ctx context.Context, id primitive.ObjectID, address string) (models.User, error) {
	return r.UpdateProfile(ctx, id, bson.M{"address": address})
}

func (r *mongoUserRepository) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) error {
	res, err := r.col().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isBlocked": blocked, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "set blocked", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "delete user", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *mongoUserRepository) ToggleWishlist(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	now := time.Now().UTC()

	// Push only when the product is not already wishlisted; the filter
	// guard makes add-vs-add races collapse to a single add.
	res, err := r.col().UpdateOne(ctx,
		bson.M{"_id": userID, "wishlist": bson.M{"$ne": productID}},
		bson.M{"$push": bson.M{"wishlist": productID}, "$set": bson.M{"updatedAt": now}},
	)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "wishlist add", err)
	}
	if res.ModifiedCount > 0 {
		return true, nil
	}

	// Already present (or user missing): try the pull.
	res, err = r.col().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"wishlist": productID}, "$set": bson.M{"updatedAt": now}},
	)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "wishlist remove", err)
	}
	if res.MatchedCount == 0 {
		return false, apperr.NotFound("user not found")
	}
	return false, nil
}

func (r *mongoUserRepository) AccountStatus(ctx context.Context, userID string) (middleware.AccountStatus, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return middleware.AccountStatus{}, nil
	}

	var user models.User
	err = r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return middleware.AccountStatus{}, nil
	}
	if err != nil {
		return middleware.AccountStatus{}, apperr.Wrap(apperr.KindInternal, "account lookup", err)
	}
	return middleware.AccountStatus{
		Exists:  true,
		Blocked: user.IsBlocked,
		Admin:   user.Admin(),
	}, nil
}
