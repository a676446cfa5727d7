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

// EnquiryRepository handles "enquiries" collection CRUD.
type EnquiryRepository interface {
	Create(ctx context.Context, e *models.Enquiry) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Enquiry, error)
	All(ctx context.Context) ([]models.Enquiry, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Enquiry, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoEnquiryRepository struct {
	col func() *mongo.Collection
}

// NewEnquiryRepository returns the Mongo-backed enquiry repository.
func NewEnquiryRepository() EnquiryRepository {
	return &mongoEnquiryRepository{col: database.C("enquiries")}
}

func (r *mongoEnquiryRepository) Create(ctx context.Context, e *models.Enquiry) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.Status == "" {
		e.Status = models.EnquirySubmitted
	}

	res, err := r.col().InsertOne(ctx, e)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "insert enquiry", err)
	}
	e.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoEnquiryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Enquiry, error) {
	var e models.Enquiry
	err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return e, apperr.NotFound("enquiry not found")
	}
	if err != nil {
		return e, apperr.Wrap(apperr.KindInternal, "find enquiry", err)
	}
	return e, nil
}

func (r *mongoEnquiryRepository) All(ctx context.Context) ([]models.Enquiry, error) {
	cur, err := r.col().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list enquiries", err)
	}
	defer cur.Close(ctx)

	var out []models.Enquiry
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "decode enquiries", err)
	}
	return out, nil
}

func (r *mongoEnquiryRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Enquiry, error) {
	set["updatedAt"] = time.Now().UTC()

	var e models.Enquiry
	err := r.col().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return e, apperr.NotFound("enquiry not found")
	}
	if err != nil {
		return e, apperr.Wrap(apperr.KindInternal, "update enquiry", err)
	}
	return e, nil
}

func (r *mongoEnquiryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "delete enquiry", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("enquiry not found")
	}
	return nil
}
