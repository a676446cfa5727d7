// Package indexes declares the MongoDB indexes the application relies
// on. EnsureAll is idempotent and safe to run at every deploy.
package indexes

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type spec struct {
	collection string
	model      mongo.IndexModel
}

func all() []spec {
	return []spec{
		{"users", mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"products", mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"products", mongo.IndexModel{
			Keys: bson.D{{Key: "brand", Value: 1}, {Key: "category", Value: 1}},
		}},
		{"carts", mongo.IndexModel{
			Keys: bson.D{{Key: "userId", Value: 1}},
		}},
		{"orders", mongo.IndexModel{
			Keys: bson.D{{Key: "orderby", Value: 1}, {Key: "createdAt", Value: -1}},
		}},
		// One order per (user, idempotency key); partial so keyless orders
		// are unconstrained.
		{"orders", mongo.IndexModel{
			Keys: bson.D{{Key: "orderby", Value: 1}, {Key: "idempotencyKey", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotencyKey": bson.M{"$exists": true}}),
		}},
	}
}

// EnsureAll creates every declared index.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	for _, s := range all() {
		if _, err := db.Collection(s.collection).Indexes().CreateOne(ctx, s.model); err != nil {
			return fmt.Errorf("indexes: %s: %w", s.collection, err)
		}
	}
	return nil
}
