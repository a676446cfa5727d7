package seeders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/app/services"
)

func init() {
	Register("admin", SeedAdmin)
	Register("colors", SeedColors)
	Register("products", SeedProducts)
}

// SeedAdmin upserts the bootstrap admin account.
func SeedAdmin(ctx context.Context, db *mongo.Database) error {
	now := time.Now().UTC()
	_, err := db.Collection("users").UpdateOne(ctx,
		bson.M{"email": "admin@vastra.local"},
		bson.M{
			"$setOnInsert": bson.M{
				"firstname": "Admin",
				"lastname":  "Vastra",
				"mobile":    "9999999999",
				"role":      models.RoleAdmin,
				"isBlocked": false,
				"createdAt": now,
				"updatedAt": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// SeedColors inserts the base color palette.
func SeedColors(ctx context.Context, db *mongo.Database) error {
	now := time.Now().UTC()
	for _, title := range []string{"Red", "Blue", "Green", "Black", "White"} {
		_, err := db.Collection("colors").UpdateOne(ctx,
			bson.M{"title": title},
			bson.M{"$setOnInsert": bson.M{"title": title, "createdAt": now, "updatedAt": now}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedProducts inserts a small demo catalogue.
func SeedProducts(ctx context.Context, db *mongo.Database) error {
	now := time.Now().UTC()
	demo := []models.Product{
		{Title: "Cotton Kurta", Description: "Handloom cotton kurta", Brand: "Vastra", Category: "kurta", Price: 1299, Quantity: 50},
		{Title: "Silk Saree", Description: "Banarasi silk saree", Brand: "Vastra", Category: "saree", Price: 4999, Quantity: 20},
		{Title: "Linen Shirt", Description: "Full-sleeve linen shirt", Brand: "Vastra", Category: "shirt", Price: 1799, Quantity: 35},
	}
	for _, p := range demo {
		p.Slug = services.Slugify(p.Title)
		p.CreatedAt = now
		p.UpdatedAt = now
		_, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"slug": p.Slug},
			bson.M{"$setOnInsert": p},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
