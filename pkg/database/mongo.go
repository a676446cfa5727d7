// Package database owns the MongoDB connection shared by all repositories.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rishivikram/vastra/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

var (
	client *mongo.Client
	db     *mongo.Database
)

// Connect dials MongoDB and verifies the connection.
// Returns an error instead of calling log.Fatal so the caller can
// shut down gracefully.
func Connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(config.MongoURI()).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	var err error
	client, err = mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}

	db = client.Database(config.MongoDB())
	return nil
}

// DB returns the application database handle.
func DB() *mongo.Database { return db }

// Collection returns a collection handle by name.
func Collection(name string) *mongo.Collection {
	return db.Collection(name)
}

// C returns a lazy accessor for a collection, resolved on each call.
// Repositories hold these so their constructors can run before Connect
// (route listing, tests).
func C(name string) func() *mongo.Collection {
	return func() *mongo.Collection { return db.Collection(name) }
}

// WithTransaction runs fn inside a multi-document transaction with
// majority read/write concerns. fn must perform every read and write with
// the session context it receives; any error aborts the whole transaction.
func WithTransaction(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("database: start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority())

	return session.WithTransaction(ctx, fn, txnOpts)
}

// Disconnect closes the connection pool. Call during shutdown.
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
