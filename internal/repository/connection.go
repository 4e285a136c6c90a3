package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	productsCollection = "products"
	usersCollection    = "users"
	ordersCollection   = "orders"
)

// Pool sizing for the single API process.
const (
	appName         = "instafood"
	maxPoolSize     = 64
	minPoolSize     = 4
	maxConnIdleTime = 5 * time.Minute
	pingTimeout     = 3 * time.Second
)

// ConnectMongoDB dials uri and checks the primary answers before returning
// the named database. Values set in uri win over the pool defaults here.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, clientOptions(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB primary: %w", err)
	}

	return client.Database(database), nil
}

func clientOptions(uri string) *options.ClientOptions {
	return options.Client().
		SetAppName(appName).
		SetMaxPoolSize(maxPoolSize).
		SetMinPoolSize(minPoolSize).
		SetMaxConnIdleTime(maxConnIdleTime).
		SetServerSelectionTimeout(5 * time.Second).
		SetRetryWrites(true).
		ApplyURI(uri)
}
