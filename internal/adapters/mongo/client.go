// Package mongo holds the shared pieces of the MongoDB adapters: client setup and indexes.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	MembersCollection     = "chingus"
	UsersCollection       = "users"
	IdempotencyCollection = "idempotency_keys"
)

// Connect opens a client and verifies connectivity within connectTimeout.
func Connect(ctx context.Context, uri string, connectTimeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)
	if connectTimeout > 0 {
		opts.SetConnectTimeout(connectTimeout).SetServerSelectionTimeout(connectTimeout)
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the adapters rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	}); err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	if _, err := db.Collection(IdempotencyCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "key", Value: 1},
			{Key: "method", Value: 1},
			{Key: "route", Value: 1},
			{Key: "bodyHash", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("idempotency_fingerprint_unique"),
	}); err != nil {
		return fmt.Errorf("create idempotency index: %w", err)
	}
	if _, err := db.Collection(MembersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "countryCode", Value: 1}}},
		{Keys: bson.D{{Key: "seq", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create member indexes: %w", err)
	}
	return nil
}
