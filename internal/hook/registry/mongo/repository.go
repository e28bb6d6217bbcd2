// Package mongo persists subscriptions in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

const (
	defaultDatabase = "bithook"
	collectionName  = "outputs"
)

type (
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
	Collection interface {
		InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
		DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error)
		Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	}
)

type document struct {
	ID         string    `bson:"_id"`
	Key        string    `bson:"idx"`
	Descriptor string    `bson:"f"`
	Channel    string    `bson:"c"`
	CreatedAt  time.Time `bson:"created_at"`
}

// Repository stores one document per subscription with a unique index on the composite key.
type Repository struct {
	client  *mongo.Client
	coll    Collection
	metrics Metrics
	now     func() time.Time
	newID   func() string
}

// NewRepository connects to MongoDB and ensures the registry indexes exist.
func NewRepository(ctx context.Context, dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("mongo dsn is required")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(dsn))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	dbName := defaultDatabase
	if cs, err := connstring.ParseAndValidate(dsn); err == nil && cs.Database != "" {
		dbName = cs.Database
	}
	coll := client.Database(dbName).Collection(collectionName)
	if err := ensureIndexes(ctx, coll); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Repository{
		client:  client,
		coll:    coll,
		metrics: metrics,
		now:     time.Now,
		newID:   newID,
	}, nil
}

// Close disconnects the underlying client.
func (r *Repository) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}

func ensureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "idx", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_unique"),
		},
		{
			Keys:    bson.D{{Key: "f", Value: 1}},
			Options: options.Index().SetName("f"),
		},
	})
	if err != nil {
		return fmt.Errorf("create registry indexes: %w", err)
	}
	return nil
}
