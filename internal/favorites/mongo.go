package favorites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const clientListsCollection = "client_lists"

type listDocument struct {
	Key       string    `bson:"_id"`
	Items     []string  `bson:"items"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoKV stores each list as one document keyed by the list key.
type MongoKV struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoKV connects to uri and uses the client_lists collection of dbName.
func NewMongoKV(ctx context.Context, uri, dbName string) (*MongoKV, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctxWithTimeout, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := client.Ping(ctxWithTimeout, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &MongoKV{
		client: client,
		coll:   client.Database(dbName).Collection(clientListsCollection),
	}, nil
}

// Get returns the list stored at key.
func (m *MongoKV) Get(ctx context.Context, key string) ([]string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc listDocument
	err := m.coll.FindOne(ctxWithTimeout, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: failed to read %s: %w", key, err)
	}
	if doc.Items == nil {
		return []string{}, nil
	}
	return doc.Items, nil
}

// Set upserts the list stored at key.
func (m *MongoKV) Set(ctx context.Context, key string, items []string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if items == nil {
		items = []string{}
	}
	update := bson.M{"$set": bson.M{"items": items, "updatedAt": time.Now().UTC()}}
	_, err := m.coll.UpdateOne(ctxWithTimeout, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: failed to save %s: %w", key, err)
	}
	return nil
}

// Close disconnects the client.
func (m *MongoKV) Close() error {
	if err := m.client.Disconnect(context.TODO()); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}
