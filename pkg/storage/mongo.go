package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend implements Backend over a MongoDB collection of
// {_id, value} documents, for deployments without Redis.
type MongoBackend struct {
	coll *mongo.Collection
}

type kvDocument struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// NewMongoBackend stores key/value pairs in the "kv" collection of db.
func NewMongoBackend(db *mongo.Database) *MongoBackend {
	return &MongoBackend{
		coll: db.Collection("kv"),
	}
}

func (m *MongoBackend) Get(ctx context.Context, key string) (string, error) {
	var doc kvDocument
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get %s from mongodb: %w", key, err)
	}
	return doc.Value, nil
}

func (m *MongoBackend) Set(ctx context.Context, key, value string) error {
	doc := kvDocument{Key: key, Value: value}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("failed to set %s in mongodb: %w", key, err)
	}
	return nil
}

func (m *MongoBackend) Remove(ctx context.Context, key string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to remove %s from mongodb: %w", key, err)
	}
	return nil
}
