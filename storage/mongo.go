package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type keyValueDocument struct {
	Key   string `bson:"key"`
	Value string `bson:"value"`
}

func OpenMongo(ctx context.Context, uri string, database string, collection string) (*Mongo, error) {
	if uri == "" {
		return nil, errors.New("mongo uri not provided")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongo(client, client.Database(database).Collection(collection)), nil
}

func NewMongo(client *mongo.Client, collection *mongo.Collection) *Mongo {
	return &Mongo{client: client, collection: collection}
}

func (m *Mongo) Get(ctx context.Context, key string) (string, error) {
	var doc keyValueDocument
	err := m.collection.FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return doc.Value, nil
}

/*
* Upsert the document for the key so the collection holds one document per key
 */
func (m *Mongo) Set(ctx context.Context, key string, value string) error {
	filter := bson.M{"key": key}
	update := bson.M{"$set": bson.M{"key": key, "value": value}}
	_, err := m.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (m *Mongo) Remove(ctx context.Context, key string) error {
	_, err := m.collection.DeleteOne(ctx, bson.M{"key": key})
	return err
}

func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}
