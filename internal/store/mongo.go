package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoCollectionDoc struct {
	Name    string `bson:"_id"`
	Records string `bson:"records"` // JSON array
}

// Mongo keeps each collection as one document in the "collections" collection.
// Updates are serialized per process; run a single writer instance with this backend.
type Mongo struct {
	client *mongo.Client
	col    *mongo.Collection
	mu     sync.Mutex
}

// NewMongo creates a store in database db.
func NewMongo(client *mongo.Client, db string) *Mongo {
	return &Mongo{client: client, col: client.Database(db).Collection("collections")}
}

// Read returns the records of a collection.
func (m *Mongo) Read(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var doc mongoCollectionDoc
	err := m.col.FindOne(ctx, bson.M{"_id": collection}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	return unmarshalRecords([]byte(doc.Records))
}

// Write upserts the collection document.
func (m *Mongo) Write(ctx context.Context, collection string, records []json.RawMessage) error {
	body, err := marshalRecords(records)
	if err != nil {
		return err
	}
	doc := mongoCollectionDoc{Name: collection, Records: string(body)}
	_, err = m.col.ReplaceOne(ctx, bson.M{"_id": collection}, doc, options.Replace().SetUpsert(true))
	return err
}

// Update reads, applies fn and writes back under the process lock.
func (m *Mongo) Update(ctx context.Context, collection string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	records, err := m.Read(ctx, collection)
	if err != nil {
		return err
	}
	next, err := fn(records)
	if err != nil {
		return err
	}
	return m.Write(ctx, collection, next)
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}
