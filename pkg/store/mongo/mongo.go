// Package mongo stores blueprints in a MongoDB collection, one document per record.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/store"
)

// Defaults for Config.
const (
	DefaultDatabase   = "villas"
	DefaultCollection = "blueprints"
)

// Config configures the MongoDB connection.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// Store is a MongoDB-backed blueprint store.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

type document struct {
	ID        string               `bson:"_id"`
	Name      string               `bson:"name"`
	Blueprint *blueprint.Blueprint `bson:"blueprint"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

func toDocument(r *store.Record) document {
	return document{ID: r.ID, Name: r.Name, Blueprint: r.Blueprint, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func (d document) record() *store.Record {
	return &store.Record{
		ID:        d.ID,
		Name:      d.Name,
		Blueprint: d.Blueprint,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := NewStoreFromClient(client, cfg.Database, cfg.Collection)
	s.owned = true
	return s, nil
}

// NewStoreFromClient uses an existing client. Close leaves the client connected.
func NewStoreFromClient(client *mongo.Client, database, collection string) *Store {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{client: client, coll: client.Database(database).Collection(collection)}
}

func (s *Store) Save(ctx context.Context, r *store.Record) error {
	var existing *store.Record
	if r != nil && r.ID != "" {
		prev, err := s.Get(ctx, r.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		existing = prev
	}
	if err := store.Prepare(r, existing, time.Now()); err != nil {
		return err
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.ID}, toDocument(r), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save record %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return doc.record(), nil
}

func (s *Store) List(ctx context.Context) ([]*store.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	out := make([]*store.Record, len(docs))
	for i, d := range docs {
		out[i] = d.record()
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return store.NotFound(id)
	}
	return nil
}

// Close disconnects the client if the store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
