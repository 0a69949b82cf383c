// Package mongostore keeps trees, forests and training rows in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zeidlermicha/extraTree"
)

const (
	treesCollection   = "trees"
	forestsCollection = "class_forests"
)

// ErrNotFound is returned when no model is stored under the requested name.
var ErrNotFound = errors.New("mongostore: model not found")

// ClassificationDTO is one labeled row as stored in a samples collection.
type ClassificationDTO[F extraTree.Feature, L extraTree.Label] struct {
	Input []F `bson:"input"`
	Label L   `bson:"label"`
}

type treeRecord[F extraTree.Feature, L extraTree.Label] struct {
	Name string                       `bson:"name"`
	Tree extraTree.TreeDocument[F, L] `bson:"tree"`
}

type forestRecord[F extraTree.Feature, L extraTree.Label] struct {
	Name   string                         `bson:"name"`
	Forest extraTree.ForestDocument[F, L] `bson:"forest"`
}

type Store struct {
	database *mongo.Database
}

func New(database *mongo.Database) *Store {
	return &Store{database: database}
}

// Connect opens a client on uri and returns a Store on database. The caller
// disconnects through the returned function.
func Connect(ctx context.Context, uri, database string) (*Store, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongostore: connecting to %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongostore: pinging %s: %w", uri, err)
	}
	return New(client.Database(database)), client.Disconnect, nil
}

func (s *Store) upsert(ctx context.Context, collection, name string, record interface{}) error {
	upsert := true
	_, err := s.database.Collection(collection).ReplaceOne(ctx,
		bson.D{{Key: "name", Value: name}}, record, &options.ReplaceOptions{Upsert: &upsert})
	if err != nil {
		return fmt.Errorf("mongostore: saving %q to %s: %w", name, collection, err)
	}
	return nil
}

func (s *Store) find(ctx context.Context, collection, name string, record interface{}) error {
	result := s.database.Collection(collection).FindOne(ctx, bson.D{{Key: "name", Value: name}})
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: %q in %s", ErrNotFound, name, collection)
		}
		return fmt.Errorf("mongostore: loading %q from %s: %w", name, collection, err)
	}
	if err := result.Decode(record); err != nil {
		return fmt.Errorf("mongostore: decoding %q from %s: %w", name, collection, err)
	}
	return nil
}

// SaveTree stores t under name, replacing any tree already stored there.
func SaveTree[F extraTree.Feature, L extraTree.Label](ctx context.Context, s *Store, name string, t *extraTree.Tree[F, L]) error {
	return s.upsert(ctx, treesCollection, name, treeRecord[F, L]{Name: name, Tree: t.Document()})
}

func LoadTree[F extraTree.Feature, L extraTree.Label](ctx context.Context, s *Store, name string) (*extraTree.Tree[F, L], error) {
	var record treeRecord[F, L]
	if err := s.find(ctx, treesCollection, name, &record); err != nil {
		return nil, err
	}
	return record.Tree.Tree()
}

// SaveForest stores the forest's trees under name. Buffered rows are not kept.
func SaveForest[F extraTree.Feature, L extraTree.Label](ctx context.Context, s *Store, name string, forest *extraTree.Forest[F, L]) error {
	return s.upsert(ctx, forestsCollection, name, forestRecord[F, L]{Name: name, Forest: forest.Document()})
}

func LoadForest[F extraTree.Feature, L extraTree.Label](ctx context.Context, s *Store, name string) (*extraTree.Forest[F, L], error) {
	var record forestRecord[F, L]
	if err := s.find(ctx, forestsCollection, name, &record); err != nil {
		return nil, err
	}
	return record.Forest.Forest()
}

func getData(ctx context.Context, collection *mongo.Collection, count int) (*mongo.Cursor, error) {
	if count <= 0 {
		return collection.Find(ctx, bson.D{})
	}
	pipeline := mongo.Pipeline([]bson.D{{{Key: "$sample", Value: bson.D{{Key: "size", Value: count}}}}})
	return collection.Aggregate(ctx, pipeline)
}

// LoadDataset reads count randomly sampled rows from collection, or every
// row when count is not positive.
func LoadDataset[F extraTree.Feature, L extraTree.Label](ctx context.Context, collection *mongo.Collection, count int) (*extraTree.Labeled[F, L], error) {
	cursor, err := getData(ctx, collection, count)
	if err != nil {
		return nil, fmt.Errorf("mongostore: querying %s: %w", collection.Name(), err)
	}
	defer cursor.Close(ctx)

	samples := make([][]F, 0, max(count, 0))
	labels := make([]L, 0, max(count, 0))
	for cursor.Next(ctx) {
		var data ClassificationDTO[F, L]
		if err := cursor.Decode(&data); err != nil {
			return nil, fmt.Errorf("mongostore: decoding row of %s: %w", collection.Name(), err)
		}
		samples = append(samples, data.Input)
		labels = append(labels, data.Label)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongostore: reading %s: %w", collection.Name(), err)
	}
	return extraTree.NewLabeled(samples, labels)
}

// InsertDataset appends the rows to collection.
func InsertDataset[F extraTree.Feature, L extraTree.Label](ctx context.Context, collection *mongo.Collection, samples [][]F, labels []L) error {
	if len(samples) != len(labels) {
		return extraTree.ErrLengthMismatch
	}
	if len(samples) == 0 {
		return nil
	}
	docs := make([]interface{}, len(samples))
	for i := range samples {
		docs[i] = ClassificationDTO[F, L]{Input: samples[i], Label: labels[i]}
	}
	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("mongostore: inserting into %s: %w", collection.Name(), err)
	}
	return nil
}
