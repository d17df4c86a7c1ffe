// Package mongodb persists shrink partitions in MongoDB, one document per
// department list. Mutations follow the same whole-partition
// read-modify-write discipline as the file store so the durability
// contract is identical behind the Store interface.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/shrinktrack/internal/domain/models"
)

const collName = "shrink_partitions"

type partitionDoc struct {
	Key     string                `bson:"_id"`
	Records []models.ShrinkRecord `bson:"records"`
}

// Store implements the shrink record store on MongoDB.
type Store struct {
	client *mongo.Client
	dbName string
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, dbName: dbName}, nil
}

func (s *Store) coll() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(collName)
}

// Partitions lists the partition keys present in the collection.
func (s *Store) Partitions(ctx context.Context) ([]string, error) {
	values, err := s.coll().Distinct(ctx, "_id", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	keys := make([]string, 0, len(values))
	for _, v := range values {
		if key, ok := v.(string); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Records loads a partition in append order.
func (s *Store) Records(ctx context.Context, listKey string) ([]models.ShrinkRecord, bool, error) {
	var doc partitionDoc
	err := s.coll().FindOne(ctx, bson.M{"_id": listKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load partition %s: %w", listKey, err)
	}
	return doc.Records, true, nil
}

// Append reads the partition, adds the record, and writes the whole
// document back, creating it when absent.
func (s *Store) Append(ctx context.Context, listKey string, rec models.ShrinkRecord) error {
	records, _, err := s.Records(ctx, listKey)
	if err != nil {
		return err
	}
	return s.Replace(ctx, listKey, append(records, rec))
}

// Replace overwrites a partition's record sequence.
func (s *Store) Replace(ctx context.Context, listKey string, records []models.ShrinkRecord) error {
	if records == nil {
		records = []models.ShrinkRecord{}
	}

	doc := partitionDoc{Key: listKey, Records: records}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll().ReplaceOne(ctx, bson.M{"_id": listKey}, doc, opts); err != nil {
		return fmt.Errorf("replace partition %s: %w", listKey, err)
	}
	return nil
}

// EnsurePartition creates an empty partition document when none exists.
func (s *Store) EnsurePartition(ctx context.Context, listKey string) error {
	_, found, err := s.Records(ctx, listKey)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	return s.Replace(ctx, listKey, nil)
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
