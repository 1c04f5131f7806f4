package dataset

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// document mirrors the collection schema. Income is decoded loosely because
// the source field is nullable and historically has carried both numeric and
// string values.
type document struct {
	CustID        int         `bson:"custid"`
	Category      string      `bson:"category"`
	Income        interface{} `bson:"householdincome"`
	HouseholdSize float64     `bson:"householdsize"`
	Education     float64     `bson:"educationlevel"`
	Gender        string      `bson:"gender"`
}

// MongoLoader reads customer records from a MongoDB collection.
type MongoLoader struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoLoader connects to MongoDB and pings the server. A failed
// connection is returned as an error; callers are expected to treat it as
// fatal rather than continue with a dead handle.
func NewMongoLoader(ctx context.Context, uri, database, collection string) (*MongoLoader, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb at %s: %w", uri, err)
	}

	return &MongoLoader{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Close disconnects the underlying client.
func (l *MongoLoader) Close(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}

// DuplicateIDCount counts custid values that appear more than once, using a
// server-side aggregation. The count is informational; Load enforces the
// uniqueness invariant separately.
func (l *MongoLoader) DuplicateIDCount(ctx context.Context) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$custid"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$match", Value: bson.D{
			{Key: "count", Value: bson.D{{Key: "$gt", Value: 1}}},
		}}},
		{{Key: "$count", Value: "duplicates"}},
	}

	cursor, err := l.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("duplicate id aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Duplicates int `bson:"duplicates"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode aggregation result: %w", err)
	}

	// $count emits no document when nothing matches
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Duplicates, nil
}

// Load reads the full collection into memory, mapping category and gender
// labels through the fixed enumerations. An unknown label or a duplicate
// custid is an error.
func (l *MongoLoader) Load(ctx context.Context) ([]Row, error) {
	dupes, err := l.DuplicateIDCount(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().Int("duplicate_ids", dupes).Msg("Duplicate customer id check")

	cursor, err := l.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []Row
	for cursor.Next(ctx) {
		var doc document
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}

		row, err := rowFromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("custid %d: %w", doc.CustID, err)
		}
		rows = append(rows, row)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error while loading records: %w", err)
	}

	if err := validateUniqueIDs(rows); err != nil {
		return nil, err
	}

	log.Info().Int("records", len(rows)).Msg("Loaded records from MongoDB")
	return rows, nil
}

func rowFromDocument(doc document) (Row, error) {
	category, err := mapCategory(doc.Category)
	if err != nil {
		return Row{}, err
	}
	gender, err := mapGender(doc.Gender)
	if err != nil {
		return Row{}, err
	}

	income, err := coerceIncome(doc.Income)
	if err != nil {
		return Row{}, err
	}

	return Row{
		ID:            doc.CustID,
		Category:      category,
		Income:        income,
		HouseholdSize: doc.HouseholdSize,
		Education:     doc.Education,
		Gender:        gender,
	}, nil
}
